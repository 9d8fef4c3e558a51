package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nyayanet.in/forum/internal/model"
)

var treeBase = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func makeReply(parent *uuid.UUID, minute int, deleted bool) *model.Reply {
	return &model.Reply{
		ID:            uuid.New(),
		DiscussionID:  uuid.New(),
		UserID:        uuid.New(),
		ParentReplyID: parent,
		Content:       "content",
		IsDeleted:     deleted,
		CreatedAt:     treeBase.Add(time.Duration(minute) * time.Minute),
		User:          model.User{Username: "adv_sharma", FullName: "Advocate Sharma"},
	}
}

func TestBuildReplyTreeNestsByParentAndCreatedOrder(t *testing.T) {
	r1 := makeReply(nil, 0, false)
	r2 := makeReply(nil, 1, false)
	c1 := makeReply(&r1.ID, 2, false)
	c2 := makeReply(&r1.ID, 3, false)

	tree := BuildReplyTree([]*model.Reply{r2, c2, r1, c1}, ReplyTreeOptions{Sort: ReplySortNewest})

	require.Len(t, tree, 2)
	assert.Equal(t, r1.ID, tree[0].ID)
	assert.Equal(t, r2.ID, tree[1].ID)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, c1.ID, tree[0].Replies[0].ID)
	assert.Equal(t, c2.ID, tree[0].Replies[1].ID)
	assert.Empty(t, tree[1].Replies)
}

func TestBuildReplyTreeDepthCapSetsHasMore(t *testing.T) {
	l1 := makeReply(nil, 0, false)
	l2 := makeReply(&l1.ID, 1, false)
	l3 := makeReply(&l2.ID, 2, false)
	l4 := makeReply(&l3.ID, 3, false)

	tree := BuildReplyTree([]*model.Reply{l1, l2, l3, l4}, ReplyTreeOptions{MaxDepth: DefaultReplyDepth})

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	second := tree[0].Replies[0]
	require.Len(t, second.Replies, 1)
	third := second.Replies[0]

	assert.True(t, third.HasMore, "third level should flag deferred children")
	assert.Empty(t, third.Replies, "fourth level must not be rendered inline")
	assert.False(t, second.HasMore)
}

func TestBuildReplyTreeTombstoneShieldsLiveChildren(t *testing.T) {
	parent := makeReply(nil, 0, true)
	child := makeReply(&parent.ID, 1, false)

	tree := BuildReplyTree([]*model.Reply{parent, child}, ReplyTreeOptions{
		BestAnswerID: &parent.ID,
	})

	require.Len(t, tree, 1)
	tomb := tree[0]
	assert.Equal(t, "[deleted]", tomb.Content)
	assert.True(t, tomb.IsDeleted)
	assert.Nil(t, tomb.Author)
	assert.False(t, tomb.IsBestAnswer, "a deleted reply cannot present as best answer")
	require.Len(t, tomb.Replies, 1)
	assert.Equal(t, child.ID, tomb.Replies[0].ID)
	assert.Equal(t, "content", tomb.Replies[0].Content)
}

func TestBuildReplyTreePrunesFullyDeletedSubtree(t *testing.T) {
	live := makeReply(nil, 0, false)
	deadRoot := makeReply(nil, 1, true)
	deadChild := makeReply(&deadRoot.ID, 2, true)

	tree := BuildReplyTree([]*model.Reply{live, deadRoot, deadChild}, ReplyTreeOptions{})

	require.Len(t, tree, 1)
	assert.Equal(t, live.ID, tree[0].ID)
}

func TestBuildReplyTreePromotesOrphansToRoot(t *testing.T) {
	missingParent := uuid.New()
	orphan := makeReply(&missingParent, 0, false)
	root := makeReply(nil, 1, false)

	tree := BuildReplyTree([]*model.Reply{orphan, root}, ReplyTreeOptions{})

	require.Len(t, tree, 2)
	assert.Equal(t, orphan.ID, tree[0].ID)
	assert.Equal(t, root.ID, tree[1].ID)
}

func TestBuildReplyTreePopularSortWithCreatedTiebreak(t *testing.T) {
	older := makeReply(nil, 0, false)
	newer := makeReply(nil, 1, false)
	top := makeReply(nil, 2, false)
	top.UpvoteCount = 7
	older.UpvoteCount = 3
	newer.UpvoteCount = 3

	tree := BuildReplyTree([]*model.Reply{newer, older, top}, ReplyTreeOptions{Sort: ReplySortPopular})

	require.Len(t, tree, 3)
	assert.Equal(t, top.ID, tree[0].ID)
	assert.Equal(t, older.ID, tree[1].ID, "equal upvotes fall back to earliest first")
	assert.Equal(t, newer.ID, tree[2].ID)
}

func TestBuildReplyTreeFlagsBestAnswerAndUpvoted(t *testing.T) {
	best := makeReply(nil, 0, false)
	other := makeReply(nil, 1, false)

	tree := BuildReplyTree([]*model.Reply{best, other}, ReplyTreeOptions{
		BestAnswerID: &best.ID,
		UpvotedIDs:   map[uuid.UUID]bool{other.ID: true},
	})

	require.Len(t, tree, 2)
	assert.True(t, tree[0].IsBestAnswer)
	assert.False(t, tree[0].HasUpvoted)
	assert.False(t, tree[1].IsBestAnswer)
	assert.True(t, tree[1].HasUpvoted)
}

func TestBuildReplySubtreeAppliesDepthRelativeToRoot(t *testing.T) {
	l1 := makeReply(nil, 0, false)
	l2 := makeReply(&l1.ID, 1, false)
	l3 := makeReply(&l2.ID, 2, false)
	l4 := makeReply(&l3.ID, 3, false)
	l5 := makeReply(&l4.ID, 4, false)
	l6 := makeReply(&l5.ID, 5, false)
	all := []*model.Reply{l1, l2, l3, l4, l5, l6}

	sub := BuildReplySubtree(all, l3.ID, ReplyTreeOptions{MaxDepth: DefaultReplyDepth})

	require.NotNil(t, sub)
	assert.Equal(t, l3.ID, sub.ID)
	require.Len(t, sub.Replies, 1)
	require.Len(t, sub.Replies[0].Replies, 1)
	fifth := sub.Replies[0].Replies[0]
	assert.True(t, fifth.HasMore, "depth cap restarts at the subtree root")
	assert.Empty(t, fifth.Replies)
}

func TestBuildReplySubtreeMissingOrPrunedRoot(t *testing.T) {
	dead := makeReply(nil, 0, true)

	assert.Nil(t, BuildReplySubtree([]*model.Reply{dead}, dead.ID, ReplyTreeOptions{}))
	assert.Nil(t, BuildReplySubtree([]*model.Reply{dead}, uuid.New(), ReplyTreeOptions{}))
}

func TestBuildReplyTreeSurvivesParentCycle(t *testing.T) {
	a := makeReply(nil, 0, false)
	b := makeReply(&a.ID, 1, false)
	a.ParentReplyID = &b.ID // corrupt: a and b point at each other

	tree := BuildReplyTree([]*model.Reply{a, b}, ReplyTreeOptions{})

	assert.Empty(t, tree, "a parentless cycle has no reachable root")
}
