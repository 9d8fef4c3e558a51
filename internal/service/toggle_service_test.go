package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/internal/repository"
	"nyayanet.in/forum/pkg/apperror"
)

func newUpvoteService(db *gorm.DB) UpvoteService {
	return NewUpvoteService(
		repository.NewUpvoteRepository(db),
		repository.NewDiscussionRepository(db),
		repository.NewReplyRepository(db),
		nil,
	)
}

func TestToggleDiscussionUpvoteOnThenOff(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	voter := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newUpvoteService(db)
	ctx := context.Background()

	res, err := svc.ToggleDiscussionUpvote(ctx, voter.ID, discussion.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, 1, reloadDiscussion(t, db, discussion.ID).UpvoteCount)

	res, err = svc.ToggleDiscussionUpvote(ctx, voter.ID, discussion.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, int64(0), res.Count)
	assert.Equal(t, 0, reloadDiscussion(t, db, discussion.ID).UpvoteCount)

	var rows int64
	db.Model(&model.Upvote{}).Count(&rows)
	assert.Equal(t, int64(0), rows, "toggle pair must leave no link row behind")
}

func TestToggleUpvoteOwnContentAllowed(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newUpvoteService(db)

	res, err := svc.ToggleDiscussionUpvote(context.Background(), owner.ID, discussion.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
}

func TestToggleReplyUpvoteUpdatesReplyCounter(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	reply := &model.Reply{DiscussionID: discussion.ID, UserID: owner.ID, Content: "see AIR 1987 SC 1086"}
	require.NoError(t, db.Create(reply).Error)
	svc := newUpvoteService(db)

	res, err := svc.ToggleReplyUpvote(context.Background(), owner.ID, reply.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, 1, reloadReply(t, db, reply.ID).UpvoteCount)
	assert.Equal(t, 0, reloadDiscussion(t, db, discussion.ID).UpvoteCount,
		"a reply upvote must not touch the discussion counter")
}

func TestToggleUpvoteMissingTarget(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newUpvoteService(db)

	_, err := svc.ToggleDiscussionUpvote(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.ToggleReplyUpvote(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// The toggle race recovery keys off gorm translating the unique index
// violation; this pins down that translation for the upvote triple.
func TestUpvoteDuplicateRowTranslated(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	target := uuid.New()

	first := &model.Upvote{UserID: user.ID, TargetID: target, TargetType: model.UpvoteTargetDiscussion}
	require.NoError(t, db.Create(first).Error)

	dup := &model.Upvote{UserID: user.ID, TargetID: target, TargetType: model.UpvoteTargetDiscussion}
	err := db.Create(dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	other := &model.Upvote{UserID: user.ID, TargetID: target, TargetType: model.UpvoteTargetReply}
	assert.NoError(t, db.Create(other).Error, "same id under a different target type is a distinct row")
}

func TestToggleFollowOnThenOff(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	follower := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := NewFollowService(repository.NewFollowRepository(db), repository.NewDiscussionRepository(db))
	ctx := context.Background()

	res, err := svc.ToggleFollow(ctx, follower.ID, discussion.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, 1, reloadDiscussion(t, db, discussion.ID).FollowerCount)

	res, err = svc.ToggleFollow(ctx, follower.ID, discussion.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, 0, reloadDiscussion(t, db, discussion.ID).FollowerCount)

	_, err = svc.ToggleFollow(ctx, follower.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func newBookmarkService(db *gorm.DB) BookmarkService {
	return NewBookmarkService(
		repository.NewBookmarkRepository(db),
		repository.NewDiscussionRepository(db),
		repository.NewPostRepository(db),
	)
}

func TestToggleBookmarkDiscussion(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	reader := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newBookmarkService(db)
	ctx := context.Background()

	req := dto.BookmarkToggleRequest{EntityType: model.BookmarkEntityDiscussion, EntityID: discussion.ID.String()}

	res, err := svc.ToggleBookmark(ctx, reader.ID, req)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, 1, reloadDiscussion(t, db, discussion.ID).SaveCount)

	res, err = svc.ToggleBookmark(ctx, reader.ID, req)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, 0, reloadDiscussion(t, db, discussion.ID).SaveCount)
}

func TestToggleBookmarkPostCounter(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db)
	post := &model.Post{UserID: author.ID, Content: "Bombay HC on arbitration seats"}
	require.NoError(t, db.Create(post).Error)
	svc := newBookmarkService(db)

	res, err := svc.ToggleBookmark(context.Background(), author.ID,
		dto.BookmarkToggleRequest{EntityType: model.BookmarkEntityPost, EntityID: post.ID.String()})
	require.NoError(t, err)
	assert.True(t, res.Active)

	var reloaded model.Post
	require.NoError(t, db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(t, 1, reloaded.SaveCount)
}

func TestToggleBookmarkExternalEntitySkipsExistenceCheck(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newBookmarkService(db)

	// AI results and law sections live outside this service's schema
	res, err := svc.ToggleBookmark(context.Background(), user.ID,
		dto.BookmarkToggleRequest{EntityType: model.BookmarkEntityAIResult, EntityID: uuid.NewString()})
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), res.Count)
}

func TestToggleBookmarkRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newBookmarkService(db)
	ctx := context.Background()

	_, err := svc.ToggleBookmark(ctx, user.ID,
		dto.BookmarkToggleRequest{EntityType: "PROFILE", EntityID: uuid.NewString()})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.ToggleBookmark(ctx, user.ID,
		dto.BookmarkToggleRequest{EntityType: model.BookmarkEntityDiscussion, EntityID: "not-a-uuid"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.ToggleBookmark(ctx, user.ID,
		dto.BookmarkToggleRequest{EntityType: model.BookmarkEntityDiscussion, EntityID: uuid.NewString()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
