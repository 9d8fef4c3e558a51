package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/internal/repository"
	"nyayanet.in/forum/pkg/apperror"
)

func newDiscussionTestService(db *gorm.DB) DiscussionService {
	return NewDiscussionService(
		repository.NewDiscussionRepository(db),
		repository.NewReplyRepository(db),
		repository.NewUpvoteRepository(db),
		repository.NewFollowRepository(db),
		repository.NewBookmarkRepository(db),
		nil,
		nil,
		nil,
		NewCooldown(nil),
		5*time.Second,
	)
}

func TestCreateDiscussionDefaultsAndValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newDiscussionTestService(db)
	ctx := context.Background()

	res, err := svc.CreateDiscussion(ctx, user.ID, dto.CreateDiscussionRequest{
		Title:       "Limitation period for specific performance suits",
		Description: "Is the three year clock from the date of refusal?",
		Category:    model.CategoryCivil,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DiscussionTypeGeneral, res.DiscussionType)
	assert.NotNil(t, res.Tags, "tags serialize as an empty array, never null")
	require.NotNil(t, res.Author)
	assert.Equal(t, user.Username, res.Author.Username)

	_, err = svc.CreateDiscussion(ctx, user.ID, dto.CreateDiscussionRequest{
		Title:       "A question with a made up category",
		Description: "d",
		Category:    "SPACE_LAW",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.CreateDiscussion(ctx, user.ID, dto.CreateDiscussionRequest{
		Title:          "A question with a made up type",
		Description:    "d",
		Category:       model.CategoryCivil,
		DiscussionType: "RANT",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestGetDiscussionViewerFlags(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	viewer := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newDiscussionTestService(db)
	ctx := context.Background()

	_, err := newUpvoteService(db).ToggleDiscussionUpvote(ctx, viewer.ID, discussion.ID)
	require.NoError(t, err)

	res, err := svc.GetDiscussion(ctx, &viewer.ID, discussion.ID)
	require.NoError(t, err)
	assert.True(t, res.HasUpvoted)
	assert.False(t, res.IsFollowing)
	assert.False(t, res.IsSaved)

	anon, err := svc.GetDiscussion(ctx, nil, discussion.ID)
	require.NoError(t, err)
	assert.False(t, anon.HasUpvoted)

	_, err = svc.GetDiscussion(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetAllDiscussionsFilterAndPagination(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newDiscussionTestService(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedDiscussion(t, db, user.ID)
	}
	tax := &model.Discussion{
		UserID:      user.ID,
		Title:       "GST on ocean freight after Mohit Minerals",
		Description: "Reverse charge implications",
		Category:    model.CategoryTax,
	}
	require.NoError(t, db.Create(tax).Error)

	page, err := svc.GetAllDiscussions(ctx, dto.DiscussionFilter{Category: model.CategoryTax})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, tax.ID, page.Data[0].ID)
	assert.Equal(t, int64(1), page.Meta.TotalItems)

	page, err = svc.GetAllDiscussions(ctx, dto.DiscussionFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(4), page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)
}

func TestUpdateAndDeleteDiscussionOwnership(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	intruder := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newDiscussionTestService(db)
	ctx := context.Background()

	req := dto.UpdateDiscussionRequest{
		Title:       "Scope of Article 21 revisited",
		Description: "Updated description",
		Category:    model.CategoryConstitutional,
	}

	_, err := svc.UpdateDiscussion(ctx, intruder.ID, discussion.ID, req)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := svc.UpdateDiscussion(ctx, owner.ID, discussion.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Scope of Article 21 revisited", updated.Title)

	assert.ErrorIs(t, svc.DeleteDiscussion(ctx, intruder.ID, discussion.ID), apperror.ErrForbidden)
	require.NoError(t, svc.DeleteDiscussion(ctx, owner.ID, discussion.ID))
	_, err = svc.GetDiscussion(ctx, nil, discussion.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteDiscussionRemovesDependentRows(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	voter := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newDiscussionTestService(db)
	replySvc := newReplyTestService(db)
	ctx := context.Background()

	upvoteSvc := newUpvoteService(db)
	reply, err := replySvc.CreateReply(ctx, voter.ID, discussion.ID, dto.CreateReplyRequest{Content: "r"})
	require.NoError(t, err)
	_, err = upvoteSvc.ToggleDiscussionUpvote(ctx, voter.ID, discussion.ID)
	require.NoError(t, err)
	_, err = upvoteSvc.ToggleReplyUpvote(ctx, owner.ID, reply.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDiscussion(ctx, owner.ID, discussion.ID))

	var count int64
	db.Model(&model.Reply{}).Where("discussion_id = ?", discussion.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&model.Upvote{}).Where("target_id = ?", discussion.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&model.Upvote{}).Where("target_id = ? AND target_type = ?", reply.ID, model.UpvoteTargetReply).Count(&count)
	assert.Equal(t, int64(0), count, "upvotes on the discussion's replies must not be orphaned")
}

func TestMarkBestAnswerResolvesDiscussion(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	answerer := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newDiscussionTestService(db)
	replySvc := newReplyTestService(db)
	ctx := context.Background()

	answer, err := replySvc.CreateReply(ctx, answerer.ID, discussion.ID,
		dto.CreateReplyRequest{Content: "The limitation act answer"})
	require.NoError(t, err)

	res, err := svc.MarkBestAnswer(ctx, owner.ID, discussion.ID, answer.ID)
	require.NoError(t, err)
	assert.True(t, res.IsResolved)
	require.NotNil(t, res.BestAnswerID)
	assert.Equal(t, answer.ID, *res.BestAnswerID)

	tree, err := replySvc.GetReplyTree(ctx, nil, discussion.ID, dto.ReplyFilter{})
	require.NoError(t, err)
	require.Len(t, tree.Data, 1)
	assert.True(t, tree.Data[0].IsBestAnswer)
}

func TestMarkBestAnswerRejectsNonOwner(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	intruder := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newDiscussionTestService(db)
	replySvc := newReplyTestService(db)
	ctx := context.Background()

	answer, err := replySvc.CreateReply(ctx, intruder.ID, discussion.ID,
		dto.CreateReplyRequest{Content: "my own answer"})
	require.NoError(t, err)

	_, err = svc.MarkBestAnswer(ctx, intruder.ID, discussion.ID, answer.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	reloaded := reloadDiscussion(t, db, discussion.ID)
	assert.False(t, reloaded.IsResolved, "a rejected attempt must not move the state")
	assert.Nil(t, reloaded.BestAnswerID)
}

func TestMarkBestAnswerValidatesReply(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	other := seedDiscussion(t, db, owner.ID)
	svc := newDiscussionTestService(db)
	ctx := context.Background()

	_, err := svc.MarkBestAnswer(ctx, owner.ID, discussion.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	foreign := &model.Reply{DiscussionID: other.ID, UserID: owner.ID, Content: "elsewhere"}
	require.NoError(t, db.Create(foreign).Error)
	_, err = svc.MarkBestAnswer(ctx, owner.ID, discussion.ID, foreign.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	deleted := &model.Reply{DiscussionID: discussion.ID, UserID: owner.ID, Content: "gone", IsDeleted: true}
	require.NoError(t, db.Create(deleted).Error)
	_, err = svc.MarkBestAnswer(ctx, owner.ID, discussion.ID, deleted.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestHardDeleteBestAnswerReopensDiscussion(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	answerer := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newDiscussionTestService(db)
	replySvc := newReplyTestService(db)
	ctx := context.Background()

	answer, err := replySvc.CreateReply(ctx, answerer.ID, discussion.ID,
		dto.CreateReplyRequest{Content: "the accepted answer"})
	require.NoError(t, err)
	_, err = svc.MarkBestAnswer(ctx, owner.ID, discussion.ID, answer.ID)
	require.NoError(t, err)

	// Childless, so this removes the row outright
	require.NoError(t, replySvc.DeleteReply(ctx, answerer.ID, answer.ID))

	reloaded := reloadDiscussion(t, db, discussion.ID)
	assert.Nil(t, reloaded.BestAnswerID, "best_answer_id must not point at a removed row")
	assert.False(t, reloaded.IsResolved, "losing the accepted answer reopens the discussion")
}

func TestSoftDeleteBestAnswerReopensDiscussion(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	answerer := seedUser(t, db)
	discussion := seedDiscussion(t, db, owner.ID)
	svc := newDiscussionTestService(db)
	replySvc := newReplyTestService(db)
	ctx := context.Background()

	answer, err := replySvc.CreateReply(ctx, answerer.ID, discussion.ID,
		dto.CreateReplyRequest{Content: "the accepted answer"})
	require.NoError(t, err)
	_, err = replySvc.CreateReply(ctx, owner.ID, discussion.ID,
		dto.CreateReplyRequest{ParentReplyID: answer.ID.String(), Content: "thanks"})
	require.NoError(t, err)
	_, err = svc.MarkBestAnswer(ctx, owner.ID, discussion.ID, answer.ID)
	require.NoError(t, err)

	// Has a child, so this tombstones instead of removing
	require.NoError(t, replySvc.DeleteReply(ctx, answerer.ID, answer.ID))

	reloaded := reloadDiscussion(t, db, discussion.ID)
	assert.Nil(t, reloaded.BestAnswerID, "a tombstone cannot stay the accepted answer")
	assert.False(t, reloaded.IsResolved)

	tree, err := replySvc.GetReplyTree(ctx, nil, discussion.ID, dto.ReplyFilter{})
	require.NoError(t, err)
	require.Len(t, tree.Data, 1)
	assert.True(t, tree.Data[0].IsDeleted)
	assert.False(t, tree.Data[0].IsBestAnswer)
}
