package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/model"
)

type UpvoteRepository interface {
	// Toggle removes the link row if present, inserts it otherwise, and moves
	// the denormalized counter in the same transaction. Returns the new state.
	// A concurrent duplicate insert surfaces as gorm.ErrDuplicatedKey.
	Toggle(ctx context.Context, userID, targetID uuid.UUID, targetType string) (bool, error)
	Count(ctx context.Context, targetID uuid.UUID, targetType string) (int64, error)
	HasUpvoted(ctx context.Context, userID, targetID uuid.UUID, targetType string) (bool, error)
	// UpvotedReplyIDs lists the replies of a discussion the user has upvoted,
	// so a tree render checks them in one query.
	UpvotedReplyIDs(ctx context.Context, userID, discussionID uuid.UUID) ([]uuid.UUID, error)
}

type upvoteRepository struct {
	db *gorm.DB
}

func NewUpvoteRepository(db *gorm.DB) UpvoteRepository {
	return &upvoteRepository{db: db}
}

func (r *upvoteRepository) Toggle(ctx context.Context, userID, targetID uuid.UUID, targetType string) (bool, error) {
	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
			Delete(&model.Upvote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return applyUpvoteDelta(tx, targetID, targetType, -1)
		}

		upvote := &model.Upvote{UserID: userID, TargetID: targetID, TargetType: targetType}
		if err := tx.Create(upvote).Error; err != nil {
			return err
		}
		active = true
		return applyUpvoteDelta(tx, targetID, targetType, 1)
	})
	return active, err
}

func applyUpvoteDelta(tx *gorm.DB, targetID uuid.UUID, targetType string, delta int) error {
	switch targetType {
	case model.UpvoteTargetDiscussion:
		return tx.Model(&model.Discussion{}).Where("id = ?", targetID).
			UpdateColumn("upvote_count", gorm.Expr("upvote_count + ?", delta)).Error
	case model.UpvoteTargetReply:
		return tx.Model(&model.Reply{}).Where("id = ?", targetID).
			UpdateColumn("upvote_count", gorm.Expr("upvote_count + ?", delta)).Error
	}
	return nil
}

func (r *upvoteRepository) Count(ctx context.Context, targetID uuid.UUID, targetType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Upvote{}).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Count(&count).Error
	return count, err
}

func (r *upvoteRepository) HasUpvoted(ctx context.Context, userID, targetID uuid.UUID, targetType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Upvote{}).
		Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *upvoteRepository) UpvotedReplyIDs(ctx context.Context, userID, discussionID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Upvote{}).
		Joins("JOIN replies ON replies.id = upvotes.target_id").
		Where("upvotes.user_id = ? AND upvotes.target_type = ? AND replies.discussion_id = ?",
			userID, model.UpvoteTargetReply, discussionID).
		Pluck("upvotes.target_id", &ids).Error
	return ids, err
}
