package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/model"
)

type FollowRepository interface {
	Toggle(ctx context.Context, userID, discussionID uuid.UUID) (bool, error)
	Count(ctx context.Context, discussionID uuid.UUID) (int64, error)
	IsFollowing(ctx context.Context, userID, discussionID uuid.UUID) (bool, error)
	FollowerIDs(ctx context.Context, discussionID uuid.UUID) ([]uuid.UUID, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Toggle(ctx context.Context, userID, discussionID uuid.UUID) (bool, error) {
	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND discussion_id = ?", userID, discussionID).
			Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return tx.Model(&model.Discussion{}).Where("id = ?", discussionID).
				UpdateColumn("follower_count", gorm.Expr("follower_count - ?", 1)).Error
		}

		follow := &model.Follow{UserID: userID, DiscussionID: discussionID}
		if err := tx.Create(follow).Error; err != nil {
			return err
		}
		active = true
		return tx.Model(&model.Discussion{}).Where("id = ?", discussionID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + ?", 1)).Error
	})
	return active, err
}

func (r *followRepository) Count(ctx context.Context, discussionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("discussion_id = ?", discussionID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) IsFollowing(ctx context.Context, userID, discussionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("user_id = ? AND discussion_id = ?", userID, discussionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, discussionID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("discussion_id = ?", discussionID).
		Pluck("user_id", &ids).Error
	return ids, err
}
