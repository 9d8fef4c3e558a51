package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/pkg/apperror"
)

type DiscussionRepository interface {
	Create(ctx context.Context, discussion *model.Discussion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Discussion, error)
	FindAll(ctx context.Context, filter dto.DiscussionFilter) ([]*model.Discussion, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Discussion, error)
	Update(ctx context.Context, discussion *model.Discussion) error
	Delete(ctx context.Context, id uuid.UUID) error
	MarkResolved(ctx context.Context, discussionID, replyID uuid.UUID) error
	TouchActivity(ctx context.Context, id uuid.UUID) error
	AddViews(ctx context.Context, id uuid.UUID, delta int) error
}

type discussionRepository struct {
	db *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) Create(ctx context.Context, discussion *model.Discussion) error {
	return r.db.WithContext(ctx).Create(discussion).Error
}

func (r *discussionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Discussion, error) {
	var discussion model.Discussion
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&discussion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &discussion, nil
}

func (r *discussionRepository) FindAll(ctx context.Context, filter dto.DiscussionFilter) ([]*model.Discussion, int64, error) {
	var discussions []*model.Discussion
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Discussion{}).Preload("User")

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Type != "" {
		query = query.Where("discussion_type = ?", filter.Type)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.SortBy {
	case "popular":
		query = query.Order("upvote_count DESC, created_at DESC")
	case "active":
		query = query.Order("last_activity_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Offset(offset).Limit(filter.Limit).Find(&discussions).Error; err != nil {
		return nil, 0, err
	}

	return discussions, total, nil
}

func (r *discussionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Discussion, error) {
	var discussions []*model.Discussion
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Find(&discussions).Error
	return discussions, err
}

func (r *discussionRepository) Update(ctx context.Context, discussion *model.Discussion) error {
	return r.db.WithContext(ctx).Save(discussion).Error
}

func (r *discussionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Link rows first, then replies, then the discussion row
		if err := tx.Where("target_id = ? AND target_type = ?", id, model.UpvoteTargetDiscussion).
			Delete(&model.Upvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("discussion_id = ?", id).Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entity_id = ? AND entity_type = ?", id, model.BookmarkEntityDiscussion).
			Delete(&model.Bookmark{}).Error; err != nil {
			return err
		}
		// Upvotes on the discussion's replies would be orphaned once the
		// reply rows go, so they leave in the same transaction
		if err := tx.Where("target_type = ? AND target_id IN (?)", model.UpvoteTargetReply,
			tx.Model(&model.Reply{}).Select("id").Where("discussion_id = ?", id),
		).Delete(&model.Upvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("discussion_id = ?", id).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Discussion{}, "id = ?", id).Error
	})
}

func (r *discussionRepository) MarkResolved(ctx context.Context, discussionID, replyID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Discussion{}).
		Where("id = ?", discussionID).
		Updates(map[string]interface{}{
			"best_answer_id": replyID,
			"is_resolved":    true,
		}).Error
}

func (r *discussionRepository) TouchActivity(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Discussion{}).
		Where("id = ?", id).
		UpdateColumn("last_activity_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *discussionRepository) AddViews(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&model.Discussion{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", delta)).Error
}
