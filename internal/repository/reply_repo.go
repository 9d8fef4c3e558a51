package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/pkg/apperror"
)

type ReplyRepository interface {
	Create(ctx context.Context, reply *model.Reply) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reply, error)
	// FindAllByDiscussionID returns every reply row of the discussion,
	// soft-deleted ones included; the tree builder decides what survives.
	FindAllByDiscussionID(ctx context.Context, discussionID uuid.UUID) ([]*model.Reply, error)
	Update(ctx context.Context, reply *model.Reply) error
	SoftDelete(ctx context.Context, reply *model.Reply) error
	HardDeleteSubtree(ctx context.Context, reply *model.Reply) error
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Discussion{}).Where("id = ?", reply.DiscussionID).
			Updates(map[string]interface{}{
				"reply_count":      gorm.Expr("reply_count + ?", 1),
				"last_activity_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}).Error; err != nil {
			return err
		}
		if reply.ParentReplyID != nil {
			if err := tx.Model(&model.Reply{}).Where("id = ?", *reply.ParentReplyID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *replyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reply, error) {
	var reply model.Reply
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &reply, nil
}

func (r *replyRepository) FindAllByDiscussionID(ctx context.Context, discussionID uuid.UUID) ([]*model.Reply, error) {
	var replies []*model.Reply
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("discussion_id = ?", discussionID).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

func (r *replyRepository) Update(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Save(reply).Error
}

// SoftDelete keeps the row so children stay attached. The discussion counter
// tracks non-deleted replies, so it is decremented; the parent's direct-child
// counter tracks rows and is not. A tombstone cannot stay the best answer,
// so the discussion reopens if it was.
func (r *replyRepository) SoftDelete(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Reply{}).Where("id = ?", reply.ID).
			UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Discussion{}).Where("id = ?", reply.DiscussionID).
			UpdateColumn("reply_count", gorm.Expr("reply_count - ?", 1)).Error; err != nil {
			return err
		}
		return clearBestAnswer(tx, reply.DiscussionID, []uuid.UUID{reply.ID})
	})
}

// clearBestAnswer reopens the discussion when its accepted answer is among
// the removed replies, so best_answer_id never dangles.
func clearBestAnswer(tx *gorm.DB, discussionID uuid.UUID, replyIDs []uuid.UUID) error {
	return tx.Model(&model.Discussion{}).
		Where("id = ? AND best_answer_id IN ?", discussionID, replyIDs).
		Updates(map[string]interface{}{
			"best_answer_id": nil,
			"is_resolved":    false,
		}).Error
}

// HardDeleteSubtree removes the reply and every descendant, along with their
// upvote link rows, and settles the counters in the same transaction.
func (r *replyRepository) HardDeleteSubtree(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uuid.UUID{reply.ID}
		frontier := []uuid.UUID{reply.ID}
		for len(frontier) > 0 {
			var children []uuid.UUID
			if err := tx.Model(&model.Reply{}).
				Where("parent_reply_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		var liveCount int64
		if err := tx.Model(&model.Reply{}).
			Where("id IN ? AND is_deleted = ?", ids, false).
			Count(&liveCount).Error; err != nil {
			return err
		}

		if err := tx.Where("target_id IN ? AND target_type = ?", ids, model.UpvoteTargetReply).
			Delete(&model.Upvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		if err := clearBestAnswer(tx, reply.DiscussionID, ids); err != nil {
			return err
		}

		if liveCount > 0 {
			if err := tx.Model(&model.Discussion{}).Where("id = ?", reply.DiscussionID).
				UpdateColumn("reply_count", gorm.Expr("reply_count - ?", liveCount)).Error; err != nil {
				return err
			}
		}
		if reply.ParentReplyID != nil {
			if err := tx.Model(&model.Reply{}).Where("id = ?", *reply.ParentReplyID).
				UpdateColumn("reply_count", gorm.Expr("reply_count - ?", 1)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *replyRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Reply{}).
		Where("parent_reply_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
