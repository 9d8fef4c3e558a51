package service

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
	"nyayanet.in/forum/internal/model"
)

// ReconcileService recomputes the denormalized counters from the link and
// child tables. The write paths keep counters in the same transaction as the
// row change; this job catches whatever drift slips through anyway.
type ReconcileService interface {
	ReconcileCounters(ctx context.Context) error
	StartReconcileWorker(ctx context.Context, interval time.Duration)
}

type reconcileService struct {
	db *gorm.DB
}

func NewReconcileService(db *gorm.DB) ReconcileService {
	return &reconcileService{db: db}
}

func (s *reconcileService) ReconcileCounters(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE discussions SET reply_count = (
				SELECT COUNT(*) FROM replies
				WHERE replies.discussion_id = discussions.id AND replies.is_deleted = ?
			)`, false).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE discussions SET upvote_count = (
				SELECT COUNT(*) FROM upvotes
				WHERE upvotes.target_id = discussions.id AND upvotes.target_type = ?
			)`, model.UpvoteTargetDiscussion).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE discussions SET follower_count = (
				SELECT COUNT(*) FROM follows
				WHERE follows.discussion_id = discussions.id
			)`).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE discussions SET save_count = (
				SELECT COUNT(*) FROM bookmarks
				WHERE bookmarks.entity_id = discussions.id AND bookmarks.entity_type = ?
			)`, model.BookmarkEntityDiscussion).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE replies SET upvote_count = (
				SELECT COUNT(*) FROM upvotes
				WHERE upvotes.target_id = replies.id AND upvotes.target_type = ?
			)`, model.UpvoteTargetReply).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE replies SET reply_count = (
				SELECT COUNT(*) FROM replies AS children
				WHERE children.parent_reply_id = replies.id
			)`).Error; err != nil {
			return err
		}

		return tx.Exec(`
			UPDATE posts SET save_count = (
				SELECT COUNT(*) FROM bookmarks
				WHERE bookmarks.entity_id = posts.id AND bookmarks.entity_type = ?
			)`, model.BookmarkEntityPost).Error
	})
}

func (s *reconcileService) StartReconcileWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Println("running counter reconciliation...")
			if err := s.ReconcileCounters(ctx); err != nil {
				log.Printf("counter reconciliation failed: %v", err)
			}
		}
	}
}
