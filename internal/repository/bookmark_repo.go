package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/model"
)

type BookmarkRepository interface {
	Toggle(ctx context.Context, userID, entityID uuid.UUID, entityType string) (bool, error)
	Count(ctx context.Context, entityID uuid.UUID, entityType string) (int64, error)
	IsSaved(ctx context.Context, userID, entityID uuid.UUID, entityType string) (bool, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Toggle(ctx context.Context, userID, entityID uuid.UUID, entityType string) (bool, error) {
	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND entity_id = ? AND entity_type = ?", userID, entityID, entityType).
			Delete(&model.Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return applySaveDelta(tx, entityID, entityType, -1)
		}

		bookmark := &model.Bookmark{UserID: userID, EntityID: entityID, EntityType: entityType}
		if err := tx.Create(bookmark).Error; err != nil {
			return err
		}
		active = true
		return applySaveDelta(tx, entityID, entityType, 1)
	})
	return active, err
}

// AI results and law sections live outside this service; the bookmark row is
// the only state kept for them.
func applySaveDelta(tx *gorm.DB, entityID uuid.UUID, entityType string, delta int) error {
	switch entityType {
	case model.BookmarkEntityDiscussion:
		return tx.Model(&model.Discussion{}).Where("id = ?", entityID).
			UpdateColumn("save_count", gorm.Expr("save_count + ?", delta)).Error
	case model.BookmarkEntityPost:
		return tx.Model(&model.Post{}).Where("id = ?", entityID).
			UpdateColumn("save_count", gorm.Expr("save_count + ?", delta)).Error
	}
	return nil
}

func (r *bookmarkRepository) Count(ctx context.Context, entityID uuid.UUID, entityType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("entity_id = ? AND entity_type = ?", entityID, entityType).
		Count(&count).Error
	return count, err
}

func (r *bookmarkRepository) IsSaved(ctx context.Context, userID, entityID uuid.UUID, entityType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ? AND entity_id = ? AND entity_type = ?", userID, entityID, entityType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
