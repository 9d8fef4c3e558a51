package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"nyayanet.in/forum/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Discussion{},
		&model.Reply{},
		&model.Upvote{},
		&model.Follow{},
		&model.Bookmark{},
		&model.Post{},
		&model.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	user := &model.User{
		Username:     "adv_" + suffix,
		Email:        suffix + "@nyayanet.in",
		PasswordHash: "x",
		FullName:     "Test Advocate",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedDiscussion(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *model.Discussion {
	t.Helper()

	discussion := &model.Discussion{
		UserID:         ownerID,
		Title:          "Scope of Article 21 in environmental matters",
		Description:    "Does the right to life extend to clean air?",
		Category:       model.CategoryConstitutional,
		DiscussionType: model.DiscussionTypeLegalQuery,
	}
	require.NoError(t, db.Create(discussion).Error)
	return discussion
}

func reloadDiscussion(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Discussion {
	t.Helper()

	var discussion model.Discussion
	require.NoError(t, db.First(&discussion, "id = ?", id).Error)
	return &discussion
}

func reloadReply(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Reply {
	t.Helper()

	var reply model.Reply
	require.NoError(t, db.First(&reply, "id = ?", id).Error)
	return &reply
}
