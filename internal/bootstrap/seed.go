package bootstrap

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/model"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Discussion{},
		&model.Reply{},
		&model.Upvote{},
		&model.Follow{},
		&model.Bookmark{},
		&model.Post{},
		&model.Notification{},
	)
}

// SeedDemoUser provisions a known account for development environments.
// Token issuance lives in the auth service; this only guarantees a subject
// for locally minted JWTs to resolve to.
func SeedDemoUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "demo@nyayanet.in").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("demo user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	practice := "Constitutional Law"
	user := model.User{
		Username:     "demoadvocate",
		Email:        "demo@nyayanet.in",
		PasswordHash: string(hashed),
		FullName:     "Demo Advocate",
		Practice:     &practice,
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	log.Println("demo user seeded successfully")
	log.Println("   Email: demo@nyayanet.in")
	log.Println("   Password: demo1234")

	return nil
}
