// Package testutil spins up disposable postgres instances and fixtures
// shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guxingjinguang/mdclub/internal/models"
)

// SetupTestDB starts a postgres container, runs the model migrations and
// returns a gorm handle. The container is terminated when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("mdclub_test"),
		tcpostgres.WithUsername("mdclub"),
		tcpostgres.WithPassword("mdclub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Question{},
		&models.Answer{},
		&models.Article{},
		&models.Comment{},
		&models.Topicable{},
		&models.Vote{},
		&models.Follow{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

// CreateUser inserts a user fixture.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// DisableUser marks an account disabled.
func DisableUser(t *testing.T, db *gorm.DB, userID int) {
	t.Helper()
	now := time.Now().UTC()
	if err := db.Model(&models.User{}).Where("id = ?", userID).
		Update("disabled_at", &now).Error; err != nil {
		t.Fatalf("Failed to disable user %d: %v", userID, err)
	}
}

// CreateArticle inserts an article fixture.
func CreateArticle(t *testing.T, db *gorm.DB, userID int, title string) models.Article {
	t.Helper()
	article := models.Article{Title: title, UserID: userID}
	if err := db.Create(&article).Error; err != nil {
		t.Fatalf("Failed to create article %s: %v", title, err)
	}
	return article
}

// CreateQuestion inserts a question fixture.
func CreateQuestion(t *testing.T, db *gorm.DB, userID int, title string) models.Question {
	t.Helper()
	question := models.Question{Title: title, UserID: userID}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("Failed to create question %s: %v", title, err)
	}
	return question
}
