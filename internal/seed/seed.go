package seed

import (
	"context"
	"fmt"
	"log"

	"quill/internal/repository"
	"quill/internal/service"

	"gorm.io/gorm"
)

// DefaultPostCount is how many posts Seed creates when count is zero.
const DefaultPostCount = 25

// Seed wipes the posts table and fills it with generated content.
func Seed(db *gorm.DB, count int) error {
	log.Println("🌱 Starting database seeding...")

	if count <= 0 {
		count = DefaultPostCount
	}

	if err := clearData(db); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	svc := service.NewPostService(repository.NewPostRepository(db))
	factory := NewFactory()
	ctx := context.Background()

	created := 0
	for i := 0; i < count; i++ {
		input := factory.BuildPostInput()
		if _, err := svc.CreatePost(ctx, input); err != nil {
			return fmt.Errorf("failed to create post %d: %w", i+1, err)
		}
		created++
	}
	log.Printf("✓ Created %d posts", created)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	return db.Exec("DELETE FROM posts").Error
}
