package service

import (
	"context"
	"fmt"
	"testing"

	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService runs the whole stack against an in-memory sqlite
// database so slug uniqueness is enforced by a real unique index.
func newTestService(t *testing.T) *PostService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(database.PersistentModels()...))
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	return NewPostService(repository.NewPostRepository(db))
}

func TestIntegration_PostLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, CreatePostInput{
		Title:      "  My First Post  ",
		Content:    "This is the content of my first post.",
		Excerpt:    "A short teaser.",
		CoverImage: "https://example.com/cover.jpg",
		Tags:       models.TagList{"go", "web"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "My First Post", created.Title)
	assert.Equal(t, "my-first-post", created.Slug)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, fetched.Slug)
	assert.Equal(t, models.TagList{"go", "web"}, fetched.Tags)

	updated, err := svc.UpdatePost(ctx, created.ID, UpdatePostInput{
		Title:   "My First Post",
		Content: "Revised content for the first post.",
		Tags:    models.TagList{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "my-first-post", updated.Slug)
	assert.Equal(t, "Revised content for the first post.", updated.Content)

	deleted, err := svc.DeletePost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.GetPost(ctx, created.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestIntegration_SlugUniqueIndex(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var slugs []string
	for i := 0; i < 3; i++ {
		post, err := svc.CreatePost(ctx, validInput("Same Title"))
		require.NoError(t, err)
		slugs = append(slugs, post.Slug)
	}
	assert.Equal(t, []string{"same-title", "same-title-1", "same-title-2"}, slugs)
}

func TestIntegration_ListFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	posts := []CreatePostInput{
		{Title: "Go Concurrency Patterns", Content: "Channels and goroutines explained.", Tags: models.TagList{"go", "concurrency"}},
		{Title: "Cooking With Rust", Content: "Memory safety in the kitchen today.", Tags: models.TagList{"rust"}},
		{Title: "Plain Musings", Content: "Nothing technical in here at all.", Tags: models.TagList{}},
	}
	for _, p := range posts {
		_, err := svc.CreatePost(ctx, p)
		require.NoError(t, err)
	}

	bySearch, err := svc.ListPosts(ctx, ListPostsInput{Search: "goroutines"})
	require.NoError(t, err)
	require.Len(t, bySearch.Posts, 1)
	assert.Equal(t, "Go Concurrency Patterns", bySearch.Posts[0].Title)

	byTag, err := svc.ListPosts(ctx, ListPostsInput{Tag: "rust"})
	require.NoError(t, err)
	require.Len(t, byTag.Posts, 1)
	assert.Equal(t, "Cooking With Rust", byTag.Posts[0].Title)

	all, err := svc.ListPosts(ctx, ListPostsInput{})
	require.NoError(t, err)
	assert.Len(t, all.Posts, 3)
	assert.Equal(t, int64(3), all.Pagination.Total)
}

func TestIntegration_FiltersMatchLiterally(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	posts := []CreatePostInput{
		{Title: "Tagged abc", Content: "Nothing percent-related in here.", Tags: models.TagList{"abc"}},
		{Title: "Tagged a_c", Content: "Progress report: 100% complete.", Tags: models.TagList{"a_c"}},
	}
	for _, p := range posts {
		_, err := svc.CreatePost(ctx, p)
		require.NoError(t, err)
	}

	// "_" in a tag filter is a literal underscore, not a wildcard.
	byTag, err := svc.ListPosts(ctx, ListPostsInput{Tag: "a_c"})
	require.NoError(t, err)
	require.Len(t, byTag.Posts, 1)
	assert.Equal(t, "Tagged a_c", byTag.Posts[0].Title)

	// "%" in a search is a literal percent sign, not match-everything.
	bySearch, err := svc.ListPosts(ctx, ListPostsInput{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, bySearch.Posts, 1)
	assert.Equal(t, "Tagged a_c", bySearch.Posts[0].Title)
}

func TestIntegration_NewestFirstOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := svc.CreatePost(ctx, validInput(fmt.Sprintf("Post Number %d", i)))
		require.NoError(t, err)
	}

	page, err := svc.ListPosts(ctx, ListPostsInput{})
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)
	for i := 0; i < len(page.Posts)-1; i++ {
		assert.False(t, page.Posts[i].CreatedAt.Before(page.Posts[i+1].CreatedAt))
	}
}
