package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	srv := NewServerWithDeps(&config.Config{Env: "test"}, db, nil)
	app := fiber.New()
	srv.SetupRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func createPost(t *testing.T, app *fiber.App, title string) models.Post {
	t.Helper()

	status, body := doJSON(t, app, "POST", "/posts", map[string]any{
		"title":   title,
		"content": "Content long enough for the post body.",
	})
	require.Equal(t, fiber.StatusCreated, status)

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	var post models.Post
	require.NoError(t, json.Unmarshal(raw, &post))
	return post
}

func TestHealthEndpoints(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, "GET", "/health", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `"OK"`, string(body["status"]))

	status, _ = doJSON(t, app, "GET", "/health/live", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, app, "GET", "/health/ready", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body["checks"]), "database")
}

func TestCreatePostEndpoint(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, "POST", "/posts", map[string]any{
		"title":      "  My First Post  ",
		"content":    "This is the content of my first post.",
		"coverImage": "https://example.com/cover.PNG",
		"tags":       []string{"go", "web"},
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `"My First Post"`, string(body["title"]))
	assert.JSONEq(t, `"my-first-post"`, string(body["slug"]))
	assert.JSONEq(t, `["go","web"]`, string(body["tags"]))
	assert.Contains(t, body, "createdAt")
	assert.Contains(t, body, "coverImage")
}

func TestCreatePostEndpoint_CommaSeparatedTags(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, "POST", "/posts", map[string]any{
		"title":   "Tagged Post",
		"content": "Content long enough for the post body.",
		"tags":    "go, web , ",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `["go","web"]`, string(body["tags"]))
}

func TestCreatePostEndpoint_Validation(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"title too short", map[string]any{"title": "Hi", "content": "Content long enough."}},
		{"content too short", map[string]any{"title": "Valid Title", "content": "short"}},
		{"bad cover image", map[string]any{"title": "Valid Title", "content": "Content long enough.", "coverImage": "ftp://example.com/a.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, "POST", "/posts", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.JSONEq(t, fmt.Sprintf("%q", models.CodeValidation), string(body["code"]))
		})
	}
}

func TestGetPostEndpoint(t *testing.T) {
	app := setupTestApp(t)
	created := createPost(t, app, "Readable Post")

	status, body := doJSON(t, app, "GET", fmt.Sprintf("/posts/%d", created.ID), nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `"readable-post"`, string(body["slug"]))
}

func TestGetPostEndpoint_Errors(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, "GET", "/posts/9999", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, fmt.Sprintf("%q", models.CodeNotFound), string(body["code"]))

	for _, raw := range []string{"abc", "12.5", "-3"} {
		status, body = doJSON(t, app, "GET", "/posts/"+raw, nil)
		assert.Equal(t, fiber.StatusBadRequest, status, "id %q", raw)
		assert.JSONEq(t, fmt.Sprintf("%q", models.CodeMalformedID), string(body["code"]))
	}
}

func TestListPostsEndpoint(t *testing.T) {
	app := setupTestApp(t)
	for i := 1; i <= 3; i++ {
		createPost(t, app, fmt.Sprintf("Listed Post %d", i))
	}

	status, body := doJSON(t, app, "GET", "/posts?page=1&limit=2", nil)
	require.Equal(t, fiber.StatusOK, status)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(body["posts"], &posts))
	assert.Len(t, posts, 2)
	assert.Equal(t, "Listed Post 3", posts[0].Title)

	var pagination struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(body["pagination"], &pagination))
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 2, pagination.Limit)
	assert.Equal(t, int64(3), pagination.Total)
	assert.Equal(t, 2, pagination.Pages)
}

func TestListPostsEndpoint_QueryHandling(t *testing.T) {
	app := setupTestApp(t)

	// Non-numeric paging parameters are rejected.
	status, body := doJSON(t, app, "GET", "/posts?page=abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, fmt.Sprintf("%q", models.CodeValidation), string(body["code"]))

	status, _ = doJSON(t, app, "GET", "/posts?limit=ten", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// Out-of-range values are clamped, not rejected.
	status, body = doJSON(t, app, "GET", "/posts?limit=100", nil)
	require.Equal(t, fiber.StatusOK, status)
	var pagination struct {
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(body["pagination"], &pagination))
	assert.Equal(t, 50, pagination.Limit)

	// An empty store still lists.
	status, body = doJSON(t, app, "GET", "/posts", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body["posts"]))
}

func TestUpdatePostEndpoint(t *testing.T) {
	app := setupTestApp(t)
	created := createPost(t, app, "Original Title")

	status, body := doJSON(t, app, "PUT", fmt.Sprintf("/posts/%d", created.ID), map[string]any{
		"title":   "Renamed Title",
		"content": "Updated content for this post.",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `"Renamed Title"`, string(body["title"]))
	assert.JSONEq(t, `"renamed-title"`, string(body["slug"]))

	status, _ = doJSON(t, app, "PUT", "/posts/9999", map[string]any{
		"title":   "Valid Title",
		"content": "Updated content for this post.",
	})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDeletePostEndpoint(t *testing.T) {
	app := setupTestApp(t)
	created := createPost(t, app, "Doomed Post")

	status, body := doJSON(t, app, "DELETE", fmt.Sprintf("/posts/%d", created.ID), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `"Post deleted successfully"`, string(body["message"]))
	assert.Contains(t, string(body["deletedPost"]), `"doomed-post"`)

	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/posts/%d", created.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/posts/%d", created.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDuplicateTitlesGetDistinctSlugs(t *testing.T) {
	app := setupTestApp(t)

	first := createPost(t, app, "Hello World")
	second := createPost(t, app, "Hello World")
	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
}
