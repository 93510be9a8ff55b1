package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const (
	// DefaultPageSize is used when the client omits or under-specifies limit.
	DefaultPageSize = 10
	// MaxPageSize caps how many posts a single page may return.
	MaxPageSize = 50

	// maxSlugRetries bounds how many times a create is retried when the
	// unique index rejects a slug that was free at probe time.
	maxSlugRetries = 3
)

// CreatePostInput carries the client-supplied fields for a new post.
// Tags accepts either a JSON array or a comma-separated string.
type CreatePostInput struct {
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Excerpt    string         `json:"excerpt"`
	CoverImage string         `json:"coverImage"`
	Tags       models.TagList `json:"tags"`
}

// UpdatePostInput carries the full replacement state for an existing post.
type UpdatePostInput struct {
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Excerpt    string         `json:"excerpt"`
	CoverImage string         `json:"coverImage"`
	Tags       models.TagList `json:"tags"`
}

// ListPostsInput holds already-parsed listing parameters. Values outside
// the accepted ranges are clamped, not rejected.
type ListPostsInput struct {
	Page   int
	Limit  int
	Search string
	Tag    string
}

// Pagination describes the page window of a listing response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// PostPage is one page of posts plus its pagination metadata.
type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

// PostService implements the post lifecycle: validation, slug assignment,
// persistence, and listing.
type PostService struct {
	repo repository.PostRepository
}

func NewPostService(repo repository.PostRepository) *PostService {
	return &PostService{repo: repo}
}

// CreatePost validates the input, assigns a unique slug, and persists the
// post. A duplicate-slug rejection from the store triggers a bounded
// re-probe so concurrent creates of the same title all succeed.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	fields, problems := validation.NormalizePost(validation.PostFields{
		Title:      input.Title,
		Content:    input.Content,
		Excerpt:    input.Excerpt,
		CoverImage: input.CoverImage,
		Tags:       []string(input.Tags),
	})
	if len(problems) > 0 {
		return nil, models.NewValidationError(strings.Join(problems, ", "))
	}

	var lastErr error
	for attempt := 0; attempt <= maxSlugRetries; attempt++ {
		slug, err := s.resolveSlug(ctx, fields.Title, 0)
		if err != nil {
			return nil, err
		}

		post := &models.Post{
			Title:      fields.Title,
			Slug:       slug,
			Content:    fields.Content,
			Excerpt:    fields.Excerpt,
			CoverImage: fields.CoverImage,
			Tags:       models.TagList(fields.Tags),
		}

		err = s.repo.Create(ctx, post)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Lost the race for this slug. Probe again with the fresh state.
		lastErr = err
	}
	return nil, lastErr
}

// GetPost returns a single post by ID.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost replaces the mutable fields of an existing post. The slug is
// recomputed only when the title actually changed, so updates that keep
// the title keep the slug.
func (s *PostService) UpdatePost(ctx context.Context, id uint, input UpdatePostInput) (*models.Post, error) {
	fields, problems := validation.NormalizePost(validation.PostFields{
		Title:      input.Title,
		Content:    input.Content,
		Excerpt:    input.Excerpt,
		CoverImage: input.CoverImage,
		Tags:       []string(input.Tags),
	})
	if len(problems) > 0 {
		return nil, models.NewValidationError(strings.Join(problems, ", "))
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}

	titleChanged := fields.Title != post.Title

	post.Title = fields.Title
	post.Content = fields.Content
	post.Excerpt = fields.Excerpt
	post.CoverImage = fields.CoverImage
	post.Tags = models.TagList(fields.Tags)

	var lastErr error
	for attempt := 0; attempt <= maxSlugRetries; attempt++ {
		if titleChanged {
			slug, err := s.resolveSlug(ctx, fields.Title, post.ID)
			if err != nil {
				return nil, err
			}
			post.Slug = slug
		}

		err := s.repo.Update(ctx, post)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || !titleChanged {
			return nil, err
		}
		// Another writer took the new slug between probe and save.
		lastErr = err
	}
	return nil, lastErr
}

// DeletePost removes a post and returns its final state.
func (s *PostService) DeletePost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns a page of posts, newest first. Page and limit are
// clamped into their valid ranges rather than rejected.
func (s *PostService) ListPosts(ctx context.Context, input ListPostsInput) (*PostPage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	posts, total, err := s.repo.List(ctx, repository.ListParams{
		Search: input.Search,
		Tag:    input.Tag,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return &PostPage{
		Posts: posts,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// resolveSlug turns a title into a slug that no other post holds,
// probing base, base-1, base-2, ... until a free one is found.
// excludeID lets an update keep its own slug.
func (s *PostService) resolveSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	base := validation.Slugify(title)

	span, ctx := observability.NewSpan(ctx, "slug.resolve")
	defer span.End()
	span.AddAttributes(attribute.String("slug.base", base))

	slug := base
	for i := 1; ; i++ {
		taken, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			span.SetError(err)
			return "", err
		}
		if !taken {
			span.AddAttributes(
				attribute.String("slug.assigned", slug),
				attribute.Int("slug.probes", i),
			)
			return slug, nil
		}
		middleware.SlugCollisions.Inc()
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
