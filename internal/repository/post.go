// Package repository provides the data access layer for posts.
package repository

import (
	"context"
	"strings"

	"quill/internal/cache"
	"quill/internal/models"

	"gorm.io/gorm"
)

// ListParams are the store-side filters for listing posts.
type ListParams struct {
	Search string
	Tag    string
	Limit  int
	Offset int
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, params ListParams) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
}

// postRepository implements PostRepository on GORM.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// listPage is the cached form of an unfiltered first page.
type listPage struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
}

func (r *postRepository) List(ctx context.Context, params ListParams) ([]*models.Post, int64, error) {
	// Only the unfiltered first page is cached; filtered and deep pages
	// always hit the store.
	if params.Search == "" && params.Tag == "" && params.Offset == 0 {
		var page listPage
		err := cache.Aside(ctx, cache.PostsListPageKey(params.Limit), &page, cache.ListTTL, func() error {
			posts, total, err := r.list(ctx, params)
			if err != nil {
				return err
			}
			page = listPage{Posts: posts, Total: total}
			return nil
		})
		if err != nil {
			return nil, 0, err
		}
		return page.Posts, page.Total, nil
	}
	return r.list(ctx, params)
}

func (r *postRepository) list(ctx context.Context, params ListParams) ([]*models.Post, int64, error) {
	var total int64
	if err := r.applyFilters(r.db.WithContext(ctx).Model(&models.Post{}), params).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := r.applyFilters(r.db.WithContext(ctx).Model(&models.Post{}), params).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// likeEscaper neutralizes LIKE metacharacters in user input so a search for
// "100%" or a tag of "a_c" matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyFilters appends the search and tag predicates. LOWER(...) LIKE keeps
// the search case-insensitive on both Postgres and sqlite; the tag predicate
// matches the quoted entry inside the JSON-serialized tags column. The
// explicit ESCAPE clause is required on sqlite, which has no default
// escape character.
func (r *postRepository) applyFilters(db *gorm.DB, params ListParams) *gorm.DB {
	if params.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(params.Search)) + "%"
		db = db.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'`, like, like)
	}
	if params.Tag != "" {
		db = db.Where(`tags LIKE ? ESCAPE '\'`, `%"`+likeEscaper.Replace(params.Tag)+`"%`)
	}
	return db
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
