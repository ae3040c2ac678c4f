package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/comment-moderation-api/internal/database"
	"github.com/comment-moderation-api/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

const articleColumns = `id, slug, title, enable_comments, publication_date, created_at, updated_at`

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.EnableComments, article.PublicationDate,
		article.CreatedAt, article.UpdatedAt,
	)
	return err
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)
}

func (r *articleRepo) getOne(ctx context.Context, query string, arg string) (*models.Article, error) {
	var article models.Article
	var publicationDate sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&article.ID, &article.Slug, &article.Title, &article.EnableComments, &publicationDate,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if publicationDate.Valid {
		article.PublicationDate = &publicationDate.Time
	}
	return &article, nil
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}
