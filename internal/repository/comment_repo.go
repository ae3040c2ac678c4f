package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comment-moderation-api/internal/database"
	"github.com/comment-moderation-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

const commentColumns = `id, article_id, user_id, user_name, user_email, user_url, comment,
	ip_address, user_agent, referrer, is_public, is_removed, decision, reason, submit_date, updated_at`

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (` + commentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	now := time.Now()
	if comment.SubmitDate.IsZero() {
		comment.SubmitDate = now
	}
	comment.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.UserID, comment.UserName, comment.UserEmail, comment.UserURL, comment.Body,
		comment.IPAddress, comment.UserAgent, comment.Referrer, comment.IsPublic, comment.IsRemoved,
		string(comment.Decision), comment.Reason, comment.SubmitDate, comment.UpdatedAt,
	)
	return err
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns comments matching the filter, newest first
func (r *commentRepo) List(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.StreamAll(ctx, filter, func(c *models.Comment) error {
		comments = append(comments, c)
		return nil
	})
	return comments, err
}

// UpdateStatus changes the visibility flags of a comment
func (r *commentRepo) UpdateStatus(ctx context.Context, id string, isPublic, isRemoved bool, decision models.Decision) error {
	query := `UPDATE comments SET is_public = $2, is_removed = $3, decision = $4, updated_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, isPublic, isRemoved, string(decision), time.Now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of comments matching the filter
func (r *commentRepo) Count(ctx context.Context, filter models.CommentFilter) (int, error) {
	where, args := whereClause(filter)
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments"+where, args...).Scan(&count)
	return count, err
}

// StreamAll streams comments matching the filter, newest first
func (r *commentRepo) StreamAll(ctx context.Context, filter models.CommentFilter, callback func(*models.Comment) error) error {
	where, args := whereClause(filter)
	query := `SELECT ` + commentColumns + ` FROM comments` + where + ` ORDER BY submit_date DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return err
		}
		if err := callback(comment); err != nil {
			return err
		}
	}

	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var userID sql.NullString
	var decision string

	err := row.Scan(
		&comment.ID, &comment.ArticleID, &userID, &comment.UserName, &comment.UserEmail, &comment.UserURL, &comment.Body,
		&comment.IPAddress, &comment.UserAgent, &comment.Referrer, &comment.IsPublic, &comment.IsRemoved,
		&decision, &comment.Reason, &comment.SubmitDate, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		comment.UserID = &userID.String
	}
	comment.Decision = models.Decision(decision)
	return &comment, nil
}

// whereClause builds a parameterised WHERE clause for a comment filter
func whereClause(filter models.CommentFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ArticleID != "" {
		add("article_id = $%d", filter.ArticleID)
	}
	if filter.UserName != "" {
		add("user_name ILIKE $%d", "%"+filter.UserName+"%")
	}
	if filter.Decision != "" {
		add("decision = $%d", string(filter.Decision))
	}
	if filter.IsPublic != nil {
		add("is_public = $%d", *filter.IsPublic)
	}
	if filter.IsRemoved != nil {
		add("is_removed = $%d", *filter.IsRemoved)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
