package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/comment-moderation-api/internal/auth"
	"github.com/comment-moderation-api/internal/config"
	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/comment-moderation-api/internal/notify"
	"github.com/comment-moderation-api/internal/repository"
	"github.com/rs/zerolog"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateSlug   = errors.New("article slug already exists")
	ErrNotAdmin        = errors.New("user is not an active admin")
	ErrDuplicateEmail  = errors.New("user email already exists")
)

// ValidationErrors is returned when a submission or article fails validation
type ValidationErrors struct {
	Errors []models.ValidationError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// SubmitResult is the outcome of a comment submission
type SubmitResult struct {
	Comment *models.Comment
	Result  moderation.Result
	Stored  bool
}

// Stats holds counts shown on the stats endpoint
type Stats struct {
	Articles           int `json:"articles"`
	Comments           int `json:"comments"`
	Public             int `json:"public"`
	AwaitingModeration int `json:"awaiting_moderation"`
	Removed            int `json:"removed"`
}

// CommentService defines the public comment operations
type CommentService interface {
	Submit(ctx context.Context, articleID string, sub *models.CommentSubmission, meta models.RequestMeta) (*SubmitResult, error)
	ListPublic(ctx context.Context, articleID string, limit, offset int) ([]*models.Comment, error)
}

// AdminService defines the staff operations behind the admin routes
type AdminService interface {
	ListComments(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, int, error)
	Approve(ctx context.Context, id string) (*models.Comment, error)
	Remove(ctx context.Context, id string) (*models.Comment, error)
	MarkSpam(ctx context.Context, id string) (*models.Comment, error)
	MarkHam(ctx context.Context, id string) (*models.Comment, error)
	CreateArticle(ctx context.Context, article *models.Article) error
	ExportComments(ctx context.Context, w http.ResponseWriter, filter models.CommentFilter, format string) error
	Stats(ctx context.Context) (*Stats, error)
	CreateStaff(ctx context.Context, user *models.User) error
	IssueToken(ctx context.Context, email string) (string, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// SpamReporter sends moderator feedback back to the spam service
type SpamReporter interface {
	SubmitSpam(ctx context.Context, check moderation.SpamCheck) error
	SubmitHam(ctx context.Context, check moderation.SpamCheck) error
}

// Services holds all service interfaces
type Services struct {
	Comment CommentService
	Admin   AdminService
}

// Deps are the collaborators the services are built from.
// Reporter may be nil when Akismet is disabled, Notifier defaults to notify.Nop.
type Deps struct {
	Repos     *repository.Repositories
	Moderator *moderation.Moderator
	Reporter  SpamReporter
	Notifier  notify.Notifier
	Tokens    *auth.JWTService
}

// NewServices creates all services
func NewServices(deps Deps, cfg *config.Config, log zerolog.Logger) *Services {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	links := permalinker(cfg.Server.PublicURL)

	return &Services{
		Comment: newCommentService(deps.Repos, deps.Moderator, deps.Notifier, links, log),
		Admin:   newAdminService(deps.Repos, deps.Reporter, deps.Tokens, links, log),
	}
}

// permalinker builds the public URL of an article from its slug
type permalinker string

func (p permalinker) For(article *models.Article) string {
	if p == "" || article == nil {
		return ""
	}
	return fmt.Sprintf("%s/articles/%s", strings.TrimRight(string(p), "/"), article.Slug)
}

// commentCheck rebuilds the spam check payload from a stored comment
func commentCheck(comment *models.Comment, permalink string) moderation.SpamCheck {
	return moderation.SpamCheck{
		Body:        comment.Body,
		Author:      comment.UserName,
		AuthorEmail: comment.UserEmail,
		AuthorURL:   comment.UserURL,
		UserIP:      comment.IPAddress,
		UserAgent:   comment.UserAgent,
		Referrer:    comment.Referrer,
		Permalink:   permalink,
		CommentType: "comment",
	}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
