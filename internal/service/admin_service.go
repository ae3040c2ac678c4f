package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/comment-moderation-api/internal/auth"
	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/repository"
	"github.com/comment-moderation-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// adminService is the concrete implementation of AdminService
type adminService struct {
	repos    *repository.Repositories
	reporter SpamReporter
	tokens   *auth.JWTService
	links    permalinker
	log      zerolog.Logger
	now      func() time.Time
}

// newAdminService creates a new AdminService
func newAdminService(repos *repository.Repositories, reporter SpamReporter, tokens *auth.JWTService, links permalinker, log zerolog.Logger) *adminService {
	return &adminService{
		repos:    repos,
		reporter: reporter,
		tokens:   tokens,
		links:    links,
		log:      log.With().Str("service", "admin").Logger(),
		now:      time.Now,
	}
}

// ListComments returns one page of comments matching the filter and the total match count
func (s *adminService) ListComments(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, int, error) {
	filter.UserName = strings.TrimSpace(filter.UserName)
	if filter.ArticleID != "" && !validation.IsValidUUID(filter.ArticleID) {
		return nil, 0, &ValidationErrors{Errors: []models.ValidationError{
			{Field: "article_id", Message: "invalid UUID format", Value: filter.ArticleID},
		}}
	}
	filter.Limit = clampLimit(filter.Limit, 50, 500)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	comments, err := s.repos.Comment.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	total, err := s.repos.Comment.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return comments, total, nil
}

// Approve makes a held or removed comment public
func (s *adminService) Approve(ctx context.Context, id string) (*models.Comment, error) {
	return s.setStatus(ctx, id, true, false, models.DecisionAllow)
}

// Remove hides a comment without deleting it
func (s *adminService) Remove(ctx context.Context, id string) (*models.Comment, error) {
	return s.setStatus(ctx, id, false, true, models.DecisionSoftDelete)
}

// MarkSpam removes a comment and reports it as spam
func (s *adminService) MarkSpam(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.setStatus(ctx, id, false, true, models.DecisionSoftDelete)
	if err != nil {
		return nil, err
	}
	if s.reporter != nil {
		if err := s.reporter.SubmitSpam(ctx, commentCheck(comment, s.permalink(ctx, comment))); err != nil {
			s.log.Warn().Err(err).Str("comment_id", id).Msg("Failed to report spam")
		}
	}
	return comment, nil
}

// MarkHam approves a comment and reports it as a false positive
func (s *adminService) MarkHam(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.setStatus(ctx, id, true, false, models.DecisionAllow)
	if err != nil {
		return nil, err
	}
	if s.reporter != nil {
		if err := s.reporter.SubmitHam(ctx, commentCheck(comment, s.permalink(ctx, comment))); err != nil {
			s.log.Warn().Err(err).Str("comment_id", id).Msg("Failed to report ham")
		}
	}
	return comment, nil
}

func (s *adminService) setStatus(ctx context.Context, id string, isPublic, isRemoved bool, decision models.Decision) (*models.Comment, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrCommentNotFound
	}
	comment, err := s.repos.Comment.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}

	if err := s.repos.Comment.UpdateStatus(ctx, id, isPublic, isRemoved, decision); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	comment.IsPublic = isPublic
	comment.IsRemoved = isRemoved
	comment.Decision = decision
	comment.UpdatedAt = s.now()

	s.log.Info().
		Str("comment_id", id).
		Str("decision", string(decision)).
		Bool("is_public", isPublic).
		Bool("is_removed", isRemoved).
		Msg("Comment status changed")
	return comment, nil
}

func (s *adminService) permalink(ctx context.Context, comment *models.Comment) string {
	article, err := s.repos.Article.GetByID(ctx, comment.ArticleID)
	if err != nil || article == nil {
		return ""
	}
	return s.links.For(article)
}

// CreateArticle validates and stores a new article. An empty ID is generated.
func (s *adminService) CreateArticle(ctx context.Context, article *models.Article) error {
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	article.Slug = strings.TrimSpace(article.Slug)
	if errs := validation.ValidateArticle(article); len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}

	existing, err := s.repos.Article.GetBySlug(ctx, article.Slug)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if existing != nil {
		return ErrDuplicateSlug
	}

	now := s.now()
	article.CreatedAt = now
	article.UpdatedAt = now
	if err := s.repos.Article.Create(ctx, article); err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}

	s.log.Info().Str("article_id", article.ID).Str("slug", article.Slug).Msg("Article created")
	return nil
}

// Stats returns article and comment counts
func (s *adminService) Stats(ctx context.Context) (*Stats, error) {
	yes, no := true, false

	var stats Stats
	var err error
	if stats.Articles, err = s.repos.Article.Count(ctx); err != nil {
		return nil, err
	}
	counts := []struct {
		dst    *int
		filter models.CommentFilter
	}{
		{&stats.Comments, models.CommentFilter{}},
		{&stats.Public, models.CommentFilter{IsPublic: &yes, IsRemoved: &no}},
		{&stats.AwaitingModeration, models.CommentFilter{IsPublic: &no, IsRemoved: &no}},
		{&stats.Removed, models.CommentFilter{IsRemoved: &yes}},
	}
	for _, c := range counts {
		if *c.dst, err = s.repos.Comment.Count(ctx, c.filter); err != nil {
			return nil, err
		}
	}
	return &stats, nil
}

// CreateStaff validates and stores a staff account. An empty ID is generated.
func (s *adminService) CreateStaff(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if errs := validation.ValidateUser(user); len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}

	existing, err := s.repos.User.GetByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return ErrDuplicateEmail
	}

	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := s.repos.User.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("Staff user created")
	return nil
}

// IssueToken creates an admin token for an active staff user with the admin role
func (s *adminService) IssueToken(ctx context.Context, email string) (string, error) {
	user, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if !user.Active || user.Role != models.RoleAdmin {
		return "", ErrNotAdmin
	}
	return s.tokens.GenerateToken(user.ID, user.Email, user.Role)
}

// Authenticate validates an admin token against the current state of the staff account.
// Deactivated or demoted users lose access before their token expires.
func (s *adminService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RoleAdmin {
		return nil, ErrNotAdmin
	}

	if !validation.IsValidUUID(claims.UserID) {
		return nil, ErrUserNotFound
	}
	user, err := s.repos.User.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active || user.Role != models.RoleAdmin {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
