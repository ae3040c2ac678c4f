package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/comment-moderation-api/internal/notify"
	"github.com/comment-moderation-api/internal/repository"
	"github.com/comment-moderation-api/internal/validation"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	repos     *repository.Repositories
	moderator *moderation.Moderator
	notifier  notify.Notifier
	links     permalinker
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
	now       func() time.Time
}

// newCommentService creates a new CommentService
func newCommentService(repos *repository.Repositories, moderator *moderation.Moderator, notifier notify.Notifier, links permalinker, log zerolog.Logger) *commentService {
	return &commentService{
		repos:     repos,
		moderator: moderator,
		notifier:  notifier,
		links:     links,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.With().Str("service", "comment").Logger(),
		now:       time.Now,
	}
}

// Submit validates, moderates and stores a new comment.
// Rejected and deleted comments are not stored; the result still carries the decision.
func (s *commentService) Submit(ctx context.Context, articleID string, sub *models.CommentSubmission, meta models.RequestMeta) (*SubmitResult, error) {
	if !validation.IsValidUUID(articleID) {
		return nil, ErrArticleNotFound
	}
	if errs := validation.ValidateSubmission(sub); len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}

	// Markup is stripped and entities decoded, the body is stored as plain text
	body := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(sub.Body)))
	if body == "" {
		return nil, &ValidationErrors{Errors: []models.ValidationError{
			{Field: "comment", Message: "comment has no text content"},
		}}
	}

	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	now := s.now()
	comment := &models.Comment{
		ID:         uuid.New().String(),
		ArticleID:  article.ID,
		UserName:   strings.TrimSpace(sub.UserName),
		UserEmail:  strings.ToLower(strings.TrimSpace(sub.UserEmail)),
		UserURL:    strings.TrimSpace(sub.UserURL),
		Body:       body,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
		SubmitDate: now,
		UpdatedAt:  now,
	}
	if meta.Permalink == "" {
		meta.Permalink = s.links.For(article)
	}

	res, err := s.moderator.Moderate(ctx, moderation.Input{
		Comment: comment,
		Article: article,
		Request: meta,
		Now:     now,
	})
	if err != nil {
		return nil, err
	}

	comment.Decision = res.Decision
	comment.Reason = res.Reason
	comment.IsPublic = res.Allowed && !res.Moderated
	comment.IsRemoved = res.Removed

	result := &SubmitResult{Comment: comment, Result: res}
	if !res.Decision.Stored() {
		s.log.Info().
			Str("article_id", article.ID).
			Str("decision", string(res.Decision)).
			Str("reason", res.Reason).
			Msg("Comment dropped")
		return result, nil
	}

	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}
	result.Stored = true

	event := &models.CommentEvent{
		CommentID: comment.ID,
		ArticleID: comment.ArticleID,
		UserName:  comment.UserName,
		Decision:  comment.Decision,
		Reason:    comment.Reason,
		IsPublic:  comment.IsPublic,
		IsRemoved: comment.IsRemoved,
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("comment_id", comment.ID).Msg("Failed to publish moderation event")
	}

	s.log.Info().
		Str("comment_id", comment.ID).
		Str("article_id", article.ID).
		Str("decision", string(res.Decision)).
		Bool("is_public", comment.IsPublic).
		Bool("is_removed", comment.IsRemoved).
		Msg("Comment stored")

	return result, nil
}

// ListPublic returns the visible comments of an article, newest first
func (s *commentService) ListPublic(ctx context.Context, articleID string, limit, offset int) ([]*models.Comment, error) {
	if !validation.IsValidUUID(articleID) {
		return nil, ErrArticleNotFound
	}
	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	public, removed := true, false
	if offset < 0 {
		offset = 0
	}
	return s.repos.Comment.List(ctx, models.CommentFilter{
		ArticleID: article.ID,
		IsPublic:  &public,
		IsRemoved: &removed,
		Limit:     clampLimit(limit, 50, 200),
		Offset:    offset,
	})
}
