package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/service"
	"github.com/comment-moderation-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var exportFormats = map[string]bool{"ndjson": true, "json": true, "csv": true}

// AdminHandler handles the staff endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// ListComments handles GET /v1/admin/comments
// Query params: user_name, article_id, decision, is_public, is_removed, limit, offset
func (h *AdminHandler) ListComments(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, total, err := h.services.Admin.ListComments(c.Request.Context(), filter)
	var verrs *service.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": verrs.Errors})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list comments"})
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// ExportComments handles GET /v1/admin/comments/export
// Streams matching comments as ndjson (default), json or csv
func (h *AdminHandler) ExportComments(c *gin.Context) {
	format := c.DefaultQuery("format", "ndjson")
	if !exportFormats[format] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json, csv"})
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Exports are not paged
	filter.Limit, filter.Offset = 0, 0

	if err := h.services.Admin.ExportComments(c.Request.Context(), c.Writer, filter, format); err != nil {
		// Headers are already sent, the stream is cut short
		h.log.Error().Err(err).Str("format", format).Msg("Export failed")
	}
}

// Approve handles POST /v1/admin/comments/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	h.changeStatus(c, h.services.Admin.Approve)
}

// Remove handles POST /v1/admin/comments/:id/remove
func (h *AdminHandler) Remove(c *gin.Context) {
	h.changeStatus(c, h.services.Admin.Remove)
}

// MarkSpam handles POST /v1/admin/comments/:id/spam
func (h *AdminHandler) MarkSpam(c *gin.Context) {
	h.changeStatus(c, h.services.Admin.MarkSpam)
}

// MarkHam handles POST /v1/admin/comments/:id/ham
func (h *AdminHandler) MarkHam(c *gin.Context) {
	h.changeStatus(c, h.services.Admin.MarkHam)
}

func (h *AdminHandler) changeStatus(c *gin.Context, action func(ctx context.Context, id string) (*models.Comment, error)) {
	comment, err := action(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrCommentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("comment_id", c.Param("id")).Msg("Failed to update comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	h.log.Info().
		Str("comment_id", comment.ID).
		Str("admin_id", c.GetString("admin_id")).
		Str("decision", string(comment.Decision)).
		Msg("Comment moderated by staff")
	c.JSON(http.StatusOK, comment)
}

// CreateArticle handles POST /v1/admin/articles
func (h *AdminHandler) CreateArticle(c *gin.Context) {
	var article models.Article
	if err := c.ShouldBindJSON(&article); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	err := h.services.Admin.CreateArticle(c.Request.Context(), &article)
	var verrs *service.ValidationErrors
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, article)
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": verrs.Errors})
	case errors.Is(err, service.ErrDuplicateSlug):
		c.JSON(http.StatusConflict, gin.H{"error": "Article slug already exists"})
	default:
		h.log.Error().Err(err).Msg("Failed to create article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create article"})
	}
}

// parseFilter reads the comment filter from query parameters
func parseFilter(c *gin.Context) (models.CommentFilter, error) {
	filter := models.CommentFilter{
		UserName:  c.Query("user_name"),
		ArticleID: c.Query("article_id"),
		Decision:  models.Decision(c.Query("decision")),
	}
	if filter.Decision != "" && !models.ValidDecisions[filter.Decision] {
		return filter, fmt.Errorf("unknown decision %q", filter.Decision)
	}
	if filter.ArticleID != "" && !validation.IsValidUUID(filter.ArticleID) {
		return filter, fmt.Errorf("article_id must be a UUID")
	}

	for name, dst := range map[string]**bool{"is_public": &filter.IsPublic, "is_removed": &filter.IsRemoved} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("%s must be a boolean", name)
		}
		*dst = &v
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, fmt.Errorf("%s must be a non-negative integer", name)
		}
		*dst = v
	}

	return filter, nil
}
