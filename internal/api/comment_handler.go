package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/comment-moderation-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles the public comment endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// SubmitComment handles POST /v1/articles/:article_id/comments
// Accepts a JSON body or a form post
func (h *CommentHandler) SubmitComment(c *gin.Context) {
	var sub models.CommentSubmission
	if err := c.ShouldBind(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	meta := models.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	}

	res, err := h.services.Comment.Submit(c.Request.Context(), c.Param("article_id"), &sub, meta)
	if err != nil {
		h.writeError(c, err)
		return
	}

	body := gin.H{
		"decision": res.Result.Decision,
		"reason":   res.Result.Reason,
	}
	switch {
	case !res.Result.Allowed:
		body["error"] = "Comment rejected"
		c.JSON(http.StatusForbidden, body)
	case res.Result.Moderated:
		body["comment"] = res.Comment.PublicView()
		body["message"] = "Comment is awaiting moderation"
		c.JSON(http.StatusAccepted, body)
	default:
		body["comment"] = res.Comment.PublicView()
		c.JSON(http.StatusCreated, body)
	}
}

// ListComments handles GET /v1/articles/:article_id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	comments, err := h.services.Comment.ListPublic(c.Request.Context(), c.Param("article_id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	public := make([]*models.Comment, 0, len(comments))
	for _, comment := range comments {
		public = append(public, comment.PublicView())
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": public,
		"count":    len(public),
	})
}

func (h *CommentHandler) writeError(c *gin.Context, err error) {
	var verrs *service.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": verrs.Errors})
	case errors.Is(err, service.ErrArticleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
	case errors.Is(err, moderation.ErrSpamCheckFailed):
		h.log.Error().Err(err).Msg("Spam check unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Spam check unavailable, try again later"})
	default:
		h.log.Error().Err(err).Msg("Comment request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
