package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/comment-moderation-api/internal/models"
	"github.com/google/uuid"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

const (
	maxUserNameLength = 50
	maxEmailLength    = 254
	maxURLLength      = 200
)

// ValidateSubmission validates a posted comment form
func ValidateSubmission(sub *models.CommentSubmission) []models.ValidationError {
	var errors []models.ValidationError

	// Validate name
	name := strings.TrimSpace(sub.UserName)
	if name == "" {
		errors = append(errors, models.ValidationError{Field: "user_name", Message: "user_name is required"})
	} else if utf8.RuneCountInString(name) > maxUserNameLength {
		errors = append(errors, models.ValidationError{
			Field:   "user_name",
			Message: fmt.Sprintf("user_name exceeds maximum of %d characters", maxUserNameLength),
		})
	}

	// Validate email, optional
	if sub.UserEmail != "" {
		if len(sub.UserEmail) > maxEmailLength || !emailRegex.MatchString(sub.UserEmail) {
			errors = append(errors, models.ValidationError{Field: "user_email", Message: "invalid email format", Value: sub.UserEmail})
		}
	}

	// Validate url, optional
	if sub.UserURL != "" {
		u, err := url.Parse(sub.UserURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || len(sub.UserURL) > maxURLLength {
			errors = append(errors, models.ValidationError{Field: "user_url", Message: "user_url must be an http(s) URL", Value: sub.UserURL})
		}
	}

	// Validate body
	body := strings.TrimSpace(sub.Body)
	if body == "" {
		errors = append(errors, models.ValidationError{Field: "comment", Message: "comment is required"})
	} else {
		if utf8.RuneCountInString(body) > models.MaxCommentLength {
			errors = append(errors, models.ValidationError{
				Field:   "comment",
				Message: fmt.Sprintf("comment exceeds maximum of %d characters", models.MaxCommentLength),
			})
		}
		wordCount := len(strings.Fields(body))
		if wordCount > models.MaxCommentWords {
			errors = append(errors, models.ValidationError{
				Field:   "comment",
				Message: fmt.Sprintf("comment exceeds maximum of %d words (has %d)", models.MaxCommentWords, wordCount),
			})
		}
	}

	return errors
}

// ValidateArticle validates an article before it is created
func ValidateArticle(article *models.Article) []models.ValidationError {
	var errors []models.ValidationError

	if article.ID == "" {
		errors = append(errors, models.ValidationError{Field: "id", Message: "id is required"})
	} else if !IsValidUUID(article.ID) {
		errors = append(errors, models.ValidationError{Field: "id", Message: "invalid UUID format", Value: article.ID})
	}

	if article.Slug == "" {
		errors = append(errors, models.ValidationError{Field: "slug", Message: "slug is required"})
	} else if !slugRegex.MatchString(article.Slug) {
		errors = append(errors, models.ValidationError{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: article.Slug})
	}

	if strings.TrimSpace(article.Title) == "" {
		errors = append(errors, models.ValidationError{Field: "title", Message: "title is required"})
	}

	return errors
}

// ValidateUser validates a staff account before it is created
func ValidateUser(user *models.User) []models.ValidationError {
	var errors []models.ValidationError

	if user.ID == "" {
		errors = append(errors, models.ValidationError{Field: "id", Message: "id is required"})
	} else if !IsValidUUID(user.ID) {
		errors = append(errors, models.ValidationError{Field: "id", Message: "invalid UUID format", Value: user.ID})
	}

	if user.Email == "" {
		errors = append(errors, models.ValidationError{Field: "email", Message: "email is required"})
	} else if len(user.Email) > maxEmailLength || !emailRegex.MatchString(user.Email) {
		errors = append(errors, models.ValidationError{Field: "email", Message: "invalid email format", Value: user.Email})
	}

	if strings.TrimSpace(user.Name) == "" {
		errors = append(errors, models.ValidationError{Field: "name", Message: "name is required"})
	}

	if user.Role == "" {
		errors = append(errors, models.ValidationError{Field: "role", Message: "role is required"})
	} else if !models.ValidRoles[user.Role] {
		errors = append(errors, models.ValidationError{
			Field:   "role",
			Message: "invalid role, must be one of: admin, editor, viewer",
			Value:   user.Role,
		})
	}

	return errors
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
