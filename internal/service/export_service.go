package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/comment-moderation-api/internal/models"
)

// ExportComments streams comments matching the filter in the given format
func (s *adminService) ExportComments(ctx context.Context, w http.ResponseWriter, filter models.CommentFilter, format string) error {
	s.log.Info().Str("format", format).Str("user_name", filter.UserName).Msg("Starting comments export")

	var (
		count int
		err   error
	)
	switch format {
	case "ndjson":
		count, err = s.streamCommentsNDJSON(ctx, w, filter)
	case "json":
		count, err = s.streamCommentsJSON(ctx, w, filter)
	case "csv":
		count, err = s.streamCommentsCSV(ctx, w, filter)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	s.log.Info().Int("count", count).Msg("Comments export completed")
	return err
}

func (s *adminService) streamCommentsNDJSON(ctx context.Context, w http.ResponseWriter, filter models.CommentFilter) (int, error) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=comments.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.Comment.StreamAll(ctx, filter, func(comment *models.Comment) error {
		data, err := json.Marshal(comment)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	return count, err
}

func (s *adminService) streamCommentsJSON(ctx context.Context, w http.ResponseWriter, filter models.CommentFilter) (int, error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=comments.json")

	w.Write([]byte("["))
	count := 0

	err := s.repos.Comment.StreamAll(ctx, filter, func(comment *models.Comment) error {
		if count > 0 {
			w.Write([]byte(","))
		}
		data, err := json.Marshal(comment)
		if err != nil {
			return err
		}
		w.Write(data)
		count++
		return nil
	})

	w.Write([]byte("]"))
	return count, err
}

func (s *adminService) streamCommentsCSV(ctx context.Context, w http.ResponseWriter, filter models.CommentFilter) (int, error) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=comments.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{
		"id", "article_id", "user_name", "user_email", "comment", "ip_address",
		"is_public", "is_removed", "decision", "reason", "submit_date",
	})

	count := 0
	err := s.repos.Comment.StreamAll(ctx, filter, func(comment *models.Comment) error {
		count++
		return writer.Write([]string{
			comment.ID,
			comment.ArticleID,
			comment.UserName,
			comment.UserEmail,
			comment.Body,
			comment.IPAddress,
			strconv.FormatBool(comment.IsPublic),
			strconv.FormatBool(comment.IsRemoved),
			string(comment.Decision),
			comment.Reason,
			comment.SubmitDate.UTC().Format(time.RFC3339),
		})
	})
	return count, err
}
