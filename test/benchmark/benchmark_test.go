package benchmark

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/comment-moderation-api/internal/auth"
	"github.com/comment-moderation-api/internal/config"
	"github.com/comment-moderation-api/internal/mocks"
	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/comment-moderation-api/internal/service"
	"github.com/comment-moderation-api/internal/validation"
	"github.com/rs/zerolog"
)

const articleID = "550e8400-e29b-41d4-a716-446655440000"

func article() *models.Article {
	published := time.Now().Add(-48 * time.Hour)
	return &models.Article{ID: articleID, Slug: "bench", Title: "Bench", EnableComments: true, PublicationDate: &published}
}

func badWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("banned%03d", i)
	}
	return words
}

// BenchmarkDecide benchmarks the decision function with a large word list
func BenchmarkDecide(b *testing.B) {
	policy := moderation.Policy{
		CloseAfterDays:    30,
		ModerateAfterDays: 7,
		BadWords:          badWords(200),
		UseAkismet:        true,
		AkismetAction:     moderation.ActionModerate,
	}
	checker := mocks.NewMockSpamService(moderation.SpamNotSpam)
	in := moderation.Input{
		Comment: &models.Comment{UserName: "Bench", Body: strings.Repeat("a perfectly ordinary comment ", 50)},
		Article: article(),
		Now:     time.Now(),
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := moderation.Decide(context.Background(), policy, checker, in); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWordFilter benchmarks case-folded substring matching
func BenchmarkWordFilter(b *testing.B) {
	filter := moderation.NewWordFilter(badWords(200))
	body := strings.Repeat("Nothing to see HERE, move along. ", 100)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		filter.Match(body)
	}
}

// BenchmarkValidation benchmarks comment form validation
func BenchmarkValidation(b *testing.B) {
	sub := &models.CommentSubmission{
		UserName:  "Test-Name",
		UserEmail: "test@example.com",
		UserURL:   "https://example.com",
		Body:      strings.Repeat("word ", 400),
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validation.ValidateSubmission(sub)
	}
}

// BenchmarkSubmit benchmarks the full submission path against mock storage
func BenchmarkSubmit(b *testing.B) {
	repos, _, articles, _ := mocks.NewMockRepositories()
	articles.Articles[articleID] = article()

	moderator, err := moderation.NewModerator(moderation.Policy{BadWords: badWords(50)}, nil, zerolog.Nop())
	if err != nil {
		b.Fatal(err)
	}
	services := service.NewServices(service.Deps{
		Repos:     repos,
		Moderator: moderator,
		Tokens:    auth.NewJWTService("bench", 1),
	}, &config.Config{}, zerolog.Nop())

	sub := &models.CommentSubmission{UserName: "Bench", Body: "Hello <b>there</b>, nice post"}
	meta := models.RequestMeta{IPAddress: "127.0.0.1"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := services.Comment.Submit(context.Background(), articleID, sub, meta); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkExportNDJSON benchmarks streaming export performance
func BenchmarkExportNDJSON(b *testing.B) {
	repos, _, _, comments := mocks.NewMockRepositories()
	now := time.Now()
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("comment-%04d", i)
		comments.Comments[id] = &models.Comment{
			ID:         id,
			ArticleID:  articleID,
			UserName:   fmt.Sprintf("User %d", i),
			Body:       "Some comment text",
			IsPublic:   true,
			Decision:   models.DecisionAllow,
			SubmitDate: now.Add(-time.Duration(i) * time.Second),
		}
	}
	services := service.NewServices(service.Deps{Repos: repos, Tokens: auth.NewJWTService("bench", 1)}, &config.Config{}, zerolog.Nop())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		if err := services.Admin.ExportComments(context.Background(), w, models.CommentFilter{}, "ndjson"); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
