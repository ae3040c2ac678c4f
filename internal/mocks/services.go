package mocks

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/comment-moderation-api/internal/auth"
	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/comment-moderation-api/internal/notify"
	"github.com/comment-moderation-api/internal/service"
)

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	SubmitFunc func(ctx context.Context, articleID string, sub *models.CommentSubmission, meta models.RequestMeta) (*service.SubmitResult, error)
	Public     map[string][]*models.Comment
	Submitted  []*models.CommentSubmission
	LastMeta   models.RequestMeta
}

// Verify interface compliance
var _ service.CommentService = (*MockCommentService)(nil)

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{
		Public: make(map[string][]*models.Comment),
	}
}

func (m *MockCommentService) Submit(ctx context.Context, articleID string, sub *models.CommentSubmission, meta models.RequestMeta) (*service.SubmitResult, error) {
	m.Submitted = append(m.Submitted, sub)
	m.LastMeta = meta
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, articleID, sub, meta)
	}
	comment := &models.Comment{
		ID:        "test-comment-id",
		ArticleID: articleID,
		UserName:  sub.UserName,
		Body:      sub.Body,
		IsPublic:  true,
		Decision:  models.DecisionAllow,
	}
	return &service.SubmitResult{
		Comment: comment,
		Result:  moderation.Result{Decision: models.DecisionAllow, Allowed: true},
		Stored:  true,
	}, nil
}

func (m *MockCommentService) ListPublic(ctx context.Context, articleID string, limit, offset int) ([]*models.Comment, error) {
	comments, ok := m.Public[articleID]
	if !ok {
		return nil, service.ErrArticleNotFound
	}
	return comments, nil
}

// MockAdminService is a mock implementation of AdminService
type MockAdminService struct {
	Comments     map[string]*models.Comment
	Articles     []*models.Article
	Tokens       map[string]*auth.Claims
	StatsValue   service.Stats
	ExportFunc   func(ctx context.Context, w http.ResponseWriter, filter models.CommentFilter, format string) error
	CreateErr    error
	LastFilter   models.CommentFilter
	SpamReported []string
	HamReported  []string
}

// Verify interface compliance
var _ service.AdminService = (*MockAdminService)(nil)

func NewMockAdminService() *MockAdminService {
	return &MockAdminService{
		Comments: make(map[string]*models.Comment),
		Tokens:   make(map[string]*auth.Claims),
	}
}

func (m *MockAdminService) ListComments(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, int, error) {
	m.LastFilter = filter
	var out []*models.Comment
	for _, c := range m.Comments {
		if Matches(c, filter) {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *MockAdminService) set(id string, isPublic, isRemoved bool, decision models.Decision) (*models.Comment, error) {
	c, ok := m.Comments[id]
	if !ok {
		return nil, service.ErrCommentNotFound
	}
	c.IsPublic, c.IsRemoved, c.Decision = isPublic, isRemoved, decision
	return c, nil
}

func (m *MockAdminService) Approve(ctx context.Context, id string) (*models.Comment, error) {
	return m.set(id, true, false, models.DecisionAllow)
}

func (m *MockAdminService) Remove(ctx context.Context, id string) (*models.Comment, error) {
	return m.set(id, false, true, models.DecisionSoftDelete)
}

func (m *MockAdminService) MarkSpam(ctx context.Context, id string) (*models.Comment, error) {
	c, err := m.set(id, false, true, models.DecisionSoftDelete)
	if err == nil {
		m.SpamReported = append(m.SpamReported, id)
	}
	return c, err
}

func (m *MockAdminService) MarkHam(ctx context.Context, id string) (*models.Comment, error) {
	c, err := m.set(id, true, false, models.DecisionAllow)
	if err == nil {
		m.HamReported = append(m.HamReported, id)
	}
	return c, err
}

func (m *MockAdminService) CreateArticle(ctx context.Context, article *models.Article) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if article.ID == "" {
		article.ID = "test-article-id"
	}
	m.Articles = append(m.Articles, article)
	return nil
}

func (m *MockAdminService) ExportComments(ctx context.Context, w http.ResponseWriter, filter models.CommentFilter, format string) error {
	m.LastFilter = filter
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, w, filter, format)
	}
	return nil
}

func (m *MockAdminService) Stats(ctx context.Context) (*service.Stats, error) {
	stats := m.StatsValue
	return &stats, nil
}

func (m *MockAdminService) CreateStaff(ctx context.Context, user *models.User) error {
	return m.CreateErr
}

func (m *MockAdminService) IssueToken(ctx context.Context, email string) (string, error) {
	for token, claims := range m.Tokens {
		if claims.Email == email {
			return token, nil
		}
	}
	return "", service.ErrUserNotFound
}

func (m *MockAdminService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, ok := m.Tokens[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	if claims.Role != models.RoleAdmin {
		return nil, service.ErrNotAdmin
	}
	return claims, nil
}

// MockSpamService is a mock spam checker and reporter
type MockSpamService struct {
	mu        sync.Mutex
	Status    moderation.SpamStatus
	Err       error
	Checks    []moderation.SpamCheck
	Spam      []moderation.SpamCheck
	Ham       []moderation.SpamCheck
	SubmitErr error
}

// Verify interface compliance
var (
	_ moderation.SpamChecker = (*MockSpamService)(nil)
	_ service.SpamReporter   = (*MockSpamService)(nil)
)

func NewMockSpamService(status moderation.SpamStatus) *MockSpamService {
	return &MockSpamService{Status: status}
}

func (m *MockSpamService) CheckComment(ctx context.Context, check moderation.SpamCheck) (moderation.SpamStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Checks = append(m.Checks, check)
	if m.Err != nil {
		return moderation.SpamCheckFailed, m.Err
	}
	return m.Status, nil
}

func (m *MockSpamService) SubmitSpam(ctx context.Context, check moderation.SpamCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Spam = append(m.Spam, check)
	return m.SubmitErr
}

func (m *MockSpamService) SubmitHam(ctx context.Context, check moderation.SpamCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ham = append(m.Ham, check)
	return m.SubmitErr
}

// MockNotifier records published moderation events
type MockNotifier struct {
	Events     []*models.CommentEvent
	PublishErr error
	Closed     bool
}

// Verify interface compliance
var _ notify.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Publish(ctx context.Context, event *models.CommentEvent) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockNotifier) Close() error {
	m.Closed = true
	return nil
}
