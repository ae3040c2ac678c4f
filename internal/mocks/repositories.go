package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.ArticleRepository = (*MockArticleRepository)(nil)
	_ repository.CommentRepository = (*MockCommentRepository)(nil)
)

// NewMockRepositories wires the mock repositories into a Repositories value
func NewMockRepositories() (*repository.Repositories, *MockUserRepository, *MockArticleRepository, *MockCommentRepository) {
	users := NewMockUserRepository()
	articles := NewMockArticleRepository()
	comments := NewMockCommentRepository()
	return &repository.Repositories{User: users, Article: articles, Comment: comments}, users, articles, comments
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users       map[string]*models.User
	EmailToUser map[string]*models.User
	InsertError error
	GetError    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:       make(map[string]*models.User),
		EmailToUser: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Users[user.ID] = user
	m.EmailToUser[strings.ToLower(user.Email)] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Users[id], nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.EmailToUser[strings.ToLower(email)], nil
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	Articles    map[string]*models.Article
	InsertError error
	GetError    error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Articles[article.ID] = article
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Articles[id], nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, a := range m.Articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	return len(m.Articles), nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mu          sync.Mutex
	Comments    map[string]*models.Comment
	InsertError error
	UpdateError error
	Updates     int
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[string]*models.Comment),
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Comments[comment.ID] = comment
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MockCommentRepository) List(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, error) {
	var out []*models.Comment
	err := m.StreamAll(ctx, filter, func(c *models.Comment) error {
		out = append(out, c)
		return nil
	})
	return out, err
}

func (m *MockCommentRepository) UpdateStatus(ctx context.Context, id string, isPublic, isRemoved bool, decision models.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	c, ok := m.Comments[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.IsPublic = isPublic
	c.IsRemoved = isRemoved
	c.Decision = decision
	m.Updates++
	return nil
}

func (m *MockCommentRepository) Count(ctx context.Context, filter models.CommentFilter) (int, error) {
	filter.Limit, filter.Offset = 0, 0
	list, err := m.List(ctx, filter)
	return len(list), err
}

func (m *MockCommentRepository) StreamAll(ctx context.Context, filter models.CommentFilter, callback func(*models.Comment) error) error {
	m.mu.Lock()
	matched := make([]*models.Comment, 0, len(m.Comments))
	for _, c := range m.Comments {
		if Matches(c, filter) {
			matched = append(matched, c)
		}
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmitDate.After(matched[j].SubmitDate)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	for _, c := range matched {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// Matches applies a CommentFilter the way the SQL repository does
func Matches(c *models.Comment, filter models.CommentFilter) bool {
	if filter.ArticleID != "" && c.ArticleID != filter.ArticleID {
		return false
	}
	if filter.UserName != "" && !strings.Contains(strings.ToLower(c.UserName), strings.ToLower(filter.UserName)) {
		return false
	}
	if filter.Decision != "" && c.Decision != filter.Decision {
		return false
	}
	if filter.IsPublic != nil && c.IsPublic != *filter.IsPublic {
		return false
	}
	if filter.IsRemoved != nil && c.IsRemoved != *filter.IsRemoved {
		return false
	}
	return true
}
