package api

import (
	"context"
	"sync"

	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/session"
)

// MockClient is a mock implementation of BackendClient for testing
type MockClient struct {
	mu sync.Mutex

	// Mock return values
	AskVal     *models.ChatResponse
	AskErr     error
	LoginVal   *models.LoginResponse
	LoginErr   error
	LogoutErr  error
	IndexVal   string
	IndexErr   error
	CookiesVal []session.Cookie
	BaseURLVal string

	// AskFunc, when set, overrides AskVal/AskErr
	AskFunc func(ctx context.Context, question string) (*models.ChatResponse, error)

	// Call counters/recorders
	AskCalls    []string
	LoginCalls  [][2]string
	LogoutCalls int
	IndexCalls  int
	CloseCalled bool
}

// Ensure MockClient implements BackendClient
var _ BackendClient = (*MockClient)(nil)

func (m *MockClient) Ask(ctx context.Context, question string) (*models.ChatResponse, error) {
	m.mu.Lock()
	m.AskCalls = append(m.AskCalls, question)
	fn := m.AskFunc
	val, err := m.AskVal, m.AskErr
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, question)
	}
	return val, err
}

func (m *MockClient) Login(ctx context.Context, email, name string) (*models.LoginResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginCalls = append(m.LoginCalls, [2]string{email, name})
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	if m.LoginVal != nil {
		return m.LoginVal, nil
	}
	return &models.LoginResponse{Success: true, Email: email, Name: name}, nil
}

func (m *MockClient) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LogoutCalls++
	return m.LogoutErr
}

func (m *MockClient) Index(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IndexCalls++
	return m.IndexVal, m.IndexErr
}

func (m *MockClient) Cookies() []session.Cookie {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CookiesVal
}

func (m *MockClient) BaseURL() string {
	if m.BaseURLVal == "" {
		return models.DefaultBaseURL
	}
	return m.BaseURLVal
}

func (m *MockClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
}

// Calls returns how many times each operation was called
func (m *MockClient) Calls() (ask, login, logout int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AskCalls), len(m.LoginCalls), m.LogoutCalls
}
