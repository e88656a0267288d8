package api

import (
	"context"
	"sync"

	"github.com/diogo/nlq/internal/models"
)

// MockServiceClient is a mock implementation of ServiceClientInterface for testing
type MockServiceClient struct {
	// Mock return values
	QueryVal    *models.QueryResponse
	QueryErr    error
	HealthErr   error
	EndpointVal string

	// QueryFunc overrides QueryVal/QueryErr when set
	QueryFunc func(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)

	// Call counters/recorders
	mu          sync.Mutex
	queryCalls  []models.QueryRequest
	HealthCalls int
	CloseCalled bool
}

// Ensure MockServiceClient implements ServiceClientInterface
var _ ServiceClientInterface = (*MockServiceClient)(nil)

func (m *MockServiceClient) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	m.mu.Lock()
	m.queryCalls = append(m.queryCalls, req)
	fn := m.QueryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return m.QueryVal, m.QueryErr
}

func (m *MockServiceClient) Health(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HealthCalls++
	return m.HealthErr
}

func (m *MockServiceClient) Endpoint() string {
	if m.EndpointVal == "" {
		return models.DefaultEndpoint
	}
	return m.EndpointVal
}

func (m *MockServiceClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
}

// QueryCalls returns a copy of the requests received so far
func (m *MockServiceClient) QueryCalls() []models.QueryRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]models.QueryRequest, len(m.queryCalls))
	copy(calls, m.queryCalls)
	return calls
}
