package interaction

import (
	"context"
	"sync"
	"time"
)

// MockCall records a gateway call for assertion
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockGateway is an in-memory Gateway for tests. Every call is recorded;
// set a XxxFunc field to change what a method returns.
type MockGateway struct {
	mu sync.Mutex

	Calls []MockCall

	// Viewer is returned by CurrentUser unless CurrentUserFunc is set.
	Viewer *Viewer

	CurrentUserFunc       func(ctx context.Context) (*Viewer, error)
	FindBookmarkFunc      func(ctx context.Context, userID, submissionID string) (*BookmarkRow, error)
	InsertVoteFunc        func(ctx context.Context, userID, submissionID string) (*VoteRow, error)
	UpdateUpvoteCountFunc func(ctx context.Context, submissionID string, count int) error
	InsertBookmarkFunc    func(ctx context.Context, userID, submissionID string) (*BookmarkRow, error)
	DeleteBookmarkFunc    func(ctx context.Context, userID, submissionID string) error
}

var _ Gateway = (*MockGateway)(nil)

// NewMockGateway returns a mock whose current user is viewer (nil for anonymous).
func NewMockGateway(viewer *Viewer) *MockGateway {
	return &MockGateway{Viewer: viewer, Calls: make([]MockCall, 0)}
}

func (m *MockGateway) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// GetCalls returns all recorded calls (thread-safe)
func (m *MockGateway) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.Calls))
	copy(result, m.Calls)
	return result
}

// Methods returns the recorded method names in call order.
func (m *MockGateway) Methods() []string {
	calls := m.GetCalls()
	names := make([]string, len(calls))
	for i, call := range calls {
		names[i] = call.Method
	}
	return names
}

// CallCount returns how many times method was called.
func (m *MockGateway) CallCount(method string) int {
	n := 0
	for _, call := range m.GetCalls() {
		if call.Method == method {
			n++
		}
	}
	return n
}

// Reset clears all recorded calls
func (m *MockGateway) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = make([]MockCall, 0)
}

func (m *MockGateway) CurrentUser(ctx context.Context) (*Viewer, error) {
	m.recordCall("CurrentUser")
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return m.Viewer, nil
}

func (m *MockGateway) FindBookmark(ctx context.Context, userID, submissionID string) (*BookmarkRow, error) {
	m.recordCall("FindBookmark", userID, submissionID)
	if m.FindBookmarkFunc != nil {
		return m.FindBookmarkFunc(ctx, userID, submissionID)
	}
	return nil, nil
}

func (m *MockGateway) InsertVote(ctx context.Context, userID, submissionID string) (*VoteRow, error) {
	m.recordCall("InsertVote", userID, submissionID)
	if m.InsertVoteFunc != nil {
		return m.InsertVoteFunc(ctx, userID, submissionID)
	}
	return &VoteRow{UserID: userID, SubmissionID: submissionID, CreatedAt: time.Now()}, nil
}

func (m *MockGateway) UpdateUpvoteCount(ctx context.Context, submissionID string, count int) error {
	m.recordCall("UpdateUpvoteCount", submissionID, count)
	if m.UpdateUpvoteCountFunc != nil {
		return m.UpdateUpvoteCountFunc(ctx, submissionID, count)
	}
	return nil
}

func (m *MockGateway) InsertBookmark(ctx context.Context, userID, submissionID string) (*BookmarkRow, error) {
	m.recordCall("InsertBookmark", userID, submissionID)
	if m.InsertBookmarkFunc != nil {
		return m.InsertBookmarkFunc(ctx, userID, submissionID)
	}
	return &BookmarkRow{UserID: userID, SubmissionID: submissionID, CreatedAt: time.Now()}, nil
}

func (m *MockGateway) DeleteBookmark(ctx context.Context, userID, submissionID string) error {
	m.recordCall("DeleteBookmark", userID, submissionID)
	if m.DeleteBookmarkFunc != nil {
		return m.DeleteBookmarkFunc(ctx, userID, submissionID)
	}
	return nil
}
