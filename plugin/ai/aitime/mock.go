package aitime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockTimeService is a mock implementation of TimeService for testing.
// Expressions not registered with Set fall through to the real parser when
// Fallback is set, and fail otherwise.
type MockTimeService struct {
	mu       sync.RWMutex
	results  map[string]time.Time
	errs     map[string]error
	Fallback *Service
	Calls    []string
}

// NewMockTimeService creates a new MockTimeService.
func NewMockTimeService() *MockTimeService {
	return &MockTimeService{
		results: make(map[string]time.Time),
		errs:    make(map[string]error),
	}
}

// Set registers the instant returned for input.
func (m *MockTimeService) Set(input string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[key(input)] = t
}

// SetError registers the error returned for input.
func (m *MockTimeService) SetError(input string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[key(input)] = err
}

// Normalize returns the registered result for input.
func (m *MockTimeService) Normalize(ctx context.Context, input string, reference time.Time) (time.Time, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, input)
	t, ok := m.results[key(input)]
	err := m.errs[key(input)]
	m.mu.Unlock()

	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return t, nil
	}
	if m.Fallback != nil {
		return m.Fallback.Normalize(ctx, input, reference)
	}
	return time.Time{}, fmt.Errorf("unable to parse time: %s", input)
}

// ParseNaturalTime wraps Normalize with a one-hour range.
func (m *MockTimeService) ParseNaturalTime(ctx context.Context, input string, reference time.Time) (TimeRange, error) {
	t, err := m.Normalize(ctx, input, reference)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: t, End: t.Add(time.Hour)}, nil
}

func key(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Ensure MockTimeService implements TimeService
var _ TimeService = (*MockTimeService)(nil)
