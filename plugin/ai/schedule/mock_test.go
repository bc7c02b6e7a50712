package schedule

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/hrygo/agenda/plugin/ai/session"
	sched "github.com/hrygo/agenda/server/service/schedule"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractDate(ctx context.Context, transcript []session.Message) (string, error) {
	args := m.Called(ctx, transcript)
	return args.String(0), args.Error(1)
}

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) ListOccupied(ctx context.Context) ([]sched.OccupiedRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]sched.OccupiedRecord)
	return records, args.Error(1)
}

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) ConfirmReservation(ctx context.Context, sessionID string, slot sched.ResolvedSlot) error {
	return m.Called(ctx, sessionID, slot).Error(0)
}

// recordingMessenger keeps every delivered reply.
type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMessenger) Send(_ context.Context, _ string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return m.err
}

func (m *recordingMessenger) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}
