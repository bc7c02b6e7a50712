package aitime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTimeServiceContract checks that the mock and the real service agree
// on how they answer.
func TestTimeServiceContract(t *testing.T) {
	ctx := context.Background()
	want := time.Date(2024, 1, 9, 10, 0, 0, 0, testLoc)

	mock := NewMockTimeService()
	mock.Set("mañana a las 10", want)

	services := map[string]TimeService{
		"mock":    mock,
		"service": NewService(testLoc),
	}

	for name, svc := range services {
		t.Run(name, func(t *testing.T) {
			got, err := svc.Normalize(ctx, " Mañana a las 10 ", fixedNow)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)

			tr, err := svc.ParseNaturalTime(ctx, "mañana a las 10", fixedNow)
			require.NoError(t, err)
			assert.Equal(t, time.Hour, tr.End.Sub(tr.Start))
		})
	}
}

func TestMockTimeService(t *testing.T) {
	ctx := context.Background()
	mock := NewMockTimeService()

	_, err := mock.Normalize(ctx, "el jueves", fixedNow)
	assert.Error(t, err, "unregistered input without fallback")

	boom := errors.New("boom")
	mock.SetError("el jueves", boom)
	_, err = mock.Normalize(ctx, "el jueves", fixedNow)
	assert.ErrorIs(t, err, boom)

	mock.Fallback = NewService(testLoc)
	got, err := mock.Normalize(ctx, "el miércoles", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, got.Weekday())
	assert.Equal(t, []string{"el jueves", "el jueves", "el miércoles"}, mock.Calls)
}
