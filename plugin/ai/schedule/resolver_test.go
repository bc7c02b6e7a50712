package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/plugin/ai/aitime"
	"github.com/hrygo/agenda/plugin/ai/session"
)

var testLoc = time.FixedZone("ART", -3*60*60)

// Monday 2024-03-11 08:00.
var fixedNow = time.Date(2024, 3, 11, 8, 0, 0, 0, testLoc)

const meeting = 45 * time.Minute

func at(d, h, m int) time.Time {
	return time.Date(2024, 3, d, h, m, 0, 0, testLoc)
}

func newTestResolver(expr string, err error) (*Resolver, *mockExtractor) {
	ext := &mockExtractor{}
	ext.On("ExtractDate", mock.Anything, mock.Anything).Return(expr, err)
	return NewResolver(ext, aitime.NewService(testLoc), meeting), ext
}

func TestIsGenericRequest(t *testing.T) {
	for _, expr := range []string{"turno", "Quiero un TURNO", "a cualquier horario", "el primer horario disponible"} {
		assert.True(t, IsGenericRequest(expr), expr)
	}
	for _, expr := range []string{"mañana a las 10", "", "horario de atención"} {
		assert.False(t, IsGenericRequest(expr), expr)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantErr   error
		wantStart time.Time
	}{
		{name: "tomorrow at ten", expr: "mañana a las 10", wantStart: at(12, 10, 0)},
		{name: "rounded up", expr: "2024/03/12 10:05:00", wantStart: at(12, 10, 30)},
		{name: "on grid stays", expr: "2024/03/12 10:30:00", wantStart: at(12, 10, 30)},
		{name: "rolls into next hour", expr: "2024/03/12 10:31:00", wantStart: at(12, 11, 0)},
		{name: "weekday", expr: "el viernes a las 3 de la tarde", wantStart: at(15, 15, 0)},
		{name: "empty", expr: "  ", wantErr: ErrMissingDate},
		{name: "generic", expr: "turno", wantErr: ErrGenericSlotRequested},
		{name: "unparsable", expr: "cuando puedas", wantErr: ErrUnparsableDate},
		{name: "impossible date", expr: "2024/02/30 10:00", wantErr: ErrUnparsableDate},
		{name: "rounds past year 9999", expr: "9999/12/31 23:45", wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(tt.expr, nil)
			res, err := r.Resolve(context.Background(), nil, fixedNow)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(res.Slot.Start), "start = %v", res.Slot.Start)
			assert.Equal(t, meeting, res.Slot.End.Sub(res.Slot.Start))
			assert.Equal(t, tt.expr, res.Request.RawExpression)
		})
	}
}

func TestResolveExtractorFailureIsMissingDate(t *testing.T) {
	r, _ := newTestResolver("", errors.New("llm down"))
	_, err := r.Resolve(context.Background(), nil, fixedNow)
	assert.ErrorIs(t, err, ErrMissingDate)
	assert.Equal(t, ReasonMissingDate, ReasonOf(err))
}

func TestResolvePassesTranscript(t *testing.T) {
	r, ext := newTestResolver("mañana a las 10", nil)
	transcript := []session.Message{{Role: session.RoleUser, Content: "mañana a las 10"}}

	_, err := r.Resolve(context.Background(), transcript, fixedNow)
	require.NoError(t, err)
	ext.AssertCalled(t, "ExtractDate", mock.Anything, transcript)
}

func TestResolveIsDeterministic(t *testing.T) {
	r, _ := newTestResolver("el jueves a las 11 y media", nil)

	first, err := r.Resolve(context.Background(), nil, fixedNow)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Resolve(context.Background(), nil, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, first.Slot, again.Slot)
	}
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, ReasonSlotOccupied, ReasonOf(ErrSlotOccupied))
	assert.Equal(t, ReasonUnparsableDate, ReasonOf(errors.Join(errors.New("ctx"), ErrUnparsableDate)))
	assert.Equal(t, ReasonNone, ReasonOf(errors.New("other")))
	assert.Equal(t, ReasonNone, ReasonOf(nil))
}
