package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/agenda/internal/observability"
	"github.com/hrygo/agenda/plugin/ai/session"
	sched "github.com/hrygo/agenda/server/service/schedule"
)

// Messenger delivers replies to the user. Delivery failures are logged and ignored.
type Messenger interface {
	Send(ctx context.Context, sessionID, text string) error
}

// ConfirmationWords are the replies accepted as a confirmation, compared
// against the trimmed and lower-cased message.
var ConfirmationWords = []string{"si", "sí", "confirmo", "confirmar", "correcto", "acepto", "aceptar"}

// IsConfirmation reports whether reply confirms the proposed slot.
func IsConfirmation(reply string) bool {
	normalized := strings.ToLower(strings.TrimSpace(reply))
	for _, w := range ConfirmationWords {
		if normalized == w {
			return true
		}
	}
	return false
}

// Config is the scheduling policy the arbiter enforces.
type Config struct {
	Duration time.Duration
	Policy   *sched.BusinessHoursPolicy
	// SuggestionHorizon widens the search window for "any slot" requests.
	// Zero searches only the current half-hour.
	SuggestionHorizon time.Duration
}

// Outcome is the result of one message.
type Outcome struct {
	SessionID   string              `json:"session_id"`
	Decision    Decision            `json:"decision"`
	Reason      Reason              `json:"reason,omitempty"`
	Replies     []string            `json:"replies"`
	State       session.State       `json:"state"`
	Reservation session.Reservation `json:"reservation"`
	// Suggested is set when Decision is DecisionSuggested.
	Suggested *sched.ResolvedSlot `json:"suggested,omitempty"`
}

// Arbiter runs the booking conversation for every session.
type Arbiter struct {
	sessions  session.SessionService
	calendar  sched.CalendarSource
	confirmer sched.Confirmer
	resolver  *Resolver
	messenger Messenger
	config    Config
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time

	locks *keyedMutex
}

// NewArbiter creates an arbiter. messenger and confirmer may be nil.
func NewArbiter(
	sessions session.SessionService,
	calendar sched.CalendarSource,
	confirmer sched.Confirmer,
	resolver *Resolver,
	messenger Messenger,
	config Config,
) *Arbiter {
	return &Arbiter{
		sessions:  sessions,
		calendar:  calendar,
		confirmer: confirmer,
		resolver:  resolver,
		messenger: messenger,
		config:    config,
		metrics:   observability.GlobalMetrics(),
		logger:    slog.Default(),
		now:       time.Now,
		locks:     newKeyedMutex(),
	}
}

// HandleMessage processes one user message for sessionID. Turns of the same
// session run one at a time; different sessions run concurrently.
// Scheduling failures are reported in the Outcome. The returned error is
// only set when the session cannot be loaded or saved.
func (a *Arbiter) HandleMessage(ctx context.Context, sessionID, text string) (*Outcome, error) {
	rc := observability.NewRequestContext(a.logger, "message", sessionID)
	ctx = observability.WithRequestContext(ctx, rc)

	unlock := a.locks.Lock(sessionID)
	defer unlock()

	conv, err := a.sessions.LoadContext(ctx, sessionID)
	if err != nil {
		a.metrics.RecordFailure()
		rc.Error("failed to load session", err)
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if conv == nil {
		conv = session.NewConversationContext(sessionID)
	}
	conv.AddMessage(session.RoleUser, text)

	turn := &turn{arbiter: a, ctx: ctx, conv: conv, out: &Outcome{SessionID: sessionID}}
	if conv.State == session.StateAwaitingConfirmation {
		turn.confirm(text)
	} else {
		if conv.State == session.StateConfirmed {
			conv.State = session.StateIdle
		}
		turn.arbitrate()
	}

	if err := a.sessions.SaveContext(ctx, sessionID, conv); err != nil {
		a.metrics.RecordFailure()
		rc.Error("failed to save session", err)
		return nil, fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}

	out := turn.out
	out.State = conv.State
	out.Reservation = conv.Reservation

	a.metrics.RecordDecision(string(out.Decision), rc.Duration())
	rc.Info("turn completed",
		slog.String(observability.LogFieldDecision, string(out.Decision)),
		slog.String(observability.LogFieldReason, string(out.Reason)),
		slog.String(observability.LogFieldState, string(out.State)),
		slog.Int(observability.LogFieldMessageLen, len(text)),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
	)
	return out, nil
}

// EndSession discards the session and any pending reservation.
func (a *Arbiter) EndSession(ctx context.Context, sessionID string) error {
	unlock := a.locks.Lock(sessionID)
	defer unlock()
	return a.sessions.DeleteContext(ctx, sessionID)
}

// turn is the state of one HandleMessage call.
type turn struct {
	arbiter *Arbiter
	ctx     context.Context
	conv    *session.ConversationContext
	out     *Outcome
}

// send delivers text without recording it in the transcript.
func (t *turn) send(text string) {
	t.out.Replies = append(t.out.Replies, text)
	if t.arbiter.messenger == nil {
		return
	}
	if err := t.arbiter.messenger.Send(t.ctx, t.conv.SessionID, text); err != nil {
		slog.Warn("failed to deliver reply", "session_id", t.conv.SessionID, "error", err)
	}
}

// reply delivers text and records it in the transcript.
func (t *turn) reply(text string) {
	t.conv.AddMessage(session.RoleAssistant, text)
	t.send(text)
}

func (t *turn) reject(err error, text string) {
	t.out.Decision = DecisionRejected
	t.out.Reason = ReasonOf(err)
	t.reply(text)
}

func (t *turn) arbitrate() {
	a := t.arbiter
	now := a.now()

	t.send(MsgProgress)

	records, err := a.calendar.ListOccupied(t.ctx)
	if err != nil {
		slog.Error("failed to list occupied slots", "session_id", t.conv.SessionID, "error", err)
		t.reject(ErrCalendarUnavailable, MsgCalendarUnavailable)
		return
	}
	calendar := sched.ToIntervals(records, a.config.Duration)

	res, err := a.resolver.Resolve(t.ctx, t.conv.Transcript(), now)
	switch {
	case err == nil:
	case errors.Is(err, ErrGenericSlotRequested):
		t.suggest(calendar, now)
		return
	case errors.Is(err, ErrMissingDate):
		t.reject(ErrMissingDate, MsgMissingDate)
		return
	case errors.Is(err, ErrInvalidDate):
		t.reject(ErrInvalidDate, MsgInvalidDate)
		return
	default:
		slog.Debug("date not understood", "session_id", t.conv.SessionID, "error", err)
		t.reject(ErrUnparsableDate, MsgUnparsableDate)
		return
	}

	slot := res.Slot
	if !sched.IsWithinBusinessHours(slot.Start, a.config.Policy) {
		t.reject(ErrOutsideBusinessHours, OutsideHoursMessage(a.config.Policy))
		return
	}
	if !sched.IsFree(slot.Interval(), calendar) {
		t.reject(ErrSlotOccupied, MsgSlotOccupied)
		return
	}

	t.conv.Reservation = session.Reservation{
		Status: session.ReservationProposed,
		Start:  slot.Start,
		End:    slot.End,
	}
	t.conv.State = session.StateAwaitingConfirmation
	t.out.Decision = DecisionAccepted

	msg := AcceptedMessage(slot)
	t.conv.AddMessage(session.RoleAssistant, msg)
	for _, chunk := range SplitChunks(msg) {
		t.send(chunk)
	}
}

func (t *turn) suggest(calendar sched.OccupiedCalendar, now time.Time) {
	a := t.arbiter
	start, ok := sched.FindNextAvailable(calendar, now, now.Add(a.config.SuggestionHorizon), a.config.Duration)
	if !ok {
		t.reject(ErrNoAvailability, MsgNoAvailability)
		return
	}

	slot := sched.ResolvedSlot{Start: start, End: start.Add(a.config.Duration)}
	t.out.Decision = DecisionSuggested
	t.out.Suggested = &slot
	t.reply(SuggestedMessage(slot))
}

func (t *turn) confirm(text string) {
	if !IsConfirmation(text) {
		t.out.Decision = DecisionReprompted
		t.out.Reason = ReasonUnrecognizedConfirmation
		t.reply(MsgReprompt)
		return
	}

	slot := sched.ResolvedSlot{Start: t.conv.Reservation.Start, End: t.conv.Reservation.End}
	if c := t.arbiter.confirmer; c != nil {
		if err := c.ConfirmReservation(t.ctx, t.conv.SessionID, slot); err != nil {
			slog.Error("failed to confirm reservation", "session_id", t.conv.SessionID, "error", err)
			t.reject(ErrConfirmationFailed, MsgConfirmationFailed)
			return
		}
	}

	t.conv.Reservation.Status = session.ReservationConfirmed
	t.conv.State = session.StateConfirmed
	t.out.Decision = DecisionConfirmed
	t.reply(MsgConfirmed)
}
