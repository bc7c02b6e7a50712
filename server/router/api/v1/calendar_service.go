package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/agenda/plugin/ai/aitime"
	apierrors "github.com/hrygo/agenda/server/internal/errors"
	sched "github.com/hrygo/agenda/server/service/schedule"
)

// Accepted layouts for booking starts and days, besides RFC 3339.
const (
	bookingLayout = "2006/01/02 15:04:05"
	shortLayout   = "2006/01/02 15:04"
	dayLayout     = "2006-01-02"
)

// OccupiedSlot is one booked meeting with its derived end.
type OccupiedSlot struct {
	UID   string    `json:"uid,omitempty"`
	Name  string    `json:"name,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ListCalendarResponse is returned by GET /api/v1/calendar.
type ListCalendarResponse struct {
	Occupied []OccupiedSlot `json:"occupied"`
}

// ListCalendar returns the occupied calendar, optionally limited to a
// Spanish range expression such as "esta semana" or "mañana".
// GET /api/v1/calendar?range=
func (s *APIV1Service) ListCalendar(c echo.Context) error {
	ctx := c.Request().Context()

	var window *aitime.TimeRange
	if raw := strings.TrimSpace(c.QueryParam("range")); raw != "" {
		tr, err := s.Times.ParseNaturalTime(ctx, raw, time.Now())
		if err != nil {
			return writeError(c, apierrors.InvalidArgument("invalid range").WithContext("range", raw))
		}
		window = &tr
	}

	records, err := s.Calendar.ListOccupied(ctx)
	if err != nil {
		return writeError(c, apierrors.ServiceUnavailable("calendar unavailable", err))
	}

	resp := ListCalendarResponse{Occupied: make([]OccupiedSlot, 0, len(records))}
	for _, r := range records {
		if window != nil && !window.Contains(r.Start) {
			continue
		}
		resp.Occupied = append(resp.Occupied, OccupiedSlot{
			UID:   r.UID,
			Name:  r.Name,
			Start: r.Start,
			End:   r.Start.Add(s.Profile.MeetingDuration),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// AddBookingRequest is the body of POST /api/v1/calendar.
type AddBookingRequest struct {
	Name  string `json:"name"`
	Start string `json:"start"`
}

// AddBooking records an occupied meeting.
// POST /api/v1/calendar
func (s *APIV1Service) AddBooking(c echo.Context) error {
	var req AddBookingRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	start, err := parseBookingStart(req.Start, s.location)
	if err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid start, use RFC 3339 or yyyy/MM/dd HH:mm:ss").WithContext("start", req.Start))
	}

	booking, err := s.Calendar.AddBooking(c.Request().Context(), req.Name, start)
	if err != nil {
		return writeError(c, apierrors.ServiceUnavailable("failed to add booking", err))
	}
	return c.JSON(http.StatusCreated, OccupiedSlot{
		UID:   booking.UID,
		Name:  booking.Name,
		Start: start,
		End:   start.Add(s.Profile.MeetingDuration),
	})
}

// ListFreeSlotsResponse is returned by GET /api/v1/calendar/free.
type ListFreeSlotsResponse struct {
	Date  string           `json:"date"`
	Slots []sched.TimeSlot `json:"slots"`
}

// ListFreeSlots lists the bookable starts of one day inside business hours.
// GET /api/v1/calendar/free?date=2006-01-02
func (s *APIV1Service) ListFreeSlots(c echo.Context) error {
	raw := c.QueryParam("date")
	day, err := time.ParseInLocation(dayLayout, raw, s.location)
	if err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid date, use yyyy-MM-dd").WithContext("date", raw))
	}

	records, err := s.Calendar.ListOccupied(c.Request().Context())
	if err != nil {
		return writeError(c, apierrors.ServiceUnavailable("calendar unavailable", err))
	}
	calendar := sched.ToIntervals(records, s.Profile.MeetingDuration)
	slots := sched.FreeSlotsOn(calendar, day, s.Policy, s.Profile.MeetingDuration)
	if slots == nil {
		slots = []sched.TimeSlot{}
	}
	return c.JSON(http.StatusOK, ListFreeSlotsResponse{Date: raw, Slots: slots})
}

func parseBookingStart(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation(bookingLayout, raw, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation(shortLayout, raw, loc)
}
