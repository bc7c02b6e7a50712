package schedule

import "errors"

// Resolution and arbitration failures. Callers match them with errors.Is.
var (
	ErrMissingDate              = errors.New("no date or time in the conversation")
	ErrGenericSlotRequested     = errors.New("any available slot requested")
	ErrUnparsableDate           = errors.New("date expression could not be parsed")
	ErrInvalidDate              = errors.New("date is not a valid calendar instant")
	ErrOutsideBusinessHours     = errors.New("slot is outside business hours")
	ErrSlotOccupied             = errors.New("slot is already booked")
	ErrNoAvailability           = errors.New("no available slot found")
	ErrUnrecognizedConfirmation = errors.New("reply is not a confirmation")
	ErrCalendarUnavailable      = errors.New("calendar could not be read")
	ErrConfirmationFailed       = errors.New("reservation could not be confirmed")
)

// Decision is what the arbiter did with one message.
type Decision string

const (
	DecisionAccepted   Decision = "accepted"
	DecisionRejected   Decision = "rejected"
	DecisionSuggested  Decision = "suggested"
	DecisionConfirmed  Decision = "confirmed"
	DecisionReprompted Decision = "reprompted"
)

// Reason codes reported with rejected and reprompted decisions.
type Reason string

const (
	ReasonNone                     Reason = ""
	ReasonMissingDate              Reason = "MISSING_DATE"
	ReasonUnparsableDate           Reason = "UNPARSABLE_DATE"
	ReasonInvalidDate              Reason = "INVALID_DATE"
	ReasonOutsideBusinessHours     Reason = "OUTSIDE_BUSINESS_HOURS"
	ReasonSlotOccupied             Reason = "SLOT_OCCUPIED"
	ReasonNoAvailability           Reason = "NO_AVAILABILITY"
	ReasonUnrecognizedConfirmation Reason = "UNRECOGNIZED_CONFIRMATION"
	ReasonCalendarUnavailable      Reason = "CALENDAR_UNAVAILABLE"
	ReasonConfirmationFailed       Reason = "CONFIRMATION_FAILED"
)

var reasonErrors = []struct {
	err    error
	reason Reason
}{
	{ErrMissingDate, ReasonMissingDate},
	{ErrUnparsableDate, ReasonUnparsableDate},
	{ErrInvalidDate, ReasonInvalidDate},
	{ErrOutsideBusinessHours, ReasonOutsideBusinessHours},
	{ErrSlotOccupied, ReasonSlotOccupied},
	{ErrNoAvailability, ReasonNoAvailability},
	{ErrUnrecognizedConfirmation, ReasonUnrecognizedConfirmation},
	{ErrCalendarUnavailable, ReasonCalendarUnavailable},
	{ErrConfirmationFailed, ReasonConfirmationFailed},
}

// ReasonOf maps an error to its reason code. Unknown errors map to ReasonNone.
func ReasonOf(err error) Reason {
	for _, re := range reasonErrors {
		if errors.Is(err, re.err) {
			return re.reason
		}
	}
	return ReasonNone
}
