package schedule

import (
	"fmt"
	"strings"
	"unicode"

	sched "github.com/hrygo/agenda/server/service/schedule"
)

// User-facing replies.
const (
	MsgProgress            = "Dame un momento para consultar la agenda..."
	MsgMissingDate         = "Parece que no me diste una fecha o hora. ¿Podrías proporcionarme la fecha y hora que prefieres para tu cita?"
	MsgNoAvailability      = "Lo siento, no hay disponibilidad en este momento. ¿Te gustaría intentar con otro día o hora?"
	MsgUnparsableDate      = "No pude entender la fecha. ¿Podrías proporcionarme más detalles?"
	MsgInvalidDate         = "La fecha proporcionada no es válida. Por favor, intenta de nuevo con el formato correcto: `YYYY/MM/DD HH:mm`"
	MsgSlotOccupied        = "Lo siento, esa hora ya está reservada. ¿Podrías elegir otro horario?"
	MsgConfirmed           = "Tu reserva ha sido confirmada. ¡Nos vemos pronto!"
	MsgReprompt            = "Lo siento, no pude procesar tu respuesta. ¿Quieres confirmar o cambiar tu reserva?"
	MsgCalendarUnavailable = "Lo siento, no pude consultar la agenda en este momento. ¿Podrías intentarlo de nuevo en unos minutos?"
	MsgConfirmationFailed  = "Lo siento, no pude registrar tu reserva en este momento. ¿Quieres que lo intente de nuevo?"
)

// SuggestedMessage offers slot as the next available time.
func SuggestedMessage(slot sched.ResolvedSlot) string {
	return fmt.Sprintf("El siguiente horario está disponible: %s. ¿Te gustaría reservarlo?", slot.Start.Format("2006/01/02 15:04:05"))
}

// OutsideHoursMessage names the opening range of policy.
func OutsideHoursMessage(policy *sched.BusinessHoursPolicy) string {
	return fmt.Sprintf("Lo siento, el horario solicitado está fuera del horario de atención (%s - %s). ¿Puedes elegir otro horario dentro de este rango?", policy.Open, policy.Close)
}

// AcceptedMessage asks the user to confirm slot.
func AcceptedMessage(slot sched.ResolvedSlot) string {
	return fmt.Sprintf("¡Perfecto! Tenemos disponibilidad de %s a %s el día %s. ¿Confirmo tu reserva?",
		slot.Start.Format("03:04 PM"),
		slot.End.Format("03:04 PM"),
		slot.Start.Format("02/01/2006"))
}

// SplitChunks splits msg at sentence ends for delivery as separate messages.
// A period only ends a sentence when followed by whitespace and not preceded
// by a digit, so dates and times stay in one piece.
func SplitChunks(msg string) []string {
	runes := []rune(msg)
	var chunks []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if i > 0 && unicode.IsDigit(runes[i-1]) {
			continue
		}
		chunks = appendChunk(chunks, string(runes[start:i]))
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
		start = i + 1
	}
	return appendChunk(chunks, string(runes[start:]))
}

func appendChunk(chunks []string, chunk string) []string {
	if chunk = strings.TrimSpace(chunk); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}
