package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/agenda/plugin/ai/aitime"
	"github.com/hrygo/agenda/plugin/ai/schedule"
	"github.com/hrygo/agenda/plugin/ai/session"
)

// DatePromptTemplate asks the model for the date the customer wants.
const DatePromptTemplate = `### Contexto
Eres un asistente de inteligencia artificial. Tu propósito es determinar la fecha y hora que el cliente quiere, en el formato yyyy/MM/dd HH:mm:ss.

### Fecha y Hora Actual:
{CURRENT_DAY}

### Registro de Conversación:
{HISTORY}

### Formato de Respuesta:
Responde solo con un objeto JSON {"date": "yyyy/MM/dd HH:mm:ss"}.
Si el cliente pide cualquier horario o un turno sin fecha, responde {"date": "turno"}.
Si el cliente no dio ninguna fecha u hora, responde {"date": ""}.

Asistente: "{respuesta en formato (yyyy/MM/dd HH:mm:ss)}"`

var spanishDayNames = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

// BuildDatePrompt renders DatePromptTemplate for now and the transcript.
func BuildDatePrompt(now time.Time, transcript []session.Message) string {
	currentDay := fmt.Sprintf("%s %s", spanishDayNames[now.Weekday()], now.Format("2006/01/02 15:04:05"))
	return strings.NewReplacer(
		"{CURRENT_DAY}", currentDay,
		"{HISTORY}", formatHistory(transcript),
	).Replace(DatePromptTemplate)
}

func formatHistory(transcript []session.Message) string {
	var sb strings.Builder
	for _, m := range transcript {
		switch m.Role {
		case session.RoleUser:
			sb.WriteString("Cliente: ")
		case session.RoleAssistant:
			sb.WriteString("Asistente: ")
		default:
			continue
		}
		sb.WriteString(m.Content)
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// DateExtractor extracts the desired date from a transcript with an LLM.
type DateExtractor struct {
	llm      LLMService
	location *time.Location
	now      func() time.Time
}

// NewDateExtractor creates an LLM-backed date extractor.
func NewDateExtractor(llm LLMService, loc *time.Location) *DateExtractor {
	if loc == nil {
		loc = time.Local
	}
	return &DateExtractor{
		llm:      llm,
		location: loc,
		now:      time.Now,
	}
}

// ExtractDate returns the date expression the customer asked for, or "" if none.
func (e *DateExtractor) ExtractDate(ctx context.Context, transcript []session.Message) (string, error) {
	prompt := BuildDatePrompt(e.now().In(e.location), transcript)

	answer, err := e.llm.Chat(ctx, []Message{SystemPrompt(prompt)}, WithJSONResponse())
	if err != nil {
		return "", fmt.Errorf("failed to extract date: %w", err)
	}

	date := parseDateAnswer(answer)
	slog.Debug("date extracted", "answer", answer, "date", date)
	return date, nil
}

// parseDateAnswer accepts {"date": ...} or, from models that ignore the
// response format, a bare or quoted date string.
func parseDateAnswer(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") {
		var payload struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal([]byte(s), &payload); err == nil {
			return strings.TrimSpace(payload.Date)
		}
	}

	s = strings.TrimPrefix(s, "Asistente:")
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

// RuleExtractor finds the date in the transcript without an LLM. It scans
// customer messages newest first and returns the first one that asks for
// any slot or that the Spanish parser understands.
type RuleExtractor struct {
	times aitime.TimeService
	now   func() time.Time
}

// NewRuleExtractor creates a rule-based extractor.
func NewRuleExtractor(times aitime.TimeService) *RuleExtractor {
	return &RuleExtractor{
		times: times,
		now:   time.Now,
	}
}

// ExtractDate returns the newest parseable customer message, or "".
func (e *RuleExtractor) ExtractDate(ctx context.Context, transcript []session.Message) (string, error) {
	now := e.now()
	for i := len(transcript) - 1; i >= 0; i-- {
		m := transcript[i]
		if m.Role != session.RoleUser {
			continue
		}
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		if schedule.IsGenericRequest(text) {
			return text, nil
		}
		if _, err := e.times.Normalize(ctx, text, now); err == nil {
			return text, nil
		}
	}
	return "", nil
}

var (
	_ schedule.DateExtractor = (*DateExtractor)(nil)
	_ schedule.DateExtractor = (*RuleExtractor)(nil)
)
