package aitime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Patterns for Spanish date expressions. Input is lower-cased before matching.
var (
	isoDatePattern  = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})(?:[ t]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)
	dmyDatePattern  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayPattern = regexp.MustCompile(`\b(\d{1,2})\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)(?:\s+(?:de|del)\s+(\d{4}))?`)
	relativePattern = regexp.MustCompile(`\b(?:en|dentro de)\s+(\d+)\s*(minutos?|horas?|d[ií]as?|semanas?)`)
	weekdayPattern  = regexp.MustCompile(`(?:(pr[oó]ximo)\s+)?\b(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)(\s+(?:pr[oó]ximo|que viene))?`)

	clockPattern     = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::\d{2})?`)
	hourPattern      = regexp.MustCompile(`\b(?:a\s+)?las?\s+(\d{1,2})\b(?:\s*(?:hs|h|horas)\b)?`)
	hourWordPattern  = regexp.MustCompile(`\b(?:a\s+)?las?\s+(una|dos|tres|cuatro|cinco|seis|siete|ocho|nueve|diez|once|doce)\b`)
	bareHourPattern  = regexp.MustCompile(`\b(\d{1,2})\s*(?:hs|h)\b`)
	dayHourPattern   = regexp.MustCompile(`\b(?:hoy|ma[nñ]ana|lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\s+(\d{1,2})\b`)
	monthFollows     = regexp.MustCompile(`^\s+de\s`)
	meridiemPattern  = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)(?:\W|$)`)
	minuteSuffix     = regexp.MustCompile(`^\s+(y media|y cuarto|menos cuarto|y (\d{1,2}))\b`)
	morningPeriod    = regexp.MustCompile(`(?:de|por) la (?:ma[nñ]ana|madrugada)`)
	afternoonPeriod  = regexp.MustCompile(`(?:de|por) la (?:tarde|noche)`)
	nightPeriod      = regexp.MustCompile(`(?:de|por) la noche`)
	noonKeywordRegex = regexp.MustCompile(`\bmediod[ií]a\b`)
)

// relDateOffsets lists relative day keywords, longest first so that
// "pasado mañana" wins over "mañana".
var relDateOffsets = []struct {
	keyword string
	offset  int
}{
	{"pasado mañana", 2},
	{"pasado manana", 2},
	{"anteayer", -2},
	{"antier", -2},
	{"mañana", 1},
	{"manana", 1},
	{"hoy", 0},
	{"ayer", -1},
}

// periodHours maps a period of the day to a typical meeting hour.
var periodHours = []struct {
	keyword string
	hour    int
}{
	{"por la mañana", 9},
	{"por la manana", 9},
	{"por la tarde", 15},
	{"por la noche", 20},
}

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var spanishWeekdays = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
}

var hourWords = map[string]int{
	"una": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5, "seis": 6,
	"siete": 7, "ocho": 8, "nueve": 9, "diez": 10, "once": 11, "doce": 12,
}

// DefaultHour is used when an expression names a day but no time.
const DefaultHour = 12

// Parser parses Spanish natural language date expressions.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewParser creates a new time parser with the given timezone.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.Local
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
	}
}

// WithReference returns a parser that resolves relative expressions against ref.
func (p *Parser) WithReference(ref time.Time) *Parser {
	return &Parser{
		timezone: p.timezone,
		now:      func() time.Time { return ref },
	}
}

// Parse returns the first date/time found in input.
func (p *Parser) Parse(input string) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty input")
	}

	now := p.now().In(p.timezone)

	if t, ok := p.tryStandardFormats(input, now); ok {
		return t, nil
	}
	if t, ok, err := p.tryNumericDate(input); ok || err != nil {
		return t, err
	}
	if t, ok := p.tryRelativeTime(input, now); ok {
		return t, nil
	}

	return p.parseSpanishTime(input, now)
}

// tryStandardFormats attempts to parse the whole input as a standard layout.
func (p *Parser) tryStandardFormats(input string, now time.Time) (time.Time, bool) {
	formats := []string{
		time.RFC3339,
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"02/01/2006 15:04",
		"15:04:05",
		"15:04",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, strings.ToUpper(input), p.timezone); err == nil {
			// If only time, use today's date
			if format == "15:04:05" || format == "15:04" {
				return time.Date(now.Year(), now.Month(), now.Day(),
					t.Hour(), t.Minute(), t.Second(), 0, p.timezone), true
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// tryNumericDate finds yyyy/MM/dd or dd/MM/yyyy anywhere in the input.
// Out of range month or day values are reported as errors rather than normalized.
func (p *Parser) tryNumericDate(input string) (time.Time, bool, error) {
	if m := isoDatePattern.FindStringSubmatch(input); m != nil {
		year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if !validDate(year, month, day) {
			return time.Time{}, false, fmt.Errorf("invalid date: %s", m[0])
		}
		if m[4] != "" {
			hour, minute, second := atoi(m[4]), atoi(m[5]), atoi(m[6])
			if hour > 23 || minute > 59 || second > 59 {
				return time.Time{}, false, fmt.Errorf("invalid time: %s", m[0])
			}
			return time.Date(year, time.Month(month), day, hour, minute, second, 0, p.timezone), true, nil
		}
		rest := strings.Replace(input, m[0], " ", 1)
		return p.onDay(rest, year, time.Month(month), day), true, nil
	}

	if m := dmyDatePattern.FindStringSubmatch(input); m != nil {
		day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if !validDate(year, month, day) {
			return time.Time{}, false, fmt.Errorf("invalid date: %s", m[0])
		}
		rest := strings.Replace(input, m[0], " ", 1)
		return p.onDay(rest, year, time.Month(month), day), true, nil
	}

	return time.Time{}, false, nil
}

// onDay combines a known calendar day with whatever time input names.
func (p *Parser) onDay(input string, year int, month time.Month, day int) time.Time {
	hour, minute, found := p.parseTimePart(input)
	if !found {
		hour, minute = DefaultHour, 0
	}
	return time.Date(year, month, day, hour, minute, 0, 0, p.timezone)
}

// tryRelativeTime parses expressions like "en 2 horas" or "dentro de 3 días".
func (p *Parser) tryRelativeTime(input string, now time.Time) (time.Time, bool) {
	m := relativePattern.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, false
	}

	n := atoi(m[1])
	switch unit := m[2]; {
	case strings.HasPrefix(unit, "minuto"):
		return now.Add(time.Duration(n) * time.Minute), true
	case strings.HasPrefix(unit, "hora"):
		return now.Add(time.Duration(n) * time.Hour), true
	case strings.HasPrefix(unit, "semana"):
		return now.AddDate(0, 0, 7*n), true
	default:
		return now.AddDate(0, 0, n), true
	}
}

// parseSpanishTime parses day keywords, weekdays and "15 de marzo" combined with a time.
func (p *Parser) parseSpanishTime(input string, now time.Time) (time.Time, error) {
	result := now
	dateModified := false

	// "de la mañana" names a period, not tomorrow.
	dayInput := morningPeriod.ReplaceAllString(input, " ")

	if m := monthDayPattern.FindStringSubmatch(dayInput); m != nil {
		day, month := atoi(m[1]), spanishMonths[m[2]]
		year := now.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
		if !validDate(year, int(month), day) {
			return time.Time{}, fmt.Errorf("invalid date: %s", m[0])
		}
		result = time.Date(year, month, day, 0, 0, 0, 0, p.timezone)
		if m[3] == "" && result.Before(startOfDay(now)) {
			result = result.AddDate(1, 0, 0)
		}
		dateModified = true
	}

	if !dateModified {
		for _, rel := range relDateOffsets {
			if strings.Contains(dayInput, rel.keyword) {
				result = result.AddDate(0, 0, rel.offset)
				dateModified = true
				break
			}
		}
	}

	if !dateModified {
		if weekday, ok := p.parseWeekday(dayInput, now); ok {
			result = weekday
			dateModified = true
		}
	}

	hour, minute, timeFound := p.parseTimePart(input)
	if timeFound {
		return time.Date(result.Year(), result.Month(), result.Day(),
			hour, minute, 0, 0, p.timezone), nil
	}

	if dateModified {
		return time.Date(result.Year(), result.Month(), result.Day(),
			DefaultHour, 0, 0, 0, p.timezone), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", input)
}

// parseWeekday returns the next occurrence of the named weekday, today included.
// "próximo" or "que viene" skip today.
func (p *Parser) parseWeekday(input string, now time.Time) (time.Time, bool) {
	m := weekdayPattern.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, false
	}

	target := spanishWeekdays[m[2]]
	diff := (int(target) - int(now.Weekday()) + 7) % 7
	if diff == 0 && (m[1] != "" || m[3] != "") {
		diff = 7
	}
	return now.AddDate(0, 0, diff), true
}

// parseTimePart parses the time part of an expression.
func (p *Parser) parseTimePart(input string) (hour, minute int, found bool) {
	hour = -1
	explicitMeridiem := ""
	quarterTo := false

	if m := meridiemPattern.FindStringSubmatch(input); m != nil {
		hour = atoi(m[1])
		if m[2] != "" {
			minute = atoi(m[2])
		}
		explicitMeridiem = strings.ReplaceAll(m[3], ".", "")
	} else if m := clockPattern.FindStringSubmatch(input); m != nil {
		hour, minute = atoi(m[1]), atoi(m[2])
	} else if loc := hourPattern.FindStringSubmatchIndex(input); loc != nil {
		hour = atoi(input[loc[2]:loc[3]])
		minute, quarterTo = parseMinuteSuffix(input[loc[1]:])
	} else if loc := hourWordPattern.FindStringSubmatchIndex(input); loc != nil {
		hour = hourWords[input[loc[2]:loc[3]]]
		minute, quarterTo = parseMinuteSuffix(input[loc[1]:])
	} else if loc := bareHourPattern.FindStringSubmatchIndex(input); loc != nil {
		hour = atoi(input[loc[2]:loc[3]])
		minute, quarterTo = parseMinuteSuffix(input[loc[1]:])
	} else if loc := findDayHour(input); loc != nil {
		hour = atoi(input[loc[2]:loc[3]])
		minute, quarterTo = parseMinuteSuffix(input[loc[1]:])
	}

	if hour == -1 {
		if noonKeywordRegex.MatchString(input) {
			return 12, 0, true
		}
		for _, period := range periodHours {
			if strings.Contains(input, period.keyword) {
				return period.hour, 0, true
			}
		}
		return -1, 0, false
	}

	if hour > 23 || minute < 0 || minute > 59 {
		return -1, 0, false
	}

	// Apply AM/PM modifiers
	if hour <= 12 {
		switch {
		case hour == 12 && explicitMeridiem == "" && nightPeriod.MatchString(input):
			hour = 0
		case explicitMeridiem == "pm" || afternoonPeriod.MatchString(input):
			if hour < 12 {
				hour += 12
			}
		case explicitMeridiem == "am" || morningPeriod.MatchString(input):
			if hour == 12 {
				hour = 0
			}
		case hour >= 1 && hour <= 6:
			// Ambiguous 1-6 defaults to the afternoon, the usual meeting time.
			hour += 12
		}
	}

	// "menos cuarto" counts back from the hour once its period is known.
	if quarterTo {
		hour--
		if hour < 0 {
			hour = 23
		}
	}

	return hour, minute, true
}

// findDayHour returns the submatch index of an hour written right after a day
// keyword ("mañana 10", "el viernes 9"), skipping day numbers such as
// "lunes 15 de marzo".
func findDayHour(input string) []int {
	for _, loc := range dayHourPattern.FindAllStringSubmatchIndex(input, -1) {
		if !monthFollows.MatchString(input[loc[1]:]) {
			return loc
		}
	}
	return nil
}

// parseMinuteSuffix reads "y media", "y cuarto", "menos cuarto" or "y 20"
// after an hour. quarterTo reports "menos cuarto"; the caller moves the hour back.
func parseMinuteSuffix(rest string) (minute int, quarterTo bool) {
	m := minuteSuffix.FindStringSubmatch(rest)
	if m == nil {
		return 0, false
	}
	switch m[1] {
	case "y media":
		return 30, false
	case "y cuarto":
		return 15, false
	case "menos cuarto":
		return 45, true
	default:
		return atoi(m[2]), false
	}
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
