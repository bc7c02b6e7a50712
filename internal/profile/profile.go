package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultMeetingMinutes is used when DURATION_MEET is absent, non-numeric or not positive.
	DefaultMeetingMinutes = 45
	DefaultBusinessOpen   = "09:00"
	DefaultBusinessClose  = "18:00"
	DefaultBusinessDays   = "lunes,martes,miercoles,jueves,viernes"
	DefaultRetentionDays  = 30
)

// Profile is the configuration to start the agenda server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where agenda stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Scheduling policy
	MeetingDuration      time.Duration  // DURATION_MEET, minutes (default: 45)
	BusinessOpen         string         // BUSINESS_OPEN (default: 09:00)
	BusinessClose        string         // BUSINESS_CLOSE (default: 18:00)
	BusinessDays         []time.Weekday // BUSINESS_DAYS (default: lunes..viernes)
	Timezone             string         // AGENDA_TIMEZONE (default: Local)
	SuggestionHorizon    time.Duration  // AGENDA_SUGGESTION_HORIZON (default: 0)
	SessionRetentionDays int            // AGENDA_SESSION_RETENTION_DAYS (default: 30)

	// AI Configuration
	AIEnabled       bool   // AGENDA_AI_ENABLED
	AIOpenAIAPIKey  string // AGENDA_AI_OPENAI_API_KEY
	AIOpenAIBaseURL string // AGENDA_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AILLMModel      string // AGENDA_AI_LLM_MODEL (default: gpt-4o-mini)

	// RedisAddr enables the L2 session cache when set.
	RedisAddr string // AGENDA_REDIS_ADDR
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key or a custom base URL is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.AIOpenAIAPIKey != "" || p.AIOpenAIBaseURL != "https://api.openai.com/v1")
}

// Location returns the configured parser location, falling back to time.Local.
func (p *Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.MeetingDuration = time.Duration(parseMeetingMinutes(os.Getenv("DURATION_MEET"))) * time.Minute
	p.BusinessOpen = getEnvOrDefault("BUSINESS_OPEN", DefaultBusinessOpen)
	p.BusinessClose = getEnvOrDefault("BUSINESS_CLOSE", DefaultBusinessClose)

	days, err := ParseWeekdays(getEnvOrDefault("BUSINESS_DAYS", DefaultBusinessDays))
	if err != nil {
		slog.Warn("invalid BUSINESS_DAYS, using default", slog.String("error", err.Error()))
		days, _ = ParseWeekdays(DefaultBusinessDays)
	}
	p.BusinessDays = days

	p.Timezone = os.Getenv("AGENDA_TIMEZONE")
	if v := os.Getenv("AGENDA_SUGGESTION_HORIZON"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			p.SuggestionHorizon = d
		}
	}
	p.SessionRetentionDays = DefaultRetentionDays
	if v, err := strconv.Atoi(os.Getenv("AGENDA_SESSION_RETENTION_DAYS")); err == nil && v > 0 {
		p.SessionRetentionDays = v
	}

	p.AIEnabled = os.Getenv("AGENDA_AI_ENABLED") == "true"
	p.AIOpenAIAPIKey = os.Getenv("AGENDA_AI_OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvOrDefault("AGENDA_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AILLMModel = getEnvOrDefault("AGENDA_AI_LLM_MODEL", "gpt-4o-mini")

	p.RedisAddr = os.Getenv("AGENDA_REDIS_ADDR")
}

// parseMeetingMinutes keeps the historical quirk: zero counts as "unset".
func parseMeetingMinutes(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultMeetingMinutes
	}
	return n
}

var weekdayNames = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseWeekdays parses a comma separated list of Spanish or English weekday names.
func ParseWeekdays(raw string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool)
	var days []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		day, ok := weekdayNames[name]
		if !ok {
			return nil, errors.Errorf("unknown weekday %q", part)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, errors.New("no weekdays given")
	}
	return days, nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.MeetingDuration <= 0 {
		p.MeetingDuration = DefaultMeetingMinutes * time.Minute
	}
	if p.BusinessOpen == "" {
		p.BusinessOpen = DefaultBusinessOpen
	}
	if p.BusinessClose == "" {
		p.BusinessClose = DefaultBusinessClose
	}
	open, err := time.Parse("15:04", p.BusinessOpen)
	if err != nil {
		return errors.Wrapf(err, "invalid business open time %q", p.BusinessOpen)
	}
	closing, err := time.Parse("15:04", p.BusinessClose)
	if err != nil {
		return errors.Wrapf(err, "invalid business close time %q", p.BusinessClose)
	}
	if closing.Before(open) {
		return errors.Errorf("business hours %s-%s span midnight", p.BusinessOpen, p.BusinessClose)
	}
	if len(p.BusinessDays) == 0 {
		p.BusinessDays, _ = ParseWeekdays(DefaultBusinessDays)
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" {
		return nil
	}

	if p.Data == "" {
		if p.Mode == "prod" {
			if runtime.GOOS == "windows" {
				p.Data = filepath.Join(os.Getenv("ProgramData"), "agenda")
			} else {
				p.Data = "/var/opt/agenda"
			}
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		} else {
			p.Data = "."
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.DSN == "" {
		dbFile := fmt.Sprintf("agenda_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
