package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/plugin/ai"
	"github.com/hrygo/agenda/plugin/ai/aitime"
	"github.com/hrygo/agenda/plugin/ai/cache"
	aischedule "github.com/hrygo/agenda/plugin/ai/schedule"
	"github.com/hrygo/agenda/plugin/ai/session"
	sched "github.com/hrygo/agenda/server/service/schedule"
	"github.com/hrygo/agenda/store"
)

// Components are the scheduling services shared by the HTTP server and the CLI.
type Components struct {
	Policy   *sched.BusinessHoursPolicy
	Calendar sched.Service
	Sessions session.SessionService
	Arbiter  *aischedule.Arbiter

	// Cache is the in-process L1 session cache.
	Cache *cache.Service
	// Redis is the optional L2 session cache, nil when AGENDA_REDIS_ADDR is unset.
	Redis *cache.RedisCache
}

// NewComponents wires the arbiter to the store. messenger may be nil when
// replies are only read from the outcome.
func NewComponents(ctx context.Context, profile *profile.Profile, store *store.Store, messenger aischedule.Messenger) (*Components, error) {
	policy, err := sched.NewBusinessHoursPolicy(profile.BusinessOpen, profile.BusinessClose, profile.BusinessDays)
	if err != nil {
		return nil, fmt.Errorf("invalid business hours: %w", err)
	}
	loc := profile.Location()

	c := &Components{
		Policy:   policy,
		Calendar: sched.NewService(store, loc),
		Cache:    cache.NewService(cache.DefaultServiceConfig()),
	}

	var sessionCache cache.CacheService = c.Cache
	if profile.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.DefaultRedisConfig(profile.RedisAddr))
		if err != nil {
			slog.Warn("redis unavailable, using in-process session cache only",
				"addr", profile.RedisAddr, "error", err)
		} else {
			c.Redis = redisCache
			sessionCache = cache.NewTieredCache(c.Cache, redisCache)
		}
	}
	c.Sessions = session.NewSessionStore(store, sessionCache)

	times := aitime.NewService(loc)
	extractor, err := newExtractor(profile, times)
	if err != nil {
		c.Close()
		return nil, err
	}

	resolver := aischedule.NewResolver(extractor, times, profile.MeetingDuration)
	c.Arbiter = aischedule.NewArbiter(c.Sessions, c.Calendar, c.Calendar, resolver, messenger, aischedule.Config{
		Duration:          profile.MeetingDuration,
		Policy:            policy,
		SuggestionHorizon: profile.SuggestionHorizon,
	})
	return c, nil
}

// newExtractor picks the LLM extractor when AI is configured and the
// rule-based one otherwise.
func newExtractor(profile *profile.Profile, times aitime.TimeService) (aischedule.DateExtractor, error) {
	cfg := ai.NewConfigFromProfile(profile)
	if !cfg.Enabled {
		slog.Info("AI disabled, extracting dates with the rule-based parser")
		return ai.NewRuleExtractor(times), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI config: %w", err)
	}

	llm, err := ai.NewLLMService(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM service: %w", err)
	}
	slog.Info("extracting dates with LLM", "model", cfg.LLM.Model, "base_url", cfg.LLM.BaseURL)
	return ai.NewDateExtractor(llm, profile.Location()), nil
}

// Close releases the Redis connection, if any.
func (c *Components) Close() error {
	if c.Redis == nil {
		return nil
	}
	return c.Redis.Close()
}
