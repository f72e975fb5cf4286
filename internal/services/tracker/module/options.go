package module

import (
	"time"

	"courtside/internal/platform/config"
)

// Options holds the tracker module configuration
type Options struct {
	Player string
	Team   string

	Kinds      []string
	Accounts   []string
	Variations []string

	Since time.Time
	Until time.Time

	PostLimit int
	UnitDelay time.Duration
	RateEvery time.Duration
	Resume    bool

	OutputDir   string
	MetricsPath string

	TwitterKey     string
	TwitterTimeout time.Duration

	OpenAIKey   string
	OpenAIModel string
	Temperature float64
	MaxTokens   int

	ESPNAthleteID string
	ESPNTimeout   time.Duration

	RetryAttempts int
	RetryBase     time.Duration
}

// FromConfig reads the tracker options from config with CORE_TRACKER_ prefix
func FromConfig(cfg config.Conf) Options {
	tr := cfg.Prefix("CORE_TRACKER_")
	return Options{
		Player: tr.MayString("PLAYER", "Caitlin Clark"),
		Team:   tr.MayString("TEAM", "Indiana Fever"),

		Kinds:      tr.MayCSV("KINDS", []string{"milestone", "shoe", "outfit"}),
		Accounts:   tr.MayCSV("ACCOUNTS", nil),
		Variations: tr.MayCSV("VARIATIONS", []string{"Caitlin Clark"}),

		Since: tr.MayDate("SINCE", time.Now().UTC().AddDate(0, 0, -7)),
		Until: tr.MayDate("UNTIL", time.Now().UTC().AddDate(0, 0, 1)),

		PostLimit: tr.MayInt("POST_LIMIT", 100),
		UnitDelay: tr.MayDuration("UNIT_DELAY", 2*time.Second),
		RateEvery: tr.MayDuration("RATE_EVERY", 1200*time.Millisecond),
		Resume:    tr.MayBool("RESUME", true),

		OutputDir:   tr.MayString("OUTPUT_DIR", "data/records"),
		MetricsPath: tr.MayString("METRICS_PATH", "data/metrics/runs.jsonl"),

		TwitterKey:     tr.MustString("TWITTER_KEY"),
		TwitterTimeout: tr.MayDuration("TWITTER_TIMEOUT", 30*time.Second),

		OpenAIKey:   tr.MustString("OPENAI_KEY"),
		OpenAIModel: tr.MayString("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature: tr.MayFloat64("TEMPERATURE", 0.1),
		MaxTokens:   tr.MayInt("MAX_TOKENS", 800),

		ESPNAthleteID: tr.MayString("ESPN_ATHLETE", "4433403"),
		ESPNTimeout:   tr.MayDuration("ESPN_TIMEOUT", 15*time.Second),

		RetryAttempts: tr.MayInt("RETRIES", 3),
		RetryBase:     tr.MayDuration("RETRY_BASE", 500*time.Millisecond),
	}
}
