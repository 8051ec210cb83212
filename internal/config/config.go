package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Outbound reference registries
	DrugRegistryURL       string `mapstructure:"DRUG_REGISTRY_URL"`
	SupplementRegistryURL string `mapstructure:"SUPPLEMENT_REGISTRY_URL"`
	APITimeoutMS          int    `mapstructure:"API_TIMEOUT_MS"`

	// Interaction result cache
	CacheMaxSize             int `mapstructure:"CACHE_MAX_SIZE"`
	InteractionCacheTTLHours int `mapstructure:"INTERACTION_CACHE_TTL_HOURS"`

	// Timing conflict detection
	MinDoseIntervalMinutes int `mapstructure:"MIN_DOSE_INTERVAL_MINUTES"`

	// Safety score weighting. These are product-tuned values, not
	// validated clinical thresholds; keep them overridable.
	ScoreSeverityWeight float64 `mapstructure:"SCORE_SEVERITY_WEIGHT"`
	ScoreTimingWeight   float64 `mapstructure:"SCORE_TIMING_WEIGHT"`

	// Missed-dose escalation thresholds
	EscalationAlertMinutes  int `mapstructure:"ESCALATION_ALERT_MINUTES"`
	EscalationUrgentMinutes int `mapstructure:"ESCALATION_URGENT_MINUTES"`
	EscalationAlertMissed   int `mapstructure:"ESCALATION_ALERT_MISSED"`
	EscalationUrgentMissed  int `mapstructure:"ESCALATION_URGENT_MISSED"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Escalation notification contacts
	NotifyUserEmail     string `mapstructure:"NOTIFY_USER_EMAIL"`
	NotifyFamilyPhone   string `mapstructure:"NOTIFY_FAMILY_PHONE"`
	NotifyProviderEmail string `mapstructure:"NOTIFY_PROVIDER_EMAIL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DRUG_REGISTRY_URL", "https://api.fda.gov/drug/label.json")
	v.SetDefault("SUPPLEMENT_REGISTRY_URL", "https://supplement-registry.example.com/v1")
	v.SetDefault("API_TIMEOUT_MS", 5000)
	v.SetDefault("CACHE_MAX_SIZE", 1000)
	v.SetDefault("INTERACTION_CACHE_TTL_HOURS", 72)
	v.SetDefault("MIN_DOSE_INTERVAL_MINUTES", 30)
	v.SetDefault("SCORE_SEVERITY_WEIGHT", 0.7)
	v.SetDefault("SCORE_TIMING_WEIGHT", 0.3)
	v.SetDefault("ESCALATION_ALERT_MINUTES", 60)
	v.SetDefault("ESCALATION_URGENT_MINUTES", 120)
	v.SetDefault("ESCALATION_ALERT_MISSED", 1)
	v.SetDefault("ESCALATION_URGENT_MISSED", 2)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("DRUG_REGISTRY_URL")
	v.BindEnv("SUPPLEMENT_REGISTRY_URL")
	v.BindEnv("API_TIMEOUT_MS")
	v.BindEnv("CACHE_MAX_SIZE")
	v.BindEnv("INTERACTION_CACHE_TTL_HOURS")
	v.BindEnv("MIN_DOSE_INTERVAL_MINUTES")
	v.BindEnv("SCORE_SEVERITY_WEIGHT")
	v.BindEnv("SCORE_TIMING_WEIGHT")
	v.BindEnv("ESCALATION_ALERT_MINUTES")
	v.BindEnv("ESCALATION_URGENT_MINUTES")
	v.BindEnv("ESCALATION_ALERT_MISSED")
	v.BindEnv("ESCALATION_URGENT_MISSED")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("NOTIFY_USER_EMAIL")
	v.BindEnv("NOTIFY_FAMILY_PHONE")
	v.BindEnv("NOTIFY_PROVIDER_EMAIL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is internally consistent. The
// score weights must form a convex combination so the safety score stays
// in [0,1], and the urgent escalation thresholds must sit above the alert
// thresholds or the level mapping loses monotonicity.
func (c *Config) Validate() error {
	if c.APITimeoutMS <= 0 {
		return fmt.Errorf("API_TIMEOUT_MS must be positive, got %d", c.APITimeoutMS)
	}
	if c.CacheMaxSize <= 0 {
		return fmt.Errorf("CACHE_MAX_SIZE must be positive, got %d", c.CacheMaxSize)
	}
	if c.MinDoseIntervalMinutes <= 0 {
		return fmt.Errorf("MIN_DOSE_INTERVAL_MINUTES must be positive, got %d", c.MinDoseIntervalMinutes)
	}
	if c.ScoreSeverityWeight < 0 || c.ScoreTimingWeight < 0 {
		return fmt.Errorf("score weights must be non-negative")
	}
	sum := c.ScoreSeverityWeight + c.ScoreTimingWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("SCORE_SEVERITY_WEIGHT + SCORE_TIMING_WEIGHT must equal 1.0, got %g", sum)
	}
	if c.EscalationUrgentMinutes <= c.EscalationAlertMinutes {
		return fmt.Errorf("ESCALATION_URGENT_MINUTES (%d) must exceed ESCALATION_ALERT_MINUTES (%d)",
			c.EscalationUrgentMinutes, c.EscalationAlertMinutes)
	}
	if c.EscalationUrgentMissed <= c.EscalationAlertMissed {
		return fmt.Errorf("ESCALATION_URGENT_MISSED (%d) must exceed ESCALATION_ALERT_MISSED (%d)",
			c.EscalationUrgentMissed, c.EscalationAlertMissed)
	}
	return nil
}
