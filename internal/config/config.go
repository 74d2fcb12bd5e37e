// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	BaseURL     string

	// Database
	DatabaseURL string
	RedisURL    string

	// Security
	JWTSecret          string
	BCryptCost         int
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// Matching engine
	MatchTargetGroupSize int
	MatchMinGroupSize    int
	MatchMaxGroupSize    int
	MatchAllowOversize   bool
	MatchSpecialtyPolicy string // "same" or "complement"
	MatchCooldownMode    string // "hard" or "soft"
	MatchCooldownWeeks   int
	MatchCooldownPenalty float64
	MatchMaxSwapPasses   int
	MatchScoreWorkers    int

	MatchSpecialtyWeight    float64
	MatchLocationWeight     float64
	MatchInterestWeight     float64
	MatchAvailabilityWeight float64
	MatchGenderWeight       float64

	// Weekly schedule trigger
	MatchScheduleEnabled bool
	MatchScheduleDay     time.Weekday
	MatchScheduleHour    int
	MatchScheduleMinute  int

	// Run archive (S3)
	ArchiveEnabled bool
	AWSRegion      string
	ArchiveBucket  string

	// Notifications
	EnableEmailNotifications bool
	EnableSMSNotifications   bool
	EnablePushNotifications  bool
	EmailFrom                string
	SendGridAPIKey           string
	TwilioAccountSID         string
	TwilioAuthToken          string
	TwilioFromNumber         string
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", ""),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgresql://localhost:5432/peercircle?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Security
		JWTSecret:          getEnv("JWT_SECRET", "your-super-secret-key-change-this-in-production"),
		BCryptCost:         getEnvInt("BCRYPT_COST", 10),
		AccessTokenExpiry:  getEnvDuration("ACCESS_TOKEN_EXPIRY", "1h"),
		RefreshTokenExpiry: getEnvDuration("REFRESH_TOKEN_EXPIRY", "720h"), // 30 days

		// Matching engine
		MatchTargetGroupSize: getEnvInt("MATCH_TARGET_GROUP_SIZE", 3),
		MatchMinGroupSize:    getEnvInt("MATCH_MIN_GROUP_SIZE", 3),
		MatchMaxGroupSize:    getEnvInt("MATCH_MAX_GROUP_SIZE", 4),
		MatchAllowOversize:   getEnvBool("MATCH_ALLOW_OVERSIZE", false),
		MatchSpecialtyPolicy: getEnv("MATCH_SPECIALTY_POLICY", "same"),
		MatchCooldownMode:    getEnv("MATCH_COOLDOWN_MODE", "hard"),
		MatchCooldownWeeks:   getEnvInt("MATCH_COOLDOWN_WEEKS", 4),
		MatchCooldownPenalty: getEnvFloat("MATCH_COOLDOWN_PENALTY", 0.5),
		MatchMaxSwapPasses:   getEnvInt("MATCH_MAX_SWAP_PASSES", 5),
		MatchScoreWorkers:    getEnvInt("MATCH_SCORE_WORKERS", 4),

		MatchSpecialtyWeight:    getEnvFloat("MATCH_SPECIALTY_WEIGHT", 0.25),
		MatchLocationWeight:     getEnvFloat("MATCH_LOCATION_WEIGHT", 0.20),
		MatchInterestWeight:     getEnvFloat("MATCH_INTEREST_WEIGHT", 0.25),
		MatchAvailabilityWeight: getEnvFloat("MATCH_AVAILABILITY_WEIGHT", 0.15),
		MatchGenderWeight:       getEnvFloat("MATCH_GENDER_WEIGHT", 0.15),

		// Weekly schedule (Monday 09:00 by default)
		MatchScheduleEnabled: getEnvBool("MATCH_SCHEDULE_ENABLED", true),
		MatchScheduleDay:     getEnvWeekday("MATCH_SCHEDULE_DAY", time.Monday),
		MatchScheduleHour:    getEnvInt("MATCH_SCHEDULE_HOUR", 9),
		MatchScheduleMinute:  getEnvInt("MATCH_SCHEDULE_MINUTE", 0),

		// Archive
		ArchiveEnabled: getEnvBool("ARCHIVE_ENABLED", false),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		ArchiveBucket:  getEnv("ARCHIVE_BUCKET", "peercircle-matching-runs"),

		// Notifications
		EnableEmailNotifications: getEnvBool("ENABLE_EMAIL_NOTIFICATIONS", false),
		EnableSMSNotifications:   getEnvBool("ENABLE_SMS_NOTIFICATIONS", false),
		EnablePushNotifications:  getEnvBool("ENABLE_PUSH_NOTIFICATIONS", false),
		EmailFrom:                getEnv("EMAIL_FROM", "noreply@peercircle.app"),
		SendGridAPIKey:           getEnv("SENDGRID_API_KEY", ""),
		TwilioAccountSID:         getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:          getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:         getEnv("TWILIO_FROM_NUMBER", ""),
	}

	if cfg.BaseURL == "" {
		if cfg.Environment == "production" {
			cfg.BaseURL = "https://api.peercircle.app"
		} else {
			cfg.BaseURL = fmt.Sprintf("http://localhost:%s", cfg.Port)
		}
	}

	return cfg
}

// Validate validates the deployment-level configuration. Matching weights
// and sizes get their authoritative check at engine construction; this
// catches the rest before the server comes up.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}

	if c.JWTSecret == "your-super-secret-key-change-this-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret must be changed for production")
	}

	if c.MatchScheduleHour < 0 || c.MatchScheduleHour > 23 {
		return fmt.Errorf("matching schedule hour must be in [0, 23]")
	}
	if c.MatchScheduleMinute < 0 || c.MatchScheduleMinute > 59 {
		return fmt.Errorf("matching schedule minute must be in [0, 59]")
	}

	if c.EnableEmailNotifications && c.SendGridAPIKey == "" {
		return fmt.Errorf("SendGrid API key is required when email notifications are enabled")
	}
	if c.EnableSMSNotifications {
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFromNumber == "" {
			return fmt.Errorf("Twilio configuration incomplete but SMS notifications are enabled")
		}
	}

	if c.ArchiveEnabled && c.ArchiveBucket == "" {
		return fmt.Errorf("archive bucket is required when run archiving is enabled")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper functions

// getEnv gets a string value from environment with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment with a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment with a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment with a default
func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// getEnvBool gets a boolean value from environment with a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvWeekday parses a weekday name, e.g. "monday"
func getEnvWeekday(key string, defaultValue time.Weekday) time.Weekday {
	value := strings.ToLower(os.Getenv(key))
	days := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	if day, ok := days[value]; ok {
		return day
	}
	return defaultValue
}
