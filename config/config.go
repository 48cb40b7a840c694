package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"ledgerbot/database"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	LedgerBackendPostgres = "postgres"
	LedgerBackendSheets   = "sheets"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Ledger configuration
	LedgerBackend            string // "postgres" or "sheets"
	GoogleSheetsID           string
	GoogleServiceAccountFile string
	MonthlyBudget            decimal.Decimal
	FamilyAccountIDs         []string // Discord IDs merged into the family report
	AdminAccountIDs          []string // Discord IDs allowed to trigger a reconciliation
	SummaryFontFile          string   // TrueType font with CJK glyphs for summary cards; empty uses Go Mono

	// Content parser configuration
	GeminiAPIKey string
	GeminiModel  string

	// Invoice lottery configuration
	AnnouncementURL     string
	AnnouncementTimeout time.Duration
	ReconcileSchedule   string // cron spec, evaluated in Timezone
	Timezone            string
	NotifyDedupe        bool

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated); empty disables publishing

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// FromEnv reads the configuration without validating required values.
// One-shot commands use it when they only need part of the configuration.
func FromEnv() *Config {
	loadDotEnv()
	return fromEnv()
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Location returns the time zone used for ledger dates and the reconciliation schedule
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsAdmin reports whether accountID may run administrative commands
func (c *Config) IsAdmin(accountID string) bool {
	for _, id := range c.AdminAccountIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from the environment and validates it
func load() (*Config, error) {
	loadDotEnv()
	config := fromEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadDotEnv loads a .env file when present; real environment variables win
func loadDotEnv() {
	file := getEnvWithDefault("ENV_FILE", ".env")
	if _, err := os.Stat(file); err == nil {
		_ = godotenv.Load(file)
	}
}

func fromEnv() *Config {
	config := &Config{
		// Discord
		DiscordToken: os.Getenv("DISCORD_TOKEN"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Ledger
		LedgerBackend:            strings.ToLower(getEnvWithDefault("LEDGER_BACKEND", LedgerBackendPostgres)),
		GoogleSheetsID:           os.Getenv("GOOGLE_SHEETS_ID"),
		GoogleServiceAccountFile: getEnvWithDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "service_account.json"),
		MonthlyBudget:            decimal.NewFromInt(20000),
		FamilyAccountIDs:         splitList(os.Getenv("FAMILY_ACCOUNT_IDS")),
		AdminAccountIDs:          splitList(os.Getenv("ADMIN_ACCOUNT_IDS")),
		SummaryFontFile:          os.Getenv("SUMMARY_FONT_FILE"),

		// Content parser
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash"),

		// Invoice lottery
		AnnouncementURL:     getEnvWithDefault("ANNOUNCEMENT_URL", "https://invoice.etax.nat.gov.tw/"),
		AnnouncementTimeout: 20 * time.Second,
		ReconcileSchedule:   getEnvWithDefault("RECONCILE_SCHEDULE", "0 9 * * *"),
		Timezone:            getEnvWithDefault("TIMEZONE", "Asia/Taipei"),
		NotifyDedupe:        getEnvWithDefault("NOTIFY_DEDUPE", "true") != "false",

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "ledgerbot"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: 60000,

		// Logging
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		// Environment
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	// Override defaults if environment variables are set
	if budget := os.Getenv("MONTHLY_BUDGET"); budget != "" {
		if parsed, err := decimal.NewFromString(budget); err == nil {
			config.MonthlyBudget = parsed
		}
	}
	if timeout := os.Getenv("ANNOUNCEMENT_TIMEOUT"); timeout != "" {
		if parsed, err := parseDuration(timeout); err == nil && parsed > 0 {
			config.AnnouncementTimeout = parsed
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	return config
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "test" {
		return nil
	}

	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}

	switch c.LedgerBackend {
	case LedgerBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres ledger")
		}
	case LedgerBackendSheets:
		if c.GoogleSheetsID == "" {
			return fmt.Errorf("GOOGLE_SHEETS_ID is required for the sheets ledger")
		}
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}

	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// parseDuration accepts Go durations ("20s") and plain seconds ("20")
func parseDuration(value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		DiscordToken:        "test-token",
		LedgerBackend:       LedgerBackendPostgres,
		MonthlyBudget:       decimal.NewFromInt(20000),
		AnnouncementURL:     "https://invoice.etax.nat.gov.tw/",
		AnnouncementTimeout: 20 * time.Second,
		ReconcileSchedule:   "0 9 * * *",
		Timezone:            "Asia/Taipei",
		NotifyDedupe:        true,
		AdminAccountIDs:     []string{"999999"},
		GeminiModel:         "gemini-1.5-flash",
		OTelExporterType:    "none",
		LogLevel:            "info",
	}
}
