package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	TelegramBot TelegramBotConfig
	Billing     BillingConfig
	PostgreSQL  PostgreSQLConfig
	Enforcement EnforcementConfig
	Server      ServerConfig

	ReceiptsDir   string
	LocalesDir    string
	DefaultLocale string

	adminIDs map[int64]struct{}
}

// TelegramBotConfig holds Telegram bot configuration
type TelegramBotConfig struct {
	Token string
	// AdminIDs is parsed by hand: it may arrive as a YAML list or as a
	// comma-separated ADMIN_IDS environment value.
	AdminIDs []int64 `mapstructure:"-"`
}

// BillingConfig holds the billing cycle parameters. AnchorDay is the
// day-of-month the subscription renews on; reminders go out one day
// before it and enforcement runs three days after.
type BillingConfig struct {
	AnchorDay    int
	ReminderHour int
	EnforceHour  int
	PromptPayID  string
}

// PostgreSQLConfig holds database configuration
type PostgreSQLConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	Schema       string
	PoolMaxConns int
}

// EnforcementConfig holds the external enforcement script settings.
// Accounts maps a member's Telegram ID to their account name in the
// external system; members without a mapping are skipped.
type EnforcementConfig struct {
	Script   string
	Accounts map[int64]string `mapstructure:"-"`
}

// ServerConfig holds the optional HTTP status server configuration.
// An empty Port disables the server.
type ServerConfig struct {
	Port string
}

func setDefaults() {
	viper.SetDefault("PostgreSQL.Host", "localhost")
	viper.SetDefault("PostgreSQL.Port", 5432)
	viper.SetDefault("PostgreSQL.User", "postgres")
	viper.SetDefault("PostgreSQL.DBName", "billing-db")
	viper.SetDefault("PostgreSQL.Schema", "public")
	viper.SetDefault("PostgreSQL.PoolMaxConns", 10)

	viper.SetDefault("Billing.AnchorDay", 10)
	viper.SetDefault("Billing.ReminderHour", 10)
	viper.SetDefault("Billing.EnforceHour", 11)

	viper.SetDefault("ReceiptsDir", "receipts")
	viper.SetDefault("LocalesDir", "locales")
	viper.SetDefault("DefaultLocale", "en")
}

// Load reads configuration from the given file and the environment.
// BOT_TOKEN, ADMIN_IDS and BILLING_ANCHOR_DAY always override the file
// so the bot can run from a plain .env in development.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	setDefaults()

	viper.BindEnv("TelegramBot.Token", "BOT_TOKEN")
	viper.BindEnv("TelegramBot.AdminIDs", "ADMIN_IDS")
	viper.BindEnv("Billing.AnchorDay", "BILLING_ANCHOR_DAY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine as long as the environment carries
		// everything required.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.TelegramBot.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if cfg.Billing.AnchorDay < 1 || cfg.Billing.AnchorDay > 31 {
		return nil, fmt.Errorf("billing anchor day must be 1-31, got %d", cfg.Billing.AnchorDay)
	}

	ids, err := ParseAdminIDs(strings.Join(viper.GetStringSlice("TelegramBot.AdminIDs"), ","))
	if err != nil {
		return nil, err
	}
	cfg.TelegramBot.AdminIDs = ids
	cfg.adminIDs = make(map[int64]struct{}, len(cfg.TelegramBot.AdminIDs))
	for _, id := range cfg.TelegramBot.AdminIDs {
		cfg.adminIDs[id] = struct{}{}
	}

	// YAML map keys come in as strings; the account map is keyed by
	// Telegram ID, so convert here and reject junk early.
	cfg.Enforcement.Accounts = map[int64]string{}
	for k, v := range viper.GetStringMapString("Enforcement.Accounts") {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Telegram ID %q in Enforcement.Accounts: %w", k, err)
		}
		cfg.Enforcement.Accounts[id] = v
	}

	if err := os.MkdirAll(cfg.ReceiptsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory %s: %w", cfg.ReceiptsDir, err)
	}

	return &cfg, nil
}

// IsAdmin reports whether the given Telegram ID is in the configured
// admin allow-list.
func (c *Config) IsAdmin(userID int64) bool {
	_, ok := c.adminIDs[userID]
	return ok
}

// ParseAdminIDs parses a comma-separated list of Telegram IDs.
func ParseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
