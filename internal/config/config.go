package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service and its tools.
type Config struct {
	AppEnv  string
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string

	ShopTimezone           string
	EnforceHoursOnOrdering bool

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	DailyReportCron string

	RateLimitRPS   float64
	RateLimitBurst int

	Owner OwnerConfig
}

// OwnerConfig carries the inputs of the owner provisioning command.
type OwnerConfig struct {
	Name     string
	Email    string
	Phone    string
	Username string
	Password string
}

// Database drivers understood by the database package.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Load reads .env (if present) and the environment into a Config for the server.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProvisioning reads the configuration of the owner provisioning command.
// It needs the database and the OWNER_* settings but no JWT secret.
func LoadProvisioning() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateDatabase(); err != nil {
		return nil, err
	}
	var missing []string
	for name, value := range map[string]string{
		"OWNER_NAME":     cfg.Owner.Name,
		"OWNER_EMAIL":    cfg.Owner.Email,
		"OWNER_PHONE":    cfg.Owner.Phone,
		"OWNER_USERNAME": cfg.Owner.Username,
		"OWNER_PASSWORD": cfg.Owner.Password,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing owner settings: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func read() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SHOP_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("ORDERS_ENFORCE_SHOP_HOURS", false)
	v.SetDefault("RAZORPAY_KEY_ID", "")
	v.SetDefault("RAZORPAY_KEY_SECRET", "")
	v.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	v.SetDefault("DAILY_REPORT_CRON", "0 0 21 * * *")
	v.SetDefault("RATE_LIMIT_RPS", 2)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("OWNER_NAME", "")
	v.SetDefault("OWNER_EMAIL", "")
	v.SetDefault("OWNER_PHONE", "")
	v.SetDefault("OWNER_USERNAME", "")
	v.SetDefault("OWNER_PASSWORD", "")
	v.SetDefault("OWNER_PASSWORD_FILE", "")
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	cfg := &Config{
		AppEnv:                 v.GetString("APP_ENV"),
		AppPort:                v.GetString("APP_PORT"),
		DatabaseDriver:         strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:            v.GetString("DATABASE_DSN"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		JWTTTL:                 v.GetDuration("JWT_TTL"),
		RabbitMQURL:            v.GetString("RABBITMQ_URL"),
		ShopTimezone:           v.GetString("SHOP_TIMEZONE"),
		EnforceHoursOnOrdering: v.GetBool("ORDERS_ENFORCE_SHOP_HOURS"),
		RazorpayKeyID:          v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:      v.GetString("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:        v.GetString("RAZORPAY_BASE_URL"),
		DailyReportCron:        v.GetString("DAILY_REPORT_CRON"),
		RateLimitRPS:           v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:         v.GetInt("RATE_LIMIT_BURST"),
		Owner: OwnerConfig{
			Name:     v.GetString("OWNER_NAME"),
			Email:    v.GetString("OWNER_EMAIL"),
			Phone:    v.GetString("OWNER_PHONE"),
			Username: v.GetString("OWNER_USERNAME"),
			Password: v.GetString("OWNER_PASSWORD"),
		},
	}

	// A mounted secret file wins over a plain variable.
	if path := v.GetString("OWNER_PASSWORD_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read OWNER_PASSWORD_FILE: %w", err)
		}
		cfg.Owner.Password = strings.TrimSpace(string(data))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return c.validateDatabase()
}

func (c *Config) validateDatabase() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %q", c.DatabaseDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

// PaymentsEnabled reports whether online payment verification is configured.
func (c *Config) PaymentsEnabled() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// Location resolves ShopTimezone, falling back to UTC.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ShopTimezone)
	if err != nil {
		return time.UTC, fmt.Errorf("unknown SHOP_TIMEZONE %q: %w", c.ShopTimezone, err)
	}
	return loc, nil
}
