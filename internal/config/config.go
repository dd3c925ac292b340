package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Log     LogConfig
	Billing BillingConfig
	Redis   RedisConfig
	S3      S3Config
	Email   EmailConfig
	CORS    CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds storage settings. Driver is "postgres" or "memory".
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BillingConfig holds invoice engine settings.
type BillingConfig struct {
	TimeZone      string `mapstructure:"time_zone"`
	NumberRetries int    `mapstructure:"number_retries"`
}

// Location resolves TimeZone, the zone whose calendar day stamps invoice numbers.
func (b *BillingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading billing time zone %q: %w", b.TimeZone, err)
	}
	return loc, nil
}

// RedisConfig holds the idempotency store settings. An empty Addr disables idempotency keys.
type RedisConfig struct {
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// S3Config holds AWS S3 settings for shared receipts. An empty Bucket disables sharing.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ShopName    string `mapstructure:"shop_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the BILLING_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "shopbill")
	v.SetDefault("db.password", "shopbill_secret")
	v.SetDefault("db.name", "shopbill_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "8h")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "shopbill")

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("billing.time_zone", "Asia/Kolkata")
	v.SetDefault("billing.number_retries", 3)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.idempotency_ttl", "24h")
	v.SetDefault("redis.lock_ttl", "30s")

	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 86400)

	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "billing@example.com")
	v.SetDefault("email.from_name", "Shop Billing")
	v.SetDefault("email.shop_name", "Our Shop")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "BILLING_SERVER_PORT",
		"server.read_timeout":     "BILLING_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "BILLING_SERVER_WRITE_TIMEOUT",
		"server.environment":      "BILLING_SERVER_ENVIRONMENT",
		"db.driver":               "BILLING_DB_DRIVER",
		"db.host":                 "BILLING_DB_HOST",
		"db.port":                 "BILLING_DB_PORT",
		"db.user":                 "BILLING_DB_USER",
		"db.password":             "BILLING_DB_PASSWORD",
		"db.name":                 "BILLING_DB_NAME",
		"db.sslmode":              "BILLING_DB_SSLMODE",
		"db.max_open":             "BILLING_DB_MAX_OPEN",
		"db.max_idle":             "BILLING_DB_MAX_IDLE",
		"jwt.secret":              "BILLING_JWT_SECRET",
		"jwt.access_expiry":       "BILLING_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":      "BILLING_JWT_REFRESH_EXPIRY",
		"jwt.issuer":              "BILLING_JWT_ISSUER",
		"log.level":               "BILLING_LOG_LEVEL",
		"log.format":              "BILLING_LOG_FORMAT",
		"billing.time_zone":       "BILLING_BILLING_TIME_ZONE",
		"billing.number_retries":  "BILLING_BILLING_NUMBER_RETRIES",
		"redis.addr":              "BILLING_REDIS_ADDR",
		"redis.password":          "BILLING_REDIS_PASSWORD",
		"redis.db":                "BILLING_REDIS_DB",
		"redis.idempotency_ttl":   "BILLING_REDIS_IDEMPOTENCY_TTL",
		"redis.lock_ttl":          "BILLING_REDIS_LOCK_TTL",
		"s3.region":               "BILLING_S3_REGION",
		"s3.bucket":               "BILLING_S3_BUCKET",
		"s3.endpoint":             "BILLING_S3_ENDPOINT",
		"s3.access_key":           "BILLING_S3_ACCESS_KEY",
		"s3.secret_key":           "BILLING_S3_SECRET_KEY",
		"s3.presign_expiry":       "BILLING_S3_PRESIGN_EXPIRY",
		"email.provider":          "BILLING_EMAIL_PROVIDER",
		"email.region":            "BILLING_EMAIL_REGION",
		"email.from_address":      "BILLING_EMAIL_FROM_ADDRESS",
		"email.from_name":         "BILLING_EMAIL_FROM_NAME",
		"email.shop_name":         "BILLING_EMAIL_SHOP_NAME",
		"cors.allowed_origins":    "BILLING_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLING_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLING_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Driver:   v.GetString("db.driver"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Billing = BillingConfig{
		TimeZone:      v.GetString("billing.time_zone"),
		NumberRetries: v.GetInt("billing.number_retries"),
	}
	cfg.Redis = RedisConfig{
		Addr:           v.GetString("redis.addr"),
		Password:       v.GetString("redis.password"),
		DB:             v.GetInt("redis.db"),
		IdempotencyTTL: v.GetDuration("redis.idempotency_ttl"),
		LockTTL:        v.GetDuration("redis.lock_ttl"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ShopName:    v.GetString("email.shop_name"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown db driver %q", c.DB.Driver)
	}
	if c.Billing.NumberRetries < 1 {
		return fmt.Errorf("config: billing.number_retries must be at least 1, got %d", c.Billing.NumberRetries)
	}
	if _, err := c.Billing.Location(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
