package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/sales-assistant-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	ApiKey       ApiKeyConfig
	Auth         AuthConfig
	Secrets      SecretsConfig
	Logging      LoggingConfig
	Server       ServerConfig
	CORS         CORSConfig
	Security     SecurityConfig
	RateLimit    RateLimitConfig
	Redis        RedisConfig
	Messaging    MessagingConfig
	Intelligence IntelligenceConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

type ApiKeyConfig struct {
	SecretName string
	Value      string // Loaded from secrets or environment
}

// AuthConfig holds bearer token settings for tenant dashboard access
type AuthConfig struct {
	// JWTSecret is the HMAC key used to verify tokens
	JWTSecret string
	// Issuer, when set, must match the token "iss" claim
	Issuer string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins []string
	// AllowedMethods is a list of allowed HTTP methods
	AllowedMethods []string
	// AllowedHeaders is a list of allowed request headers
	AllowedHeaders []string
	// ExposedHeaders is a list of headers exposed to the client
	ExposedHeaders []string
	// AllowCredentials indicates whether credentials are allowed
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	// EnableHSTS enables HTTP Strict Transport Security header
	EnableHSTS bool
	// HSTSMaxAge is the max age for HSTS in seconds (default: 31536000 = 1 year)
	HSTSMaxAge int
	// HSTSIncludeSubdomains includes subdomains in HSTS
	HSTSIncludeSubdomains bool
	// HSTSPreload enables HSTS preload
	HSTSPreload bool
	// ContentSecurityPolicy sets the Content-Security-Policy header
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions string
	// ContentTypeNosniff enables X-Content-Type-Options: nosniff
	ContentTypeNosniff bool
	// ReferrerPolicy sets the Referrer-Policy header
	ReferrerPolicy string
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMinute is the rate limit per client IP
	RequestsPerMinute int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting (e.g., /health)
	WhitelistPaths []string
}

// RedisConfig configures the optional Redis used for the nightly run lock
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// MessagingConfig selects and configures the outbound messaging provider
type MessagingConfig struct {
	// Provider is the registered sender name: "whatsapp" or "log"
	Provider string
	WhatsApp WhatsAppConfig
}

// WhatsAppConfig holds WhatsApp Cloud API settings
type WhatsAppConfig struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	Timeout       int // seconds
}

// IntelligenceConfig tunes the nightly purchase-pattern pass and outreach rules
type IntelligenceConfig struct {
	Enabled bool
	// Cron is a six-field (with seconds) cron expression for the nightly trigger
	Cron           string
	TimeoutMinutes int
	RunStartupPass bool

	CooldownDays            int
	RecentActivityHours     int
	InquirySuppressionHours int
	MinConfidence           float64
	DueWindowMinDays        int
	DueWindowMaxDays        int

	// MessageDelayMs is the fixed delay between two outbound reminders
	MessageDelayMs int
	// MaxMessagesPerTenantPerDay caps reminders per tenant; 0 disables the cap
	MaxMessagesPerTenantPerDay int
	AlertCooldownDays          int

	LockKey        string
	LockTTLMinutes int
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// TimeoutDuration returns the WhatsApp HTTP client timeout
func (w *WhatsAppConfig) TimeoutDuration() time.Duration {
	return time.Duration(w.Timeout) * time.Second
}

// Timeout returns the overall timeout for one nightly pass
func (i *IntelligenceConfig) Timeout() time.Duration {
	return time.Duration(i.TimeoutMinutes) * time.Minute
}

// MessageDelay returns the fixed delay between outbound reminders
func (i *IntelligenceConfig) MessageDelay() time.Duration {
	return time.Duration(i.MessageDelayMs) * time.Millisecond
}

// LockTTL returns how long the nightly run lock is held at most
func (i *IntelligenceConfig) LockTTL() time.Duration {
	return time.Duration(i.LockTTLMinutes) * time.Minute
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load API key from environment if not in config
	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Messaging.WhatsApp.AccessToken == "" {
		cfg.Messaging.WhatsApp.AccessToken = v.GetString("WHATSAPP_ACCESS_TOKEN")
	}

	// Load Azure Key Vault name from environment if not in config
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the intelligence engine cannot run with
func (c *Config) Validate() error {
	in := c.Intelligence
	if in.DueWindowMinDays > in.DueWindowMaxDays {
		return fmt.Errorf("intelligence.dueWindowMinDays (%d) must not exceed intelligence.dueWindowMaxDays (%d)",
			in.DueWindowMinDays, in.DueWindowMaxDays)
	}
	if in.MinConfidence < 0 || in.MinConfidence > 1 {
		return fmt.Errorf("intelligence.minConfidence must be within [0,1], got %v", in.MinConfidence)
	}
	if in.CooldownDays < 0 || in.AlertCooldownDays < 0 || in.MessageDelayMs < 0 {
		return fmt.Errorf("intelligence cooldowns and delays must not be negative")
	}
	switch c.Messaging.Provider {
	case "whatsapp", "log":
	default:
		return fmt.Errorf("unknown messaging.provider %q", c.Messaging.Provider)
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source
// In development (or when secrets.source = "environment"), secrets come from env vars
// In staging/production (or when secrets.source = "vault"), secrets come from Azure Key Vault
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	// First load basic config
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if !provider.IsVaultEnabled() {
		return nil, fmt.Errorf("vault provider not enabled despite USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Loading secrets from Azure Key Vault")
	applySecrets(ctx, cfg, provider)
	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// SecretSource is the subset of the secrets provider used to fill in config
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envVar string) (string, error)
}

func applySecrets(ctx context.Context, cfg *Config, provider SecretSource) {
	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	// Database name is environment-specific and never stored in the vault
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	if apiKey, err := provider.GetSecretOrEnv(ctx, "admin-api-key", "ADMIN_API_KEY"); err == nil && apiKey != "" {
		cfg.ApiKey.Value = apiKey
	}
	if jwtSecret, err := provider.GetSecretOrEnv(ctx, "jwt-secret", "JWT_SECRET"); err == nil && jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	}
	if token, err := provider.GetSecretOrEnv(ctx, "whatsapp-access-token", "WHATSAPP_ACCESS_TOKEN"); err == nil && token != "" {
		cfg.Messaging.WhatsApp.AccessToken = token
	}
	if redisPassword, err := provider.GetSecretOrEnv(ctx, "redis-password", "REDIS_PASSWORD"); err == nil && redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Straye Sales Assistant API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "sales_assistant")
	v.SetDefault("database.user", "sales_assistant")
	v.SetDefault("database.password", "sales_assistant")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Auth defaults
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db"})

	// Redis defaults (run lock falls back to in-process when disabled)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Messaging defaults
	v.SetDefault("messaging.provider", "log")
	v.SetDefault("messaging.whatsapp.baseURL", "https://graph.facebook.com")
	v.SetDefault("messaging.whatsapp.apiVersion", "v19.0")
	v.SetDefault("messaging.whatsapp.phoneNumberID", "")
	v.SetDefault("messaging.whatsapp.accessToken", "")
	v.SetDefault("messaging.whatsapp.timeout", 15)

	// Intelligence defaults
	v.SetDefault("intelligence.enabled", true)
	v.SetDefault("intelligence.cron", "0 0 2 * * *") // 02:00 every day
	v.SetDefault("intelligence.timeoutMinutes", 60)
	v.SetDefault("intelligence.runStartupPass", false)
	v.SetDefault("intelligence.cooldownDays", 7)
	v.SetDefault("intelligence.recentActivityHours", 24)
	v.SetDefault("intelligence.inquirySuppressionHours", 48)
	v.SetDefault("intelligence.minConfidence", 0.5)
	v.SetDefault("intelligence.dueWindowMinDays", -2)
	v.SetDefault("intelligence.dueWindowMaxDays", 5)
	v.SetDefault("intelligence.messageDelayMs", 1500)
	v.SetDefault("intelligence.maxMessagesPerTenantPerDay", 200)
	v.SetDefault("intelligence.alertCooldownDays", 7)
	v.SetDefault("intelligence.lockKey", "sales-assistant:intelligence:nightly")
	v.SetDefault("intelligence.lockTTLMinutes", 90)
}
