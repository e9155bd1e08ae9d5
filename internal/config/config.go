package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yml"

// OwnershipRule marks a route whose target user is taken from the request.
// A caller whose id matches is evaluated as role_owner by the casbin middleware.
type OwnershipRule struct {
	Method    string `yaml:"method"`
	Path      string `yaml:"path"`
	Source    string `yaml:"source"`
	ParamName string `yaml:"paramName"`
}

type AppConfig struct {
	Port        int      `yaml:"port"`
	GinMode     string   `yaml:"gin_mode"`
	CORSOrigins []string `yaml:"cors_origins"`
	UploadsDir  string   `yaml:"uploads_dir"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	SSL             bool   `yaml:"ssl"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	LogLevel        string `yaml:"log_level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	SessionTTL string `yaml:"session_ttl"`
}

type OTPConfig struct {
	TTL          string `yaml:"ttl"`
	Length       int    `yaml:"length"`
	ResendWindow string `yaml:"resend_window"`
	MaxAttempts  int    `yaml:"max_attempts"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Secure   bool   `yaml:"secure"`
}

type MailConfig struct {
	From               string     `yaml:"from"`
	FromName           string     `yaml:"from_name"`
	Timeout            string     `yaml:"timeout"`
	BrevoAPIKey        string     `yaml:"brevo_api_key"`
	MailerSendAPIToken string     `yaml:"mailersend_api_token"`
	SMTP               SMTPConfig `yaml:"smtp"`
	LogOnly            bool       `yaml:"log_only"`
}

type AuditConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type CasbinConfig struct {
	ModelPath      string          `yaml:"model_path"`
	OwnershipRules []OwnershipRule `yaml:"ownership_rules"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Mail     MailConfig     `yaml:"mail"`
	Audit    AuditConfig    `yaml:"audit"`
	Log      LogConfig      `yaml:"log"`
	Casbin   CasbinConfig   `yaml:"casbin"`
}

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	UploadsDir  string

	DBDriver          string
	DSN               string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBLogLevel        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	SessionTTL time.Duration

	OTPTTL          time.Duration
	OTPLength       int
	OTPResendWindow time.Duration
	OTPMaxAttempts  int

	MailFrom           string
	MailFromName       string
	MailTimeout        time.Duration
	BrevoAPIKey        string
	MailerSendAPIToken string
	SMTP               SMTPConfig
	MailLogOnly        bool

	AuditAMQPURL  string
	AuditExchange string

	Log LogConfig

	CasbinModelPath string
	OwnershipRules  []OwnershipRule
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Load reads .env, the YAML file named by FESTO_CONFIG (default
// config/config.yml) and environment overrides, in that order.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	path := os.Getenv("FESTO_CONFIG")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	file, err := loadConfigFile(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		file = &ConfigFile{}
	}

	cfg, err := FromFile(file)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile applies defaults and environment overrides to a parsed file.
func FromFile(file *ConfigFile) (*Config, error) {
	applyDefaults(file)
	applyEnv(file)

	lifetime, err := time.ParseDuration(file.Database.ConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("invalid database conn_max_lifetime: %w", err)
	}

	accTTL, err := time.ParseDuration(file.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	sessTTL, err := time.ParseDuration(file.JWT.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT session TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(file.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	resWnd, err := time.ParseDuration(file.OTP.ResendWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP resend window: %w", err)
	}

	mailTimeout, err := time.ParseDuration(file.Mail.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid mail timeout: %w", err)
	}

	rules := file.Casbin.OwnershipRules
	if len(rules) == 0 {
		rules = DefaultOwnershipRules()
	}

	return &Config{
		Port:               strconv.Itoa(file.App.Port),
		GinMode:            file.App.GinMode,
		CORSOrigins:        file.App.CORSOrigins,
		UploadsDir:         file.App.UploadsDir,
		DBDriver:           file.Database.Driver,
		DSN:                buildDSN(file.Database),
		DBMaxOpenConns:     file.Database.MaxOpenConns,
		DBMaxIdleConns:     file.Database.MaxIdleConns,
		DBConnMaxLifetime:  lifetime,
		DBLogLevel:         file.Database.LogLevel,
		RedisAddr:          file.Redis.Addr,
		RedisPassword:      file.Redis.Password,
		RedisDB:            file.Redis.DB,
		JWTSecret:          file.JWT.Secret,
		JWTIssuer:          file.JWT.Issuer,
		AccessTTL:          accTTL,
		SessionTTL:         sessTTL,
		OTPTTL:             otpTTL,
		OTPLength:          file.OTP.Length,
		OTPResendWindow:    resWnd,
		OTPMaxAttempts:     file.OTP.MaxAttempts,
		MailFrom:           file.Mail.From,
		MailFromName:       file.Mail.FromName,
		MailTimeout:        mailTimeout,
		BrevoAPIKey:        file.Mail.BrevoAPIKey,
		MailerSendAPIToken: file.Mail.MailerSendAPIToken,
		SMTP:               file.Mail.SMTP,
		MailLogOnly:        file.Mail.LogOnly,
		AuditAMQPURL:       file.Audit.AMQPURL,
		AuditExchange:      file.Audit.Exchange,
		Log:                file.Log,
		CasbinModelPath:    file.Casbin.ModelPath,
		OwnershipRules:     rules,
	}, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if c.JWTSecret == "" {
		problems = append(problems, "jwt secret is required (JWT_SECRET)")
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("unsupported database driver %q", c.DBDriver))
	}
	if c.DSN == "" {
		problems = append(problems, "database dsn is empty")
	}
	if c.DBMaxOpenConns <= 0 {
		problems = append(problems, "database max_open_conns must be positive")
	}
	if c.OTPLength != 6 {
		problems = append(problems, "otp length must be 6")
	}
	if c.OTPTTL <= 0 {
		problems = append(problems, "otp ttl must be positive")
	}
	if c.OTPMaxAttempts < 0 {
		problems = append(problems, "otp max_attempts must not be negative")
	}
	if c.MailTimeout <= 0 {
		problems = append(problems, "mail timeout must be positive")
	}
	if c.AccessTTL <= 0 || c.SessionTTL <= 0 {
		problems = append(problems, "jwt ttls must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DefaultOwnershipRules covers the routes where a user acts on their own account.
func DefaultOwnershipRules() []OwnershipRule {
	return []OwnershipRule{
		{Method: "GET", Path: "/api/auth/profile/:userId", Source: "path", ParamName: "userId"},
		{Method: "PUT", Path: "/api/auth/profile/:userId", Source: "path", ParamName: "userId"},
		{Method: "POST", Path: "/api/auth/email-change/request", Source: "body", ParamName: "userId"},
		{Method: "POST", Path: "/api/auth/email-change/verify-old", Source: "body", ParamName: "userId"},
		{Method: "POST", Path: "/api/auth/email-change/verify-new", Source: "body", ParamName: "userId"},
	}
}

func applyDefaults(f *ConfigFile) {
	if f.App.Port == 0 {
		f.App.Port = 5000
	}
	if f.App.GinMode == "" {
		f.App.GinMode = "release"
	}
	if len(f.App.CORSOrigins) == 0 {
		f.App.CORSOrigins = []string{"http://localhost:3000"}
	}
	if f.App.UploadsDir == "" {
		f.App.UploadsDir = "uploads"
	}
	if f.Database.Driver == "" {
		f.Database.Driver = "postgres"
	}
	if f.Database.MaxOpenConns == 0 {
		f.Database.MaxOpenConns = 10
	}
	if f.Database.MaxIdleConns == 0 {
		f.Database.MaxIdleConns = 5
	}
	if f.Database.ConnMaxLifetime == "" {
		f.Database.ConnMaxLifetime = "30m"
	}
	if f.Database.LogLevel == "" {
		f.Database.LogLevel = "warn"
	}
	if f.Redis.Addr == "" {
		f.Redis.Addr = "localhost:6379"
	}
	if f.JWT.Issuer == "" {
		f.JWT.Issuer = "festo"
	}
	if f.JWT.AccessTTL == "" {
		f.JWT.AccessTTL = "24h"
	}
	if f.JWT.SessionTTL == "" {
		f.JWT.SessionTTL = "168h"
	}
	if f.OTP.TTL == "" {
		f.OTP.TTL = "10m"
	}
	if f.OTP.Length == 0 {
		f.OTP.Length = 6
	}
	if f.OTP.ResendWindow == "" {
		f.OTP.ResendWindow = "0s"
	}
	if f.OTP.MaxAttempts == 0 {
		f.OTP.MaxAttempts = 5
	}
	if f.Mail.From == "" {
		f.Mail.From = "no-reply@festo.com"
	}
	if f.Mail.FromName == "" {
		f.Mail.FromName = "Festo"
	}
	if f.Mail.Timeout == "" {
		f.Mail.Timeout = "15s"
	}
	if f.Mail.SMTP.Port == 0 {
		f.Mail.SMTP.Port = 587
	}
	if f.Audit.Exchange == "" {
		f.Audit.Exchange = "festo.audit"
	}
	if f.Log.Level == "" {
		f.Log.Level = "info"
	}
	if f.Log.MaxSizeMB == 0 {
		f.Log.MaxSizeMB = 128
	}
	if f.Log.MaxBackups == 0 {
		f.Log.MaxBackups = 30
	}
	if f.Log.MaxAgeDays == 0 {
		f.Log.MaxAgeDays = 30
	}
}

func applyEnv(f *ConfigFile) {
	f.App.Port = envInt("PORT", f.App.Port)
	f.App.GinMode = env("GIN_MODE", f.App.GinMode)
	if origins := os.Getenv("CORS_ORIGIN"); origins != "" {
		f.App.CORSOrigins = splitList(origins)
	}
	f.App.UploadsDir = env("UPLOADS_DIR", f.App.UploadsDir)

	f.Database.Driver = env("DB_DRIVER", f.Database.Driver)
	f.Database.DSN = env("DATABASE_DSN", f.Database.DSN)
	f.Database.Host = env("DB_HOST", f.Database.Host)
	f.Database.Port = envInt("DB_PORT", f.Database.Port)
	f.Database.User = env("DB_USER", f.Database.User)
	f.Database.Password = env("DB_PASSWORD", f.Database.Password)
	f.Database.Name = env("DB_NAME", f.Database.Name)
	f.Database.SSL = envBool("DB_SSL", f.Database.SSL)

	f.Redis.Addr = env("REDIS_ADDR", f.Redis.Addr)
	f.Redis.Password = env("REDIS_PASSWORD", f.Redis.Password)

	f.JWT.Secret = env("JWT_SECRET", f.JWT.Secret)

	f.Mail.From = env("EMAIL_FROM", f.Mail.From)
	f.Mail.FromName = env("EMAIL_FROM_NAME", f.Mail.FromName)
	f.Mail.BrevoAPIKey = env("BREVO_API_KEY", f.Mail.BrevoAPIKey)
	f.Mail.MailerSendAPIToken = env("MAILERSEND_API_TOKEN", f.Mail.MailerSendAPIToken)
	f.Mail.SMTP.Host = env("SMTP_HOST", f.Mail.SMTP.Host)
	f.Mail.SMTP.Port = envInt("SMTP_PORT", f.Mail.SMTP.Port)
	f.Mail.SMTP.User = env("SMTP_USER", f.Mail.SMTP.User)
	f.Mail.SMTP.Password = env("SMTP_PASS", f.Mail.SMTP.Password)
	f.Mail.SMTP.Secure = envBool("SMTP_SECURE", f.Mail.SMTP.Secure)
	f.Mail.LogOnly = envBool("MAIL_LOG_ONLY", f.Mail.LogOnly)

	f.Audit.AMQPURL = env("AMQP_URL", f.Audit.AMQPURL)
	f.Log.Level = env("LOG_LEVEL", f.Log.Level)
}

// buildDSN returns the explicit DSN or assembles one from the discrete fields.
func buildDSN(db DatabaseConfig) string {
	if db.DSN != "" {
		return db.DSN
	}
	if db.Host == "" {
		if db.Driver == "sqlite" && db.Name != "" {
			return db.Name
		}
		return ""
	}
	switch db.Driver {
	case "mysql":
		port := db.Port
		if port == 0 {
			port = 3306
		}
		tls := "false"
		if db.SSL {
			tls = "true"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&tls=%s",
			db.User, db.Password, db.Host, port, db.Name, tls)
	case "postgres":
		port := db.Port
		if port == 0 {
			port = 5432
		}
		sslmode := "disable"
		if db.SSL {
			sslmode = "require"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			db.Host, port, db.User, db.Password, db.Name, sslmode)
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
