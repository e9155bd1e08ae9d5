package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/config"
	httpx "github.com/festoofficial/festo/internal/http"
	"github.com/festoofficial/festo/internal/http/handlers"
	"github.com/festoofficial/festo/internal/http/middleware"
	"github.com/festoofficial/festo/internal/infrastructure/audit"
	"github.com/festoofficial/festo/internal/infrastructure/auth"
	"github.com/festoofficial/festo/internal/infrastructure/database"
	"github.com/festoofficial/festo/internal/infrastructure/notifications"
	"github.com/festoofficial/festo/internal/infrastructure/repositories"
	"github.com/festoofficial/festo/internal/infrastructure/storage"
	"github.com/festoofficial/festo/internal/logging"
	"github.com/festoofficial/festo/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Log    *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Files       *storage.LocalStore
	Casbin      *auth.CasbinService
	amqp        *audit.AMQPPublisher

	// Repositories
	UserRepo         domain.UserRepository
	OTPRepo          domain.SignupOTPRepository
	EmailChangeRepo  domain.EmailChangeRepository
	EventRepo        domain.EventRepository
	RegistrationRepo domain.RegistrationRepository
	SessionRepo      domain.SessionRepository

	// Services
	Tx              domain.Transactor
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	AuditSink       domain.AuditLogger
	PolicySvc       domain.PolicyService
	SignupSvc       domain.SignupService
	AuthSvc         domain.AuthService
	EmailChangeSvc  domain.EmailChangeService
	EventSvc        domain.EventService
	RegistrationSvc domain.RegistrationService
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	return NewContainerWithSender(ctx, cfg, log, nil)
}

// NewContainerWithSender is NewContainer with the mail transport supplied by
// the caller. A nil sender selects one from the configuration.
func NewContainerWithSender(ctx context.Context, cfg *config.Config, log *zap.Logger, sender notifications.Sender) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Container{Config: cfg, Log: log}

	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"database", c.initDatabase},
		{"redis", c.initRedis},
		{"storage", c.initStorage},
		{"authorization", c.initAuthorization},
		{"audit", c.initAudit},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
	}

	c.initRepositories()
	if err := c.initServices(sender); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init services: %w", err)
	}
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	db, err := database.Open(database.Options{
		Driver:          c.Config.DBDriver,
		DSN:             c.Config.DSN,
		MaxOpenConns:    c.Config.DBMaxOpenConns,
		MaxIdleConns:    c.Config.DBMaxIdleConns,
		ConnMaxLifetime: c.Config.DBConnMaxLifetime,
		Logger:          logging.GormLogger(c.Log, c.Config.DBLogLevel),
	})
	if err != nil {
		return err
	}
	c.DB = db

	if err := database.Ping(ctx, db); err != nil {
		return err
	}
	return repositories.AutoMigrate(db)
}

func (c *Container) initRedis(ctx context.Context) error {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	return database.PingRedis(ctx, c.RedisClient)
}

func (c *Container) initStorage(context.Context) error {
	files, err := storage.NewLocalStore(c.Config.UploadsDir)
	if err != nil {
		return err
	}
	c.Files = files
	return nil
}

func (c *Container) initAuthorization(context.Context) error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.Casbin = cas
	c.PolicySvc = services.NewPolicyService(cas.E)

	added, err := c.PolicySvc.SeedDefaults(auth.DefaultPolicies())
	if err != nil {
		return fmt.Errorf("seed policies: %w", err)
	}
	if added > 0 {
		c.Log.Info("casbin: seeded default policies", zap.Int("count", added))
	}
	return nil
}

func (c *Container) initAudit(context.Context) error {
	sinks := []domain.AuditLogger{audit.NewZapLogger(c.Log)}
	if c.Config.AuditAMQPURL != "" {
		publisher, err := audit.NewAMQPPublisher(c.Config.AuditAMQPURL, c.Config.AuditExchange)
		if err != nil {
			return err
		}
		c.amqp = publisher
		sinks = append(sinks, publisher)
	}
	c.AuditSink = audit.NewMulti(c.Log, sinks...)
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.OTPRepo = repositories.NewSignupOTPRepository(c.DB)
	c.EmailChangeRepo = repositories.NewEmailChangeRepository(c.DB)
	c.EventRepo = repositories.NewEventRepository(c.DB)
	c.RegistrationRepo = repositories.NewRegistrationRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient)
}

func (c *Container) initServices(sender notifications.Sender) error {
	cfg := c.Config
	if sender == nil {
		var err error
		if sender, err = notifications.NewSenderFromConfig(cfg, c.Log); err != nil {
			return err
		}
	}
	otpConfig := services.OTPConfig{Length: cfg.OTPLength, TTL: cfg.OTPTTL}

	c.Tx = database.NewTransactor(c.DB)
	c.PasswordSvc = auth.NewPasswordService(0)
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)
	c.NotificationSvc = notifications.NewDispatcher(sender, cfg.MailTimeout, cfg.OTPTTL, c.Log)

	var throttle domain.SendThrottle
	if cfg.OTPResendWindow > 0 {
		throttle = repositories.NewOTPThrottle(c.RedisClient, cfg.OTPResendWindow)
	}

	attempts := repositories.NewOTPAttempts(c.RedisClient, cfg.OTPMaxAttempts, cfg.OTPTTL)

	c.SignupSvc = services.NewSignupService(c.UserRepo, c.OTPRepo, c.Tx, c.NotificationSvc, throttle, attempts, c.AuditSink, c.Log, otpConfig)
	c.AuthSvc = services.NewAuthService(c.UserRepo, c.OTPRepo, c.SessionRepo, c.PasswordSvc, c.TokenSvc, c.Tx, c.AuditSink, c.Log,
		services.AuthConfig{AccessTTL: cfg.AccessTTL, SessionTTL: cfg.SessionTTL})
	c.EmailChangeSvc = services.NewEmailChangeService(c.UserRepo, c.EmailChangeRepo, c.Tx, c.NotificationSvc, attempts, c.AuditSink, c.Log, otpConfig)
	c.EventSvc = services.NewEventService(c.EventRepo, c.RegistrationRepo, c.Tx, c.AuditSink, c.Log)
	c.RegistrationSvc = services.NewRegistrationService(c.EventRepo, c.RegistrationRepo, c.Tx, c.AuditSink, c.Log)
	return nil
}

// Router builds the HTTP handler over the container's services
func (c *Container) Router() (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	h := httpx.Handlers{
		Auth:          handlers.NewAuthHandlers(c.AuthSvc),
		OTP:           handlers.NewOTPHandlers(c.SignupSvc),
		EmailChange:   handlers.NewEmailChangeHandlers(c.EmailChangeSvc),
		Events:        handlers.NewEventHandlers(c.EventSvc, c.Files),
		Registrations: handlers.NewRegistrationHandlers(c.RegistrationSvc, c.Files),
	}
	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.SessionRepo)
	casbinMW := middleware.NewCasbinMW(c.PolicySvc, c.Config.OwnershipRules, c.Log)

	return httpx.BuildRouter(h, jwtMW, casbinMW, httpx.Options{
		CORSOrigins: c.Config.CORSOrigins,
		UploadsDir:  c.Files.Root(),
		Log:         c.Log,
		DBCheck:     func(ctx context.Context) error { return database.Ping(ctx, c.DB) },
	}), nil
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error
	if c.amqp != nil {
		errs = append(errs, c.amqp.Close())
	}
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DB != nil {
		errs = append(errs, database.Close(c.DB))
	}
	return errors.Join(errs...)
}
