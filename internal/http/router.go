package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festoofficial/festo/internal/http/handlers"
	"github.com/festoofficial/festo/internal/http/middleware"
	"github.com/festoofficial/festo/internal/logging"
)

// Handlers groups the endpoint handlers mounted under /api
type Handlers struct {
	Auth          *handlers.AuthHandlers
	OTP           *handlers.OTPHandlers
	EmailChange   *handlers.EmailChangeHandlers
	Events        *handlers.EventHandlers
	Registrations *handlers.RegistrationHandlers
}

// Options carries the non-handler router settings
type Options struct {
	CORSOrigins []string
	UploadsDir  string
	Log         *zap.Logger
	// DBCheck backs /health/db; nil reports the database as unchecked
	DBCheck func(ctx context.Context) error
}

func BuildRouter(h Handlers, jwtmw *middleware.AuthMW, cb middleware.CasbinMiddleware, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(logging.Recovery(log), logging.RequestLogger(log), corsMiddleware(opts.CORSOrigins))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/health/db", dbHealth(opts.DBCheck))
	if opts.UploadsDir != "" {
		uploads := r.Group("/uploads", func(c *gin.Context) {
			c.Header("X-Content-Type-Options", "nosniff")
			c.Header("Content-Security-Policy", "default-src 'none'")
		})
		uploads.Static("/", opts.UploadsDir)
	}

	api := r.Group("/api")

	api.POST("/auth/signup", h.Auth.Signup)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/otp/send-otp", h.OTP.SendOTP)
	api.POST("/otp/verify-otp", h.OTP.VerifyOTP)

	api.GET("/events", h.Events.List)
	api.GET("/events/:id", h.Events.Get)
	api.GET("/events/organizer/:id", h.Events.ListByOrganizer)
	api.GET("/registrations/event/:id", h.Registrations.ListByEvent)
	api.GET("/registrations/participant/:id", h.Registrations.ListByParticipant)

	v := api.Group("/").Use(jwtmw.WithJWT(), cb.Enforce())
	v.POST("/auth/logout", h.Auth.Logout)
	v.GET("/auth/profile/:userId", h.Auth.GetProfile)
	v.PUT("/auth/profile/:userId", h.Auth.UpdateProfile)
	v.POST("/auth/email-change/request", h.EmailChange.Request)
	v.POST("/auth/email-change/verify-old", h.EmailChange.VerifyOld)
	v.POST("/auth/email-change/verify-new", h.EmailChange.VerifyNew)

	v.POST("/events", h.Events.Create)
	v.PUT("/events/:id", h.Events.Update)
	v.DELETE("/events/:id", h.Events.Delete)
	v.POST("/events/:id/upload-qr", h.Events.UploadQR)
	v.POST("/events/:id/reconcile", h.Events.Reconcile)

	v.POST("/registrations", h.Registrations.Register)
	v.PUT("/registrations/:id", h.Registrations.Update)
	v.DELETE("/registrations/:id", h.Registrations.Cancel)
	v.POST("/registrations/upload-proof", h.Registrations.UploadProof)

	return r
}

// corsMiddleware allows the configured origins, or any origin when none or "*" is set
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "x-user-id"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func dbHealth(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check == nil {
			c.JSON(http.StatusOK, gin.H{"ok": true, "db": "unchecked"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := check(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "message": "Database connection failed", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "db": "connected"})
	}
}
