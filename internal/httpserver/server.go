package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PratikDhanave/njrotc-portal-api/internal/auth"
	"github.com/PratikDhanave/njrotc-portal-api/internal/config"
	"github.com/PratikDhanave/njrotc-portal-api/internal/content"
	"github.com/PratikDhanave/njrotc-portal-api/internal/handlers"
	"github.com/PratikDhanave/njrotc-portal-api/internal/logging"
	"github.com/PratikDhanave/njrotc-portal-api/internal/mailer"
	"github.com/PratikDhanave/njrotc-portal-api/internal/mailtmpl"
	"github.com/PratikDhanave/njrotc-portal-api/internal/metrics"
	"github.com/PratikDhanave/njrotc-portal-api/internal/store"
)

// SubmissionStore is the optional submission log (Postgres in production).
type SubmissionStore interface {
	store.Recorder
	handlers.SubmissionCounter
	Ping(ctx context.Context) error
}

// Deps is everything the router needs. Content and Store may be nil.
type Deps struct {
	Config   config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Mailer   mailer.Factory
	Renderer *mailtmpl.Renderer
	Content  *content.Registry
	Store    SubmissionStore
}

// NewRouter wires public endpoints, the form endpoints and the staff API.
// Public: /health, /ready, /metrics, /api/signup, /api/suggestion, /api/content
// Authenticated: /api/admin/submissions/count (only with a submission log)
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(d.Logger))
	r.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the submission log is reachable when one is configured.
	r.GET("/ready", func(c *gin.Context) {
		if d.Store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()

			if err := d.Store.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	forms := handlers.FormDeps{
		Config:   d.Config,
		Mailer:   d.Mailer,
		Renderer: d.Renderer,
		Metrics:  d.Metrics,
		Logger:   d.Logger,
	}
	if d.Store != nil {
		forms.Recorder = d.Store
	}
	handlers.RegisterSignupRoutes(r, forms)
	handlers.RegisterSuggestionRoutes(r, forms)

	if d.Content != nil {
		handlers.RegisterContentRoutes(r, d.Content)
	}

	if d.Store != nil && len(d.Config.AdminAPIKeys) > 0 {
		// Auth group enforces admin context via X-API-Key.
		adminGroup := r.Group("/")
		adminGroup.Use(auth.APIKeyMiddleware(d.Config.AdminAPIKeys), func(c *gin.Context) {
			d.Logger.Info("admin request",
				zap.String("admin", auth.AdminName(c)),
				zap.String("path", c.Request.URL.Path))
			c.Next()
		})
		handlers.RegisterStatsRoutes(adminGroup, d.Store)
	}

	return r
}

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}
