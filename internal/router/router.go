package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	appointmenthandler "github.com/jwalitptl/booking-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/booking-api/internal/handler/auth"
	cataloghandler "github.com/jwalitptl/booking-api/internal/handler/catalog"
	contacthandler "github.com/jwalitptl/booking-api/internal/handler/contact"
	healthhandler "github.com/jwalitptl/booking-api/internal/handler/health"
	"github.com/jwalitptl/booking-api/internal/middleware"
)

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        *authhandler.Handler
	appointmentH *appointmenthandler.Handler
	catalogH     *cataloghandler.Handler
	contactH     *contacthandler.Handler
	healthH      *healthhandler.Handler
	config       RouterConfig
	metrics      *routerMetrics
}

type RouterConfig struct {
	CORS            middleware.CORSConfig
	RateLimit       middleware.RateLimitConfig
	RequestTimeout  time.Duration
	MaxBodySize     int64
	CatalogCacheTTL time.Duration
	MetricsPrefix   string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authhandler.Handler,
	appointmentH *appointmenthandler.Handler,
	catalogH *cataloghandler.Handler,
	contactH *contacthandler.Handler,
	healthH *healthhandler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:       gin.New(),
		auth:         auth,
		authH:        authH,
		appointmentH: appointmentH,
		catalogH:     catalogH,
		contactH:     contactH,
		healthH:      healthH,
		config:       config,
		metrics:      initRouterMetrics(config.MetricsPrefix),
	}

	rateLimiter := middleware.NewRateLimiter(config.RateLimit)

	// Order matters: the error handler and validation sit innermost so
	// their post-processing runs before the logger reads the status.
	r.engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORS),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: config.MaxBodySize}),
		rateLimiter.RateLimit(),
		middleware.ErrorHandler(),
		middleware.Validation(middleware.DefaultValidationConfig()),
	)

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	// Availability changes with every booking, so the public booking
	// surface is marked uncacheable. The catalog is nearly static and
	// may be shared-cached.
	public := api.Group("")
	public.Use(middleware.NoStore())
	r.appointmentH.RegisterRoutes(public)
	r.contactH.RegisterRoutes(public)

	services := api.Group("")
	services.Use(middleware.PublicCache(r.config.CatalogCacheTTL))
	r.catalogH.RegisterRoutes(services)

	auth := api.Group("/auth")
	r.authH.RegisterRoutes(auth)

	authProtected := api.Group("/auth")
	authProtected.Use(r.auth.Authenticate())
	r.authH.RegisterProtectedRoutes(authProtected)

	admin := api.Group("/admin")
	admin.Use(middleware.NoStore(), r.auth.Authenticate())
	r.appointmentH.RegisterAdminRoutes(admin)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.healthH.LivenessCheck)
		health.GET("/ready", r.healthH.ReadinessCheck)
		health.GET("/metrics", r.healthH.Metrics)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Unmatched routes report an empty path label rather than the
		// raw URL, which would blow up label cardinality.
		path := c.FullPath()
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
