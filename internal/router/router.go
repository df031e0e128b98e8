package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jielong-bot/internal/client"
	"jielong-bot/internal/handler"
	"jielong-bot/internal/metrics"
	"jielong-bot/internal/middleware"
	"jielong-bot/internal/repository"
	"jielong-bot/internal/service"
)

// Config holds everything the router needs to build the handler graph
type Config struct {
	DB            *gorm.DB
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
	BasePath      string
	ChannelSecret string
	LineClient    client.LineClient
	Signup        service.Options
	Dispatch      service.DispatcherOptions

	// Gatherer backs /metrics; nil means the default registry
	Gatherer prometheus.Gatherer
}

// Setup builds the gin engine with health, metrics and webhook routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Initialize services
	uow := repository.NewUnitOfWork(cfg.DB)
	signupService := service.NewSignupService(uow, cfg.Metrics, cfg.Signup, cfg.Logger)
	dispatcher := service.NewDispatcher(signupService, cfg.LineClient, cfg.Metrics, cfg.Dispatch, cfg.Logger)

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(dispatcher, cfg.LineClient, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Logger)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsHandler := gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Probes at the root for the orchestrator
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metricsHandler)

	api := r.Group(cfg.BasePath)
	{
		if cfg.BasePath != "" {
			api.GET("/health", healthHandler.Health)
			api.GET("/ready", healthHandler.Ready)
			api.GET("/metrics", metricsHandler)
		}

		api.POST("/webhook", middleware.LineSignature(cfg.ChannelSecret, cfg.Logger), webhookHandler.Callback)
	}

	return r
}
