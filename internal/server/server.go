package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apikeydomain "github.com/commentpull/commentpull/internal/apikey/domain"
	"github.com/commentpull/commentpull/internal/clock"
	commentsdomain "github.com/commentpull/commentpull/internal/comments/domain"
	"github.com/commentpull/commentpull/internal/config"
	downloaddomain "github.com/commentpull/commentpull/internal/download/domain"
	ledgerdomain "github.com/commentpull/commentpull/internal/ledger/domain"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	clock       clock.Clock
	ledgerSvc   ledgerdomain.Service
	premiumSvc  premiumdomain.Service
	downloadSvc downloaddomain.Service
	apiKeySvc   apikeydomain.Service
	comments    commentsdomain.Source
	billing     premiumdomain.BillingProvider
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	Clock       clock.Clock
	LedgerSvc   ledgerdomain.Service
	PremiumSvc  premiumdomain.Service
	DownloadSvc downloaddomain.Service
	APIKeySvc   apikeydomain.Service
	Comments    commentsdomain.Source
	Billing     premiumdomain.BillingProvider
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		clock:       p.Clock,
		ledgerSvc:   p.LedgerSvc,
		premiumSvc:  p.PremiumSvc,
		downloadSvc: p.DownloadSvc,
		apiKeySvc:   p.APIKeySvc,
		comments:    p.Comments,
		billing:     p.Billing,
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api", s.Identity())
	{
		api.GET("/downloads", s.getDownloadStatus)
		api.POST("/downloads", s.recordDownload)
		api.GET("/comments", s.getComments)
		api.GET("/dashboard", s.getDashboard)
		api.POST("/checkout", s.createCheckout)
		api.GET("/subscription", s.getSubscription)
		api.POST("/subscription", s.activateSubscription)
		api.DELETE("/subscription", s.cancelSubscription)

		keys := api.Group("/keys", s.UserRequired())
		{
			keys.GET("", s.listAPIKeys)
			keys.POST("", s.createAPIKey)
			keys.DELETE("/:id", s.revokeAPIKey)
		}
	}

	v1 := s.engine.Group("/api/v1", s.APIKeyAuth())
	{
		v1.GET("/comments", s.getCommentsV1)
	}

	s.engine.POST("/webhooks/razorpay", s.handleBillingWebhook)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
