package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	analyticsdomain "github.com/smetelco/portal/internal/analytics/domain"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	authdomain "github.com/smetelco/portal/internal/auth/domain"
	billingdomain "github.com/smetelco/portal/internal/billing/domain"
	companydomain "github.com/smetelco/portal/internal/company/domain"
	"github.com/smetelco/portal/internal/config"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	orderdomain "github.com/smetelco/portal/internal/order/domain"
	"github.com/smetelco/portal/internal/ratelimit"
	"github.com/smetelco/portal/internal/seed"
	"github.com/smetelco/portal/internal/sms"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	companySvc    companydomain.Service
	lineSvc       linedomain.Service
	usageSvc      usagedomain.Service
	orderSvc      orderdomain.Service
	auditSvc      auditdomain.Service
	authSvc       authdomain.Service
	billingSvc    billingdomain.Service
	recommender   analyticsdomain.Recommender
	sms           sms.Sender
	seeder        *seed.Seeder
	ingestLimiter *ratelimit.IngestLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	CompanySvc    companydomain.Service
	LineSvc       linedomain.Service
	UsageSvc      usagedomain.Service
	OrderSvc      orderdomain.Service
	AuditSvc      auditdomain.Service
	AuthSvc       authdomain.Service
	BillingSvc    billingdomain.Service
	Recommender   analyticsdomain.Recommender
	SMS           sms.Sender
	Seeder        *seed.Seeder
	IngestLimiter *ratelimit.IngestLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("http.server"),
		companySvc:    p.CompanySvc,
		lineSvc:       p.LineSvc,
		usageSvc:      p.UsageSvc,
		orderSvc:      p.OrderSvc,
		auditSvc:      p.AuditSvc,
		authSvc:       p.AuthSvc,
		billingSvc:    p.BillingSvc,
		recommender:   p.Recommender,
		sms:           p.SMS,
		seeder:        p.Seeder,
		ingestLimiter: p.IngestLimiter,
	}
	s.registerRoutes()
	return s
}

func NewEngine(gatherer prometheus.Gatherer, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/otp/request", s.RequestOTP)
	auth.POST("/otp/verify", s.VerifyOTP)

	api.POST("/companies", s.CreateCompany)
	api.GET("/companies/:companyId", s.GetCompany)
	api.PATCH("/companies/:companyId", s.UpdateCompany)
	api.DELETE("/companies/:companyId", s.DeleteCompany)
	api.GET("/companies/:companyId/lines", s.ListCompanyLines)
	api.GET("/companies/:companyId/usage", s.CompanyUsage)
	api.GET("/companies/:companyId/billing/estimate", s.CompanyBillingEstimate)

	api.POST("/lines", s.CreateLine)
	api.GET("/lines", s.ListLines)
	api.PATCH("/lines/bulk", s.BulkUpdateLines)
	api.GET("/lines/:lineId", s.GetLine)
	api.PATCH("/lines/:lineId", s.UpdateLine)
	api.PATCH("/lines/:lineId/limit", s.UpdateLineLimit)
	api.DELETE("/lines/:lineId", s.DeleteLine)
	api.GET("/lines/:lineId/usage", s.LineUsageHistory)

	api.POST("/usage/ingest", s.UsageIngestRateLimit(), s.IngestUsage)

	api.GET("/analytics/:lineId/recommendations", s.LineRecommendations)
	api.POST("/notify", s.Notify)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.PATCH("/orders/:orderId/status", s.SetOrderStatus)

	api.GET("/logs", s.ListLogs)

	if !s.cfg.IsProduction() {
		api.POST("/seed/demo", s.SeedDemo)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger, _ *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)
