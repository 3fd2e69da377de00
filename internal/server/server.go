package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billingdomain "github.com/smallbiznis/sairex/internal/billing/domain"
	"github.com/smallbiznis/sairex/internal/config"
	"github.com/smallbiznis/sairex/internal/observability"
	obsmiddleware "github.com/smallbiznis/sairex/internal/observability/logger"
	obstracing "github.com/smallbiznis/sairex/internal/observability/tracing"
	"github.com/smallbiznis/sairex/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	billingSvc billingdomain.Service
	pdf        pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	BillingSvc billingdomain.Service
	PDF        pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		billingSvc: p.BillingSvc,
		pdf:        p.PDF,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Organization scoped --------
	org := v1.Group("/orgs/:org_code")
	{
		org.GET("/fee-rules/resolve", s.ResolveFeeRule)
		org.POST("/challans", s.IssueChallan)
		org.POST("/challans/batch", s.IssueChallanBatch)
		org.GET("/challans", s.ListChallans)
		org.GET("/students/:admission_no/balance", s.GetStudentBalance)
	}

	// -------- Challans --------
	v1.GET("/challans/:challan_no", s.GetChallan)
	v1.GET("/challans/:challan_no/pdf", s.GetChallanPDF)
	v1.POST("/challans/:challan_no/payments", s.PayChallan)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
