package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/hoikulink/tsumugi/internal/billing"
	billingdomain "github.com/hoikulink/tsumugi/internal/billing/domain"
	"github.com/hoikulink/tsumugi/internal/child"
	"github.com/hoikulink/tsumugi/internal/config"
	"github.com/hoikulink/tsumugi/internal/invoice"
	invoicedomain "github.com/hoikulink/tsumugi/internal/invoice/domain"
	"github.com/hoikulink/tsumugi/internal/observability"
	obsmiddleware "github.com/hoikulink/tsumugi/internal/observability/logger"
	obsmetrics "github.com/hoikulink/tsumugi/internal/observability/metrics"
	"github.com/hoikulink/tsumugi/internal/pricelist"
	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	"github.com/hoikulink/tsumugi/internal/reservation"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	"github.com/hoikulink/tsumugi/internal/usage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	child.Module,
	pricelist.Module,
	usage.Module,
	reservation.Module,
	billing.Module,
	invoice.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	pricelistSvc   pricelistdomain.Service
	reservationSvc reservationdomain.Service
	billingSvc     billingdomain.Service
	invoiceSvc     invoicedomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	PricelistSvc   pricelistdomain.Service
	ReservationSvc reservationdomain.Service
	BillingSvc     billingdomain.Service
	InvoiceSvc     invoicedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		pricelistSvc:   p.PricelistSvc,
		reservationSvc: p.ReservationSvc,
		billingSvc:     p.BillingSvc,
		invoiceSvc:     p.InvoiceSvc,
	}

	svc.registerAdminRoutes()
	svc.registerParentRoutes()

	return svc
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", ActorFromHeaders(), RequireAdmin())

	admin.POST("/billing/settings", s.CreatePriceList)
	admin.GET("/billing/settings", s.ListPriceLists)
	admin.GET("/invoice/preview", s.PreviewInvoice)
	admin.POST("/invoice/finalize", s.FinalizeInvoice)
	admin.GET("/invoice", s.GetInvoiceAdmin)
	admin.GET("/billing", s.BillingOverview)
}

func (s *Server) registerParentRoutes() {
	parent := s.engine.Group("/api/parent", ActorFromHeaders(), RequireActor())

	parent.PUT("/reservations", s.ReplaceMonth)
	parent.POST("/reservations", s.CreateReservation)
	parent.PATCH("/reservations/:id", s.UpdateReservation)
	parent.DELETE("/reservations/:id", s.DeleteReservation)
	parent.GET("/reservations", s.ListReservations)
	parent.GET("/invoice", s.GetInvoice)
	parent.GET("/invoices", s.ListInvoices)
}
