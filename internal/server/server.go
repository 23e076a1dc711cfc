package server

import (
	"context"
	"net/http"
	"notes-marketplace/internal/app"
	"notes-marketplace/internal/checkout"
	"notes-marketplace/internal/handler"
	authmw "notes-marketplace/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	maxUploadSize  = "25M"
	maxWebhookSize = "1M"
)

type Options struct {
	Auth   *authmw.Authenticator
	Logger *zap.Logger
	// AssetDir is served under /assets when notes are stored on local disk.
	AssetDir string
}

type Server struct {
	echo            *echo.Echo
	auth            *authmw.Authenticator
	assetDir        string
	orderHandler    *handler.OrderHandler
	checkoutHandler *handler.CheckoutHandler
	userHandler     *handler.UserHandler
	adminHandler    *handler.AdminHandler
	webhookHandler  *handler.WebhookHandler
}

func NewServer(services *app.Services, orchestrator *checkout.Orchestrator, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opts.Logger)

	e.Use(requestLogger(opts.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		auth:            opts.Auth,
		assetDir:        opts.AssetDir,
		orderHandler:    handler.NewOrderHandler(services.Order, services.Purchase),
		checkoutHandler: handler.NewCheckoutHandler(orchestrator, services.Order),
		userHandler:     handler.NewUserHandler(services.User, services.Access),
		adminHandler:    handler.NewAdminHandler(services.Listing),
		webhookHandler:  handler.NewWebhookHandler(services.Webhook),
	}

	s.setupRoutes()
	return s
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("http.request", fields...)
			return nil
		},
	})
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if s.assetDir != "" {
		s.echo.Static("/assets", s.assetDir)
	}

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- razorpay webhooks (signed, no session) --------
	api.POST("/webhooks/razorpay", s.webhookHandler.Razorpay, middleware.BodyLimit(maxWebhookSize))

	authed := api.Group("", authmw.AuthMiddleware(s.auth))

	authed.POST("/create-order", s.orderHandler.CreateOrder)
	authed.POST("/record-purchase", s.orderHandler.RecordPurchase)

	authed.POST("/checkout", s.checkoutHandler.Checkout)
	authed.POST("/checkout/confirm", s.checkoutHandler.Confirm)
	authed.POST("/checkout/abort", s.checkoutHandler.Abort)

	authed.GET("/notes", s.userHandler.ListNotes)
	authed.GET("/notes/:id/access", s.userHandler.NoteAccess)

	// -------- admin --------
	admin := authed.Group("/admin", authmw.RequireAdmin())
	admin.GET("/notes", s.adminHandler.ListListings)
	admin.POST("/notes", s.adminHandler.UploadListing, middleware.BodyLimit(maxUploadSize))
	admin.DELETE("/notes/:id", s.adminHandler.DeleteListing)
}

// Handler exposes the router, for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
