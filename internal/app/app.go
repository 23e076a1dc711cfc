package app

import (
	"context"
	"fmt"
	"notes-marketplace/internal/checkout"
	"notes-marketplace/internal/client"
	"notes-marketplace/internal/config"
	"notes-marketplace/internal/repository"
	"notes-marketplace/internal/secrets"
	"notes-marketplace/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoadConfig parses the environment, pulls provider credentials from AWS Secrets
// Manager when RAZORPAY_SECRET_ID is set, and validates the result.
func LoadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cfg.Razorpay.SecretID != "" {
		provider, err := secrets.NewAWSProvider(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		if err := secrets.ResolveRazorpay(ctx, provider, cfg.Razorpay.SecretID, &cfg.Razorpay); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type Repositories struct {
	Listings      repository.ListingRepository
	Entitlements  repository.EntitlementRepository
	WebhookEvents repository.WebhookEventRepository
}

type Services struct {
	Order    service.OrderService
	Purchase service.PurchaseService
	Access   service.AccessService
	Listing  service.ListingService
	User     service.UserService
	Webhook  service.WebhookService
}

// App is the wired dependency graph shared by the API server and notesctl.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	Storage      client.ObjectStorage
	Repos        *Repositories
	Services     *Services
	Orchestrator *checkout.Orchestrator
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := client.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	razorpayClient, err := client.NewRazorpayClient(&cfg.Razorpay)
	if err != nil {
		return nil, err
	}

	storage, err := client.NewObjectStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	repos := &Repositories{
		Listings:      repository.NewListingRepository(db),
		Entitlements:  repository.NewEntitlementRepository(db),
		WebhookEvents: repository.NewWebhookEventRepository(db),
	}

	purchaseService := service.NewPurchaseService(repos.Entitlements, logger)
	services := &Services{
		Order:    service.NewOrderService(razorpayClient, cfg.Razorpay.Currency, cfg.Razorpay.RequireSignature, logger),
		Purchase: purchaseService,
		Access:   service.NewAccessService(repos.Entitlements, repos.Listings, storage, logger),
		Listing:  service.NewListingService(repos.Listings, storage, logger),
		User:     service.NewUserService(repos.Listings, repos.Entitlements),
		Webhook:  service.NewWebhookService(razorpayClient, purchaseService, repos.WebhookEvents, logger),
	}

	orchestrator := checkout.NewOrchestrator(
		services.Listing,
		services.Order,
		services.Purchase,
		services.Access,
		logger,
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Storage:      storage,
		Repos:        repos,
		Services:     services,
		Orchestrator: orchestrator,
	}, nil
}

func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
