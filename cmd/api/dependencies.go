package main

import (
	"fmt"
	"log/slog"
	"time"

	importhandler "recetario/internal/domain/import/handler"
	importservice "recetario/internal/domain/import/service"
	"recetario/internal/domain/ingredient"
	"recetario/internal/domain/pricing"
	pricinghandler "recetario/internal/domain/pricing/handler"
	"recetario/internal/domain/recipe"
	recipehandler "recetario/internal/domain/recipe/handler"
	"recetario/pkg/config"
	"recetario/pkg/db"
	"recetario/pkg/exchange"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	IngredientRepo ingredient.Repository
	RecipeRepo     recipe.Repository

	// Services
	RateClient     exchange.RateClient
	ImportService  *importservice.Service
	PricingService *pricing.Service

	// Handlers
	ImportHandler  *importhandler.Handler
	PricingHandler *pricinghandler.Handler
	RecipeHandler  *recipehandler.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes repositories and the service layer
func (d *Dependencies) initServices() error {
	d.IngredientRepo = ingredient.NewPostgresRepository(d.DB.Pool)
	d.RecipeRepo = recipe.NewPostgresRepository(d.DB.Pool)

	location, err := time.LoadLocation(d.Config.Service.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load service timezone %q: %w", d.Config.Service.Timezone, err)
	}

	d.RateClient = exchange.NewClient(d.Config.Exchange.BaseURL, d.Config.Exchange.CurrencyCode, d.Logger)
	d.ImportService = importservice.NewService(d.IngredientRepo, d.RecipeRepo, d.Logger)
	d.PricingService = pricing.NewService(d.RecipeRepo, d.RateClient, location, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.ImportHandler = importhandler.NewHandler(d.ImportService, d.Logger)
	d.PricingHandler = pricinghandler.NewHandler(d.PricingService, d.Logger)
	d.RecipeHandler = recipehandler.NewHandler(d.RecipeRepo, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
