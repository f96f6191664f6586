package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/app"
	"github.com/warungpos/warungpos/internal/auth"
	"github.com/warungpos/warungpos/internal/categories"
	"github.com/warungpos/warungpos/internal/customers"
	"github.com/warungpos/warungpos/internal/dashboard"
	"github.com/warungpos/warungpos/internal/observability"
	"github.com/warungpos/warungpos/internal/platform/cache"
	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/platform/storage"
	"github.com/warungpos/warungpos/internal/products"
	"github.com/warungpos/warungpos/internal/rbac"
	"github.com/warungpos/warungpos/internal/reports"
	"github.com/warungpos/warungpos/internal/roles"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/transactions"
	"github.com/warungpos/warungpos/internal/users"
	"github.com/warungpos/warungpos/internal/view"
	"github.com/warungpos/warungpos/jobs"
	"github.com/warungpos/warungpos/report"
)

const assetVersion = "1"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "warungpos_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine(assetVersion)
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	images, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		logger.Error("prepare upload dir", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager)

	rbacService := rbac.NewService(pool)
	gate := rbac.Middleware{Service: rbacService, Logger: logger}
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService, templates, gate)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService, rbacService, templates, gate)

	auditLogger := shared.NewAuditLogger(pool)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService, rolesService, templates, gate)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo, images, logger)
	categoriesHandler := categories.NewHandler(logger, categoriesService, templates, gate)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, images, logger)
	productsHandler := products.NewHandler(logger, productsService, categoriesService, templates, gate)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo, logger)
	customersHandler := customers.NewHandler(logger, customersService, templates, gate)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect job queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	transactionsRepo := transactions.NewRepository(pool)
	transactionsService := transactions.NewService(transactionsRepo, metrics, jobClient, logger)
	transactionsHandler := transactions.NewHandler(logger, transactionsService, productsService, customersService, templates)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, pdfClient)
	reportsHandler := reports.NewHandler(logger, reportsService, templates, gate)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, redisClient, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, templates)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,

		AuthHandler:         authHandler,
		DashboardHandler:    dashboardHandler,
		PermissionsHandler:  permissionsHandler,
		RolesHandler:        rolesHandler,
		UsersHandler:        usersHandler,
		CategoriesHandler:   categoriesHandler,
		ProductsHandler:     productsHandler,
		CustomersHandler:    customersHandler,
		TransactionsHandler: transactionsHandler,
		ReportsHandler:      reportsHandler,
		JobsHandler:         jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
