package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing-console/internal/audit"
	"billing-console/internal/auth"
	"billing-console/internal/config"
	"billing-console/internal/httpapi"
	"billing-console/internal/ledger"
	"billing-console/internal/pricing"
	"billing-console/internal/rating"
	"billing-console/internal/reporting"
	"billing-console/internal/statement"
	"billing-console/internal/tenant"
	"billing-console/pkg/logger"
	"billing-console/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Billing core wiring: postgres repos behind each domain's interface.
	auditSvc := audit.NewService(&audit.PostgresRepo{DB: db})
	pricingRepo := &pricing.PostgresRepo{DB: db}
	ledgerSvc := ledger.NewService(&ledger.PostgresRepo{DB: db}, auditSvc).
		WithTenantRegistry(&tenant.PostgresRepo{DB: db})
	ratingRepo := &rating.PostgresRepo{DB: db}
	engine := rating.NewEngine(pricingRepo, ledgerSvc, ratingRepo)
	stmtRepo := &statement.PostgresRepo{DB: db}
	generator := statement.NewGenerator(engine, pricingRepo, engine, stmtRepo, auditSvc)
	lifecycle := statement.NewLifecycle(stmtRepo, auditSvc)
	reports := reporting.NewService(&reporting.PostgresRepo{DB: db})

	h := httpapi.Handlers{
		Auth:       authManager,
		Ledger:     ledgerSvc,
		Rating:     engine,
		Statements: generator,
		Lifecycle:  lifecycle,
		Reports:    reports,
		Audit:      auditSvc,
		Redis:      rdb,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
