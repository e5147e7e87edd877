package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azrilhafizi/kirim-backend/internal/api"
	"github.com/azrilhafizi/kirim-backend/internal/api/handlers"
	"github.com/azrilhafizi/kirim-backend/internal/auth"
	"github.com/azrilhafizi/kirim-backend/internal/config"
	"github.com/azrilhafizi/kirim-backend/internal/contacts"
	"github.com/azrilhafizi/kirim-backend/internal/db"
	"github.com/azrilhafizi/kirim-backend/internal/logger"
	"github.com/azrilhafizi/kirim-backend/internal/metrics"
	"github.com/azrilhafizi/kirim-backend/internal/middleware"
	repo "github.com/azrilhafizi/kirim-backend/internal/repository"
	"github.com/azrilhafizi/kirim-backend/internal/repository/memory"
	"github.com/azrilhafizi/kirim-backend/internal/repository/postgres"
	"github.com/azrilhafizi/kirim-backend/internal/seed"
	"github.com/azrilhafizi/kirim-backend/internal/services"
	"github.com/azrilhafizi/kirim-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snap := seed.Demo(time.Now())

	var ledger repo.Store
	var events repo.Events
	switch cfg.LedgerBackend {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
		repos, err := postgres.NewRepositories(ctx, pool, snap)
		if err != nil {
			log.Error("seed", "err", err)
			os.Exit(1)
		}
		ledger, events = repos.Ledger, repos.Events
	default:
		ledger = memory.NewStore(snap)
		events = memory.NewEventLog()
	}

	metrics.Init()
	wp := worker.NewPool(cfg.WorkerCount)
	defer wp.Stop()

	authn, err := auth.NewPINAuthenticator(cfg.TransferPIN, cfg.AuthDisabled)
	if err != nil {
		log.Error("pin setup", "err", err)
		os.Exit(1)
	}
	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	accountSvc := services.NewAccountService(ledger)
	recipientSvc := services.NewRecipientService(ledger, events, contacts.NewFileSource(cfg.ContactsFile), wp, cfg.RecentRecipients)
	transferSvc := services.NewTransferService(ledger, events, authn, wp, cfg.ProcessingDelay)

	authMW := middleware.NewAuthMiddleware(tm, cfg.Env)
	r := api.NewRouter(api.Deps{
		Cfg:          cfg,
		Accounts:     accountSvc,
		Recipients:   recipientSvc,
		Transfers:    transferSvc,
		AuthHandler:  handlers.NewAuthHandler(tm, accountSvc, authn),
		AuthRequired: authMW.Auth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "backend", cfg.LedgerBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
