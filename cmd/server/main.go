package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cashtrackr/internal/config"
	apphttp "cashtrackr/internal/http"
	"cashtrackr/internal/notify"
	"cashtrackr/internal/repository"
	"cashtrackr/internal/repository/postgres"
	"cashtrackr/internal/repository/sqlite"
	"cashtrackr/internal/security"
	"cashtrackr/internal/service"
	"cashtrackr/internal/session"
)

type repositories struct {
	users    repository.UserRepository
	budgets  repository.BudgetRepository
	expenses repository.ExpenseRepository
	close    func()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer repos.close()

	if err := repos.users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := repos.budgets.Init(ctx); err != nil {
		logger.Fatalf("init budget repository: %v", err)
	}
	if err := repos.expenses.Init(ctx); err != nil {
		logger.Fatalf("init expense repository: %v", err)
	}

	codec, err := session.NewCodec(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		logger.Fatalf("session codec: %v", err)
	}
	hasher := security.NewHasher(security.HasherConfig{
		Cost:    cfg.Auth.HashCost,
		Workers: cfg.Auth.HashWorkers,
	})

	accounts := service.NewAccountService(repos.users, hasher, codec, buildNotifier(cfg, logger), service.AccountConfig{
		ConfirmTTL: cfg.Auth.ConfirmTTL,
		ResetTTL:   cfg.Auth.ResetTTL,
	})
	budgets := service.NewBudgetService(repos.budgets, repos.expenses)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(accounts, budgets, codec, repos.budgets, repos.expenses, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		pool, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			users:    postgres.NewUserRepository(pool),
			budgets:  postgres.NewBudgetRepository(pool),
			expenses: postgres.NewExpenseRepository(pool),
			close:    pool.Close,
		}, nil
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		users:    sqlite.NewUserRepository(db),
		budgets:  sqlite.NewBudgetRepository(db),
		expenses: sqlite.NewExpenseRepository(db),
		close:    func() { db.Close() },
	}, nil
}

func buildNotifier(cfg config.Config, logger *logrus.Logger) notify.Notifier {
	if cfg.Mail.SendGridKey == "" {
		logger.Warn("mail.sendgridkey not set, codes will be written to the log")
		return notify.NewLogNotifier(logger, cfg.Mail.FrontendURL)
	}

	logger.Infof("sending mail through sendgrid as %s", cfg.Mail.FromAddress)
	return notify.NewSendGridNotifier(notify.SendGridConfig{
		APIKey:      cfg.Mail.SendGridKey,
		FromName:    cfg.Mail.FromName,
		FromAddress: cfg.Mail.FromAddress,
		FrontendURL: cfg.Mail.FrontendURL,
	})
}
