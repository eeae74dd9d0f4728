package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/avoronov/scrumboard-service/internal/config"
	"github.com/avoronov/scrumboard-service/internal/repository/postgres"
	"github.com/avoronov/scrumboard-service/internal/service"
	myhttp "github.com/avoronov/scrumboard-service/internal/transport/http"

	"github.com/avoronov/scrumboard-service/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting scrumboard-service", slog.String("env", cfg.Env))

	errChan := make(chan error, 1)

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %v", err)
	}
	defer func() {
		err = db.DB().Close()
		if err != nil {
			errChan <- fmt.Errorf("db close failed: %v", err)
		}
	}()

	projectRepo := postgres.NewProjectRepository(db.DB(), log)
	milestoneRepo := postgres.NewMilestoneRepository(db.DB(), log)
	submissionRepo := postgres.NewSubmissionRepository(db.DB(), log)
	evaluationRepo := postgres.NewEvaluationRepository(db.DB(), log)

	gate := service.NewPermissionService(projectRepo, log)
	milestoneService := service.NewMilestoneService(db.DB(), log, milestoneRepo, gate)
	submissionService := service.NewSubmissionService(log, submissionRepo, milestoneRepo, projectRepo, gate)
	evaluationService := service.NewEvaluationService(db.DB(), log, evaluationRepo, submissionRepo, milestoneRepo, projectRepo, gate)

	srv := myhttp.NewServer(log, cfg.Auth.JWTSecret, milestoneService, submissionService, evaluationService)
	httpServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Routes(),
	}

	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %v", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %v", err)
	}

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %v", err)
	}
}
