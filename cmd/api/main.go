// @title                       GoalMate API
// @version                     1.0
// @description                 Task tracking with streaks and a yearly activity heatmap.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/goalmate-engine/internal/config"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Critical: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	log.Println("Database connected successfully.")

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("[CACHE] %v; continuing without cache and rate limiting", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	app, err := buildApplication(cfg, postgresStores(db, rdb, cfg.Cache.TTL), newMailer(cfg.Mail), infra{
		db:        db,
		redis:     rdb,
		startTime: startTime,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.mail.Run(gctx)
	})

	g.Go(func() error {
		log.Printf("GoalMate API running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Stop signal received. Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Println("Server stopped gracefully.")
	return nil
}
