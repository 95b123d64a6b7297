// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/db"
	"github.com/danielhkuo/sabc/jobs"
	"github.com/danielhkuo/sabc/middleware"
	"github.com/danielhkuo/sabc/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Connect and bring the schema up to date
	dbConn, err := db.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		created, err := db.EnsureSuperuser(context.Background(), dbConn, cfg.AdminUsername, cfg.AdminPassword, time.Now())
		if err != nil {
			slog.Error("failed to create superuser", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("Superuser created", "username", cfg.AdminUsername)
		}
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute).TrustProxies(cfg.ProxyPrefixes())

	// Create router
	handler, err := router.NewRouter(dbConn, cfg, limiter)
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	// Background jobs
	scheduler := jobs.NewScheduler(time.Minute)
	if err := scheduler.Schedule(cfg.PollSweepSchedule, jobs.NewPollCloser(dbConn)); err != nil {
		slog.Error("failed to schedule poll closer", "error", err)
		os.Exit(1)
	}
	err = scheduler.Schedule("@every 10m", jobs.Func{
		JobName: "prune-rate-limiter",
		Fn: func(ctx context.Context) error {
			if n := limiter.Cleanup(30 * time.Minute); n > 0 {
				slog.Debug("pruned idle rate limiters", "count", n)
			}
			return nil
		},
	})
	if err != nil {
		slog.Error("failed to schedule limiter cleanup", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// Create server
	server := http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
		}
		scheduler.Stop(ctx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "club", cfg.ClubName)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
