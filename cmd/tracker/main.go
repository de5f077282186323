// Package main provides the entry point for the challenge tracker engine.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/challenge-tracker/internal/config"
	"github.com/yourusername/challenge-tracker/internal/database"
	"github.com/yourusername/challenge-tracker/internal/datasource"
	"github.com/yourusername/challenge-tracker/internal/health"
	"github.com/yourusername/challenge-tracker/internal/logger"
	"github.com/yourusername/challenge-tracker/internal/metrics"
	"github.com/yourusername/challenge-tracker/internal/odds"
	"github.com/yourusername/challenge-tracker/internal/repository"
	"github.com/yourusername/challenge-tracker/internal/scheduler"
	"github.com/yourusername/challenge-tracker/internal/service"
	"github.com/yourusername/challenge-tracker/internal/store"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Live jockey and driver challenge tracker",
	Long:  `Tracks live challenge standings across race meetings and reconciles bookmaker odds into fair prices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Challenge Tracker starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection when persistence is enabled
	var (
		db          *database.DB
		trackerRepo repository.TrackerRepository
	)
	if cfg.Persistence.Enabled {
		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repo := repository.NewPostgresTrackerRepository(db)
		if pg, ok := repo.(*repository.PostgresTrackerRepository); ok {
			if err := pg.InitSchema(ctx); err != nil {
				return fmt.Errorf("failed to initialize archive schema: %w", err)
			}
		}
		trackerRepo = repo
		appLog.Info("Database connection established, tracker archive enabled")
	} else {
		appLog.Info("Persistence disabled; trackers are in-memory only")
	}

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsSrv := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	// Bookmaker feeds
	httpClientCfg := datasource.DefaultHTTPClientConfig()
	httpClientCfg.Timeout = cfg.Feeds.Timeout()
	httpClientCfg.MaxRetries = cfg.Feeds.MaxRetries
	httpClientCfg.RateLimit = cfg.Feeds.RateLimit
	httpClient := datasource.NewRateLimitedHTTPClient(httpClientCfg, appLog)
	defer httpClient.Close()

	factory := datasource.NewFactory(appLog)
	feeds, err := factory.NewFeeds(cfg.Feeds, httpClient)
	if err != nil {
		return fmt.Errorf("failed to create bookmaker feeds: %w", err)
	}

	collector := datasource.NewCollector(feeds, cfg.Feeds.Timeout(), appLog)
	quoteCache := odds.NewQuoteCache(cfg.Odds.QuoteTTL())
	reconciler := odds.NewReconciler(cfg.Odds.SourcePriorityList())

	// Tracker store
	var archiver store.Archiver
	if trackerRepo != nil {
		archiver = trackerRepo
	}
	st := store.New(quoteCache, reconciler, archiver, appLog)

	// Refresh pipeline
	refreshSvc := service.NewRefreshService(collector, quoteCache, st, appLog)
	sched := scheduler.NewScheduler(refreshSvc, appLog)
	if err := sched.ScheduleOddsRefresh(cfg.Tracker.RefreshIntervalSeconds); err != nil {
		return fmt.Errorf("failed to schedule odds refresh: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	appLog.WithFields(logrus.Fields{
		"feeds":            len(feeds),
		"refresh_interval": cfg.Tracker.RefreshInterval().String(),
		"default_margin":   cfg.Tracker.DefaultMargin,
	}).Info("Odds refresh pipeline running")

	// Health check server
	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		Scheduler:   sched,
		Trackers:    st,
	}
	if db != nil {
		healthCfg.DB = db
	}
	healthSrv := health.NewServer(healthCfg)
	if err := healthSrv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	healthSrv.SetReady(true)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthSrv.SetReady(false)
	cancel()

	// Give in-flight archive writes time to land
	time.Sleep(2 * time.Second)

	appLog.Info("Challenge Tracker shut down successfully")
	return nil
}
