package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Ericlein/Eribot/internal/api"
	"github.com/Ericlein/Eribot/internal/config"
	"github.com/Ericlein/Eribot/internal/health"
	"github.com/Ericlein/Eribot/internal/journal"
	"github.com/Ericlein/Eribot/internal/logging"
	"github.com/Ericlein/Eribot/internal/metric"
	"github.com/Ericlein/Eribot/internal/middleware"
	"github.com/Ericlein/Eribot/internal/monitor"
	"github.com/Ericlein/Eribot/internal/notify"
	"github.com/Ericlein/Eribot/internal/remediation"
)

func main() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(&cfg.Logging)

	log.Info().
		Str("metrics_source", cfg.Metrics.Source).
		Str("remediator_mode", cfg.Remediator.Mode).
		Str("check_interval", cfg.Monitoring.CheckInterval).
		Msg("starting eribot monitor")

	source, err := buildSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build metrics source")
	}

	machine, err := monitor.NewMachine(thresholds(cfg), monitor.Options{
		Cooldown:         cfg.Monitoring.CooldownDuration(),
		RenotifyInterval: cfg.Monitoring.RenotifyInterval,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid threshold configuration")
	}

	registry, err := remediation.NewRegistry(cfg.Remediator.Priorities)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid remediation priorities")
	}
	if err := registry.Validate(machine.Kinds()); err != nil {
		log.Fatal().Err(err).Msg("remediation registry incomplete")
	}

	var executor remediation.Executor
	if cfg.Remediator.Mode == "simulated" {
		executor = remediation.NewSimulatedExecutor()
	} else {
		executor = remediation.NewHTTPExecutor(cfg.Remediator.URL, cfg.Remediator.TimeoutDuration())
	}
	remediator := remediation.NewDispatcher(executor, registry, cfg.Remediator.TimeoutDuration(), cfg.Remediator.RetryAttempts)

	var dedupe notify.DedupeStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		dedupe = notify.NewRedisDedupe(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("notification dedupe backed by redis")
	} else {
		dedupe = notify.NewMemoryDedupe()
	}

	notifier := notify.NewDispatcher(buildPoster(cfg), dedupe, notify.Options{
		DedupeWindow:  cfg.Notifications.DedupeWindow(),
		RatePerMinute: cfg.Notifications.RatePerMinute,
		Burst:         cfg.Notifications.RateBurst,
	})

	// The journal is optional; monitoring runs without persistence.
	var jnl monitor.Journal = journal.Noop{}
	var reader api.IncidentReader
	if cfg.Database.Host != "" {
		db, derr := journal.NewDatabase(cfg.Database.DSN())
		if derr != nil {
			log.Error().Err(derr).Msg("incident journal init failed; continuing without persistence")
		} else {
			defer db.Close()
			store, serr := journal.NewStore(context.Background(), db)
			if serr != nil {
				log.Error().Err(serr).Msg("incident journal schema init failed; continuing without persistence")
			} else {
				jnl = store
				reader = store
			}
		}
	}

	healthSource := health.NewProber(strings.TrimSuffix(cfg.Remediator.URL, "/")+"/health", 10*time.Second)
	statusStore := api.NewStatusStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := cfg.Monitoring.CheckIntervalDuration()
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		monitor.StartScheduler(ctx, monitor.Deps{
			Source:         source,
			HealthSource:   healthSource,
			Machine:        machine,
			Remediator:     remediator,
			Notifier:       notifier,
			Journal:        jnl,
			Status:         statusStore,
			Interval:       interval,
			HealthInterval: cfg.Remediator.HealthCheckIntervalDuration(),
			TickBudget:     interval * time.Duration(cfg.Remediator.RetryAttempts+1),
		})
	}()

	if err := notifier.PostSystem(ctx, notify.SeverityInfo, startupText(cfg)); err != nil {
		log.Warn().Err(err).Msg("startup notification failed")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Authentication(cfg.Server.APIToken))
	if _, err := api.NewApi(router, statusStore, reader); err != nil {
		log.Fatal().Err(err).Msg("failed to set up status api")
	}

	srv := &http.Server{Addr: cfg.Server.BindAddr, Handler: router}
	go func() {
		log.Info().Str("addr", cfg.Server.BindAddr).Msg("status api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("status api server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, waiting for in-flight tick")
	<-schedDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := notifier.PostSystem(shutdownCtx, notify.SeverityInfo, fmt.Sprintf("eribot monitoring stopped on %s", localHostname())); err != nil {
		log.Warn().Err(err).Msg("shutdown notification failed")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("status api shutdown failed")
	}
	log.Info().Msg("eribot exited")
}

func buildSource(cfg *config.Config) (metric.Source, error) {
	if cfg.Metrics.Source == "prometheus" {
		return metric.NewPromSource(cfg.Metrics.PrometheusURL, cfg.Metrics.Queries, cfg.Metrics.QueryTimeoutDuration())
	}
	return metric.NewSystemSource(cfg.Monitoring.DiskPath), nil
}

// thresholds derives per-kind water marks: the configured threshold is
// the high mark, and recovery requires dropping a hysteresis margin
// below it. Service health is binary, so any probe failure breaches and
// only a passing probe clears.
func thresholds(cfg *config.Config) map[metric.Kind]monitor.ThresholdConfig {
	m := cfg.Monitoring
	return map[metric.Kind]monitor.ThresholdConfig{
		metric.KindCPU: {
			Kind:          metric.KindCPU,
			HighWaterMark: m.CPUThreshold,
			LowWaterMark:  m.CPUThreshold - m.HysteresisMargin,
		},
		metric.KindMemory: {
			Kind:          metric.KindMemory,
			HighWaterMark: m.MemoryThreshold,
			LowWaterMark:  m.MemoryThreshold - m.HysteresisMargin,
		},
		metric.KindDisk: {
			Kind:          metric.KindDisk,
			HighWaterMark: m.DiskThreshold,
			LowWaterMark:  m.DiskThreshold - m.HysteresisMargin,
		},
		metric.KindServiceHealth: {
			Kind:          metric.KindServiceHealth,
			HighWaterMark: 100,
			LowWaterMark:  0,
		},
	}
}

func buildPoster(cfg *config.Config) notify.Poster {
	if cfg.Slack.Token != "" {
		return notify.NewSlackPoster(cfg.Slack.APIURL, cfg.Slack.Token, cfg.Slack.Channel, cfg.Slack.Username, cfg.Slack.IconEmoji)
	}
	if cfg.Notifications.WebhookURL != "" {
		return notify.NewWebhookPoster(cfg.Notifications.WebhookURL)
	}
	log.Warn().Msg("no slack token or webhook configured, notifications go to the log")
	return notify.LogPoster{}
}

func startupText(cfg *config.Config) string {
	return fmt.Sprintf("eribot monitoring started on %s (source %s, interval %s, remediator %s)",
		localHostname(), cfg.Metrics.Source, cfg.Monitoring.CheckInterval, cfg.Remediator.Mode)
}

func localHostname() string {
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "unknown"
}
