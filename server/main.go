package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/api"
	"github.com/meikuraledutech/timeline/config"
	"github.com/meikuraledutech/timeline/memstore"
	"github.com/meikuraledutech/timeline/normalize"
	"github.com/meikuraledutech/timeline/postgres"
	"github.com/meikuraledutech/timeline/timelineclient"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configFile string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:          "timeline-server",
		Short:        "Serve normalized Tez timeline records",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), o)
		},
	}
	cmd.Flags().StringVar(&o.configFile, "config", "", "path of the YAML configuration file")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "", "log level, overrides log.level of the configuration")
	return cmd
}

func run(ctx context.Context, o *options) error {
	// 1. load config
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	// 2. init logger
	logger, props, err := log.InitLogger(&log.Config{
		Level: strings.ToLower(cfg.Log.Level),
		File:  log.FileLogConfig{Filename: cfg.Log.File},
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)

	// 3. metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	normalize.InitMetrics(registry)
	api.InitMetrics(registry)

	// 4. store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	if err := store.CreateSchema(ctx); err != nil {
		return errors.Trace(err)
	}

	// 5. serve
	client := timelineclient.New(timelineclient.Config{
		BaseURL:    cfg.Timeline.BaseURL,
		Timeout:    cfg.Timeline.Timeout,
		RetryCount: cfg.Timeline.Retries,
		RetryWait:  cfg.Timeline.RetryWait,
	})
	defer client.Close()

	app := fiber.New(fiber.Config{
		AppName:     "timeline-server",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	api.New(client, normalize.NewDefaultRouter(), store).Register(app)
	app.Get("/metrics", api.MetricsHandler(registry))

	go func() {
		<-ctx.Done()
		log.Info("shutting down timeline server")
		if err := app.Shutdown(); err != nil {
			log.Warn("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("timeline server listening",
		zap.String("addr", cfg.Listen),
		zap.String("timeline", cfg.Timeline.BaseURL),
		zap.Bool("postgres", cfg.Database.URL != ""))
	return app.Listen(cfg.Listen, fiber.ListenConfig{DisableStartupMessage: true})
}

// openStore picks the postgres store when a database URL is configured and
// the in-memory LRU store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (timeline.Store, func(), error) {
	if cfg.Database.URL == "" {
		s, err := memstore.New(cfg.Cache.Size)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, errors.Annotate(err, "connect")
	}
	return postgres.New(pool), pool.Close, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Error("timeline server exits with error", zap.Error(err))
		os.Exit(1)
	}
}
