package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"seenstudio/internal/cache"
	"seenstudio/internal/config"
	"seenstudio/internal/http/handlers"
	applog "seenstudio/internal/log"
	"seenstudio/internal/metrics"
	"seenstudio/internal/repos"
)

func main() {
	app := &cli.App{
		Name:  "seenstudio",
		Usage: "fashion storefront API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or inspect schema migrations",
				Subcommands: []*cli.Command{
					{Name: "up", Action: migrate("up")},
					{Name: "down", Action: migrate("down")},
					{Name: "status", Action: migrate("status")},
				},
			},
			{
				Name:   "seed",
				Usage:  "insert sample products, the admin user and homepage selections",
				Action: seed,
			},
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		applog.L().Fatal().Err(err).Str("action", "app.exit").Send()
	}
}

// setup loads configuration and points the logger at stdout and the optional log file.
func setup() (config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	var out io.Writer = os.Stdout
	closeLog := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return config.Config{}, nil, fmt.Errorf("open log file %s: %w", cfg.LogFile, err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closeLog = func() { _ = f.Close() }
	}
	applog.Setup(applog.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: out})
	return cfg, closeLog, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	if cfg.DBAutoMigrate {
		return repos.OpenMigrated(ctx, cfg.DBDSN)
	}
	return repos.OpenDB(cfg.DBDSN)
}

func seedOptions(cfg config.Config) repos.SeedOptions {
	return repos.SeedOptions{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword, BcryptCost: cfg.BcryptCost}
}

func serve(c *cli.Context) error {
	cfg, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()
	log := applog.L()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBSeed {
		if err := repos.Seed(ctx, db, seedOptions(cfg)); err != nil {
			return err
		}
	}

	var listCache cache.ListCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		listCache = cache.NewRedisCache(client, cfg.SelectionTTL)
		log.Info().Str("action", "cache.redis").Msg("selection cache backed by redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps, err := handlers.NewDeps(ctx, db, cfg, metrics.New(reg), listCache)
	if err != nil {
		return err
	}
	app := handlers.NewApp(cfg, deps, reg)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("action", "server.start").Str("port", cfg.Port).Str("env", cfg.Env).Send()
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Str("action", "server.stop").Send()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	return nil
}

func migrate(command string) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()
		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return repos.Migrate(c.Context, db, command, c.Args().Slice()...)
	}
}

func seed(c *cli.Context) error {
	cfg, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()
	if cfg.AdminPassword == "" {
		return errors.New("SEEN_ADMIN_PASSWORD must be set to seed the admin user")
	}
	db, err := repos.OpenMigrated(c.Context, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return repos.Seed(c.Context, db, seedOptions(cfg))
}
