package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nikhilbhutani/pdfchat/internal/config"
	"github.com/nikhilbhutani/pdfchat/internal/database"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app := &cli.App{
		Name:  "migrate",
		Usage: "apply or inspect catalog schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Postgres connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: up,
			},
			{
				Name:   "status",
				Usage:  "print applied and pending migrations",
				Action: status,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func dbConfig(c *cli.Context) (config.DatabaseConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	if url := c.String("database-url"); url != "" {
		cfg.Database.URL = url
	}
	if cfg.Database.URL == "" {
		return config.DatabaseConfig{}, fmt.Errorf("--database-url or DATABASE_URL is required")
	}
	cfg.Database.MinConns = 0
	return cfg.Database, nil
}

func up(c *cli.Context) error {
	dbCfg, err := dbConfig(c)
	if err != nil {
		return err
	}
	pool, err := database.NewPool(c.Context, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(c.Context, pool); err != nil {
		return err
	}
	slog.Info("migrations applied")
	return nil
}

func status(c *cli.Context) error {
	dbCfg, err := dbConfig(c)
	if err != nil {
		return err
	}
	pool, err := database.NewPool(c.Context, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return database.MigrationStatus(c.Context, pool)
}
