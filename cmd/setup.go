package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/tagsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template when missing, then initializes the database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err != nil {
			r.logger.Info("config file not found, creating from template", "path", r.configPath)
			if err := shared.CreateConfigFile(r.configPath); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
			r.writePlain("✓ Config written to %s\n", r.configPath)
			r.writePlain("  Set credentials.spotify.client_id and client_secret (or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET)\n")
		}
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	return nil
}

// openDatabase opens the history database and applies pending migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	path := r.config.Database.Path
	r.logger.Debug("opening database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
