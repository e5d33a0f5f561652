// Package main is the entry point for the Sunset marketplace admin CLI.
// This tool provides administrative commands against the record store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/config"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository/postgres"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository/sqlite"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Sunset Marketplace Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "wipe":
		if err := runWipe(); err != nil {
			fmt.Fprintf(os.Stderr, "wipe failed: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runWipe deletes every user and product record. Orders and stored
// objects are left in place.
func runWipe() error {
	configPath := ""
	if len(os.Args) > 2 {
		configPath = os.Args[2]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repos, closeDB, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	admin := service.NewAdminService(repos.Users, repos.Products, logger)
	result, err := admin.WipeAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d users and %d products\n", result.UsersDeleted, result.ProductsDeleted)
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, func() error, error) {
	if cfg.Database.Driver == "postgres" {
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		users, err := postgres.NewUserRepository(ctx, db, cfg.Tables.Users)
		if err != nil {
			return nil, nil, err
		}
		products, err := postgres.NewProductRepository(ctx, db, cfg.Tables.Products)
		if err != nil {
			return nil, nil, err
		}
		return &repository.Repositories{Users: users, Products: products}, db.Close, nil
	}

	db, err := sqlite.NewDB(ctx, sqlite.Config{
		Path:            cfg.Database.Path,
		JournalMode:     cfg.Database.JournalMode,
		BusyTimeout:     cfg.Database.BusyTimeout,
		CacheSize:       cfg.Database.CacheSize,
		SynchronousMode: cfg.Database.SynchronousMode,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	users, err := sqlite.NewUserRepository(ctx, db, cfg.Tables.Users)
	if err != nil {
		return nil, nil, err
	}
	products, err := sqlite.NewProductRepository(ctx, db, cfg.Tables.Products)
	if err != nil {
		return nil, nil, err
	}
	return &repository.Repositories{Users: users, Products: products}, db.Close, nil
}

func printUsage() {
	fmt.Println(`Sunset Marketplace Admin CLI

Usage:
  sunset-admin <command> [arguments]

Commands:
  wipe        Delete all user and product records [config-path]
  version     Print version information
  help        Show this help message

Examples:
  sunset-admin wipe ./configs/config.yaml
  sunset-admin version`)
}
