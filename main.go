package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ledgerbot/cmd"
	"ledgerbot/config"
	"ledgerbot/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	setupLogging(config.FromEnv())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if len(os.Args) > 1 {
		if err := runCommand(ctx, os.Args[1], os.Args[2:]); err != nil {
			log.WithError(err).Fatal("Command failed")
		}
		return
	}

	if err := cmd.Run(ctx); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

func runCommand(ctx context.Context, name string, args []string) error {
	switch name {
	case "migrate":
		return handleMigrationCommand(args)
	case "check":
		if len(args) < 1 {
			return fmt.Errorf("usage: ledgerbot check <invoice> [date]")
		}
		date := ""
		if len(args) > 1 {
			date = args[1]
		}
		return cmd.Check(ctx, os.Stdout, args[0], date)
	case "reconcile":
		return cmd.Reconcile(ctx, os.Stdout)
	case "run":
		return cmd.Run(ctx)
	default:
		return fmt.Errorf("unknown command: %s (expected migrate, check, reconcile or run)", name)
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ledgerbot migrate [up|down|status] [args...]")
	}

	databaseURL := config.FromEnv().GetDatabaseURL()
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		return database.MigrateStatus(databaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
