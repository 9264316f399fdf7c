package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/pos/cmd/posctl/internal/commands"
)

const (
	appName    = "posctl"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config, err := apt.LoadConfig("POSCTL", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logger := apt.NewLogger(config.GetStringOrDef("log.level", "info"))

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "seed":
		if err := commands.Seed(ctx, config, logger); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		logger.Info("Seeding completed successfully")

	case "reconcile":
		if err := commands.Reconcile(ctx, config, logger, os.Stdout); err != nil {
			log.Fatalf("Reconcile failed: %v", err)
		}

	case "reset-db":
		if err := commands.ResetDB(ctx, config, logger); err != nil {
			log.Fatalf("Database reset failed: %v", err)
		}
		logger.Info("Database reset completed successfully")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - POS maintenance commands

Usage:
  %s <command> [options]

Commands:
  seed         Create the tables and menu items of the bundled seed file
  reconcile    Repair table pointers left behind by interrupted writes
  reset-db     Drop every collection of the POS database (USE WITH CAUTION)
  version      Print version information
  help         Show this help message

Environment Variables:
  POSCTL_DB_MONGO_URL             MongoDB connection URL (default: mongodb://localhost:27017)
  POSCTL_DB_MONGO_NAME            Database name (default: appetite_pos)
  POSCTL_NATS_URL                 NATS URL for table events during reconcile (optional)
  POSCTL_RECONCILE_STALE_AFTER    Age after which empty orders are discarded (default: 2h)
  POSCTL_LOG_LEVEL                Log level: debug, info, error (default: info)

Examples:
  %s seed
  POSCTL_RECONCILE_STALE_AFTER=30m %s reconcile
  POSCTL_DB_MONGO_URL=mongodb://localhost:27017 %s reset-db

`, appName, appName, appName, appName, appName)
}
