package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"arkpower/internal/logging"
	"arkpower/pkg/database"

	"github.com/spf13/cobra"
)

// database.Open already applies migrations (postgres) or creates indexes
// (mongo); this command runs that step without starting the server.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the store schema and indexes",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := logging.New(os.Stderr, cfg.IsProduction())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	docs, err := database.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	defer docs.Close(context.Background())

	fmt.Printf("Store %q is ready\n", cfg.Database.Driver)
}
