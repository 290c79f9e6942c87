package main

import (
	"fmt"
	"log"
	"os"

	"arkpower/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arkpower",
	Short: "Ark Power content API",
	Long:  "Ark Power content API: users, admin roles and site collections.",
	Run:   runServe,
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using process environment")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
