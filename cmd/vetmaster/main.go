package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "vetmaster",
	Short: "vetmaster: single-clinic veterinary practice management",
	Long: `vetmaster manages a veterinary practice from the terminal: animals,
owners, medical history, finance, and inventory, all stored locally.

Run "vetmaster start" to launch the local server, then use the other
subcommands against it.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(animalCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(insightCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	// A .env next to the binary is convenient in dev; ignore if absent.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
