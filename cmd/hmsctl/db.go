package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the reference database schema",
	Long: `Manage the reference schema of the hospital-management database.

Intended for development and test databases; the backend owns the schema of
production databases.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return requireSubcommand(cmd, "migrate, down, status")
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.PersistentFlags().String("database-url", "", "Database connection string (default $DATABASE_URL)")
}

func requireSubcommand(cmd *cobra.Command, names string) error {
	_ = cmd.Help()
	return fmt.Errorf("command '%s' requires a subcommand (%s)", cmd.Name(), names)
}
