package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		slog.Info("database is up to date", "path", cfg.DatabasePath)
		return db.Close()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and sample content",
	Long: `Migrate the database, then insert the admin account, default categories
and sample posts and projects. Tables that already hold rows are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		return db.Close()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd)
}
