package command

import (
	"fmt"

	"anilog/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := database.Migrate(e.db, e.logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := database.Migrate(e.db, e.logger); err != nil {
			return err
		}
		if err := database.Seed(cmd.Context(), e.db, e.logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ sample data loaded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
