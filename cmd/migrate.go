package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/log"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := config.OpenDB(cfg)
			if err != nil {
				return err
			}
			if err := config.RunMigrations(db); err != nil {
				return err
			}
			log.L().Info("migrations applied")
			return nil
		},
	}
}
