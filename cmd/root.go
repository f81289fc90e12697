// Package cmd is the command line of the service.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/log"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "zas",
		Short: "ZAS: translate web pages into 27 languages",
		Long: `ZAS translates the visible text of HTML pages while keeping markup and
attributes intact, with right-to-left layout for Arabic, Persian and Urdu.

Commands:
  serve       Run the HTTP service
  migrate     Create or update the database tables
  translate   Translate an HTML file from the command line
  promote     Give a user the admin role
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yml", "path to the YAML config file")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newTranslateCmd(),
		newPromoteCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		log.L().Error("command failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

// loadConfig reads the configuration and switches the logger to its settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.InitConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.App.Production {
		if err := log.Init(true); err != nil {
			return nil, err
		}
	}
	log.SetLevel(cfg.App.LogLevel)
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zas version %s\n", config.Version)
		},
	}
}
