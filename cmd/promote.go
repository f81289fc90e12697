package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/models"
	"github.com/zasai/zas-translate/repository"
)

func newPromoteCmd() *cobra.Command {
	var demote bool
	cmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Give a user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := config.OpenDB(cfg)
			if err != nil {
				return err
			}
			role := models.RoleAdmin
			if demote {
				role = models.RoleUser
			}
			if err := repository.NewUserRepository(db, nil).SetRole(cmd.Context(), args[0], role); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], role)
			return nil
		},
	}
	cmd.Flags().BoolVar(&demote, "demote", false, "set the role back to user")
	return cmd
}
