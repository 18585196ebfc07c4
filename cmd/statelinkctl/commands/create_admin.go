package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/internal/app/service"
	"github.com/statelink/statelink-backend/internal/db"
)

func createAdminCmd() *cobra.Command {
	var (
		email    string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create-admin [username]",
		Short: "Create a back-office account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adminRole := model.AdminRole(role)
			if adminRole != model.AdminRoleAdmin && adminRole != model.AdminRoleStaff {
				return fmt.Errorf("unknown role %q", role)
			}

			// Tokens are never issued from the CLI
			adminService := service.NewAdminService(
				repository.NewAdminUserRepository(db.GetDB()),
				requestRepo(),
				nil,
				cfg.JWT.Secret,
				cfg.JWT.AccessTokenExpiry,
				cfg.JWT.RefreshTokenExpiry,
			)

			user, err := adminService.CreateAdmin(args[0], email, password, adminRole)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", string(model.AdminRoleStaff), "admin or staff")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
