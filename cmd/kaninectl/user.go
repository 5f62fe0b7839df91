package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanineapp/kanine-server/internal/service"
)

func newUserCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(newUserCreateCmd(flags))

	return cmd
}

func newUserCreateCmd(flags *globalFlags) *cobra.Command {
	var req service.RegisterRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long: `Create a user account directly in the database.

This works even when REGISTRATION_ENABLED is false, which is how a private
server gets its first account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			st, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			// Account creation never issues tokens, so no token service is needed.
			authService := service.NewAuthService(st, nil, true, log)

			user, err := authService.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address used to sign in")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&req.DisplayName, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
