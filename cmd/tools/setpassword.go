package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindspace/mindspace-backend/internal/auth"
	"github.com/mindspace/mindspace-backend/internal/models"
)

func newCreateUserCommand() *cobra.Command {
	var (
		email     string
		username  string
		firstName string
		password  string
		userType  string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := e.auth.Register(cmd.Context(), auth.RegisterInput{
				Email:     email,
				Username:  username,
				FirstName: firstName,
				Password:  password,
				UserType:  userType,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.UserType, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "login name (defaults to the email)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&userType, "user-type", models.UserTypeUser, "user or doctor")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newSetPasswordCommand() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Reset the password of an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.ValidatePassword(password); err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := e.users.GetByEmail(cmd.Context(), strings.ToLower(email))
			if err != nil {
				return fmt.Errorf("lookup %s: %w", email, err)
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			if err := e.users.UpdatePassword(cmd.Context(), user.ID, hash); err != nil {
				return fmt.Errorf("failed to update password: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "updated password for %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newIssueTokenCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Open a login session for an account and print its tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := e.users.GetByEmail(cmd.Context(), strings.ToLower(email))
			if err != nil {
				return fmt.Errorf("lookup %s: %w", email, err)
			}

			tokens, err := e.auth.IssueSession(cmd.Context(), user, auth.ClientInfo{UserAgent: "mindspace-tools"})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:          %s (%s)\n", user.Email, user.ID)
			fmt.Fprintf(out, "expires at:    %s\n", tokens.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(out, "access token:  %s\n", tokens.AccessToken)
			fmt.Fprintf(out, "refresh token: %s\n", tokens.RefreshToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
