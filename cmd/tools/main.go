// Command tools carries operator chores for the MindSpace backend:
// schema migrations, account bootstrap and token issuance.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindspace/mindspace-backend/internal/auth"
	"github.com/mindspace/mindspace-backend/internal/config"
	"github.com/mindspace/mindspace-backend/internal/database"
	"github.com/mindspace/mindspace-backend/internal/logging"
	"github.com/mindspace/mindspace-backend/internal/repository/postgres"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "mindspace-tools",
		Short:         "Operator tools for the MindSpace backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file (defaults to config.json lookup)")

	rootCmd.AddCommand(
		newMigrateCommand(),
		newCreateUserCommand(),
		newSetPasswordCommand(),
		newIssueTokenCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

// env is what the account commands operate on
type env struct {
	db    *database.DB
	users *postgres.UserRepository
	auth  *auth.Service
}

func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Log)
	users := postgres.NewUserRepository(db.DB)
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	return &env{
		db:    db,
		users: users,
		auth:  auth.NewService(users, postgres.NewUserSessionRepository(db.DB), jwtService, logger),
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}
