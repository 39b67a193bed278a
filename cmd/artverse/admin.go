package main

import (
	"context"
	"errors"

	"github.com/fjod/artverse/internal/auth"
	"github.com/fjod/artverse/internal/repository"
	"github.com/fjod/artverse/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create MongoDB indexes and exit",
	RunE:  runIndexes,
}

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

// createAdminCmd is the only way to get an admin account; registration
// offers buyer and artist roles only.
var createAdminCmd = &cobra.Command{
	Use:     "create-admin",
	Short:   "Create an admin user",
	Example: `  artverse create-admin --name "Site Admin" --email admin@example.com --password 's3cret!'`,
	RunE:    runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Login password (at least 6 characters)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runIndexes(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer syncLogger(log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := connectMongo(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer disconnectMongo(db, log)

	if err := repository.CreateIndexes(ctx, db); err != nil {
		return err
	}
	log.Info("indexes created", zap.String("database", cfg.Mongo.DBName))
	return nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer syncLogger(log)

	if cfg.Auth.JWTSecret == "" {
		// Tokens are never issued here; the manager only needs to exist.
		cfg.Auth.JWTSecret = "unused"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := connectMongo(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer disconnectMongo(db, log)

	users := repository.NewUserRepository(db)
	svc := service.NewAuthService(users, auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), log)

	user, err := svc.CreateAdmin(ctx, adminName, adminEmail, adminPassword)
	if err != nil {
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			return errors.New(svcErr.Message)
		}
		return err
	}
	log.Info("admin user created", zap.String("id", user.ID.Hex()), zap.String("email", user.Email))
	return nil
}
