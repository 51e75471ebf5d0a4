// Command provision-owner creates the shop owner account.
//
// It reads OWNER_NAME, OWNER_EMAIL, OWNER_PHONE, OWNER_USERNAME and either
// OWNER_PASSWORD or OWNER_PASSWORD_FILE from the environment or .env, and
// writes to the database the server is configured with. Running it again for
// the same owner is a no-op.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"canedrop/internal/config"
	"canedrop/internal/database"
	"canedrop/internal/logger"
	"canedrop/internal/services"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		logger.L().Error("owner provisioning failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run() error {
	cfg, err := config.LoadProvisioning()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppEnv)
	if cfg.DatabaseDriver == config.DriverMemory {
		return errors.New("DATABASE_DRIVER=memory has nowhere to keep the owner")
	}

	repos, closeDB, err := database.Setup(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// tokens are never issued here
	auth := services.NewAuthService(repos.Users, "", 0)
	owner, created, err := auth.ProvisionOwner(ctx, services.OwnerInput{
		Name:     cfg.Owner.Name,
		Email:    cfg.Owner.Email,
		Phone:    cfg.Owner.Phone,
		Username: cfg.Owner.Username,
		Password: cfg.Owner.Password,
	})
	if err != nil {
		return err
	}

	if created {
		logger.L().Info("owner account created", zap.String("user_id", owner.ID), zap.String("username", owner.Username))
	} else {
		logger.L().Info("owner account already exists", zap.String("user_id", owner.ID), zap.String("username", owner.Username))
	}
	return nil
}
