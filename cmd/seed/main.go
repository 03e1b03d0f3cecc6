package main

import (
	"context"
	"fmt"
	"log"

	"github.com/daniellescalera/user-management/config"
	"github.com/daniellescalera/user-management/internal/container"
	"github.com/daniellescalera/user-management/pkg/helpers"
)

// seed creates or promotes the ADMIN_EMAIL account so a fresh deployment has an administrator.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AdminEmail == "" {
		log.Fatal("ADMIN_EMAIL is required")
	}
	// the seed never sends mail
	cfg.MailSendEnabled = false

	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	c, err := container.New(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("startup failed")
	}
	defer c.Close()

	u, created, err := c.Service.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.WithError(err).Fatal("seed admin failed")
	}
	action := "already present"
	if created {
		action = "created"
	}
	fmt.Printf("admin %s: id=%s email=%s nickname=%s\n", action, u.ID, u.Email, u.Nickname)
}
