package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/daniellescalera/user-management/config"
	"github.com/daniellescalera/user-management/internal/worker"
	"github.com/daniellescalera/user-management/pkg/helpers"
	"github.com/daniellescalera/user-management/pkg/mailer"
)

const prefetch = 16

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, prefetch)
	if err != nil {
		logger.WithError(err).Fatal("connect rabbitmq")
	}
	defer consumer.Close()

	deliveries, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	if cfg.MailgunAPIBase != "" {
		mg = mg.WithAPIBase(cfg.MailgunAPIBase)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	w := worker.NewEmailWorker(mg, logger)
	if err := w.Run(ctx, deliveries); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("email worker stopped")
	}
	logger.Info("email worker exited")
}
