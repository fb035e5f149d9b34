package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/salon-connect/config"
	"github.com/oksasatya/salon-connect/internal/container"
	"github.com/oksasatya/salon-connect/internal/worker"
	"github.com/oksasatya/salon-connect/pkg/helpers"
	"github.com/oksasatya/salon-connect/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQFollowQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	var sender worker.Sender = worker.LogSender{Logger: logger}
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			log.Fatal("Mailgun not configured")
		}
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, "new-follower")
	} else {
		logger.Warn("MAIL_SEND_ENABLED=false; emails are logged, not sent")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	closeStore, err := container.OpenStore(ctx, cfg, logger, false)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer closeStore()

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQFollowQueue, 16)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	notifier := worker.NewNotifier(container.GetUserRepo(), sender, cfg, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			switch notifier.Handle(ctx, msg.Body) {
			case worker.Ack:
				_ = msg.Ack(false)
			case worker.Discard:
				_ = msg.Nack(false, false)
			case worker.Retry:
				_ = msg.Nack(false, true)
			}
		}
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQFollowQueue).Info("notify worker listening")
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
