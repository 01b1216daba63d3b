package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-portfolio-tracker/config"
	"github.com/oksasatya/go-portfolio-tracker/internal/worker"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
	"github.com/oksasatya/go-portfolio-tracker/pkg/mailer"
)

const consumerTag = "notification-worker"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notifications", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notification worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries(consumerTag)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	proc := worker.NewEmailProcessor(mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase), logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			switch proc.Process(ctx, msg.Body) {
			case worker.Ack:
				_ = msg.Ack(false)
			case worker.Drop:
				_ = msg.Nack(false, false)
			case worker.Requeue:
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.Infof("notification worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")

	_ = consumer.Cancel(consumerTag)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("in-flight messages did not finish in time")
	}
}
