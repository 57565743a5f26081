// Command sweeper runs one housekeeping pass and exits; meant for cron.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelcore/internal/config"
	"hotelcore/internal/database"
	"hotelcore/internal/modules/cart"
	"hotelcore/internal/modules/payment"
	"hotelcore/internal/modules/pricing"
	"hotelcore/internal/modules/sweeper"
	"hotelcore/internal/pkg/events"
	"hotelcore/internal/repository"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logrus.New()
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	store := repository.NewStore(db)
	store.SetRetryAttempts(cfg.TxRetryAttempts)

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, order events are dropped")
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	payments := payment.NewService(store, publisher, log)
	carts := cart.NewService(cart.Deps{
		Store:   store,
		Pricing: pricing.NewService(store, log),
		Log:     log,
		TTL:     cfg.CartTTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := sweeper.NewService(payments, carts, log).RunOnce(ctx, time.Now())
	if err != nil {
		log.WithError(err).WithField("report", report).Error("sweep finished with errors")
		os.Exit(1)
	}
}
