package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelcore/internal/app"
	"hotelcore/internal/config"
	"hotelcore/internal/database"
	"hotelcore/internal/modules/sweeper"
	"hotelcore/internal/pkg/events"
	"hotelcore/internal/pkg/notify"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := newLogger(cfg)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}

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

	notifier := notify.New(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, log)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	a := app.New(app.Deps{
		Config:    cfg,
		DB:        db,
		Log:       log,
		Publisher: publisher,
		Notifier:  notifier,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopSweep := a.Sweeper.Schedule(ctx, sweeper.Config{
		Interval: cfg.SweepInterval,
		Enabled:  cfg.SweepEnabled,
	})
	if stopSweep != nil {
		defer close(stopSweep)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http server shutdown")
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(cfg.LogLevel)
	if cfg.IsProdLike() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
