// Package sweeper runs the periodic housekeeping of the booking core:
// closing out finished stays and dropping expired carts.
package sweeper

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"hotelcore/internal/modules/payment"

	"github.com/sirupsen/logrus"
)

type OrderFinisher interface {
	FinishOrders(ctx context.Context, now time.Time) (payment.FinishReport, error)
}

type CartCleaner interface {
	CleanCarts(ctx context.Context, now time.Time) (int64, error)
}

// Report sums up one sweep.
type Report struct {
	payment.FinishReport
	ExpiredCarts int64         `json:"expired_carts"`
	Duration     time.Duration `json:"duration_ns"`
}

// Config controls the background schedule.
type Config struct {
	Interval time.Duration // default 1h
	Enabled  bool
}

func DefaultConfig() Config {
	return Config{Interval: time.Hour, Enabled: true}
}

type Service struct {
	orders OrderFinisher
	carts  CartCleaner
	log    *logrus.Logger
	now    func() time.Time

	// one sweep at a time, whether scheduled or triggered over HTTP
	mu sync.Mutex
}

func NewService(orders OrderFinisher, carts CartCleaner, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Service{orders: orders, carts: carts, log: log, now: time.Now}
}

// RunOnce finishes ended orders and removes expired carts as of now.
// A failing step is logged and does not stop the other one; both errors are returned.
func (s *Service) RunOnce(ctx context.Context, now time.Time) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	var report Report
	var errs []error

	finished, err := s.orders.FinishOrders(ctx, now)
	if err != nil {
		s.log.WithError(err).Warn("finish orders failed")
		errs = append(errs, err)
	} else {
		report.FinishReport = finished
	}

	expired, err := s.carts.CleanCarts(ctx, now)
	if err != nil {
		s.log.WithError(err).Warn("cart cleanup failed")
		errs = append(errs, err)
	} else {
		report.ExpiredCarts = expired
	}

	report.Duration = time.Since(started)
	s.log.WithFields(logrus.Fields{
		"canceled_bookings": report.CanceledBookings,
		"deleted_bookings":  report.DeletedBookings,
		"finished_orders":   report.FinishedOrders,
		"failed_orders":     report.FailedOrders,
		"expired_carts":     report.ExpiredCarts,
		"duration":          report.Duration,
	}).Info("sweep completed")

	return report, errors.Join(errs...)
}

// Schedule runs a sweep every cfg.Interval until ctx is done or the returned
// channel is closed. It returns nil when the schedule is disabled.
func (s *Service) Schedule(ctx context.Context, cfg Config) chan struct{} {
	if !cfg.Enabled {
		s.log.Info("automatic sweep is disabled")
		return nil
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}

	stopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_, _ = s.RunOnce(ctx, s.now())
			case <-stopCh:
				s.log.Info("sweep schedule stopped")
				return
			case <-ctx.Done():
				s.log.Info("sweep schedule stopped (context done)")
				return
			}
		}
	}()

	s.log.WithField("interval", cfg.Interval).Info("sweep schedule started")
	return stopCh
}
