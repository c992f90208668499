package scheduler

import (
	"time"

	"github.com/mstasiak/storefront-backend/internal/app/service"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CartScheduler reaps anonymous carts that were abandoned before checkout.
type CartScheduler struct {
	cron        *cron.Cron
	cartService service.CartService
	schedule    string
	maxAge      time.Duration
}

func NewCartScheduler(cartService service.CartService, schedule string, maxAge time.Duration) *CartScheduler {
	return &CartScheduler{
		cron:        cron.New(),
		cartService: cartService,
		schedule:    schedule,
		maxAge:      maxAge,
	}
}

func (s *CartScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled cart cleanup", nil)

		removed, err := s.cartService.PurgeStaleAnonymous(s.maxAge)
		if err != nil {
			logger.Error("Failed to purge stale carts from scheduler", err)
			return
		}

		logger.Info("Scheduled cart cleanup finished", map[string]interface{}{
			"removed": removed,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for cart cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart scheduler started successfully", map[string]interface{}{
		"schedule": s.schedule,
		"max_age":  s.maxAge.String(),
	})

	return nil
}

func (s *CartScheduler) Stop() {
	logger.Info("Stopping cart scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cart scheduler stopped", nil)
}
