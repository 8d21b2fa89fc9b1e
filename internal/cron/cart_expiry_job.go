package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/artisanmarket/cart-backend/pkg/logger"
	"github.com/artisanmarket/cart-backend/pkg/metrics"
)

const CartExpiryJobName = "cart-expiry"

type cartPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type CartExpiryJobParams struct {
	Logger  *logger.Logger
	Purger  cartPurger
	Metrics *metrics.JobMetrics
}

// NewCartExpiryJob deletes stored carts whose TTL has lapsed. Expired rows
// already read as missing; this only reclaims the space.
func NewCartExpiryJob(params CartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Purger == nil {
		return nil, fmt.Errorf("cart purger required")
	}
	return &cartExpiryJob{
		logg:    params.Logger,
		purger:  params.Purger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type cartExpiryJob struct {
	logg    *logger.Logger
	purger  cartPurger
	metrics *metrics.JobMetrics
	now     func() time.Time
}

func (j *cartExpiryJob) Name() string { return CartExpiryJobName }

func (j *cartExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	purged, err := j.purger.PurgeExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge expired carts: %w", err)
	}
	j.metrics.AddAffected(CartExpiryJobName, purged)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":        cutoff,
		"carts_removed": purged,
	})
	j.logg.Info(logCtx, "expired carts purged")
	return nil
}
