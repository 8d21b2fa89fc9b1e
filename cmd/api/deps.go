package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/artisanmarket/cart-backend/internal/cart"
	"github.com/artisanmarket/cart-backend/internal/cron"
	"github.com/artisanmarket/cart-backend/internal/events"
	"github.com/artisanmarket/cart-backend/pkg/config"
	"github.com/artisanmarket/cart-backend/pkg/db"
	"github.com/artisanmarket/cart-backend/pkg/enums"
	"github.com/artisanmarket/cart-backend/pkg/logger"
	"github.com/artisanmarket/cart-backend/pkg/metrics"
	"github.com/artisanmarket/cart-backend/pkg/migrate"
	"github.com/artisanmarket/cart-backend/pkg/redis"
)

type dependencies struct {
	db        *db.Client
	redis     *redis.Client
	events    *events.KafkaPublisher
	cart      cart.Service
	scheduler *cron.Scheduler
}

// bootstrap opens only what the configured backend and lock mode need.
// Redis is also dialed whenever it is configured so that idempotent replay
// and rate limiting work with the db backend too.
func bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*dependencies, error) {
	deps := &dependencies{}
	backend := cfg.Cart.BackendKind()

	if backend == enums.CartBackendDB {
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		deps.db = client
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("dev migrations: %w", err), deps.Close())
		}
	}

	if cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("redis: %w", err), deps.Close())
		}
		deps.redis = client
	}

	repo, err := deps.repository(cfg)
	if err != nil {
		return nil, multierr.Append(err, deps.Close())
	}
	locker, err := deps.locker(cfg)
	if err != nil {
		return nil, multierr.Append(err, deps.Close())
	}

	params := cart.ServiceParams{
		Repo:    repo,
		Locker:  locker,
		Metrics: metrics.NewCartMetrics(reg),
		Logger:  logg,
	}
	if cfg.Events.Enabled() {
		publisher, err := events.NewKafkaPublisher(cfg.Events)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("cart events: %w", err), deps.Close())
		}
		deps.events = publisher
		params.Events = publisher
	}

	svc, err := cart.NewService(params)
	if err != nil {
		return nil, multierr.Append(err, deps.Close())
	}
	deps.cart = svc

	if sqlRepo, ok := repo.(*cart.SQLRepository); ok && cfg.Cart.SweepInterval > 0 {
		scheduler, err := deps.expiryScheduler(cfg, logg, reg, sqlRepo)
		if err != nil {
			return nil, multierr.Append(err, deps.Close())
		}
		deps.scheduler = scheduler
	}
	return deps, nil
}

func (d *dependencies) repository(cfg *config.Config) (cart.Repository, error) {
	switch cfg.Cart.BackendKind() {
	case enums.CartBackendDB:
		return cart.NewSQLRepository(d.db, cfg.Cart.TTL), nil
	case enums.CartBackendRedis:
		return cart.NewRedisRepository(d.redis, cfg.Cart.TTL)
	case enums.CartBackendMemory:
		return cart.NewMemoryRepository(), nil
	}
	return nil, fmt.Errorf("unsupported cart backend %q", cfg.Cart.Backend)
}

func (d *dependencies) locker(cfg *config.Config) (cart.SessionLocker, error) {
	if cfg.Cart.LockKind() != enums.CartLockModeRedis {
		return cart.NewLocalLocker(), nil
	}
	return cart.NewRedisLocker(d.redis, cart.RedisLockerConfig{
		TTL:           cfg.Cart.LockTTL,
		Retries:       cfg.Cart.LockRetries,
		RetryInterval: cfg.Cart.LockRetryInterval,
	})
}

func (d *dependencies) expiryScheduler(cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, repo *cart.SQLRepository) (*cron.Scheduler, error) {
	jobMetrics := metrics.NewJobMetrics(reg)
	job, err := cron.NewCartExpiryJob(cron.CartExpiryJobParams{Logger: logg, Purger: repo, Metrics: jobMetrics})
	if err != nil {
		return nil, err
	}

	var lock cron.Lock = cron.NewLocalLock()
	if d.redis != nil {
		lock, err = cron.NewRedisLock(d.redis, d.redis.SchedulerLockKey(cfg.App.Env), 0)
		if err != nil {
			return nil, err
		}
	}

	return cron.NewScheduler(cron.SchedulerParams{
		Logger:   logg,
		Jobs:     []cron.Job{job},
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cart.SweepInterval,
	})
}

// dbPinger keeps a nil *db.Client from becoming a non-nil interface.
func (d *dependencies) dbPinger() db.Pinger {
	if d.db == nil {
		return nil
	}
	return d.db
}

func (d *dependencies) Close() error {
	var err error
	if d.events != nil {
		err = multierr.Append(err, d.events.Close())
	}
	if d.redis != nil {
		err = multierr.Append(err, d.redis.Close())
	}
	if d.db != nil {
		err = multierr.Append(err, d.db.Close())
	}
	return err
}
