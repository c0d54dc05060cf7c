package app

import (
	"context"
	"fmt"

	"pushdispatcher/internal/config"
	"pushdispatcher/internal/repository"
	"pushdispatcher/internal/service"
	"pushdispatcher/internal/transport/gateway"
	httpt "pushdispatcher/internal/transport/http"
	"pushdispatcher/pkg/metric"
	"pushdispatcher/pkg/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunDispatcher wires and runs the dispatch loop plus its ops listener.
// It returns when the context is cancelled, when the execution guard
// detects another active instance, or on a startup failure.
func RunDispatcher(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	const op = "app.RunDispatcher"

	if err := postgres.MigrateUp(cfg.Database.DSN, cfg.Database.MigrationsPath); err != nil {
		return fmt.Errorf("%s: migrations: %w", op, err)
	}

	db, err := initDatabase(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	sender, err := initGateway(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics := metric.NewEngine(prometheus.DefaultRegisterer)

	guard := service.NewGuard(
		repository.NewMarkerRepository(db),
		cfg.Engine.GuardWindow,
		log.Named("guard"),
	)

	engine := service.NewEngine(
		repository.NewNotifyRepository(db),
		repository.NewDeviceRepository(db),
		repository.NewAttemptRepository(db),
		sender,
		log.Named("engine"),
		metrics,
		service.NotifyPause(cfg.Engine.NotifyPause),
		service.BatchLimit(cfg.Engine.BatchLimit),
	)

	loop := service.NewLoop(guard, engine, log.Named("loop"),
		service.CycleDelay(cfg.Engine.CycleDelay))

	// The loop exiting (guard skip or shutdown) must take the ops
	// listener down with it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	ops := httpt.NewOpsServer(cfg.Ops.Addr, log.Named("ops"))
	eg.Go(func() error {
		return ops.Start(ctx)
	})

	eg.Go(func() error {
		defer cancel()
		return loop.Run(ctx)
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Database, log *zap.Logger) (*postgres.Postgres, error) {
	db, err := postgres.New(ctx, cfg.DSN, log.Named("postgres"),
		postgres.MaxPoolSize(cfg.PoolMax),
		postgres.ConnAttempts(cfg.ConnAttempts),
		postgres.ConnDelay(cfg.ConnDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initDatabase: %w", err)
	}
	return db, nil
}

func initGateway(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gateway.FCMSender, error) {
	sender, err := gateway.NewFCMSender(ctx, cfg.Firebase.CredentialsFile, log.Named("fcm"),
		gateway.SendRate(float64(cfg.Engine.GatewayRate)))
	if err != nil {
		return nil, fmt.Errorf("app.initGateway: %w", err)
	}
	return sender, nil
}
