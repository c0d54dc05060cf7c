package app

import (
	"context"
	"fmt"

	"pushdispatcher/internal/config"
	"pushdispatcher/internal/repository"
	"pushdispatcher/internal/service"
	httpt "pushdispatcher/internal/transport/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunAPI wires and serves the read-side notification API.
func RunAPI(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	const op = "app.RunAPI"

	db, err := initDatabase(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	rdb, err := initCache(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn("closing redis client", zap.Error(err))
		}
	}()

	inbox := service.NewInbox(
		repository.NewNotifyRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewUnreadCache(rdb),
		log.Named("inbox"),
	)

	handler := httpt.NewInboxHandler(inbox, log.Named("http"))
	server := httpt.NewServer(handler.Engine(), &cfg.HTTP, log.Named("http"))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return server.Start(ctx)
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func initCache(ctx context.Context, cfg *config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleCons,
		PoolTimeout:  cfg.PoolTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("app.initCache: ping: %w", err)
	}
	return client, nil
}
