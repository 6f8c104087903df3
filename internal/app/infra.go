package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ovall/dentavia_backend/config"
	"github.com/ovall/dentavia_backend/pkg/database"
	"github.com/ovall/dentavia_backend/pkg/email"
	"github.com/ovall/dentavia_backend/pkg/observability"
	redispkg "github.com/ovall/dentavia_backend/pkg/redis"
	"github.com/ovall/dentavia_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideGormDB),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
)

func ProvideGormDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewGormDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return database.CloseGormDB(db)
		},
	})
	return db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
