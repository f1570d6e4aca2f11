package docstore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
	"github.com/hackgods/pickup-appointment-scheduling/internal/db"
	redisclient "github.com/hackgods/pickup-appointment-scheduling/internal/redis"
)

// Backend is an opened store plus the connections behind it, if any.
type Backend struct {
	Store  Store
	PgPool *pgxpool.Pool
	Redis  *redis.Client
}

func (b *Backend) Close() {
	if b.PgPool != nil {
		b.PgPool.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}

// Open builds the store selected by DOCSTORE_BACKEND.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Backend, error) {
	switch cfg.DocstoreBackend {
	case config.BackendMemory:
		log.Warn("using in-memory docstore, data is lost on exit")
		return &Backend{Store: NewMemory()}, nil

	case config.BackendRedis:
		rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return nil, errors.Wrap(err, "redis docstore")
		}
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
		return &Backend{Store: NewRedis(rdb, "pickup", cfg.LockTimeout), Redis: rdb}, nil

	case config.BackendPostgres:
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err != nil {
			return nil, errors.Wrap(err, "postgres docstore")
		}
		store := NewPostgres(pool)
		if err := store.EnsureSchema(pgCtx); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("connected to Postgres")
		return &Backend{Store: store, PgPool: pool}, nil

	default:
		fs, err := NewFS(cfg.DocstoreDir, cfg.LockTimeout)
		if err != nil {
			return nil, err
		}
		log.Info("using file docstore", zap.String("dir", cfg.DocstoreDir))
		return &Backend{Store: fs}, nil
	}
}
