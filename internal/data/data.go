package data

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"moviereview/internal/biz"
	"moviereview/internal/conf"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewTransaction,
	NewMovieRepo,
	NewReviewRepo,
	NewWatchlistRepo,
	NewUserRepo,
	NewImageHost,
)

// Data encapsulates database and cache connections
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	log *log.Helper
}

type txKey struct{}

// NewData creates Data instance with database and Redis connections
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	l := log.NewHelper(log.With(logger, "module", "data"))

	db, err := openDB(c.Database)
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Errorf("failed to get database instance: %v", err)
		return nil, nil, err
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	l.Info("database connected successfully")

	data := &Data{
		db:  db,
		rdb: openRedis(c.Redis, l),
		log: l,
	}

	cleanup := func() {
		l.Info("closing data resources")
		if data.rdb != nil {
			if err := data.rdb.Close(); err != nil {
				l.Errorf("failed to close redis: %v", err)
			}
		}
		if err := sqlDB.Close(); err != nil {
			l.Errorf("failed to close database: %v", err)
		}
	}

	return data, cleanup, nil
}

func openDB(c *conf.Database) (*gorm.DB, error) {
	if c == nil || c.Source == "" {
		return nil, fmt.Errorf("data.database.source is not configured")
	}
	if c.Driver != "" && c.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	return gorm.Open(postgres.Open(c.Source), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// openRedis returns nil when redis is not configured or unreachable; the cache is optional.
func openRedis(c *conf.Redis, l *log.Helper) *redis.Client {
	if c == nil || c.Addr == "" {
		l.Info("redis not configured, movie cache disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		ReadTimeout:  c.ReadTimeout.AsDuration(),
		WriteTimeout: c.WriteTimeout.AsDuration(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Warnf("failed to connect to redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	l.Info("redis connected successfully")
	return rdb
}

// tx carries the transaction handle and the work to run once it commits.
type tx struct {
	db          *gorm.DB
	afterCommit []func(context.Context)
}

// DB returns the transaction bound to ctx, or the pool when there is none.
func (d *Data) DB(ctx context.Context) *gorm.DB {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		return t.db
	}
	return d.db.WithContext(ctx)
}

// InTx runs fn inside one database transaction. Repositories reached through
// the ctx passed to fn share it.
func (d *Data) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}
	t := &tx{}
	err := d.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		t.db = db
		return fn(context.WithValue(ctx, txKey{}, t))
	})
	if err != nil {
		return err
	}
	for _, f := range t.afterCommit {
		f(ctx)
	}
	return nil
}

// onCommit runs f after the transaction bound to ctx commits, or immediately
// outside a transaction.
func (d *Data) onCommit(ctx context.Context, f func(context.Context)) {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		t.afterCommit = append(t.afterCommit, f)
		return
	}
	f(ctx)
}

// NewTransaction exposes Data as the use case transaction boundary.
func NewTransaction(d *Data) biz.Transaction {
	return d
}

// Migrate creates or updates the schema.
func (d *Data) Migrate(ctx context.Context) error {
	if err := d.db.WithContext(ctx).AutoMigrate(&Movie{}, &User{}, &Review{}, &WatchlistEntry{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	d.log.Info("schema migrated")
	return nil
}
