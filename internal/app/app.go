package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"booktracker/internal/config"
	"booktracker/internal/db"
	"booktracker/internal/repo"
	"booktracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	log    *slog.Logger
	db     *Database
	redis  *redis.Client
	router *gin.Engine
}

// Database holds the repositories for the backend selected by DATABASE_URL.
type Database struct {
	Users repo.UserRepo
	Books repo.BookRepo

	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

func (d *Database) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.sqlDB != nil {
		_ = d.sqlDB.Close()
	}
}

// OpenDatabase connects to the configured database and applies pending migrations.
func OpenDatabase(ctx context.Context, cfg config.DBConfig) (*Database, error) {
	driver, dsn, err := cfg.Source()
	if err != nil {
		return nil, err
	}
	switch driver {
	case config.DriverPostgres:
		mdb, err := db.OpenForMigrations(ctx, driver, dsn)
		if err != nil {
			return nil, err
		}
		err = db.Up(mdb, driver)
		_ = mdb.Close()
		if err != nil {
			return nil, err
		}
		pool, err := db.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Database{
			Users: repo.NewPGUserRepo(pool),
			Books: repo.NewPGBookRepo(pool),
			pool:  pool,
		}, nil
	case config.DriverSQLite:
		sdb, err := db.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := db.Up(sdb, driver); err != nil {
			_ = sdb.Close()
			return nil, err
		}
		return &Database{
			Users: repo.NewSQLiteUserRepo(sdb),
			Books: repo.NewSQLiteBookRepo(sdb),
			sqlDB: sdb,
		}, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	database, err := OpenDatabase(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	a.db = database

	rdb, err := newRedis(ctx, cfg.Redis)
	if err != nil {
		database.Close()
		return nil, err
	}
	a.redis = rdb

	files, err := storage.NewLocal(cfg.Upload.Dir)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	a.router = NewRouter(cfg, Deps{
		Users: database.Users,
		Books: database.Books,
		Redis: rdb,
		Files: files,
	}, log)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	a.closeAll()
	return nil
}

func (a *App) closeAll() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}
