package store

import (
	"context"
	"fmt"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/pkg/db"
	"github.com/thep200/oss-finder/pkg/log"
)

// FactoryStore builds the backend named by config.Storage.Driver.
func FactoryStore(ctx context.Context, config *cfg.Config, logger log.Logger) (Store, error) {
	switch config.Storage.Driver {
	case "memory":
		logger.Warn(ctx, "Using in-memory state store, user data is lost on restart")
		return NewMemory(), nil
	case "sqlite":
		handle, err := db.OpenSqlite(config.Storage.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", config.Storage.SqlitePath, err)
		}
		logger.Info(ctx, "Using sqlite state store at %s", config.Storage.SqlitePath)
		return NewSqlite(handle)
	case "mysql":
		mysql, err := db.NewMysql(config)
		if err != nil {
			return nil, err
		}
		if err := mysql.Ping(ctx); err != nil {
			return nil, fmt.Errorf("mysql ping: %w", err)
		}
		logger.Info(ctx, "Using mysql state store %s@%s", config.Mysql.Database, config.Mysql.Host)
		return NewMysql(mysql)
	default:
		return nil, fmt.Errorf("[ERROR] Unsupported storage driver: %s", config.Storage.Driver)
	}
}
