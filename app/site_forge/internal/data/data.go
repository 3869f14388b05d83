package data

import (
	"database/sql"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/config"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/job"
)

// NewJobStore 按配置的驱动创建任务存储：memory、postgres 或 sqlite
func NewJobStore(c config.StoreConfig, logger log.Logger) (job.Store, func(), error) {
	helper := log.NewHelper(logger)

	switch c.Driver {
	case "", "memory":
		return job.NewMemoryStore(), func() {}, nil

	case "postgres", "sqlite":
		db, err := open(c)
		if err != nil {
			return nil, nil, err
		}
		store, err := NewSQLStore(db, c.Driver)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		cleanup := func() {
			helper.Info("closing the job store")
			db.Close()
		}
		return store, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver: %s", c.Driver)
	}
}

func open(c config.StoreConfig) (*sql.DB, error) {
	dsn := c.DSN
	if c.Driver == "postgres" && dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Name)
	}
	if c.Driver == "sqlite" && dsn == "" {
		dsn = "site_forge.db"
	}

	db, err := sql.Open(c.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if c.Driver == "sqlite" {
		// sqlite 只允许一个写连接
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
