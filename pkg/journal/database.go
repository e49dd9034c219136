package journal

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/erc7824/solrpc/pkg/log"
)

// Config selects the journal database.
//
// To use sqlite, specify the "sqlite" driver. By default it will use an
// in-memory database; provide SOLRPC_DATABASE_URL (e.g. "file:solrpc.db")
// to persist it. For PostgreSQL provide a full connection URL.
type Config struct {
	Driver string `env:"SOLRPC_DATABASE_DRIVER" env-default:"sqlite" validate:"oneof=sqlite postgres"`
	URL    string `env:"SOLRPC_DATABASE_URL" env-default:""`
}

// Connect opens the database described by cfg and migrates the journal
// schema.
func Connect(cfg Config, lg log.Logger) (*gorm.DB, error) {
	if lg == nil {
		lg = log.NewNoopLogger()
	}

	var dial gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("postgres driver requires a database url")
		}
		lg.Info("connecting to PostgreSQL")
		dial = postgres.Open(cfg.URL)
	case "sqlite", "":
		dsn := cfg.URL
		if dsn == "" {
			lg.Info("connecting to in-memory sqlite")
			dsn = "file::memory:?cache=shared"
		} else {
			lg.Info("connecting to sqlite", "dsn", dsn)
		}
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the journal tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&TransferRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate journal schema: %w", err)
	}
	return nil
}
