package database

import (
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"boqtracker/internal/domain"
)

// Options tunes the connection. The zero value is what the API server uses.
type Options struct {
	// Silent disables gorm's SQL logger.
	Silent bool
	// MaxOpenConns caps the pool; sqlite in-memory databases need 1.
	MaxOpenConns int
}

// Connect opens postgres for postgres:// DSNs and the pure-Go sqlite
// driver for anything else.
func Connect(dsn string, opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if opts.Silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	var (
		db  *gorm.DB
		err error
	)
	if IsPostgres(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		db, err = gorm.Open(
			gormsqlite.New(gormsqlite.Config{
				DriverName: "sqlite",
				DSN:        dsn,
			}),
			cfg,
		)
	}
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	return db, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Models lists every ledger table in creation order.
func Models() []any {
	return []any{
		&domain.BOQItem{},
		&domain.ConcentrationSheet{},
		&domain.ConcentrationEntry{},
		&domain.CalculationSheet{},
		&domain.CalculationEntry{},
		&domain.ContractQuantityUpdate{},
		&domain.BOQItemQuantityUpdate{},
		&domain.ProjectInfo{},
	}
}

// Migrate creates or updates the ledger schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
