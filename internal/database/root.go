package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/appclacks/sleepslo/internal/validator"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	er "github.com/mcorbin/corbierror"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

type Database struct {
	db     *sqlx.DB
	Logger *slog.Logger
}

var CleanupQueries = []string{
	"DELETE FROM sms_event",
	"DELETE FROM night_record",
}

func (d *Database) Exec(query string) (sql.Result, error) {
	return d.db.Exec(query)
}

func (d *Database) Close() error {
	return d.db.Close()
}

func dataSource(config Configuration) string {
	if config.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", config.Path)
	}
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=%s", config.Host, config.Port, config.Username, config.Database, config.Password, config.SSLMode)
}

func New(logger *slog.Logger, config Configuration) (*Database, error) {
	err := validator.Validator.Struct(config)
	if err != nil {
		return nil, err
	}
	sqlDB, err := otelsql.Open(config.Driver, dataSource(config),
		otelsql.WithAttributes(attribute.String("db.system", config.Driver)))
	if err != nil {
		return nil, fmt.Errorf("fail to open the database: %w", err)
	}
	db := sqlx.NewDb(sqlDB, config.Driver)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("fail to connect to the database: %w", err)
	}
	db.SetConnMaxLifetime(time.Duration(60) * time.Second)
	if config.Driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY on concurrent upserts
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
	}

	var driver migratedb.Driver
	switch config.Driver {
	case DriverSQLite:
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	default:
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("fail to create %s migration driver: %w", config.Driver, err)
	}
	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", filepath.Join(config.Migrations, config.Driver)),
		config.Driver,
		driver)
	if err != nil {
		return nil, fmt.Errorf("fail to instantiate migrations: %w", err)
	}
	logger.Info("Applying databases migrations")
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return nil, fmt.Errorf("fail to apply migrations: %w", err)
	}
	logger.Info("Migrations applied")
	return &Database{
		db:     db,
		Logger: logger,
	}, nil
}

func checkResult(result sql.Result, expected int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fail to check affected row: %w", err)
	}
	if affected != expected {
		if affected == 0 {
			return er.New("resource not found", er.NotFound, true)
		}
		return fmt.Errorf("expected %d rows changed, got %d", expected, affected)
	}
	return nil
}
