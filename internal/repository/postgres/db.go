package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/pkg/errors"

	"dough-store/internal/models"
)

type Config struct {
	// DSN wins over the individual fields when set.
	DSN      string
	Host     string
	Port     string
	Username string
	Password string
	DbName   string
	SslMode  string

	StatementTimeout time.Duration
	MaxOpenConns     int
}

func (c Config) dsn() string {
	dsn := c.DSN
	if dsn == "" {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.Username, c.Password),
			Host:   c.Host + ":" + c.Port,
			Path:   "/" + c.DbName,
		}
		q := url.Values{}
		if c.SslMode != "" {
			q.Set("sslmode", c.SslMode)
		}
		u.RawQuery = q.Encode()
		dsn = u.String()
	}
	if c.StatementTimeout > 0 {
		sep := "?"
		if u, err := url.Parse(dsn); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		dsn += sep + "statement_timeout=" + strconv.FormatInt(c.StatementTimeout.Milliseconds(), 10)
	}
	return dsn
}

// ConnectDB opens a pgx connection pool and hands it to gorm.
func ConnectDB(cfg Config) (*gorm.DB, error) {
	sqlDB, err := sql.Open("pgx", cfg.dsn())
	if err != nil {
		return nil, errors.Wrap(err, "open pgx")
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns / 2)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	db, err := gorm.Open("postgres", sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "gorm open")
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.ShipmentTracking{}).Error
}

// Health pings the database and reports pool statistics.
func Health(db *gorm.DB) map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats := map[string]string{}
	sqlDB := db.DB()
	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	s := sqlDB.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(s.OpenConnections)
	stats["in_use"] = strconv.Itoa(s.InUse)
	stats["idle"] = strconv.Itoa(s.Idle)
	stats["wait_count"] = strconv.FormatInt(s.WaitCount, 10)
	stats["wait_duration"] = s.WaitDuration.String()
	return stats
}
