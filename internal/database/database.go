package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"hotelcore/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect opens PostgreSQL for postgres:// URLs, MySQL for mysql:// URLs and
// SQLite (pure-Go driver) for anything else, treated as a file path or DSN.
func Connect(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: newGormLogger(log)}

	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		log.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(withUTC(dsn)), cfg)

	case strings.HasPrefix(dsn, "mysql://"):
		mysqlDSN, err := mysqlDSNFromURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql url: %w", err)
		}
		log.Info("connecting to MySQL")
		return gorm.Open(mysql.Open(mysqlDSN), cfg)
	}

	log.WithField("dsn", dsn).Info("using SQLite")
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; wait for it instead of failing immediately.
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("sqlite busy_timeout: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema of every domain table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Category{},
		&domain.Room{},
		&domain.Discount{},
		&domain.Tag{},
		&domain.Photo{},
		&domain.Client{},
		&domain.Order{},
		&domain.Booking{},
	)
	if err != nil {
		return err
	}
	return ensureActiveEmailIndex(db)
}

const activeEmailIndex = "idx_clients_active_email"

// ensureActiveEmailIndex makes email unique among clients that are not
// soft-deleted. gorm tags cannot express a partial index portably.
func ensureActiveEmailIndex(db *gorm.DB) error {
	if db.Migrator().HasIndex(&domain.Client{}, activeEmailIndex) {
		return nil
	}
	var stmt string
	switch db.Dialector.Name() {
	case "mysql":
		// functional key part, MySQL 8.0.13+; NULLs do not collide
		stmt = "CREATE UNIQUE INDEX " + activeEmailIndex + " ON clients ((IF(deleted_at IS NULL, email, NULL)))"
	default:
		stmt = "CREATE UNIQUE INDEX " + activeEmailIndex + " ON clients (email) WHERE deleted_at IS NULL"
	}
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create %s: %w", activeEmailIndex, err)
	}
	return nil
}

// withUTC pins the session time zone so date columns are read back as UTC days.
func withUTC(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	if q.Get("TimeZone") == "" && q.Get("timezone") == "" {
		q.Set("TimeZone", "UTC")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func newGormLogger(log *logrus.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	switch {
	case log.IsLevelEnabled(logrus.TraceLevel):
		level = gormlogger.Info
	case !log.IsLevelEnabled(logrus.WarnLevel):
		level = gormlogger.Silent
	}
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
