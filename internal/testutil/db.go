// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"hotelcore/internal/database"
	"hotelcore/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:hotel_test_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// QuietLogger returns a logger that only prints errors.
func QuietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// Date builds a UTC midnight date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fixture is a small hotel: one category with the given number of rooms.
type Fixture struct {
	Category *domain.Category
	Rooms    []domain.Room
}

// SeedCategory inserts a category priced per night with the given room count.
func SeedCategory(t testing.TB, db *gorm.DB, price string, prepaymentPct, refundPct int64, rooms int) Fixture {
	t.Helper()
	cat := &domain.Category{
		Name:              fmt.Sprintf("Category %d", time.Now().UnixNano()),
		Price:             decimal.RequireFromString(price),
		PrepaymentPercent: decimal.NewFromInt(prepaymentPct),
		RefundPercent:     decimal.NewFromInt(refundPct),
		RoomsCount:        max(rooms, 1),
		Floors:            1,
		Beds:              2,
		Square:            25,
	}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}

	var number int64
	db.Model(&domain.Room{}).Select("COALESCE(MAX(room_number), 0)").Scan(&number)

	fx := Fixture{Category: cat}
	for i := 0; i < rooms; i++ {
		room := domain.Room{CategoryID: cat.ID, RoomNumber: int(number) + i + 1}
		if err := db.Create(&room).Error; err != nil {
			t.Fatalf("create room: %v", err)
		}
		fx.Rooms = append(fx.Rooms, room)
	}
	return fx
}

// SeedOrder inserts a confirmed order with no payment.
func SeedOrder(t testing.TB, db *gorm.DB) *domain.Order {
	t.Helper()
	o := &domain.Order{Kind: domain.KindOrder, Paid: decimal.Zero, Refunded: decimal.Zero}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

// SeedBooking inserts a booking directly, bypassing assignment.
func SeedBooking(t testing.TB, db *gorm.DB, b domain.Booking) *domain.Booking {
	t.Helper()
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return &b
}
