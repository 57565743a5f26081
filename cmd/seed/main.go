// Command seed fills a development database with a small hotel: categories,
// rooms, tags, a running discount and one confirmed order.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"hotelcore/internal/config"
	"hotelcore/internal/database"
	"hotelcore/internal/domain"
	"hotelcore/internal/modules/cart"
	"hotelcore/internal/modules/catalog"
	"hotelcore/internal/modules/client"
	"hotelcore/internal/modules/pricing"
	"hotelcore/internal/pkg/filestore"
	"hotelcore/internal/pkg/identity"
	"hotelcore/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type categorySeed struct {
	req   catalog.CategoryRequest
	rooms int
	tags  []string
}

var categories = []categorySeed{
	{
		req: catalog.CategoryRequest{
			Name: "Standard", Description: "Double bed, city view",
			Price: decimal.RequireFromString("4500"), PrepaymentPercent: decimal.NewFromInt(20), RefundPercent: decimal.NewFromInt(50),
			RoomsCount: 4, Floors: 1, Beds: 2, Square: 22,
		},
		rooms: 4,
		tags:  []string{"wifi", "city view"},
	},
	{
		req: catalog.CategoryRequest{
			Name: "Deluxe", Description: "King bed, balcony",
			Price: decimal.RequireFromString("7900"), PrepaymentPercent: decimal.NewFromInt(30), RefundPercent: decimal.NewFromInt(50),
			RoomsCount: 2, Floors: 1, Beds: 2, Square: 34,
		},
		rooms: 2,
		tags:  []string{"wifi", "balcony", "sea view"},
	},
	{
		req: catalog.CategoryRequest{
			Name: "Family suite", Description: "Two rooms, kitchenette",
			Price: decimal.RequireFromString("12500"), PrepaymentPercent: decimal.NewFromInt(30), RefundPercent: decimal.NewFromInt(30),
			RoomsCount: 1, Floors: 2, Beds: 4, Square: 60,
		},
		rooms: 1,
		tags:  []string{"wifi", "balcony", "kitchen"},
	},
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if pw := os.Getenv("WORKER_PASSWORD"); pw != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			log.WithError(err).Fatal("hash worker password")
		}
		fmt.Printf("WORKER_PASSWORD_HASH=%s\n", hash)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}

	log.Info("cleaning old data")
	for _, table := range []string{"bookings", "orders", "clients", "category_tags", "category_discounts", "photos", "rooms", "tags", "discounts", "categories"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	ctx := context.Background()
	store := repository.NewStore(db)
	hasher := identity.NewBcryptHasher(bcrypt.DefaultCost)
	catalogService := catalog.NewService(store, filestore.NewLocal(cfg.MediaDir), log)
	clientService := client.NewService(store, hasher, log)
	cartService := cart.NewService(cart.Deps{
		Store:   store,
		Pricing: pricing.NewService(store, log),
		Clients: clientService,
		Log:     log,
	})

	tagIDs := map[string]int64{}
	var first *domain.Category
	for _, seed := range categories {
		cat, err := catalogService.CreateCategory(ctx, seed.req)
		if err != nil {
			log.WithError(err).Fatal("create category")
		}
		if first == nil {
			first = cat
		}
		for i := 0; i < seed.rooms; i++ {
			if _, err := catalogService.CreateRoom(ctx, cat.ID, 0); err != nil {
				log.WithError(err).Fatal("create room")
			}
		}
		for _, name := range seed.tags {
			id, ok := tagIDs[name]
			if !ok {
				tag, err := catalogService.CreateTag(ctx, name)
				if err != nil {
					log.WithError(err).Fatal("create tag")
				}
				id = tag.ID
				tagIDs[name] = id
			}
			if err := catalogService.AttachTag(ctx, cat.ID, id); err != nil {
				log.WithError(err).Fatal("attach tag")
			}
		}
		log.WithFields(logrus.Fields{"category": cat.Name, "rooms": seed.rooms}).Info("category created")
	}

	today := domain.Day(time.Now())
	discount, err := catalogService.CreateDiscount(ctx, catalog.DiscountRequest{
		Name:      "Early summer",
		Percent:   decimal.NewFromInt(10),
		StartDate: today.AddDate(0, 0, -1).Format(domain.DateLayout),
		EndDate:   today.AddDate(0, 1, 0).Format(domain.DateLayout),
	})
	if err != nil {
		log.WithError(err).Fatal("create discount")
	}
	if err := catalogService.AttachDiscount(ctx, first.ID, discount.ID); err != nil {
		log.WithError(err).Fatal("attach discount")
	}

	c, err := cartService.CreateCart(ctx)
	if err != nil {
		log.WithError(err).Fatal("create cart")
	}
	if _, err := cartService.AddBooking(ctx, *c.CartUUID, first.ID, today.AddDate(0, 0, 7), today.AddDate(0, 0, 10)); err != nil {
		log.WithError(err).Fatal("add booking")
	}
	order, err := cartService.ConfirmCart(ctx, *c.CartUUID, "guest@example.com", false, "Late check-in")
	if err != nil {
		log.WithError(err).Fatal("confirm cart")
	}
	if order.ClientID != nil {
		if err := clientService.SetPassword(ctx, *order.ClientID, "guest123"); err != nil {
			log.WithError(err).Fatal("set client password")
		}
	}
	log.WithField("order_id", order.ID).Info("demo order created: guest@example.com / guest123")
	log.Info("seed completed")
}
