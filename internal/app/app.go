// Package app assembles services and HTTP routes from their dependencies.
package app

import (
	"io"
	"net/http"

	"hotelcore/internal/config"
	"hotelcore/internal/middleware"
	"hotelcore/internal/modules/auth"
	"hotelcore/internal/modules/availability"
	"hotelcore/internal/modules/cart"
	"hotelcore/internal/modules/catalog"
	"hotelcore/internal/modules/client"
	"hotelcore/internal/modules/payment"
	"hotelcore/internal/modules/pricing"
	"hotelcore/internal/modules/sweeper"
	"hotelcore/internal/pkg/events"
	"hotelcore/internal/pkg/filestore"
	"hotelcore/internal/pkg/identity"
	jwtsvc "hotelcore/internal/pkg/jwt"
	"hotelcore/internal/pkg/notify"
	"hotelcore/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Log       *logrus.Logger
	Publisher events.Publisher // nil drops events
	Notifier  notify.Sender    // nil logs messages
	Files     catalog.FileStore
	// BcryptCost 0 means bcrypt.DefaultCost.
	BcryptCost int
}

type App struct {
	Router  *gin.Engine
	Store   *repository.Store
	Sweeper *sweeper.Service
}

func New(d Deps) *App {
	cfg, log := d.Config, d.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	files := d.Files
	if files == nil {
		files = filestore.NewLocal(cfg.MediaDir)
	}

	store := repository.NewStore(d.DB)
	store.SetRetryAttempts(cfg.TxRetryAttempts)

	hasher := identity.NewBcryptHasher(d.BcryptCost)
	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	// services
	clientService := client.NewService(store, hasher, log)
	pricingService := pricing.NewService(store, log)
	paymentService := payment.NewService(store, d.Publisher, log)
	catalogService := catalog.NewService(store, files, log)
	cartService := cart.NewService(cart.Deps{
		Store:     store,
		Pricing:   pricingService,
		Clients:   clientService,
		Notifier:  d.Notifier,
		Publisher: d.Publisher,
		Log:       log,
		TTL:       cfg.CartTTL,
	})
	authService := auth.NewService(clientService, hasher, tokens, auth.WorkerCredentials{
		Email:        cfg.WorkerEmail,
		PasswordHash: cfg.WorkerPasswordHash,
	})
	sweepService := sweeper.NewService(paymentService, cartService, log)

	// handlers
	authHandler := auth.NewHandler(authService)
	availabilityHandler := availability.NewHandler(availability.NewResolver(store))
	catalogHandler := catalog.NewHandler(catalogService)
	pricingHandler := pricing.NewHandler(pricingService)
	cartHandler := cart.NewHandler(cartService)
	paymentHandler := payment.NewHandler(paymentService)
	clientHandler := client.NewHandler(clientService)
	sweepHandler := sweeper.NewHandler(sweepService)

	r := gin.New()
	r.Use(middleware.ErrorLogger(log), middleware.RequestLogger(log), middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static("/media", cfg.MediaDir)

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		availabilityHandler.RegisterRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		pricingHandler.RegisterPublicRoutes(v1)
		cartHandler.RegisterRoutes(v1)

		clients := v1.Group("")
		clients.Use(middleware.JWTAuth(tokens), middleware.RequireRole(jwtsvc.RoleClient))
		{
			paymentHandler.RegisterClientRoutes(clients)
		}

		workers := v1.Group("")
		workers.Use(middleware.JWTAuth(tokens), middleware.WorkerOnly())
		{
			catalogHandler.RegisterWorkerRoutes(workers)
			pricingHandler.RegisterWorkerRoutes(workers)
			cartHandler.RegisterWorkerRoutes(workers)
			paymentHandler.RegisterRoutes(workers)
			clientHandler.RegisterWorkerRoutes(workers)
			sweepHandler.RegisterRoutes(workers)
		}
	}

	return &App{Router: r, Store: store, Sweeper: sweepService}
}
