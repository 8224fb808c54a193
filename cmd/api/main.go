package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velorashop/storefront-backend/api/routes"
	authsvc "github.com/velorashop/storefront-backend/internal/auth"
	cartsvc "github.com/velorashop/storefront-backend/internal/cart"
	checkoutsvc "github.com/velorashop/storefront-backend/internal/checkout"
	"github.com/velorashop/storefront-backend/internal/coupons"
	"github.com/velorashop/storefront-backend/internal/orders"
	"github.com/velorashop/storefront-backend/internal/products"
	"github.com/velorashop/storefront-backend/internal/wishlist"
	"github.com/velorashop/storefront-backend/pkg/config"
	"github.com/velorashop/storefront-backend/pkg/db"
	"github.com/velorashop/storefront-backend/pkg/logger"
	"github.com/velorashop/storefront-backend/pkg/mailer"
	"github.com/velorashop/storefront-backend/pkg/metrics"
	"github.com/velorashop/storefront-backend/pkg/migrate"
	"github.com/velorashop/storefront-backend/pkg/payment"
	"github.com/velorashop/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var mailSender mailer.Sender
	if cfg.Mailer.APIKey != "" {
		mailClient, err := mailer.New(cfg.Mailer)
		if err != nil {
			logg.Error(context.Background(), "failed to create mail client", err)
			os.Exit(1)
		}
		mailSender = mailClient
	} else {
		logg.Warn(context.Background(), "no mailer api key configured, logging outbound mail")
		mailSender = mailer.LogSender{Logg: logg}
	}

	gateway, err := payment.New(cfg.Payment)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	productRepo := products.NewRepository(dbClient.DB())
	couponRepo := coupons.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	userRepo := authsvc.NewRepository(dbClient.DB())

	productService, err := products.NewService(products.ServiceParams{Repo: productRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(coupons.ServiceParams{Repo: couponRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	policy := cartsvc.DefaultAvailabilityPolicy()
	if cfg.Cart.StrictAvailability {
		policy = cartsvc.StrictAvailabilityPolicy()
	}
	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Repo:    cartRepo,
		Catalog: productRepo,
		Coupons: couponService,
		Tx:      dbClient,
		Policy:  policy,
		Logg:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Orders:   orderRepo,
		Carts:    cartRepo,
		Catalog:  productRepo,
		Gateway:  gateway,
		Currency: cfg.Payment.Currency,
		Logg:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{Repo: orderRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:    wishlistRepo,
		Catalog: productRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Users:    userRepo,
		OTP:      redisClient,
		Mail:     mailSender,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		OTPCfg:   cfg.OTP,
		Logg:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			Redis:    redisClient,
			Metrics:  httpMetrics,
			Auth:     authService,
			Products: productService,
			Coupons:  couponService,
			Cart:     cartService,
			Checkout: checkoutService,
			Orders:   orderService,
			Wishlist: wishlistService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
