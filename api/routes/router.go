package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velorashop/storefront-backend/api/controllers"
	"github.com/velorashop/storefront-backend/api/middleware"
	authsvc "github.com/velorashop/storefront-backend/internal/auth"
	cartsvc "github.com/velorashop/storefront-backend/internal/cart"
	checkoutsvc "github.com/velorashop/storefront-backend/internal/checkout"
	"github.com/velorashop/storefront-backend/internal/coupons"
	"github.com/velorashop/storefront-backend/internal/orders"
	"github.com/velorashop/storefront-backend/internal/products"
	"github.com/velorashop/storefront-backend/internal/wishlist"
	"github.com/velorashop/storefront-backend/pkg/config"
	"github.com/velorashop/storefront-backend/pkg/enums"
	"github.com/velorashop/storefront-backend/pkg/logger"
	"github.com/velorashop/storefront-backend/pkg/metrics"
	"github.com/velorashop/storefront-backend/pkg/redis"
)

// Deps carries everything the route tree needs. All services are wired in
// main; nil services answer 500 from their controllers rather than panicking.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Redis   *redis.Client
	Metrics *metrics.HTTPMetrics

	Auth     authsvc.Service
	Products products.Service
	Coupons  coupons.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Wishlist wishlist.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// A nil *redis.Client must stay a nil interface so the idempotency
	// middleware can pass through.
	var idemStore redis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(idemStore, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, deps.Redis, logg)).
			Post("/verify-otp", controllers.AuthVerifyOTP(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, deps.Redis, logg)).
			Post("/resend-otp", controllers.AuthResendOTP(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
	})

	// Public catalog surface.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.Products, logg))
		r.Get("/{productID}", controllers.ProductsGet(deps.Products, logg))
	})
	r.Get("/api/v1/coupons", controllers.CouponsList(deps.Coupons, logg))

	// Authenticated shopper surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/update", controllers.CartUpdate(deps.Cart, logg))
			r.Post("/apply-coupon", controllers.CartApplyCoupon(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/order", controllers.CheckoutCreateOrder(deps.Checkout, logg))
			r.Post("/confirm", controllers.CheckoutConfirmPayment(deps.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrdersGet(deps.Orders, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
			r.Post("/", controllers.WishlistAdd(deps.Wishlist, logg))
			r.Delete("/{productID}", controllers.WishlistRemove(deps.Wishlist, logg))
		})
	})

	// Admin surface.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductsList(deps.Products, logg))
			r.Post("/", controllers.AdminProductsCreate(deps.Products, logg))
			r.Patch("/{productID}", controllers.AdminProductsUpdate(deps.Products, logg))
			r.Delete("/{productID}", controllers.AdminProductsArchive(deps.Products, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponsList(deps.Coupons, logg))
			r.Post("/", controllers.AdminCouponsCreate(deps.Coupons, logg))
			r.Patch("/{couponID}", controllers.AdminCouponsUpdate(deps.Coupons, logg))
		})
	})

	return r
}
