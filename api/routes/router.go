package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mambaservices/storefront-backend/api/controllers"
	webhookcontrollers "github.com/mambaservices/storefront-backend/api/controllers/webhooks"
	"github.com/mambaservices/storefront-backend/api/middleware"
	"github.com/mambaservices/storefront-backend/internal/accesscodes"
	"github.com/mambaservices/storefront-backend/internal/auth"
	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	"github.com/mambaservices/storefront-backend/internal/forms"
	"github.com/mambaservices/storefront-backend/internal/fulfillment"
	"github.com/mambaservices/storefront-backend/internal/orders"
	stripewebhook "github.com/mambaservices/storefront-backend/internal/webhooks/stripe"
	"github.com/mambaservices/storefront-backend/pkg/config"
	"github.com/mambaservices/storefront-backend/pkg/logger"
	"github.com/mambaservices/storefront-backend/pkg/redis"
	"github.com/mambaservices/storefront-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	Redis   *redis.Client
	Metrics prometheus.Gatherer

	Auth          auth.Service
	Orders        orders.Service
	AccessCodes   accesscodes.Service
	DiscordAccess discordaccess.Service
	Forms         forms.Service
	Fulfillment   fulfillment.Service

	StripeClient  *stripe.Client
	StripeWebhook stripewebhook.Service
	WebhookGuard  *stripewebhook.Guard
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		p.Config.AuthRateLimit.LoginWindow,
		p.Config.AuthRateLimit.LoginIPLimit,
		p.Config.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		p.Config.AuthRateLimit.SignupWindow,
		p.Config.AuthRateLimit.SignupIPLimit,
		p.Config.AuthRateLimit.SignupEmailLimit,
	)

	// A typed nil would slip past the middleware's store check.
	rateLimited := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if p.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, p.Redis, p.Logger)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Redis))
	})
	r.Get("/ping", controllers.Ping())

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.StripeWebhook(p.StripeWebhook, p.StripeClient, p.WebhookGuard, p.Logger))
		if p.Config.App.IsDev() {
			r.Post("/payments/test", webhookcontrollers.StripeTestTrigger(p.Fulfillment, p.Logger))
		}
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimited(signupPolicy)).Post("/signup", controllers.AuthSignup(p.Auth, p.Logger))
		r.With(rateLimited(loginPolicy)).Post("/login", controllers.AuthLogin(p.Auth, p.Logger))
		r.Post("/change-password", controllers.AuthChangePassword(p.Auth, p.Logger))
		r.Post("/delete-account", controllers.AuthDeleteAccount(p.Auth, p.Logger))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", controllers.OrdersCreate(p.Orders, p.Logger))
		r.Get("/{email}", controllers.OrdersListByEmail(p.Orders, p.Logger))
		r.Get("/{email}/paid", controllers.OrdersPaidSummary(p.Orders, p.Logger))
		r.Patch("/{id}", controllers.OrdersUpdateStatus(p.Orders, p.Logger))
	})

	r.Post("/access-codes/claim", controllers.AccessCodesClaim(p.AccessCodes, p.Logger))

	r.Route("/discord", func(r chi.Router) {
		r.Post("/grant-access", controllers.DiscordGrantAccess(p.DiscordAccess, p.Logger))
		r.Get("/access/{email}", controllers.DiscordCheckAccess(p.DiscordAccess, p.Logger))
		r.Post("/revoke-access", controllers.DiscordRevokeAccess(p.DiscordAccess, p.Logger))
	})

	r.Route("/obywatel-forms", func(r chi.Router) {
		r.Post("/", controllers.ObywatelFormsSubmit(p.Forms, p.Logger))
		r.Get("/{email}", controllers.ObywatelFormsListByEmail(p.Forms, p.Logger))
	})

	return r
}
