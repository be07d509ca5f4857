package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wiibec/donations-backend/api/controllers"
	admincontrollers "github.com/wiibec/donations-backend/api/controllers/admin"
	"github.com/wiibec/donations-backend/api/middleware"
	"github.com/wiibec/donations-backend/internal/accounts"
	"github.com/wiibec/donations-backend/internal/analytics"
	"github.com/wiibec/donations-backend/internal/donations"
	"github.com/wiibec/donations-backend/internal/goal"
	"github.com/wiibec/donations-backend/internal/impact"
	"github.com/wiibec/donations-backend/internal/invoices"
	"github.com/wiibec/donations-backend/internal/mailing"
	"github.com/wiibec/donations-backend/internal/messages"
	"github.com/wiibec/donations-backend/internal/settings"
	"github.com/wiibec/donations-backend/pkg/auth/session"
	"github.com/wiibec/donations-backend/pkg/config"
	"github.com/wiibec/donations-backend/pkg/db"
	"github.com/wiibec/donations-backend/pkg/logger"
	"github.com/wiibec/donations-backend/pkg/metrics"
	"github.com/wiibec/donations-backend/pkg/redis"
)

// Services bundles everything the router wires to handlers.
type Services struct {
	Accounts     *accounts.Service
	Checkout     *donations.CheckoutService
	Verification *donations.VerificationService
	Donations    donations.Repository
	Impact       *impact.Service
	Goal         *goal.Service
	Settings     *settings.Service
	Invoices     *invoices.Service
	Issues       *invoices.IssueService
	Analytics    *analytics.Service
	Mailing      *mailing.Service
	Messages     *messages.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(svcs.Accounts, logg))
			r.Post("/login", controllers.AuthLogin(svcs.Accounts, logg))
			r.Post("/refresh", controllers.AuthRefresh(svcs.Accounts, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Accounts, logg))
		})

		r.Get("/pages", controllers.PageList(svcs.Settings, logg))
		r.Get("/goal", controllers.GoalProgress(svcs.Goal, logg))
		r.Get("/organization", controllers.OrganizationInfo(svcs.Settings, logg))
		r.Post("/contact", controllers.ContactSubmit(svcs.Messages, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))

			r.Get("/me", controllers.ProfileGet(svcs.Accounts, logg))
			r.Put("/me", controllers.ProfileUpdate(svcs.Accounts, logg))

			r.Route("/donations", func(r chi.Router) {
				r.Get("/", controllers.DonationList(svcs.Donations, logg))
				r.Post("/checkout", controllers.DonationCheckout(svcs.Checkout, logg))
				r.Post("/verify", controllers.DonationVerify(svcs.Verification, logg))
			})
			r.Get("/dashboard", controllers.DonorDashboard(svcs.Impact, logg))

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", controllers.InvoiceList(svcs.Invoices, logg))
				r.Get("/{invoiceId}/pdf", controllers.InvoicePDF(svcs.Invoices, logg))
				r.Post("/{invoiceId}/issues", controllers.InvoiceReportIssue(svcs.Issues, logg))
			})
			r.Get("/invoice-issues", controllers.InvoiceIssueList(svcs.Issues, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Get("/analytics", admincontrollers.Overview(svcs.Analytics, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", admincontrollers.UserList(svcs.Analytics, logg))
			r.Post("/", admincontrollers.UserCreate(svcs.Accounts, logg))
			r.Put("/{userId}", admincontrollers.UserUpdate(svcs.Accounts, logg))
			r.Delete("/{userId}", admincontrollers.UserDelete(svcs.Accounts, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", admincontrollers.InvoiceList(svcs.Invoices, logg))
		})
		r.Route("/invoice-issues", func(r chi.Router) {
			r.Get("/", admincontrollers.InvoiceIssueList(svcs.Issues, logg))
			r.Patch("/{issueId}/status", admincontrollers.InvoiceIssueUpdateStatus(svcs.Issues, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Put("/organization", admincontrollers.OrganizationUpdate(svcs.Settings, logg))
			r.Get("/goal", admincontrollers.GoalSettings(svcs.Goal, logg))
			r.Put("/goal", admincontrollers.GoalUpdate(svcs.Goal, logg))
			r.Patch("/pages/{pageKey}", admincontrollers.PageToggle(svcs.Settings, logg))
			r.Route("/impact-metrics", func(r chi.Router) {
				r.Get("/", admincontrollers.MetricList(svcs.Impact, logg))
				r.Post("/", admincontrollers.MetricCreate(svcs.Impact, logg))
				r.Put("/{metricId}", admincontrollers.MetricUpdate(svcs.Impact, logg))
				r.Delete("/{metricId}", admincontrollers.MetricDelete(svcs.Impact, logg))
			})
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", admincontrollers.CampaignList(svcs.Mailing, logg))
			r.Post("/", admincontrollers.CampaignSend(svcs.Mailing, logg))
		})

		r.Route("/contact-messages", func(r chi.Router) {
			r.Get("/", admincontrollers.ContactMessageList(svcs.Messages, logg))
			r.Post("/{messageId}/read", admincontrollers.ContactMessageMarkRead(svcs.Messages, logg))
		})
	})

	return r
}
