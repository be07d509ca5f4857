package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wiibec/donations-backend/api/routes"
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
	"github.com/wiibec/donations-backend/pkg/migrate"
	"github.com/wiibec/donations-backend/pkg/redis"
	"github.com/wiibec/donations-backend/pkg/stripe"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}
	checkoutAPI := stripe.NewCheckoutAPI(stripeClient)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	donationMetrics := metrics.NewDonationMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	profileRepo := accounts.NewProfileRepository(dbClient.DB())
	donationRepo := donations.NewRepository(dbClient.DB())
	invoiceRepo := invoices.NewRepository(dbClient.DB())
	issueRepo := invoices.NewIssueRepository(dbClient.DB())
	metricRepo := impact.NewMetricRepository(dbClient.DB())
	goalRepo := goal.NewRepository(dbClient.DB())
	orgRepo := settings.NewOrganizationRepository(dbClient.DB())
	pageRepo := settings.NewPageRepository(dbClient.DB())
	analyticsRepo := analytics.NewRepository(dbClient.DB())
	campaignRepo := mailing.NewCampaignRepository(dbClient.DB())
	messageRepo := messages.NewRepository(dbClient.DB())

	accountService, err := accounts.NewService(accounts.ServiceParams{
		Profiles:       profileRepo,
		TxRunner:       dbClient,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		ProfileConfig:  cfg.Profile,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	invoiceService, err := invoices.NewService(invoices.ServiceParams{
		Invoices:     invoiceRepo,
		Profiles:     profileRepo,
		Organization: orgRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
		os.Exit(1)
	}

	issueService, err := invoices.NewIssueService(issueRepo, invoiceRepo, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice issue service", err)
		os.Exit(1)
	}

	checkoutService, err := donations.NewCheckoutService(donations.CheckoutServiceParams{
		Donations: donationRepo,
		Profiles:  profileRepo,
		Stripe:    checkoutAPI,
		Config:    cfg.Checkout,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	verificationService, err := donations.NewVerificationService(donations.VerificationServiceParams{
		Donations:         donationRepo,
		Invoices:          invoiceService,
		Stripe:            checkoutAPI,
		Guard:             redisClient,
		TransactionRunner: dbClient,
		Metrics:           donationMetrics,
		Config:            cfg.Checkout,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create verification service", err)
		os.Exit(1)
	}

	impactService, err := impact.NewService(donationRepo, profileRepo, metricRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create impact service", err)
		os.Exit(1)
	}

	goalService, err := goal.NewService(goalRepo, analyticsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create goal service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(orgRepo, pageRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analyticsRepo, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	sender, err := mailing.NewSendgridSender(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail sender", err)
		os.Exit(1)
	}
	mailingService, err := mailing.NewService(mailing.ServiceParams{
		Campaigns: campaignRepo,
		Profiles:  profileRepo,
		Sender:    sender,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create mailing service", err)
		os.Exit(1)
	}

	messageService, err := messages.NewService(messageRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create message service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, httpMetrics, metricsHandler, routes.Services{
			Accounts:     accountService,
			Checkout:     checkoutService,
			Verification: verificationService,
			Donations:    donationRepo,
			Impact:       impactService,
			Goal:         goalService,
			Settings:     settingsService,
			Invoices:     invoiceService,
			Issues:       issueService,
			Analytics:    analyticsService,
			Mailing:      mailingService,
			Messages:     messageService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
