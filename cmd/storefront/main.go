package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"dough-store/internal/carrier"
	"dough-store/internal/configs"
	httpdelivery "dough-store/internal/delivery/http"
	"dough-store/internal/delivery/kafka"
	"dough-store/internal/notify"
	"dough-store/internal/payment"
	"dough-store/internal/repository"
	"dough-store/internal/repository/postgres"
	"dough-store/internal/service"
	"dough-store/internal/shipping"
)

// @title dough storefront
// @version 1.0
// @description Checkout, payment webhook, shipping quotes and order tracking for a single-product dough shop.

// @host localhost:8080
// @basePath /

// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization

func main() {
	_ = godotenv.Load()
	cfg, err := configs.LoadConfig()
	if err != nil {
		logrus.Fatalf("config load: %s", err)
	}
	logrus.Print("config parsed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.ConnectDB(postgres.Config{
		DSN:              cfg.DatabaseURL,
		Host:             cfg.PostgresHost,
		Port:             cfg.PostgresPort,
		Username:         cfg.PostgresUser,
		Password:         cfg.PostgresPass,
		DbName:           cfg.PostgresDB,
		SslMode:          cfg.PostgresSSLMode,
		StatementTimeout: cfg.StatementTimeout(),
		MaxOpenConns:     20,
	})
	if err != nil {
		logrus.Fatalf("postgres connect: %s", err)
	}
	defer func() {
		if derr := db.Close(); derr != nil {
			logrus.Errorf("db close: %v", derr)
		}
	}()
	if err := postgres.Migrate(db); err != nil {
		logrus.Fatalf("postgres migrate: %s", err)
	}
	logrus.Print("connected to postgres")

	repo := repository.NewRepository(db, cfg.CacheTTL)
	defer repo.Close()

	ctt := carrier.NewClient(carrier.Config{
		PublicKey:        cfg.CTTPublicKey,
		SecretKey:        cfg.CTTSecretKey,
		BaseURL:          cfg.CTTAPIURL,
		OriginPostalCode: cfg.CTTOriginPostalCode,
		Timeout:          cfg.OutboundTimeout,
	})
	if !ctt.Configured() {
		logrus.Warn("CTT credentials not set, shipments will get simulated tracking numbers")
	}

	mailer := notify.NewMailer(notify.Config{
		APIURL:     cfg.NotifyAPIURL,
		APIKey:     cfg.NotifyAPIKey,
		From:       cfg.NotifyFrom,
		OwnerEmail: cfg.OwnerEmail,
		Timeout:    cfg.OutboundTimeout,
		MaxRetries: 3,
	})
	if !mailer.Configured() {
		logrus.Warn("notification api not configured, emails will not be sent")
	}

	var (
		notifier notify.Notifier = mailer
		consumer *kafka.Consumer
		wg       sync.WaitGroup
	)
	if cfg.NotifyTransport == configs.TransportKafka {
		pub := kafka.NewPublisher(cfg.KafkaBrokersSlice(), cfg.KafkaTopic)
		defer func() {
			if cerr := pub.Close(); cerr != nil {
				logrus.Errorf("publisher close: %v", cerr)
			}
		}()
		notifier = pub

		consumer = kafka.NewConsumer(kafka.Config{
			Brokers:    cfg.KafkaBrokersSlice(),
			GroupID:    cfg.KafkaGroupID,
			Topic:      cfg.KafkaTopic,
			DLQ:        cfg.KafkaDLQTopic,
			MaxRetries: 5,
		}, mailer)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Subscribe(ctx); err != nil {
				logrus.Errorf("consumer stopped: %v", err)
				cancel()
			}
		}()
		logrus.Print("kafka notice consumer started")
	}
	dispatcher := notify.NewDispatcher(notifier, 3*cfg.OutboundTimeout)

	svc := service.NewService(repo, service.Config{
		Product: service.Product{
			Name:      cfg.ProductName,
			PriceID:   cfg.StripePriceID,
			UnitPrice: cfg.UnitPrice(),
			Currency:  cfg.Currency,
		},
		PublicURL: cfg.PublicURL,
	}, service.Deps{
		Gateway: payment.NewStripe(payment.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			Timeout:       cfg.OutboundTimeout,
		}),
		Carrier:    ctt,
		Calculator: shipping.NewCalculator(),
		Notices:    dispatcher,
	})

	h := httpdelivery.NewHandler(svc, httpdelivery.Config{
		AdminToken:  cfg.AdminToken,
		CORSOrigins: cfg.CORSOriginsSlice(),
		Health:      func() map[string]string { return postgres.Health(db) },
	})
	srv := new(httpdelivery.Server)

	go func() {
		if err := srv.Run(cfg.HTTPAddr, h.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http run: %v", err)
			cancel()
		}
	}()
	logrus.Printf("http server started on %s", cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-quit:
		logrus.Print("shutdown signal received")
	case <-ctx.Done():
		logrus.Print("context canceled, shutting down")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http shutdown: %s", err)
	}

	// in-flight emails and publishes finish before their transport closes
	dispatcher.Wait()

	cancel()
	if consumer != nil {
		wg.Wait()
		if err := consumer.Close(); err != nil {
			logrus.Errorf("consumer close: %s", err)
		}
	}
	logrus.Print("service stopped")
}
