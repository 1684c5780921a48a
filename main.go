package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"ms-edarshan/internal/analytics"
	"ms-edarshan/internal/auth"
	bookingdb "ms-edarshan/internal/bookings/db"
	bookingredis "ms-edarshan/internal/bookings/redis"
	bookingservice "ms-edarshan/internal/bookings/service"
	"ms-edarshan/internal/config"
	"ms-edarshan/internal/database"
	"ms-edarshan/internal/database/migrations"
	"ms-edarshan/internal/kafka"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/notification"
	"ms-edarshan/internal/notification/email"
	"ms-edarshan/internal/payment/services"
	"ms-edarshan/internal/payment/storage"
	"ms-edarshan/internal/sse"
	"ms-edarshan/internal/telemetry"
	templedb "ms-edarshan/internal/temples/db"
	templeservice "ms-edarshan/internal/temples/service"
	qr "ms-edarshan/internal/tickets/qr_generator"
	"ms-edarshan/internal/tickets/template"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println(".env file not found, using environment variables")
	}

	cfg := config.Load()
	log := logger.New(logger.Options{Dir: cfg.Log.Dir, Service: cfg.Telemetry.ServiceName})
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	log.Info("APP", "Starting E-Darshan API initialization")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatal("TELEMETRY", fmt.Sprintf("Failed to initialize tracing: %v", err))
	}
	if tel.Enabled() {
		log.Info("TELEMETRY", fmt.Sprintf("Exporting traces to %s", cfg.Telemetry.CollectorAddr))
	}

	// --- Storage ---
	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()
	if err := migrations.Prepare(ctx, cfg.Database, bunDB, log); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to prepare schema: %v", err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = database.OpenRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn("REDIS", fmt.Sprintf("Continuing without Redis: %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	} else {
		log.Info("REDIS", "REDIS_ADDR not set, holds and visitor fan-out stay in-process")
	}

	// --- Events ---
	var publisher kafka.Publisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, kafka.TopicNames(cfg.Kafka.Topics), log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka, log)
		defer producer.Close()
		publisher = producer
	}

	// --- Visitor dashboard ---
	emitter := sse.NewVisitorEventEmitter()
	var broadcaster sse.Broadcaster = sse.LocalBroadcaster{Emitter: emitter}
	if redisClient != nil {
		bridge := sse.NewRedisBridge(redisClient, emitter, log)
		if err := bridge.Run(ctx); err != nil {
			log.Warn("SSE", fmt.Sprintf("Visitor fan-out disabled: %v", err))
		} else {
			broadcaster = bridge
		}
	}
	templeService := templeservice.NewTempleService(&templedb.DB{Bun: bunDB}, broadcaster, publisher, log)

	// --- Notifications ---
	var mailer email.Mailer = email.DisabledMailer{}
	if smtp, err := email.NewSMTPMailer(cfg.Email, log); err != nil {
		log.Warn("EMAIL", fmt.Sprintf("Confirmation e-mails disabled: %v", err))
	} else {
		mailer = smtp
		go func() {
			verifyCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			defer cancel()
			if err := mailer.Verify(verifyCtx); err != nil {
				log.Warn("EMAIL", fmt.Sprintf("SMTP verification failed: %v", err))
				return
			}
			log.Info("EMAIL", "SMTP transport verified")
		}()
	}
	defer mailer.Close()

	composer := notification.NewComposer(mailer, template.NewTicketPDFGenerator(cfg.Booking.PDFBackgroundPath))
	dispatcher := notification.NewDispatcher(composer, log, &notification.DispatcherConfig{
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
		RetryAttempts: cfg.Notification.MaxAttempts,
		RetryDelay:    cfg.Notification.RetryBackoff,
		SendTimeout:   cfg.Notification.SendTimeout,
	})
	dispatcher.Start()

	// --- Bookings ---
	qrSecret := cfg.Booking.QRSecret
	if qrSecret == "" {
		log.Warn("CONFIG", "QR_SECRET_KEY not set, QR codes will not verify after a restart")
		qrSecret = uuid.NewString()
	}

	gateway := services.NewStripeService(cfg.Stripe, log, nil)
	var holds bookingredis.HoldStore = bookingredis.NoopHoldStore{}
	var holdRedis *bookingredis.Redis
	if redisClient != nil {
		holdRedis = bookingredis.NewRedis(redisClient, log)
		holds = holdRedis
	}

	bookingService := bookingservice.NewBookingService(bookingservice.Deps{
		DB:       &bookingdb.DB{Bun: bunDB},
		Temples:  templeService,
		Gateway:  gateway,
		Payments: storage.NewBunStore(bunDB),
		Holds:    holds,
		Notifier: dispatcher,
		Mailer:   composer,
		Events:   publisher,
		QR:       qr.NewQRGenerator(qrSecret),
		Logger:   log,
	}, bookingservice.Options{
		Currency:            cfg.Stripe.Currency,
		FrontendURL:         cfg.Booking.FrontendURL,
		PendingTTL:          cfg.Booking.PendingTTL,
		DemoPaymentsEnabled: cfg.Booking.DemoPaymentsEnabled,
		TestRecipient:       cfg.Email.TestRecipient,
	})

	if holdRedis != nil {
		holdRedis.EnableExpiryEvents(ctx)
		if err := holdRedis.SubscribeExpirations(ctx, bookingService.OnHoldExpired); err != nil {
			log.Warn("REDIS", fmt.Sprintf("Hold expiry events unavailable, relying on sweeper: %v", err))
		}
	}
	go bookingService.RunExpirySweeper(ctx, cfg.Booking.SweepInterval)

	// --- Auth ---
	verifier, err := auth.NewVerifier(ctx, cfg.Auth, log)
	if err != nil {
		log.Fatal("AUTH", fmt.Sprintf("Failed to initialize admin auth: %v", err))
	}
	if verifier != nil && redisClient != nil {
		verifier = auth.NewCachedVerifier(verifier, redisClient, log)
	}

	application := &app{
		log:            log,
		db:             bunDB,
		redis:          redisClient,
		bookings:       bookingService,
		temples:        templeService,
		analytics:      analytics.NewService(analytics.NewDB(bunDB)),
		emitter:        emitter,
		dispatcher:     dispatcher,
		gateway:        gateway,
		verifier:       verifier,
		seedTemples:    templeservice.DefaultTemples,
		allowedOrigins: cfg.Server.AllowedOrigins,
		startedAt:      time.Now(),
	}

	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     application.router(),
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
		// no WriteTimeout: SSE streams stay open
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 E-Darshan API running on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()
	stop()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn("NOTIFY", fmt.Sprintf("Notification queue not drained: %v", err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("TELEMETRY", fmt.Sprintf("Failed to flush traces: %v", err))
	}
	log.Info("APP", "✅ E-Darshan API shutdown complete")
}
