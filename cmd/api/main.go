package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"storefront-orders/internal/core/cache"
	"storefront-orders/internal/core/config"
	"storefront-orders/internal/core/events"
	"storefront-orders/internal/core/logger"
	"storefront-orders/internal/core/metrics"
	"storefront-orders/internal/core/server"
	orderadapter "storefront-orders/internal/features/orders/adapters"
	"storefront-orders/internal/features/orders/domain"
	orderhandler "storefront-orders/internal/features/orders/handler"
	"storefront-orders/internal/features/orders/lifecycle"
	orderservice "storefront-orders/internal/features/orders/service"
	trackingadapter "storefront-orders/internal/features/tracking/adapters"
	trackinghandler "storefront-orders/internal/features/tracking/handler"
	trackingservice "storefront-orders/internal/features/tracking/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title Storefront Orders API
// @version 1.0
// @description Order placement, simulated shipping lifecycle, payment updates and cancellation for the storefront.
// @contact.name API Support
// @contact.email support@storefront.example.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	policy, err := lifecycle.ParseCancelPolicy(cfg.Lifecycle.CancelPolicy)
	if err != nil {
		l.Fatal("Invalid lifecycle configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Cache
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	// Tracking event sinks
	var sinks []events.Publisher
	if brokers := events.ParseBrokers(cfg.Events.KafkaBrokers); len(brokers) > 0 {
		sinks = append(sinks, events.NewKafkaPublisher(brokers, cfg.Events.KafkaTopic))
		l.Info("Kafka tracking events enabled", zap.Strings("brokers", brokers), zap.String("topic", cfg.Events.KafkaTopic))
	}
	if cfg.Events.WebhookURL != "" {
		sinks = append(sinks, events.NewWebhookPublisher(cfg.Events.WebhookURL, 5*time.Second))
		l.Info("Webhook tracking events enabled", zap.String("url", cfg.Events.WebhookURL))
	}

	var eventSink orderadapter.EventSink
	var dispatcher *events.Dispatcher
	if len(sinks) > 0 {
		dispatcher = events.NewDispatcher(m, sinks...)
		eventSink = dispatcher
	}

	// Order store
	store := orderadapter.NewCacheOrderStore(redisCache, orderadapter.StoreOptions{
		Key: cfg.Orders.CacheKey,
		Pricing: domain.Pricing{
			TaxRate:     cfg.Orders.TaxRate,
			ShippingFee: cfg.Orders.ShippingFee,
		},
		Events:  eventSink,
		Metrics: m,
	})
	if err := store.Load(ctx); err != nil {
		l.Fatal("Failed to load orders", zap.Error(err))
	}

	// Lifecycle
	scheduler := lifecycle.NewScheduler(store, lifecycle.Options{
		Stages: lifecycle.StagesFromDelays(
			cfg.Lifecycle.ShippedDelay,
			cfg.Lifecycle.InTransitDelay,
			cfg.Lifecycle.DeliveredDelay,
		),
		Policy:  policy,
		Metrics: m,
	})

	existing, err := store.List(ctx)
	if err != nil {
		l.Fatal("Failed to list orders", zap.Error(err))
	}
	resumed := 0
	for _, o := range existing {
		if scheduler.Resume(o) {
			resumed++
		}
	}
	l.Info("Order lifecycles resumed",
		zap.Int("orders", len(existing)),
		zap.Int("resumed", resumed),
		zap.String("cancel_policy", string(policy)),
	)

	// Orders
	orderSvc := orderservice.NewOrderService(store, scheduler, policy, m)
	orderHdl := orderhandler.NewOrderHandler(orderSvc)

	// Tracking
	trackingSvc := trackingservice.NewTrackingService(
		trackingadapter.CarrierStorefront,
		trackingadapter.NewOrderTrackingAdapter(store),
	)
	trackingHdl := trackinghandler.NewTrackingHandler(trackingSvc)

	srv := server.New(cfg, server.Options{
		Metrics:  m,
		Gatherer: reg,
		Health:   redisCache.Ping,
	})

	// Register Routes
	orderHdl.RegisterRoutes(srv.App)
	srv.App.Get("/tracking/:number", trackingHdl.GetTrackingHistory)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		l.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		scheduler.Stop()
		if err := store.Flush(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if dispatcher != nil {
			if err := dispatcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		l.Error("Server stopped with error", zap.Error(err))
	}
	l.Info("Application stopped")
}
