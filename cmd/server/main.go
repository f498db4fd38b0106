package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"efris-bridge/internal/adapter/cache"
	httpRouter "efris-bridge/internal/adapter/http"
	"efris-bridge/internal/adapter/queue"
	"efris-bridge/internal/adapter/repository"
	"efris-bridge/internal/config"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/internal/metrics"
	"efris-bridge/internal/notify"
	"efris-bridge/internal/service"
	"efris-bridge/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting EFRIS bridge", "erp", cfg.ERP.BaseURL, "cache", cfg.Cache.Backend)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// One notifier for the whole process; the filter is installed exactly once.
	notifier := service.NewValidationFilter(notify.NewHost(log.Named("notify")), log.Named("validation"), appMetrics)

	rpc := repository.NewRPCClient(cfg.ERP.BaseURL, cfg.ERP.APIKey, cfg.ERP.APISecret, cfg.ERP.Timeout, log.Named("rpc"), appMetrics)
	caller := repository.NewMethodFilter(rpc, cfg.ERP.BlockedMethods, log.Named("rpc"))
	erp := repository.NewERPAPI(caller, log)

	rateCache, closeCache, err := newRateCache(cfg, log)
	if err != nil {
		log.Error("Failed to set up rate cache", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	var publisher ports.JobPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := queue.NewKafkaJobPublisher(cfg.Kafka.Brokers, cfg.Kafka.ItemSyncTopic, log.Named("kafka"))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	policy := service.ReconcilePolicy{
		NotifyNeutralRate: cfg.Reconcile.NotifyNeutralRate,
		SurfaceFailures:   cfg.Reconcile.SurfaceFailures,
	}
	formService := service.NewFormService(service.FormServiceDeps{
		Fetcher:     service.NewRateFetcher(erp, rateCache, log, appMetrics),
		Reconciler:  service.NewRateReconciler(notifier, policy, log),
		Customers:   service.NewCustomerResolver(erp, erp, notifier, log),
		Branches:    service.NewBranchSync(erp, log),
		Items:       service.NewItemSyncer(erp, publisher, cfg.ItemSync.PageSize, cfg.ItemSync.ChunkSize, log, appMetrics),
		CreditNotes: service.NewCreditNoteApproval(erp, notifier, log),
	}, log, appMetrics)

	handler := httpRouter.NewHandler(formService, log, appMetrics)
	router := httpRouter.NewRouter(handler, log.Named("http"), appMetrics)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancelSweep := context.WithCancel(context.Background())
	if rateCache != nil {
		go sweepCache(ctx, rateCache, cfg.Cache.SweepInterval, log)
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}

// newRateCache builds the configured rate cache. A nil cache means caching is off.
func newRateCache(cfg *config.Config, log *logger.Logger) (ports.RateCache, func(), error) {
	noop := func() {}

	switch cfg.Cache.Backend {
	case "redis":
		c, err := cache.NewRedisRateCache(cfg.Redis, cfg.Cache.TTL, log.Named("cache"))
		if err != nil {
			return nil, noop, err
		}
		return c, func() { c.Close() }, nil
	case "memory":
		return cache.NewMemoryCache(cfg.Cache.TTL, log.Named("cache")), noop, nil
	default:
		return nil, noop, nil
	}
}

// sweepCache periodically drops expired cache entries.
func sweepCache(ctx context.Context, rateCache ports.RateCache, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := rateCache.ClearExpired(ctx); err != nil {
				log.Error("Failed to clear expired rates", "error", err)
			}
		case <-ctx.Done():
			log.Info("Stopping cache sweep goroutine")
			return
		}
	}
}
