package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/catalog"
	"github.com/eco-catalog/backend/internal/classify"
	"github.com/eco-catalog/backend/internal/config"
	"github.com/eco-catalog/backend/internal/domain"
	"github.com/eco-catalog/backend/internal/ops"
	"github.com/eco-catalog/backend/internal/orchestrator"
	"github.com/eco-catalog/backend/internal/scheduler"
	"github.com/eco-catalog/backend/internal/scraper"
	"github.com/eco-catalog/backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting eco-catalog ingestion worker",
		zap.Bool("debug", cfg.Debug),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog store
	store, err := catalog.New(ctx, cfg.Postgres.DSN(), cfg.Postgres.PoolSize, logger.Named("catalog"))
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure catalog schema", zap.Error(err))
	}

	// Browser + adapters
	browser := scraper.NewBrowser(logger.Named("browser"), cfg.Browser)
	defer browser.Close()

	registry := scraper.NewRegistry(
		scraper.NewEcoConsciousAdapter(browser, logger.Named("ecoconscious")),
		scraper.NewEcohoyAdapter(browser, logger.Named("ecohoy")),
		scraper.NewEcoyaanAdapter(browser, logger.Named("ecoyaan")),
		scraper.NewKleanGreenAdapter(browser, logger.Named("kleangreen")),
	)

	orch := orchestrator.New(registry, store, logger.Named("orchestrator"))

	// Scrape jobs, staggered so browser launches never coincide.
	scrapeSources := []domain.Source{
		domain.SourceEcoConscious,
		domain.SourceEcohoy,
		domain.SourceKleanGreen,
		domain.SourceEcoyaan,
	}

	specs := make([]scheduler.JobSpec, 0, len(scrapeSources)+1)
	for i, source := range scrapeSources {
		source := source
		specs = append(specs, scheduler.JobSpec{
			Name:     "scrape:" + string(source),
			Delay:    time.Duration(i) * cfg.Schedule.StaggerDelay,
			Interval: cfg.Schedule.ScrapeInterval,
			Run: func(ctx context.Context) error {
				_, err := orch.RunScrape(ctx, source)
				return err
			},
		})
	}

	// Classification sweep; a missing credential disables just this job.
	classifier, err := classify.NewClient(cfg.Classifier, logger.Named("classify"))
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		logger.Warn("NV_API_KEY not set, classification sweep disabled")
	case err != nil:
		logger.Fatal("Failed to create classifier", zap.Error(err))
	default:
		cache := classify.NewCache(cfg.Redis)
		defer cache.Close()

		enricher := classify.NewEnricher(store, classifier, cache, cfg.Classifier.BatchSize, logger.Named("enricher"))
		specs = append(specs, scheduler.JobSpec{
			Name:     "classify",
			Delay:    cfg.Schedule.ClassifyDelay,
			Interval: cfg.Schedule.ClassifyInterval,
			Run: func(ctx context.Context) error {
				_, err := enricher.Run(ctx)
				return err
			},
		})
	}

	sched := scheduler.New(logger.Named("scheduler"), specs...)
	sched.Start(ctx)

	// Ops endpoint
	opsServer := ops.New(sched, store, logger.Named("ops"))
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Ops.Host, cfg.Ops.Port)
		logger.Info("Ops endpoint listening", zap.String("address", addr))
		if err := opsServer.Listen(addr); err != nil {
			logger.Error("Ops endpoint stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Shutting down gracefully...")
	cancel()
	sched.Wait()
	_ = opsServer.Shutdown()
}
