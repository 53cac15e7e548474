package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-ingest/internal/clients/hh"
	"github.com/maxaizer/hh-ingest/internal/config"
	"github.com/maxaizer/hh-ingest/internal/logger"
	"github.com/maxaizer/hh-ingest/internal/metrics"
	"github.com/maxaizer/hh-ingest/internal/repositories"
	"github.com/maxaizer/hh-ingest/internal/services"
	"github.com/maxaizer/hh-ingest/internal/sources"
	log "github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"syscall"
)

type app struct {
	cfg      *config.Config
	resolver *services.RegionResolver
	ingestor *services.Ingestor
	reporter *services.Reporter
}

func newApp(cfg *config.Config, dbContext *repositories.DbContext) (*app, error) {

	hhClient := hh.NewClient()
	hhClient.SetBaseURL(cfg.Ingest.HhBaseURL)
	hhClient.SetUserAgent(cfg.Ingest.HhUserAgent)
	hhClient.SetRateLimit(cfg.Ingest.HhMaxRequestsPerSecond)

	gateway := repositories.NewGateway(dbContext.DB)
	ttl := cfg.Ingest.DimensionCacheTTL
	repos := services.Repositories{
		Vacancies:     repositories.NewVacanciesRepository(gateway),
		Skills:        repositories.NewCachedDimension(repositories.NewSkillsRepository(gateway), ttl),
		Cities:        repositories.NewCachedDimension(repositories.NewCitiesRepository(gateway), ttl),
		Employers:     repositories.NewCachedDimension(repositories.NewEmployersRepository(gateway), ttl),
		VacancySkills: repositories.NewVacancySkillsRepository(gateway),
	}

	regions := repositories.NewRegionsRepository(dbContext.DB)
	resolver := services.NewRegionResolver(hhClient, repositories.NewCachedRegions(regions, ttl), regions, cfg.Ingest.DefaultArea)

	bus := EventBus.New()
	reporter, err := services.NewReporter(bus)
	if err != nil {
		return nil, err
	}

	listing := services.NewListingFetcher(hhClient, cfg.Ingest.PageSize, cfg.Ingest.MaxPages, cfg.Ingest.PageDelay)
	details := services.NewDetailFetcher(hhClient, cfg.Ingest.DetailDelay)

	ingestor, err := services.NewIngestor(listing, details, repos, bus)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, resolver: resolver, ingestor: ingestor, reporter: reporter}, nil
}

// runOnce reads the query list again on every run so it can be edited between scheduled runs.
func (a *app) runOnce(ctx context.Context) error {

	queries, err := sources.LoadQueries(a.cfg.Ingest.QueriesFile, a.cfg.Ingest.DefaultArea)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeInput).Error(err)
		return err
	}

	queries, err = a.resolver.Resolve(ctx, queries)
	if err != nil {
		return err
	}

	_, err = a.ingestor.Run(ctx, queries)
	a.reporter.Flush()
	if err != nil {
		log.Errorf("ingestion finished with errors: %v", err)
	}
	return err
}

func run(ctx context.Context, cfg *config.Config) error {

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Errorf("can't create db context: %v", err)
		return err
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Errorf("can't migrate db context: %v", err)
		return err
	}

	a, err := newApp(cfg, dbContext)
	if err != nil {
		log.Errorf("can't create ingestor: %v", err)
		return err
	}
	defer a.reporter.Close()

	if cfg.Ingest.Schedule == "" {
		return a.runOnce(ctx)
	}

	scheduler, err := services.NewScheduler(ctx, cfg.Ingest.Schedule, func(ctx context.Context) {
		_ = a.runOnce(ctx)
	})
	if err != nil {
		return err
	}

	_ = a.runOnce(ctx)
	scheduler.Start()

	<-ctx.Done()

	log.Info("Shutting down scheduler...")
	scheduler.Stop()
	log.Info("Scheduler stopped.")
	return nil
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)

	metrics.StartMetricsServer(cfg.Metrics.Address)

	err := run(ctx, cfg)
	logger.Cleanup()

	if err != nil {
		stop()
		os.Exit(1)
	}
}
