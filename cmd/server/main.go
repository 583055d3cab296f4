// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nfields/obscura-backend/internal/config"
	"github.com/nfields/obscura-backend/internal/controller"
	"github.com/nfields/obscura-backend/internal/db"
	"github.com/nfields/obscura-backend/internal/generator"
	"github.com/nfields/obscura-backend/internal/handler"
	"github.com/nfields/obscura-backend/internal/plugin"
	"github.com/nfields/obscura-backend/internal/queue"
	"github.com/nfields/obscura-backend/internal/repository"
	"github.com/nfields/obscura-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer logger.Sync()

	// Init DB
	db.Init()
	q := queue.NewInMemoryQueue()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	submissionRepo := &repository.SubmissionRepository{DB: db.DB}
	snapshotRepo := &repository.SnapshotRepository{DB: db.DB}
	lookupRepo := &repository.LookupRepository{DB: db.DB}

	// Plugin registries are built once at startup; everything downstream only
	// sees the registry.
	submitters := plugin.NewSubmitterRegistry()
	submitters.Register(&plugin.ManualSubmitter{})
	submitters.Register(plugin.NewWebformSubmitter("webform", cfg.WebformEndpoint))
	submitters.Register(plugin.NewWebformSubmitter("directory", cfg.WebformEndpoint))

	sources := plugin.NewSourceRegistry()
	for _, name := range cfg.EnabledSources {
		sources.Register(plugin.NewHTTPSource(name, cfg.SourceGateway))
	}

	gen := generator.New()

	campaignService := &service.CampaignService{
		CampaignRepo:              campaignRepo,
		SubmissionRepo:            submissionRepo,
		MaxCampaignsPerUser:       cfg.MaxCampaignsPerUser,
		MaxSubmissionsPerCampaign: cfg.MaxSubmissionsPerCampaign,
		Logger:                    logger,
	}

	coordinator := &service.SubmissionCoordinator{
		SubmissionRepo: submissionRepo,
		Submitters:     submitters,
		Timeout:        cfg.SubmissionTimeout,
		Logger:         logger,
	}

	executor := service.NewCampaignExecutor(
		campaignRepo,
		submissionRepo,
		coordinator,
		gen,
		cfg.CampaignWindow,
		logger,
	)

	lookupService := &service.LookupService{
		Sources:        sources,
		LookupRepo:     lookupRepo,
		EnabledSources: cfg.EnabledSources,
		Logger:         logger,
	}

	snapshotService := &service.SnapshotService{
		CampaignRepo: campaignRepo,
		SnapshotRepo: snapshotRepo,
		Lookup:       lookupService,
		Logger:       logger,
	}

	queue.StartSnapshotSubscriber(q, snapshotService, logger)

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		Executor:        executor,
	}
	lookupController := &controller.LookupController{
		LookupService: lookupService,
	}
	generatorController := &controller.GeneratorController{
		Generator: gen,
	}
	campaignHandler := handler.NewCampaignHandler(campaignService, snapshotService, q)

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/stats", campaignController.UserStats)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaignHandler)
	r.Patch("/campaigns/{id}", campaignController.UpdateCampaign)
	r.Delete("/campaigns/{id}", campaignController.DeleteCampaign)
	r.Post("/campaigns/{id}/execute", campaignController.ExecuteCampaign)
	r.Post("/campaigns/{id}/pause", campaignController.PauseCampaign)
	r.Post("/campaigns/{id}/resume", campaignController.ResumeCampaign)
	r.Get("/campaigns/{id}/submissions", campaignController.ListSubmissions)

	// Snapshot routes
	r.Post("/campaigns/{id}/baseline", campaignHandler.TakeBaselineHandler)
	r.Post("/campaigns/{id}/check", campaignHandler.TakeCheckHandler)
	r.Get("/campaigns/{id}/baselines", campaignHandler.ListSnapshotsHandler)
	r.Get("/campaigns/{id}/baselines/{snapshotID}", campaignHandler.GetSnapshotHandler)
	r.Get("/campaigns/{id}/accuracy", campaignHandler.AccuracyTrendHandler)

	// Lookup routes
	r.Post("/lookup", lookupController.Search)
	r.Get("/lookup", lookupController.ListLookups)
	r.Get("/lookup/sources", lookupController.ListSources)
	r.Get("/lookup/{id}", lookupController.GetLookup)

	// Generator routes
	r.Post("/generator/preview", generatorController.Preview)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Println("🚀 Server running on :" + cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
