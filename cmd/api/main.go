package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/cardwise/internal/ai"
	"github.com/dvloznov/cardwise/internal/api/handlers"
	"github.com/dvloznov/cardwise/internal/api/middleware"
	"github.com/dvloznov/cardwise/internal/cache"
	"github.com/dvloznov/cardwise/internal/catalog"
	"github.com/dvloznov/cardwise/internal/config"
	"github.com/dvloznov/cardwise/internal/gcs"
	"github.com/dvloznov/cardwise/internal/jobs"
	"github.com/dvloznov/cardwise/internal/jobs/inmemory"
	"github.com/dvloznov/cardwise/internal/logger"
	"github.com/dvloznov/cardwise/internal/recommend"
	"github.com/dvloznov/cardwise/internal/statements"
	store "github.com/dvloznov/cardwise/internal/store/bigquery"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CARDWISE_CONFIG"), "Path to TOML config file (or set CARDWISE_CONFIG env)")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load card catalog")
	}
	log.Info().Int("cards", cat.Len()).Msg("Card catalog loaded")

	ctx := context.Background()

	// Recommendation cache. Redis when configured, otherwise a
	// per-process map.
	var recCache cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedis(cfg.Redis.Addr)
		defer redisCache.Close()
		recCache = redisCache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache enabled")
	} else {
		recCache = cache.NewMemory()
		log.Info().Msg("Using in-process recommendation cache")
	}

	// AI generator. Optional; without credentials the engine serves
	// rule-based recommendations only.
	var gen recommend.Generator
	var gemini *ai.Gemini
	if ai.Enabled() {
		gemini = ai.NewGemini(cfg.AI.Model)
		gen = gemini.Generate
		log.Info().Str("model", cfg.AI.Model).Msg("AI advisor enabled")
	} else {
		log.Warn().Msg("No model credential configured - running rule-based only")
	}

	engine := recommend.NewEngine(cat, gen, recCache, cfg.AITimeout(), log)

	// Statement ingestion stack. Optional; needs GCS, BigQuery and the
	// model all configured.
	var (
		repo      store.Repository
		storage   *gcs.Storage
		jobStore  = inmemory.NewStore()
		jobQueue  *inmemory.Queue
		publisher jobs.Publisher
	)

	statementsEnabled := cfg.Storage.Bucket != "" && cfg.Storage.Project != "" && gemini != nil
	if statementsEnabled {
		repo, err = store.NewClient(ctx, cfg.Storage.Project, cfg.Storage.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		defer repo.Close()

		storage, err = gcs.New(ctx, cfg.Storage.Bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS client")
		}
		defer storage.Close()

		pipeline := statements.NewPipeline(storage, statements.NewGeminiExtractor(gemini), repo)

		jobQueue = inmemory.NewQueue(100, 5, jobStore)
		publisher = jobQueue

		workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
		defer cancelWorker()

		jobHandler := func(ctx context.Context, job jobs.Job) error {
			parseJob, ok := job.(*jobs.ParseStatementJob)
			if !ok {
				return fmt.Errorf("unexpected job type: %T", job)
			}

			log.Info().
				Str("job_id", parseJob.JobID).
				Str("statement_id", parseJob.StatementID).
				Str("gcs_uri", parseJob.GCSURI).
				Msg("Processing parse job")

			if err := pipeline.Ingest(ctx, parseJob.StatementID, parseJob.GCSURI); err != nil {
				log.Error().
					Err(err).
					Str("job_id", parseJob.JobID).
					Str("statement_id", parseJob.StatementID).
					Msg("Statement ingestion failed")
				return err
			}
			return nil
		}

		go func() {
			log.Info().Msg("Starting parse worker")
			if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
				log.Error().Err(err).Msg("Parse worker stopped with error")
			}
		}()
	} else {
		log.Warn().Msg("Statement ingestion disabled - needs bucket, project and model credential")
	}

	recommendHandler := handlers.NewRecommendHandler(engine, log)
	cardsHandler := handlers.NewCardsHandler(cat, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/recommend", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			recommendHandler.Recommend(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/cards", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			cardsHandler.ListCards(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/cards/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			cardID := strings.TrimPrefix(r.URL.Path, "/api/cards/")
			if cardID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Card ID is required")
				return
			}
			cardsHandler.GetCard(w, r, cardID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	if statementsEnabled {
		statementsHandler := handlers.NewStatementsHandler(storage, repo, publisher, log)
		transactionsHandler := handlers.NewTransactionsHandler(repo, log)

		mux.HandleFunc("/api/statements", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				statementsHandler.ListStatements(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})

		mux.HandleFunc("/api/statements/upload", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				statementsHandler.UploadStatement(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})

		mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				transactionsHandler.ListTransactions(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})

		mux.HandleFunc("/api/transactions/summary", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				transactionsHandler.MonthlySummary(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(log)(
				middleware.CORS(
					middleware.RateLimit(limiter)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if jobQueue != nil {
		if err := jobQueue.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error stopping job queue")
		}
	}

	log.Info().Msg("Server exited")
}
