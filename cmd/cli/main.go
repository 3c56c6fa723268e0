package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/cardwise/internal/ai"
	"github.com/dvloznov/cardwise/internal/catalog"
	"github.com/dvloznov/cardwise/internal/config"
	"github.com/dvloznov/cardwise/internal/gcs"
	"github.com/dvloznov/cardwise/internal/logger"
	"github.com/dvloznov/cardwise/internal/recommend"
	"github.com/dvloznov/cardwise/internal/statements"
	store "github.com/dvloznov/cardwise/internal/store/bigquery"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "recommend":
		runRecommend(log)
	case "upload":
		runUpload(log)
	case "ingest":
		runIngest(log)
	case "statements":
		runStatements(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Cardwise CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  recommend   Recommend the best card for a transaction")
	fmt.Println("  upload      Upload a statement PDF to GCS and ingest it")
	fmt.Println("  ingest      Parse an already-uploaded statement by GCS URI")
	fmt.Println("  statements  List stored statements")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func loadConfig(log zerolog.Logger, path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg
}

func runRecommend(log zerolog.Logger) {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	amount := fs.Float64("amount", 0, "Transaction amount")
	platform := fs.String("platform", "", "Merchant or platform (e.g. Amazon)")
	category := fs.String("category", "", "Spend category (e.g. Shopping)")
	cardIDs := fs.String("cards", "", "Comma-separated card IDs owned by the user (empty = whole catalog)")
	configPath := fs.String("config", os.Getenv("CARDWISE_CONFIG"), "Path to TOML config file")
	noAI := fs.Bool("no-ai", false, "Skip the AI advisor even when credentials are set")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log, *configPath)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load card catalog")
	}

	var gen recommend.Generator
	if ai.Enabled() && !*noAI {
		gen = ai.NewGemini(cfg.AI.Model).Generate
	}

	engine := recommend.NewEngine(cat, gen, nil, cfg.AITimeout(), log)

	tx := recommend.Transaction{
		Amount:   *amount,
		Platform: *platform,
		Category: *category,
	}
	if *cardIDs != "" {
		tx.UserCards = strings.Split(*cardIDs, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	result, err := engine.Recommend(ctx, tx)
	if err != nil {
		log.Fatal().Err(err).Msg("Recommendation failed")
	}

	fmt.Printf("\nBest card: %s (%s)\n", result.BestCard.Name, result.BestCard.Bank)
	fmt.Printf("Savings:   %.2f (%.2f%%)\n", result.SavingsAmount, result.SavingsPercentage)
	fmt.Printf("Why:       %s\n", result.Explanation)

	if len(result.ComparisonResults) > 0 {
		fmt.Println("\nAlternatives:")
		for _, entry := range result.ComparisonResults {
			fmt.Printf("  %-30s %.2f (%.2f%%)\n", entry.Card.Name, entry.SavingsAmount, entry.SavingsPercentage)
		}
	}
	fmt.Println()
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local statement PDF")
	configPath := fs.String("config", os.Getenv("CARDWISE_CONFIG"), "Path to TOML config file")
	parse := fs.Bool("parse", true, "Parse the statement after uploading")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	cfg := loadConfig(log, *configPath)
	if cfg.Storage.Bucket == "" {
		log.Fatal().Msg("Error: no GCS bucket configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	storage, err := gcs.New(ctx, cfg.Storage.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS client")
	}
	defer storage.Close()

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to open file")
	}
	defer f.Close()

	statementID := uuid.NewString()
	objectName := fmt.Sprintf("statements/%s/%s", time.Now().Format("2006/01/02"), statementID+"-"+filepath.Base(*filePath))

	gcsURI, err := storage.Upload(ctx, objectName, "application/pdf", f)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcsURI)

	if *parse {
		ingest(ctx, log, cfg, storage, statementID, gcsURI)
	}
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "GCS URI of the statement PDF")
	statementID := fs.String("statement-id", "", "Statement ID (defaults to a new UUID)")
	configPath := fs.String("config", os.Getenv("CARDWISE_CONFIG"), "Path to TOML config file")
	fs.Parse(os.Args[2:])

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}
	if *statementID == "" {
		*statementID = uuid.NewString()
	}

	cfg := loadConfig(log, *configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	storage, err := gcs.New(ctx, cfg.Storage.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS client")
	}
	defer storage.Close()

	ingest(ctx, log, cfg, storage, *statementID, *gcsURI)
}

func ingest(ctx context.Context, log zerolog.Logger, cfg *config.Config, storage *gcs.Storage, statementID, gcsURI string) {
	if cfg.Storage.Project == "" {
		log.Fatal().Msg("Error: no BigQuery project configured")
	}
	if !ai.Enabled() {
		log.Fatal().Msg("Error: no model credential configured")
	}

	repo, err := store.NewClient(ctx, cfg.Storage.Project, cfg.Storage.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer repo.Close()

	extractor := statements.NewGeminiExtractor(ai.NewGemini(cfg.AI.Model))
	pipeline := statements.NewPipeline(storage, extractor, repo)

	log.Info().Str("statement_id", statementID).Str("gcs_uri", gcsURI).Msg("Starting ingestion")

	if err := pipeline.Ingest(ctx, statementID, gcsURI); err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Println("Ingestion completed successfully.")
}

func runStatements(log zerolog.Logger) {
	fs := flag.NewFlagSet("statements", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("CARDWISE_CONFIG"), "Path to TOML config file")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log, *configPath)
	if cfg.Storage.Project == "" {
		log.Fatal().Msg("Error: no BigQuery project configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := store.NewClient(ctx, cfg.Storage.Project, cfg.Storage.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer repo.Close()

	rows, err := repo.ListStatements(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list statements")
	}

	fmt.Printf("\n=== Statements (%d) ===\n", len(rows))
	for _, row := range rows {
		fmt.Printf("\n%s\n", row.StatementID)
		fmt.Printf("   File:   %s\n", row.OriginalFilename)
		fmt.Printf("   Bank:   %s %s\n", row.Bank, row.CardType)
		if row.StatementDate.Valid {
			fmt.Printf("   Date:   %s\n", row.StatementDate.Date)
		}
		fmt.Printf("   Total:  %.2f\n", row.TotalAmount)
		fmt.Printf("   Status: %s\n", row.ParsingStatus)
	}
	fmt.Println()
}
