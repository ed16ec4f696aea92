package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Denizbukut/TCG-sub001/pkg/antifraud"
	"github.com/Denizbukut/TCG-sub001/pkg/api"
	"github.com/Denizbukut/TCG-sub001/pkg/clock"
	"github.com/Denizbukut/TCG-sub001/pkg/config"
	"github.com/Denizbukut/TCG-sub001/pkg/handlers"
	"github.com/Denizbukut/TCG-sub001/pkg/market"
	"github.com/Denizbukut/TCG-sub001/pkg/middleware"
	"github.com/Denizbukut/TCG-sub001/pkg/pricing"
	"github.com/Denizbukut/TCG-sub001/pkg/quota"
	"github.com/Denizbukut/TCG-sub001/pkg/reconcile"
	"github.com/Denizbukut/TCG-sub001/pkg/rewards"
	ddbstore "github.com/Denizbukut/TCG-sub001/pkg/storage/dynamodb"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// AWS Session
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(awsCfg)
	store := ddbstore.New(dbClient,
		cfg.ListingsTable, cfg.PlayersTable, cfg.InventoryTable,
		cfg.TradesTable, cfg.QuotaTable, cfg.CardsTable)

	// SQS client and reconciliation queue. Without a queue URL, failed saga
	// steps are logged and dropped.
	var queue reconcile.Queue = &reconcile.NoOpQueue{}
	if cfg.ReconcileQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsCfg)
		queue = reconcile.NewSQSQueue(sqsClient, cfg.ReconcileQueueURL)
	} else {
		log.Println("SQS_RECONCILE_QUEUE_URL not set, saga failures will not be reconciled")
	}

	var rates pricing.RateSource
	if cfg.RateFeedURL != "" {
		rates = pricing.NewHTTPRateSource(cfg.RateFeedURL)
	}
	fallbackRate, err := decimal.NewFromString(cfg.FallbackCoinRate)
	if err != nil || !fallbackRate.IsPositive() {
		log.Fatalf("invalid COIN_RATE_FALLBACK: %q", cfg.FallbackCoinRate)
	}
	calculator := pricing.NewCalculator(rates, fallbackRate, logger)

	clk := clock.NewSystem()
	fraud := antifraud.NewChecker(store, clk, antifraud.DefaultWindow)
	quotaSvc := quota.New(store, clk, cfg.LegendaryCap)

	tables, err := rewards.DefaultTables()
	if err != nil {
		log.Fatalf("invalid reward tables: %v", err)
	}
	drawSvc := rewards.New(store, quotaSvc, tables, queue, clk, logger, nil)

	marketCfg := market.DefaultConfig()
	marketCfg.LeaseTTL = cfg.LockTTL
	marketSvc := market.New(store, clk, calculator, fraud, queue, market.AcceptAllVerifier{}, logger, marketCfg)

	// Create our handler
	handler := handlers.NewApiHandler(marketSvc, drawSvc, quotaSvc, store)

	// Create a new Chi router
	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(logger))

	// Use the generated function to mount our handler on the router
	api.HandlerFromMux(handler, router)

	logger.Info("starting server", slog.String("addr", cfg.Addr))

	// Start the server
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
