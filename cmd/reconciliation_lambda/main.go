package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/Denizbukut/TCG-sub001/pkg/config"
	"github.com/Denizbukut/TCG-sub001/pkg/reconcile"
	ddbstore "github.com/Denizbukut/TCG-sub001/pkg/storage/dynamodb"
)

var applier *reconcile.Applier

func init() {
	// Load environment variables from .env file (useful for local testing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	dbClient := dynamodb.NewFromConfig(awsCfg)
	store := ddbstore.New(dbClient,
		cfg.ListingsTable, cfg.PlayersTable, cfg.InventoryTable,
		cfg.TradesTable, cfg.QuotaTable, cfg.CardsTable)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	applier = reconcile.NewApplier(store, logger)
}

// HandleRequest re-applies failed purchase side-effects from the queue.
// Every step is an independent single-row write that is safe to repeat, so
// at-least-once delivery from SQS is fine.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var task reconcile.Task
		if err := json.Unmarshal([]byte(message.Body), &task); err != nil {
			log.Printf("ERROR: failed to unmarshal task from SQS message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		if err := applier.Apply(ctx, &task); err != nil {
			log.Printf("ERROR: failed to apply task %s (step %s): %v", task.TaskId, task.Step, err)
			// In a production system, persistent failures would be sent to a DLQ.
			return err
		}

		log.Printf("Successfully applied task %s (step %s)", task.TaskId, task.Step)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
