package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nrhodes/burstqueue/pkg/bridge"
	appconfig "github.com/nrhodes/burstqueue/pkg/config"
	"github.com/nrhodes/burstqueue/pkg/models"
	dydbstore "github.com/nrhodes/burstqueue/pkg/storage/dynamodb"
	"github.com/nrhodes/burstqueue/pkg/storage/postgres"
)

var (
	worker     *bridge.Worker
	wallBudget time.Duration
)

func init() {
	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config: %v", err)
	}
	dbClient := dynamodb.NewFromConfig(awsCfg)

	pgPool, err := pgxpool.New(context.TODO(), cfg.DB.DSN())
	if err != nil {
		log.Fatalf("unable to connect to ledger database: %v", err)
	}

	store := dydbstore.New(dbClient, cfg.Tables.SlotsTable, cfg.Tables.ConfigTable)
	queue := dydbstore.NewQueue(dbClient, cfg.Tables.QueueTable)
	dlq := dydbstore.NewDLQ(dbClient, cfg.Tables.DLQTable)
	ledger := postgres.NewLedger(pgPool)

	worker = bridge.New(queue, dlq, store, store, ledger)
	wallBudget = cfg.Bridge.WallClockBudget
}

// HandleRequest runs one Bridge worker invocation, invoked on a schedule by
// an external trigger (EventBridge Schedule in production).
func HandleRequest(ctx context.Context) (models.DrainSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, wallBudget)
	defer cancel()

	summary, err := worker.Run(ctx)
	if err != nil {
		log.Printf("ERROR: bridge drain failed: %v", err)
		return models.DrainSummary{}, err
	}

	log.Printf("bridge drain complete: processed=%d dlq=%d total=%d", summary.Processed, summary.DLQ, summary.Total)
	return summary, nil
}

func main() {
	lambda.Start(HandleRequest)
}
