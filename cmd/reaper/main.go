package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	appconfig "github.com/nrhodes/burstqueue/pkg/config"
	"github.com/nrhodes/burstqueue/pkg/reaper"
	dydbstore "github.com/nrhodes/burstqueue/pkg/storage/dynamodb"
)

var (
	sweeper   *reaper.Reaper
	threshold time.Duration
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

	store := dydbstore.New(dbClient, cfg.Tables.SlotsTable, cfg.Tables.ConfigTable)
	queue := dydbstore.NewQueue(dbClient, cfg.Tables.QueueTable)

	sweeper = reaper.New(store, queue)
	threshold = cfg.Reaper.OrphanThreshold
}

// HandleRequest runs one Reaper sweep, invoked on a schedule (~every 2
// minutes in production, per spec.md §4.5).
func HandleRequest(ctx context.Context) error {
	reaped, err := sweeper.Sweep(ctx, threshold)
	if err != nil {
		log.Printf("ERROR: reaper sweep failed: %v", err)
		return err
	}

	log.Printf("reaper sweep complete: reaped=%d", reaped)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
