package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nrhodes/burstqueue/pkg/auth"
	"github.com/nrhodes/burstqueue/pkg/bridge"
	"github.com/nrhodes/burstqueue/pkg/claim"
	appconfig "github.com/nrhodes/burstqueue/pkg/config"
	"github.com/nrhodes/burstqueue/pkg/handlers/bridgetrigger"
	claimhandler "github.com/nrhodes/burstqueue/pkg/handlers/claim"
	"github.com/nrhodes/burstqueue/pkg/handlers/dlqadmin"
	"github.com/nrhodes/burstqueue/pkg/middleware"
	dydbstore "github.com/nrhodes/burstqueue/pkg/storage/dynamodb"
	"github.com/nrhodes/burstqueue/pkg/storage/postgres"
)

func main() {
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
	defer pgPool.Close()

	store := dydbstore.New(dbClient, cfg.Tables.SlotsTable, cfg.Tables.ConfigTable)
	queue := dydbstore.NewQueue(dbClient, cfg.Tables.QueueTable)
	dlq := dydbstore.NewDLQ(dbClient, cfg.Tables.DLQTable)
	ledger := postgres.NewLedger(pgPool)

	logger := slog.Default()
	claimService := claim.New(store, queue)
	worker := bridge.New(queue, dlq, store, store, ledger)
	worker.Logger = logger
	authService := auth.NewService(cfg.JWT.Secret)

	claimH := claimhandler.NewHandler(claimService, logger)
	bridgeH := bridgetrigger.NewHandler(worker, func(ctx context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, cfg.Bridge.WallClockBudget)
	}, logger)
	dlqH := dlqadmin.NewHandler(dlq, queue, logger)

	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(logger))

	router.Post("/pools/{pool_id}/claims", claimH.Claim)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireBearer(authService, auth.RoleCaller))
		r.Post("/internal/bridge/drain", bridgeH.Drain)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireBearer(authService, auth.RoleOperator))
		r.Get("/internal/dlq", dlqH.List)
		r.Post("/internal/dlq/replay", dlqH.Replay)
		r.Post("/internal/dlq/discard", dlqH.Discard)
	})

	router.Handle("/metrics", promhttp.Handler())

	log.Printf("starting server on port %s", cfg.HTTP.Port)
	if err := http.ListenAndServe(":"+cfg.HTTP.Port, router); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
