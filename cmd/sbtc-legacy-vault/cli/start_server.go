package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/clients/chainclient"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/clients/ledgerclient"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/config"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/db"
	dbmodel "github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/tracing"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/queue"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the sBTC legacy vault server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up vault db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	var chainClient chainclient.ChainInterface
	chainClient, err = chainclient.NewChainClient(&cfg.Chain)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating chain client")
	}

	ledgerClient := ledgerclient.NewLedgerClient(&cfg.Ledger)

	queueManager, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating queue manager")
	}
	defer queueManager.Shutdown()

	service := services.NewService(cfg, dbClient, chainClient, ledgerClient, queueManager)
	if err := service.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while initializing admin state")
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	service.Start(ctx)
	<-ctx.Done()
	return nil
}
