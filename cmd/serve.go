package cmd

import (
	"context"
	"time"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/internal/tracer"
	"github.com/orbs-network/pos-analytics/internal/version"
	"github.com/orbs-network/pos-analytics/pkg/logger"
	"github.com/orbs-network/pos-analytics/pkg/metrics/prometheus"
	"github.com/orbs-network/pos-analytics/pkg/rpcServer"
	"github.com/orbs-network/pos-analytics/pkg/shutdown"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the http api",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.NewConfig()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		l.Sugar().Infow("pos-analytics",
			zap.String("version", version.GetVersion()),
			zap.String("commit", version.GetCommit()),
			zap.String("chain", cfg.Chain.String()),
		)

		tracer.StartTracer(cfg.DataDogConfig.EnableTracing, cfg.Chain)
		defer tracer.StopTracer()

		sink, err := newMetricsSink(cfg, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup metrics sink", zap.Error(err))
		}

		pds, closeClient, err := newPosDataService(ctx, cfg, sink, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to create data service", zap.Error(err))
		}
		defer closeClient()

		rpc := rpcServer.NewRpcServer(&rpcServer.RpcServerConfig{
			HttpPort:       cfg.RpcConfig.HttpPort,
			AllowedOrigins: cfg.RpcConfig.AllowedOrigins,
			EnableTracing:  cfg.DataDogConfig.EnableTracing,
		}, pds, sink, l)

		// RPC channel to notify the RPC server to shutdown gracefully
		rpcChannel := make(chan bool)
		if err := rpc.Start(ctx, rpcChannel); err != nil {
			l.Sugar().Fatalw("Failed to start RPC server", zap.Error(err))
		}

		promChan := make(chan bool, 1)
		if cfg.PrometheusConfig.Enabled {
			pServer := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.PrometheusConfig.Port,
			}, l)
			if err := pServer.Start(promChan); err != nil {
				l.Sugar().Fatalw("Failed to start prometheus server", zap.Error(err))
			}
		}

		l.Sugar().Info("Started pos-analytics")

		gracefulShutdown := shutdown.CreateGracefulShutdownChannel()

		done := make(chan bool)
		shutdown.ListenForShutdown(gracefulShutdown, done, func() {
			l.Sugar().Info("Shutting down...")
			rpcChannel <- true
			promChan <- true
		}, time.Second*5, l)
	},
}
