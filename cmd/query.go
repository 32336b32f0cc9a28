package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/logger"
	"github.com/orbs-network/pos-analytics/pkg/metrics"
	"github.com/orbs-network/pos-analytics/pkg/service/posDataService"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type queryFunc func(ctx context.Context, pds *posDataService.PosDataService, args []string) (interface{}, error)

// queryCommand runs a single query against the chain and prints its JSON.
func queryCommand(use string, short string, nArgs int, query queryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindCommandFlags(cmd)
			cfg := config.NewConfig()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
			defer l.Sync() //nolint:errcheck

			pds, closeClient, err := newPosDataService(ctx, cfg, metrics.NewNoopMetricsSink(), l)
			if err != nil {
				return err
			}
			defer closeClient()

			res, err := query(ctx, pds, args)
			if err != nil {
				l.Sugar().Errorw("Query failed", zap.String("command", use), zap.Error(err))
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func rewardsOptions() *posDataService.RewardsQueryOptions {
	return &posDataService.RewardsQueryOptions{FromBlock: viper.GetInt64(config.KebabToSnakeCase(config.QueryFromBlock))}
}

var delegatorCmd = queryCommand("delegator <address>", "Print the position and history of a delegator", 1,
	func(ctx context.Context, pds *posDataService.PosDataService, args []string) (interface{}, error) {
		return pds.GetDelegator(ctx, args[0])
	})

var delegatorRewardsCmd = queryCommand("delegator-rewards <address>", "Print the reconstructed rewards of a delegator", 1,
	func(ctx context.Context, pds *posDataService.PosDataService, args []string) (interface{}, error) {
		return pds.GetDelegatorStakingRewards(ctx, args[0], rewardsOptions())
	})

var guardianCmd = queryCommand("guardian <address>", "Print the position, history and delegators of a guardian", 1,
	func(ctx context.Context, pds *posDataService.PosDataService, args []string) (interface{}, error) {
		return pds.GetGuardian(ctx, args[0])
	})

var guardianRewardsCmd = queryCommand("guardian-rewards <address>", "Print the reconstructed rewards of a guardian", 1,
	func(ctx context.Context, pds *posDataService.PosDataService, args []string) (interface{}, error) {
		return pds.GetGuardianStakingRewards(ctx, args[0], rewardsOptions())
	})

var guardiansCmd = queryCommand("guardians", "Print the registered guardians", 0,
	func(ctx context.Context, pds *posDataService.PosDataService, args []string) (interface{}, error) {
		return pds.GetGuardians(ctx)
	})

var overviewCmd = queryCommand("overview", "Print the network overview", 0,
	func(ctx context.Context, pds *posDataService.PosDataService, args []string) (interface{}, error) {
		return pds.GetOverview(ctx)
	})
