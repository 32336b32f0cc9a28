package cmd

import (
	"os"
	"strings"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "pos-analytics",
	Short: "Staking, delegation and reward history of the Orbs PoS network",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().StringP(config.ChainName, "c", config.Chain_Ethereum.String(), "The chain to use (ethereum, polygon)")
	rootCmd.PersistentFlags().String(config.ChainOverrideFile, "", "Path to a yaml file overriding the chain constants")

	rootCmd.PersistentFlags().String(config.EthereumRpcUrl, "", `e.g. "http://<hostname>:8545"`)
	rootCmd.PersistentFlags().Uint64(config.EthereumRpcChunkSize, 100000, "The block window of a single log query")
	rootCmd.PersistentFlags().Uint64(config.EthereumRpcMinChunk, 10, "The block window at which splitting a log query gives up")
	rootCmd.PersistentFlags().Int(config.EthereumRpcParallel, 10, "The number of log queries to run at once")
	rootCmd.PersistentFlags().Int(config.EthereumRpcMaxRetries, 7, "The number of retries of a failed log query")

	rootCmd.PersistentFlags().String(config.ManagementServiceUrls, "", "Comma separated management service status urls, tried in order")
	rootCmd.PersistentFlags().Duration(config.ManagementServiceTimeout, 0, "Timeout of a single status request (default 5s)")

	rootCmd.PersistentFlags().Int(config.RpcHttpPort, 7101, "http api port")
	rootCmd.PersistentFlags().String(config.RpcAllowedOrigins, "", "Comma separated CORS origins (default all)")

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Bool(config.DataDogEnableTracing, false, `e.g. "true" or "false"`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, "The port to run the prometheus server on")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(delegatorCmd)
	rootCmd.AddCommand(delegatorRewardsCmd)
	rootCmd.AddCommand(guardianCmd)
	rootCmd.AddCommand(guardianRewardsCmd)
	rootCmd.AddCommand(guardiansCmd)
	rootCmd.AddCommand(overviewCmd)

	for _, c := range []*cobra.Command{delegatorRewardsCmd, guardianRewardsCmd} {
		c.PersistentFlags().Int64(config.QueryFromBlock, 0, "First block of the reconstruction, negative counts back from the current block")
	}

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}

// bindCommandFlags binds the flags local to a subcommand.
func bindCommandFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}
