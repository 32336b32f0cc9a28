package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const ENV_PREFIX = "POS_ANALYTICS"

type Chain string

func (c Chain) String() string {
	return string(c)
}

const (
	Chain_Ethereum Chain = "ethereum"
	Chain_Polygon  Chain = "polygon"
)

const (
	Debug                 = "debug"
	ChainName             = "chain"
	ChainOverrideFile     = "chain.override-file"
	EthereumRpcUrl        = "ethereum.rpc-url"
	EthereumRpcChunkSize  = "ethereum.chunk-size"
	EthereumRpcMinChunk   = "ethereum.min-chunk-size"
	EthereumRpcParallel   = "ethereum.parallel-requests"
	EthereumRpcMaxRetries = "ethereum.max-retries"

	ManagementServiceUrls    = "management-service.urls"
	ManagementServiceTimeout = "management-service.timeout"

	RpcHttpPort       = "rpc.http-port"
	RpcAllowedOrigins = "rpc.allowed-origins"

	DataDogStatsdEnabled = "datadog.statsd.enabled"
	DataDogStatsdUrl     = "datadog.statsd.url"
	DataDogEnableTracing = "datadog.enable-tracing"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"

	QueryFromBlock = "from-block"
)

// DefaultManagementServiceUrls are the public Orbs network nodes serving the management status.
var DefaultManagementServiceUrls = []string{
	"https://0xcore.orbs.com/services/management-service/status",
	"https://0xaudit.orbs.com/services/management-service/status",
	"https://guardian.orbs.com/services/management-service/status",
}

type EthereumRpcConfig struct {
	RpcUrl           string
	ChunkSize        uint64
	MinChunkSize     uint64
	ParallelRequests int
	MaxRetries       int
}

type ManagementServiceConfig struct {
	Urls    []string
	Timeout time.Duration
}

type RpcConfig struct {
	HttpPort       int
	AllowedOrigins []string
}

type StatsdConfig struct {
	Enabled bool
	Url     string
}

type DataDogConfig struct {
	StatsdConfig  StatsdConfig
	EnableTracing bool
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type Config struct {
	Debug                   bool
	Chain                   Chain
	ChainOverrideFile       string
	EthereumRpcConfig       EthereumRpcConfig
	ManagementServiceConfig ManagementServiceConfig
	RpcConfig               RpcConfig
	DataDogConfig           DataDogConfig
	PrometheusConfig        PrometheusConfig
}

func NewConfig() *Config {
	return &Config{
		Debug:             viper.GetBool(normalizeFlagName(Debug)),
		Chain:             Chain(viper.GetString(normalizeFlagName(ChainName))),
		ChainOverrideFile: viper.GetString(normalizeFlagName(ChainOverrideFile)),

		EthereumRpcConfig: EthereumRpcConfig{
			RpcUrl:           viper.GetString(normalizeFlagName(EthereumRpcUrl)),
			ChunkSize:        viper.GetUint64(normalizeFlagName(EthereumRpcChunkSize)),
			MinChunkSize:     viper.GetUint64(normalizeFlagName(EthereumRpcMinChunk)),
			ParallelRequests: viper.GetInt(normalizeFlagName(EthereumRpcParallel)),
			MaxRetries:       viper.GetInt(normalizeFlagName(EthereumRpcMaxRetries)),
		},

		ManagementServiceConfig: ManagementServiceConfig{
			Urls:    parseStringAsList(viper.GetString(normalizeFlagName(ManagementServiceUrls))),
			Timeout: viper.GetDuration(normalizeFlagName(ManagementServiceTimeout)),
		},

		RpcConfig: RpcConfig{
			HttpPort:       viper.GetInt(normalizeFlagName(RpcHttpPort)),
			AllowedOrigins: parseStringAsList(viper.GetString(normalizeFlagName(RpcAllowedOrigins))),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled: viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:     viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
			},
			EnableTracing: viper.GetBool(normalizeFlagName(DataDogEnableTracing)),
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},
	}
}

// GetManagementServiceUrls returns the configured node urls, falling back to the public defaults.
func (c *Config) GetManagementServiceUrls() []string {
	if len(c.ManagementServiceConfig.Urls) > 0 {
		return c.ManagementServiceConfig.Urls
	}
	return DefaultManagementServiceUrls
}

// GetChainConfig resolves the chain constants, applying the override file when one is configured.
func (c *Config) GetChainConfig() (*ChainConfig, error) {
	chainConfig, err := GetChainConfig(c.Chain)
	if err != nil {
		return nil, err
	}
	if c.ChainOverrideFile == "" {
		return chainConfig, nil
	}
	override, err := LoadChainOverride(c.ChainOverrideFile)
	if err != nil {
		return nil, err
	}
	override.Apply(chainConfig)
	return chainConfig, nil
}

func parseStringAsList(envVar string) []string {
	if envVar == "" {
		return []string{}
	}
	// split on commas
	stringList := strings.Split(envVar, ",")

	for i, s := range stringList {
		stringList[i] = strings.TrimSpace(s)
	}
	l := make([]string, 0)
	for _, s := range stringList {
		if s != "" {
			l = append(l, s)
		}
	}
	return l
}

func normalizeFlagName(name string) string {
	return KebabToSnakeCase(name)
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}

// BlockRef pins a block number to its unix timestamp. A zero Time is estimated from the chain clock.
type BlockRef struct {
	Number uint64 `yaml:"number"`
	Time   int64  `yaml:"time"`
}

type ContractBootstrap struct {
	Address    string `yaml:"address"`
	StartBlock uint64 `yaml:"start_block"`
}

// BootstrapContracts are the addresses known before registry discovery runs.
type BootstrapContracts struct {
	Erc20            ContractBootstrap `yaml:"erc20"`
	Stake            ContractBootstrap `yaml:"stake"`
	ContractRegistry ContractBootstrap `yaml:"contract_registry"`
}

type ChainConfig struct {
	Chain   Chain
	ChainId uint64

	// StartOfPos is both the genesis of stake history and the start of block time estimation.
	StartOfPos        BlockRef
	RefBlock          BlockRef
	StartOfRewards    BlockRef
	StartOfDelegation BlockRef

	TxExplorerUrl string
	Contracts     BootstrapContracts
}

var chainConfigs = map[Chain]ChainConfig{
	Chain_Ethereum: {
		Chain:             Chain_Ethereum,
		ChainId:           1,
		StartOfPos:        BlockRef{Number: 9830000, Time: 1586328645},
		RefBlock:          BlockRef{Number: 11093232, Time: 1603200055},
		StartOfRewards:    BlockRef{Number: 11191407, Time: 1604459620},
		StartOfDelegation: BlockRef{Number: 11191403, Time: 1604459583},
		TxExplorerUrl:     "https://etherscan.io/tx/",
		Contracts: BootstrapContracts{
			Erc20:            ContractBootstrap{Address: "0xff56cc6b1e6ded347aa0b7676c85ab0b3d08b0fa", StartBlock: 5710114},
			Stake:            ContractBootstrap{Address: "0x01d59af68e2dcb44e04c50e05f62e7043f2656c3", StartBlock: 9830000},
			ContractRegistry: ContractBootstrap{Address: "0xd859701c81119ab12a1e62af6270ad2ae05c7ab3", StartBlock: 11191400},
		},
	},
	Chain_Polygon: {
		Chain:             Chain_Polygon,
		ChainId:           137,
		StartOfPos:        BlockRef{Number: 25487295, Time: 1646207643},
		RefBlock:          BlockRef{Number: 14283390, Time: 1620563553},
		StartOfRewards:    BlockRef{Number: 25502848},
		StartOfDelegation: BlockRef{Number: 25502848},
		TxExplorerUrl:     "https://polygonscan.com/tx/",
		Contracts: BootstrapContracts{
			Erc20:            ContractBootstrap{Address: "0x614389eaae0a6821dc49062d56bda3d9d45fa2ff", StartBlock: 14283390},
			Stake:            ContractBootstrap{Address: "0xeeae6791f684117b7028b48cb5dd21186df80b9c", StartBlock: 25487295},
			ContractRegistry: ContractBootstrap{Address: "0x35ea0d75b2a3ab06393749b4651dfad1ffd49a77", StartBlock: 25502848},
		},
	},
}

func ParseChain(name string) (Chain, error) {
	switch strings.ToLower(name) {
	case "ethereum", "mainnet", "1":
		return Chain_Ethereum, nil
	case "polygon", "matic", "137":
		return Chain_Polygon, nil
	}
	return "", fmt.Errorf("unsupported chain '%s'", name)
}

// GetChainConfig returns a copy of the static constants for a chain.
func GetChainConfig(chain Chain) (*ChainConfig, error) {
	parsed, err := ParseChain(string(chain))
	if err != nil {
		return nil, err
	}
	cc := chainConfigs[parsed]
	return &cc, nil
}

// ChainOverride is the on-disk shape of a custom deployment.
type ChainOverride struct {
	ChainId           uint64              `yaml:"chain_id"`
	TxExplorerUrl     string              `yaml:"tx_explorer_url"`
	StartOfPos        *BlockRef           `yaml:"start_of_pos"`
	RefBlock          *BlockRef           `yaml:"ref_block"`
	StartOfRewards    *BlockRef           `yaml:"start_of_rewards"`
	StartOfDelegation *BlockRef           `yaml:"start_of_delegation"`
	Contracts         *BootstrapContracts `yaml:"contracts"`
}

func LoadChainOverride(path string) (*ChainOverride, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain override file: %w", err)
	}
	override := &ChainOverride{}
	if err := yaml.Unmarshal(contents, override); err != nil {
		return nil, fmt.Errorf("failed to parse chain override file: %w", err)
	}
	return override, nil
}

// Apply overwrites every field the override sets.
func (o *ChainOverride) Apply(cc *ChainConfig) {
	if o.ChainId != 0 {
		cc.ChainId = o.ChainId
	}
	if o.TxExplorerUrl != "" {
		cc.TxExplorerUrl = o.TxExplorerUrl
	}
	if o.StartOfPos != nil {
		cc.StartOfPos = *o.StartOfPos
	}
	if o.RefBlock != nil {
		cc.RefBlock = *o.RefBlock
	}
	if o.StartOfRewards != nil {
		cc.StartOfRewards = *o.StartOfRewards
	}
	if o.StartOfDelegation != nil {
		cc.StartOfDelegation = *o.StartOfDelegation
	}
	if o.Contracts != nil {
		if o.Contracts.Erc20.Address != "" {
			cc.Contracts.Erc20 = o.Contracts.Erc20
		}
		if o.Contracts.Stake.Address != "" {
			cc.Contracts.Stake = o.Contracts.Stake
		}
		if o.Contracts.ContractRegistry.Address != "" {
			cc.Contracts.ContractRegistry = o.Contracts.ContractRegistry
		}
	}
	cc.Contracts.Erc20.Address = strings.ToLower(cc.Contracts.Erc20.Address)
	cc.Contracts.Stake.Address = strings.ToLower(cc.Contracts.Stake.Address)
	cc.Contracts.ContractRegistry.Address = strings.ToLower(cc.Contracts.ContractRegistry.Address)
}
