package tests

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/logger"
	"go.uber.org/zap"
)

func GetConfig() *config.Config {
	return &config.Config{
		Chain: config.Chain_Ethereum,
		EthereumRpcConfig: config.EthereumRpcConfig{
			RpcUrl:           "http://localhost:8545",
			ChunkSize:        100000,
			MinChunkSize:     10,
			ParallelRequests: 4,
		},
	}
}

func GetChainConfig() *config.ChainConfig {
	cc, err := config.GetChainConfig(config.Chain_Ethereum)
	if err != nil {
		panic(err)
	}
	return cc
}

func GetLogger() *zap.Logger {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	if err != nil {
		panic(err)
	}
	return l
}

func ReplaceEnv(newValues map[string]string, previousValues *map[string]string) {
	for k, v := range newValues {
		(*previousValues)[k] = os.Getenv(k)
		os.Setenv(k, v)
	}
}

func RestoreEnv(previousValues map[string]string) {
	for k, v := range previousValues {
		os.Setenv(k, v)
	}
}

// LogPosition places a synthetic log on chain.
type LogPosition struct {
	Contract string
	Block    uint64
	TxIndex  uint
	LogIndex uint
	TxHash   string
}

// BuildLog packs a log of a known event the way a node would return it.
// Indexed arguments must be addresses; args holds every input by name.
func BuildLog(kind contractAbi.ContractKind, eventName string, pos LogPosition, args map[string]interface{}) (types.Log, error) {
	a, err := contractAbi.GetAbi(kind)
	if err != nil {
		return types.Log{}, err
	}
	event, ok := a.Events[eventName]
	if !ok {
		return types.Log{}, fmt.Errorf("event %s not found on %s", eventName, kind)
	}

	topics := []common.Hash{event.ID}
	values := make([]interface{}, 0)
	for _, input := range event.Inputs {
		v, ok := args[input.Name]
		if !ok {
			return types.Log{}, fmt.Errorf("missing argument %s for %s", input.Name, eventName)
		}
		if input.Indexed {
			addr, ok := v.(common.Address)
			if !ok {
				return types.Log{}, fmt.Errorf("indexed argument %s must be an address", input.Name)
			}
			topics = append(topics, common.BytesToHash(addr.Bytes()))
			continue
		}
		values = append(values, v)
	}
	data, err := event.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		return types.Log{}, err
	}

	txHash := pos.TxHash
	if txHash == "" {
		txHash = fmt.Sprintf("0x%064x", pos.Block*1000+uint64(pos.TxIndex))
	}

	return types.Log{
		Address:     common.HexToAddress(pos.Contract),
		Topics:      topics,
		Data:        data,
		BlockNumber: pos.Block,
		TxHash:      common.HexToHash(txHash),
		TxIndex:     pos.TxIndex,
		Index:       pos.LogIndex,
	}, nil
}

// MustBuildLog is BuildLog for fixtures known to be valid.
func MustBuildLog(kind contractAbi.ContractKind, eventName string, pos LogPosition, args map[string]interface{}) types.Log {
	lg, err := BuildLog(kind, eventName, pos, args)
	if err != nil {
		panic(err)
	}
	return lg
}

// Wei returns n whole tokens as a contract integer.
func Wei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}
