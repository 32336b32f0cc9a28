package posDataService

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/internal/tests"
	"github.com/orbs-network/pos-analytics/internal/types/numbers"
	"github.com/orbs-network/pos-analytics/pkg/blockTime"
	"github.com/orbs-network/pos-analytics/pkg/clients/managementService"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/orbs-network/pos-analytics/pkg/metrics"
	"github.com/orbs-network/pos-analytics/pkg/stateReader"
	"github.com/orbs-network/pos-analytics/pkg/utils"
	"github.com/shopspring/decimal"
)

const (
	stakeContract   = "0x01d59af68e2dcb44e04c50e05f62e7043f2656c3"
	rewardsContract = "0x5000000000000000000000000000000000000005"
	feesContract    = "0x6000000000000000000000000000000000000006"
	delegContract   = "0x7000000000000000000000000000000000000007"

	guardianA = "0xaaaa000000000000000000000000000000000001"
	guardianB = "0xbbbb000000000000000000000000000000000002"
	delegator = "0xdddd000000000000000000000000000000000004"
	other     = "0xeeee000000000000000000000000000000000005"
)

var currentBlock = config.BlockRef{Number: 11300000, Time: 1700000000}

type fakeBlocks struct {
	block config.BlockRef
	err   error
}

func (f *fakeBlocks) GetCurrentBlock(ctx context.Context) (config.BlockRef, error) {
	return f.block, f.err
}

type readCall struct {
	Kind      contractAbi.ContractKind
	Topics    [][]common.Hash
	FromBlock uint64
	ToBlock   uint64
}

// fakeEventReader serves events the way a log filter would, matching topic0
// and the first indexed address.
type fakeEventReader struct {
	mu     sync.Mutex
	byKind map[contractAbi.ContractKind][]events.Event
	calls  []readCall
	err    error
}

func newFakeEventReader() *fakeEventReader {
	return &fakeEventReader{byKind: make(map[contractAbi.ContractKind][]events.Event)}
}

func (f *fakeEventReader) add(kind contractAbi.ContractKind, evs ...events.Event) {
	f.byKind[kind] = append(f.byKind[kind], evs...)
}

func (f *fakeEventReader) ReadEvents(ctx context.Context, kind contractAbi.ContractKind, topics [][]common.Hash, fromBlock uint64, toBlock uint64) ([]events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, readCall{Kind: kind, Topics: topics, FromBlock: fromBlock, ToBlock: toBlock})
	if f.err != nil {
		return nil, f.err
	}

	out := make([]events.Event, 0)
	for _, e := range f.byKind[kind] {
		h := e.Header()
		if h.BlockNumber < fromBlock || h.BlockNumber > toBlock {
			continue
		}
		if !matchesTopics(kind, e, topics) {
			continue
		}
		out = append(out, e)
	}
	return events.SortAscending(out), nil
}

// callsFor returns the reads whose address filter is address.
func (f *fakeEventReader) callsFor(address string) []readCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	topic := utils.AddressToTopic(address)
	out := make([]readCall, 0)
	for _, c := range f.calls {
		if len(c.Topics) > 1 && containsHash(c.Topics[1], topic) {
			out = append(out, c)
		}
	}
	return out
}

func containsHash(list []common.Hash, h common.Hash) bool {
	for _, x := range list {
		if x == h {
			return true
		}
	}
	return false
}

func matchesTopics(kind contractAbi.ContractKind, e events.Event, topics [][]common.Hash) bool {
	if len(topics) > 0 && len(topics[0]) > 0 {
		if !containsHash(topics[0], contractAbi.MustEventTopic(kind, e.Header().Kind.String())) {
			return false
		}
	}
	if len(topics) > 1 && len(topics[1]) > 0 {
		addr := indexedAddress(e)
		if addr == "" || !containsHash(topics[1], utils.AddressToTopic(addr)) {
			return false
		}
	}
	return true
}

func indexedAddress(e events.Event) string {
	switch ev := e.(type) {
	case *events.StakeChanged:
		return ev.StakeOwner
	case *events.Delegated:
		return ev.From
	case *events.DelegatedStakeChanged:
		return ev.Guardian
	case *events.GuardianRewardAssigned:
		return ev.Guardian
	case *events.DelegatorRewardAssigned:
		return ev.Delegator
	case *events.StakingRewardsClaimed:
		return ev.Addr
	case *events.FeeBootstrapAssigned:
		return ev.Guardian
	case *events.FeeBootstrapWithdrawn:
		return ev.Guardian
	}
	return ""
}

type fakeStateReader struct {
	delegators map[string]*stateReader.DelegatorState
	guardians  map[string]*stateReader.GuardianState
	err        error
}

func (f *fakeStateReader) ReadDelegator(ctx context.Context, address string, block config.BlockRef) (*stateReader.DelegatorState, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.delegators[address]
	if !ok {
		return nil, fmt.Errorf("no delegator %s", address)
	}
	s.Block = block
	return s, nil
}

func (f *fakeStateReader) ReadGuardian(ctx context.Context, address string, block config.BlockRef) (*stateReader.GuardianState, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.guardians[address]
	if !ok {
		return nil, fmt.Errorf("no guardian %s", address)
	}
	s.Block = block
	return s, nil
}

type fakeBalances map[string]*big.Int

func (f fakeBalances) BalanceOf(ctx context.Context, address string, block uint64) (*big.Int, error) {
	v, ok := f[address]
	if !ok {
		return big.NewInt(0), nil
	}
	return v, nil
}

type fakeNetwork struct {
	status *managementService.Status
	err    error
	whats  []string
}

func (f *fakeNetwork) FetchFirstStatus(ctx context.Context, urls []string, what string) (*managementService.Status, error) {
	f.whats = append(f.whats, what)
	return f.status, f.err
}

type fixture struct {
	reader  *fakeEventReader
	state   *fakeStateReader
	network *fakeNetwork
	blocks  *fakeBlocks
	service *PosDataService
}

func newFixture(balances fakeBalances) *fixture {
	f := &fixture{
		reader: newFakeEventReader(),
		state: &fakeStateReader{
			delegators: make(map[string]*stateReader.DelegatorState),
			guardians:  make(map[string]*stateReader.GuardianState),
		},
		network: &fakeNetwork{},
		blocks:  &fakeBlocks{block: currentBlock},
	}
	f.service = NewPosDataService(
		f.blocks,
		f.reader,
		f.state,
		balances,
		f.network,
		blockTime.NewClock(tests.GetChainConfig()),
		tests.GetConfig(),
		metrics.NewNoopMetricsSink(),
		tests.GetLogger(),
	)
	return f
}

func tok(n int64) decimal.Decimal {
	return numbers.Tokens(n)
}

func txHash(block uint64, logIndex uint64) string {
	return fmt.Sprintf("0x%064x", block*100+logIndex)
}

func meta(kind events.Kind, contract string, block uint64, logIndex uint64) events.Meta {
	return events.Meta{
		Kind:            kind,
		Contract:        contract,
		BlockNumber:     block,
		LogIndex:        logIndex,
		TransactionHash: txHash(block, logIndex),
	}
}

func stakeEvent(kind events.Kind, owner string, block uint64, amount int64) *events.StakeChanged {
	return &events.StakeChanged{Meta: meta(kind, stakeContract, block, 0), StakeOwner: owner, Amount: tok(amount)}
}

func delegatedStakeChanged(block uint64, guardian string, d string, self, all, contributed int64) *events.DelegatedStakeChanged {
	return &events.DelegatedStakeChanged{
		Meta:                      meta(events.Kind_DelegatedStakeChanged, delegContract, block, 0),
		Guardian:                  guardian,
		SelfDelegatedStake:        tok(self),
		DelegatedStake:            tok(all),
		Delegator:                 d,
		DelegatorContributedStake: tok(contributed),
	}
}

func gra(guardian string, block uint64, amount, total int64) *events.GuardianRewardAssigned {
	return &events.GuardianRewardAssigned{
		Meta:         meta(events.Kind_GuardianRewardAssigned, rewardsContract, block, 0),
		Guardian:     guardian,
		Amount:       tok(amount),
		TotalAwarded: tok(total),
	}
}

func dra(d string, guardian string, block uint64, amount, total int64) *events.DelegatorRewardAssigned {
	return &events.DelegatorRewardAssigned{
		Meta:         meta(events.Kind_DelegatorRewardAssigned, rewardsContract, block, 1),
		Delegator:    d,
		Guardian:     guardian,
		Amount:       tok(amount),
		TotalAwarded: tok(total),
	}
}

func claim(addr string, block uint64, delegatorSide, guardianSide int64) *events.StakingRewardsClaimed {
	return &events.StakingRewardsClaimed{
		Meta:                    meta(events.Kind_StakingRewardsClaimed, rewardsContract, block, 2),
		Addr:                    addr,
		ClaimedDelegatorRewards: tok(delegatorSide),
		ClaimedGuardianRewards:  tok(guardianSide),
	}
}
