package managementService

import (
	"sort"
	"strings"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/model"
)

// OverviewApy is the annual staking reward rate, in percent mille, reported with the overview.
const OverviewApy = 4000

func normalizeEthAddress(addr string) string {
	return "0x" + strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X"))
}

// GuardiansFromStatus lists the registered guardians of a status.
func GuardiansFromStatus(s *Status) []model.Guardian {
	out := make([]model.Guardian, 0, len(s.Payload.Guardians))
	for _, g := range s.Payload.Guardians {
		out = append(out, model.Guardian{
			Name:           g.Name,
			Address:        normalizeEthAddress(g.EthAddress),
			Website:        g.Website,
			EffectiveStake: g.EffectiveStake,
			Ip:             g.Ip,
		})
	}
	return out
}

// OverviewFromStatus summarizes the network at block. Committee slices are newest first.
func OverviewFromStatus(s *Status, block config.BlockRef) *model.PosOverview {
	names := make(map[string]string, len(s.Payload.Guardians))
	totalStake := 0.0
	for _, g := range s.Payload.Guardians {
		totalStake += g.DelegatedStake
		names[normalizeEthAddress(g.EthAddress)] = g.Name
	}

	slices := make([]model.PosOverviewSlice, 0, len(s.Payload.CommitteeEvents))
	for _, ev := range s.Payload.CommitteeEvents {
		data := make([]model.PosOverviewData, 0, len(ev.Committee))
		for _, m := range ev.Committee {
			addr := normalizeEthAddress(m.EthAddress)
			data = append(data, model.PosOverviewData{
				Name:           names[addr],
				Address:        addr,
				EffectiveStake: m.EffectiveStake,
				Weight:         m.Weight,
			})
		}
		slices = append(slices, model.PosOverviewSlice{
			BlockNumber: ev.RefBlock,
			BlockTime:   ev.RefTime,
			Data:        data,
		})
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].BlockTime > slices[j].BlockTime
	})

	return &model.PosOverview{
		BlockNumber: block.Number,
		BlockTime:   block.Time,
		TotalStake:  totalStake,
		NGuardians:  len(s.Payload.Guardians),
		NCommittee:  len(s.Payload.CurrentCommittee),
		NCandidates: len(s.Payload.CurrentCandidates),
		Apy:         OverviewApy,
		Slices:      slices,
	}
}
