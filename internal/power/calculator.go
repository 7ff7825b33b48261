package power

import (
	"github.com/tomokisaito/roompower/internal/room"
)

// centiPercentDivisor converts centi-percent bonus units into a fraction of
// the whole: 100 units = 1% = 0.01.
const centiPercentDivisor = 10000.0

// Breakdown is the full result of one room computation. FinalPower is always
// the literal sum of RawPower, MinerBonusPower, and RackBonusPowerTotal.
type Breakdown struct {
	RawPower               float64         `yaml:"raw_power" json:"raw_power"`
	MinerBonusPercentTotal int             `yaml:"miner_bonus_percent_total" json:"miner_bonus_percent_total"`
	MinerBonusPower        float64         `yaml:"miner_bonus_power" json:"miner_bonus_power"`
	RackBonusPowers        []float64       `yaml:"rack_bonus_powers" json:"rack_bonus_powers"`
	RackBonusPowerTotal    float64         `yaml:"rack_bonus_power_total" json:"rack_bonus_power_total"`
	FinalPower             float64         `yaml:"final_power" json:"final_power"`
	Racks                  []RackBreakdown `yaml:"racks" json:"racks"`
}

// RackBreakdown is the per-rack detail behind one entry of RackBonusPowers.
type RackBreakdown struct {
	ID           string  `yaml:"id,omitempty" json:"id,omitempty"`
	Name         string  `yaml:"name,omitempty" json:"name,omitempty"`
	RawPower     float64 `yaml:"raw_power" json:"raw_power"`
	BonusPercent int     `yaml:"bonus_percent" json:"bonus_percent"`
	BonusPower   float64 `yaml:"bonus_power" json:"bonus_power"`
	MinerCount   int     `yaml:"miner_count" json:"miner_count"`
}

// minerKey identifies a miner for bonus deduplication. Copies of the same
// unit at the same level share one key.
type minerKey struct {
	name  string
	level int
}

// Compute derives the power breakdown for one room snapshot.
//
// Raw power sums every placed miner. Miner bonuses are deduplicated by
// (name, level): the first copy encountered in rack then slot order
// contributes its bonus percent, later copies contribute nothing, even when
// their values diverge. The deduplicated total applies to the whole raw
// power. Each rack's own bonus percent applies only to the raw power of the
// miners on that rack. Missing bonus values count as zero and an empty room
// yields an all-zero breakdown.
//
// The computation is pure: it never mutates the snapshot and holds no state
// between calls, so concurrent callers need no coordination.
func Compute(r *room.Room) Breakdown {
	b := Breakdown{
		RackBonusPowers: []float64{},
		Racks:           []RackBreakdown{},
	}
	if r == nil {
		return b
	}

	seen := make(map[minerKey]struct{}, r.MinerCount())

	for i := range r.Racks {
		rack := &r.Racks[i]

		rackRaw := 0.0
		for _, m := range rack.Miners {
			b.RawPower += m.Power
			rackRaw += m.Power

			key := minerKey{name: m.Name, level: m.Level}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			b.MinerBonusPercentTotal += m.BonusPercent
		}

		rackBonus := rackRaw * float64(rack.BonusPercent) / centiPercentDivisor
		b.RackBonusPowers = append(b.RackBonusPowers, rackBonus)
		b.RackBonusPowerTotal += rackBonus
		b.Racks = append(b.Racks, RackBreakdown{
			ID:           rack.ID,
			Name:         rack.Name,
			RawPower:     rackRaw,
			BonusPercent: rack.BonusPercent,
			BonusPower:   rackBonus,
			MinerCount:   len(rack.Miners),
		})
	}

	b.MinerBonusPower = b.RawPower * float64(b.MinerBonusPercentTotal) / centiPercentDivisor
	b.FinalPower = b.RawPower + b.MinerBonusPower + b.RackBonusPowerTotal
	return b
}

// UniqueBonusMiners reports how many distinct (name, level) pairs the room
// contains, which is the number of miner bonus contributions Compute counts.
func UniqueBonusMiners(r *room.Room) int {
	if r == nil {
		return 0
	}
	seen := make(map[minerKey]struct{}, r.MinerCount())
	for i := range r.Racks {
		for _, m := range r.Racks[i].Miners {
			seen[minerKey{name: m.Name, level: m.Level}] = struct{}{}
		}
	}
	return len(seen)
}
