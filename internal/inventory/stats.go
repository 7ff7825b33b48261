package inventory

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MinerStats aggregates the miner side of a collection. BonusPercentTotal
// counts each (name, level) pair once, matching how the room calculation
// deduplicates miner bonuses.
type MinerStats struct {
	Count             int         `yaml:"count" json:"count"`
	UniquePairs       int         `yaml:"unique_pairs" json:"unique_pairs"`
	TotalPower        float64     `yaml:"total_power" json:"total_power"`
	MeanPower         float64     `yaml:"mean_power" json:"mean_power"`
	MedianPower       float64     `yaml:"median_power" json:"median_power"`
	P90Power          float64     `yaml:"p90_power" json:"p90_power"`
	MaxPower          float64     `yaml:"max_power" json:"max_power"`
	BonusPercentTotal int         `yaml:"bonus_percent_total" json:"bonus_percent_total"`
	WidthCounts       map[int]int `yaml:"width_counts" json:"width_counts"`
}

// RackHeightStats describes the racks of one height.
type RackHeightStats struct {
	Count       int     `yaml:"count" json:"count"`
	MeanPercent float64 `yaml:"mean_percent" json:"mean_percent"`
	MaxPercent  int     `yaml:"max_percent" json:"max_percent"`
}

// RackStats aggregates the rack side of a collection.
type RackStats struct {
	Count    int                     `yaml:"count" json:"count"`
	ByHeight map[int]RackHeightStats `yaml:"by_height" json:"by_height"`
}

// Stats bundles both sides of a collection.
type Stats struct {
	Miners MinerStats `yaml:"miners" json:"miners"`
	Racks  RackStats  `yaml:"racks" json:"racks"`
}

// ComputeStats aggregates a mixed entry collection.
func ComputeStats(entries []Entry) Stats {
	return Stats{
		Miners: ComputeMinerStats(entries),
		Racks:  ComputeRackStats(entries),
	}
}

// ComputeMinerStats aggregates the miners in entries, ignoring racks.
func ComputeMinerStats(entries []Entry) MinerStats {
	s := MinerStats{WidthCounts: make(map[int]int)}

	type pair struct {
		name  string
		level int
	}
	seen := make(map[pair]struct{})

	powers := make([]float64, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.Kind != KindMiner {
			continue
		}
		s.Count++
		s.TotalPower += e.Power
		powers = append(powers, e.Power)

		width := e.Width
		if width == 0 {
			width = 1
		}
		s.WidthCounts[width]++

		key := pair{name: e.Name, level: e.Level}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			s.BonusPercentTotal += e.BonusPercent
		}
	}
	s.UniquePairs = len(seen)

	if len(powers) == 0 {
		return s
	}
	sort.Float64s(powers)
	s.MeanPower = stat.Mean(powers, nil)
	s.MedianPower = stat.Quantile(0.5, stat.Empirical, powers, nil)
	s.P90Power = stat.Quantile(0.9, stat.Empirical, powers, nil)
	s.MaxPower = powers[len(powers)-1]
	return s
}

// ComputeRackStats aggregates the racks in entries, grouped by height.
func ComputeRackStats(entries []Entry) RackStats {
	s := RackStats{ByHeight: make(map[int]RackHeightStats)}

	percents := make(map[int][]float64)
	for i := range entries {
		e := &entries[i]
		if e.Kind != KindRack {
			continue
		}
		s.Count++
		percents[e.Height] = append(percents[e.Height], float64(e.BonusPercent))
	}

	for height, vals := range percents {
		hs := RackHeightStats{
			Count:       len(vals),
			MeanPercent: stat.Mean(vals, nil),
		}
		max := vals[0]
		for _, v := range vals[1:] {
			if v > max {
				max = v
			}
		}
		hs.MaxPercent = int(max)
		s.ByHeight[height] = hs
	}
	return s
}
