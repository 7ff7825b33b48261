package room

// MaxLevel is the highest room upgrade the game currently offers.
const MaxLevel = 3

// levelCapacity maps a room level to the number of rack slots it unlocks.
// Level 0 starts with 12 slots, each later upgrade holds 18.
var levelCapacity = map[int]int{
	0: 12,
	1: 18,
	2: 18,
	3: 18,
}

// Capacity returns the rack slot count for a room level. The second return
// value is false for levels the game does not have.
func Capacity(level int) (int, bool) {
	c, ok := levelCapacity[level]
	return c, ok
}

// Miner is a single placed mining unit. Identity for bonus deduplication is
// the (Name, Level) pair; physical copies of the same unit share one bonus
// contribution no matter how many are placed.
type Miner struct {
	Name         string  `yaml:"name" json:"name"`
	Level        int     `yaml:"level" json:"level"`
	Power        float64 `yaml:"power" json:"power"`
	BonusPercent int     `yaml:"bonus_percent" json:"bonus_percent"` // centi-percent, 100 = 1%
	Width        int     `yaml:"width" json:"width,omitempty"`       // floor units, 1 or 2
}

// Rack is an ordered run of miners plus a bonus percent that applies only to
// the miners placed on this rack. ID and Name are optional metadata carried
// through from game exports so breakdown rows stay addressable.
type Rack struct {
	ID           string  `yaml:"id,omitempty" json:"id,omitempty"`
	Name         string  `yaml:"name,omitempty" json:"name,omitempty"`
	Height       int     `yaml:"height" json:"height"` // 3 or 4
	BonusPercent int     `yaml:"bonus" json:"bonus"`   // centi-percent
	Miners       []Miner `yaml:"miners" json:"miners"`
}

// Size returns the rack capacity in width units. A rack has one floor per
// height step and every floor holds two units, so height 3 racks fit 6 units
// and height 4 racks fit 8.
func (r *Rack) Size() int {
	return r.Height * 2
}

// usedWidth sums the floor units occupied by the rack's miners. A miner
// without a recorded width counts as one unit.
func (r *Rack) usedWidth() int {
	used := 0
	for _, m := range r.Miners {
		w := m.Width
		if w == 0 {
			w = 1
		}
		used += w
	}
	return used
}

// Room is one snapshot of a mining room: its upgrade level and the racks
// placed in it, in placement order.
type Room struct {
	Level int    `yaml:"level" json:"level"`
	Racks []Rack `yaml:"racks" json:"racks"`
}

// MinerCount returns the total number of placed miners across all racks.
func (r *Room) MinerCount() int {
	n := 0
	for i := range r.Racks {
		n += len(r.Racks[i].Miners)
	}
	return n
}
