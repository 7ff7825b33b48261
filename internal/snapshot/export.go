// Package snapshot converts raw game exports into calculator-ready room
// snapshots. An export lists every owned miner, rack, and room in one flat
// payload keyed by placement ids; normalization resolves those placements
// into the nested room shape the calculator consumes.
package snapshot

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/language"

	"github.com/tomokisaito/roompower/internal/gamejson"
)

// Placement ties a placed item to the rack and room holding it.
type Placement struct {
	UserRackID string `json:"user_rack_id"`
	UserRoomID string `json:"user_room_id"`
}

// RawMiner is one miner entry as the game's endpoints serialize it. Several
// fields have historical aliases, kept here so older captures still decode.
type RawMiner struct {
	ID           string                   `json:"_id"`
	Name         gamejson.LocalizedString `json:"name"`
	MinerName    gamejson.LocalizedString `json:"miner_name"`
	Level        gamejson.FlexInt         `json:"level"`
	Power        gamejson.FlexFloat       `json:"power"`
	Hashrate     gamejson.FlexFloat       `json:"hashrate"`
	BonusPercent gamejson.FlexInt         `json:"bonus_percent"`
	Bonus        gamejson.FlexInt         `json:"bonus"`
	Width        gamejson.FlexInt         `json:"width"`
	Placement    *Placement               `json:"placement"`

	// Placed entries embed their catalog record under "miner".
	Detail struct {
		Width gamejson.FlexInt `json:"width"`
	} `json:"miner"`
}

// ResolvedName returns the display name, preferring "name" over the older
// "miner_name" alias. Entries carrying neither resolve to "unknown".
func (m *RawMiner) ResolvedName(langs ...language.Tag) string {
	if s := m.Name.Resolve(langs...); s != "" {
		return s
	}
	if s := m.MinerName.Resolve(langs...); s != "" {
		return s
	}
	return "unknown"
}

// ResolvedPower returns the miner power in Gh/s, falling back to the
// "hashrate" alias when "power" is absent or zero.
func (m *RawMiner) ResolvedPower() float64 {
	if m.Power != 0 {
		return float64(m.Power)
	}
	return float64(m.Hashrate)
}

// ResolvedBonusPercent returns the miner bonus in centi-percent, falling
// back to the "bonus" alias.
func (m *RawMiner) ResolvedBonusPercent() int {
	if m.BonusPercent != 0 {
		return int(m.BonusPercent)
	}
	return int(m.Bonus)
}

// ResolvedWidth returns the floor width in units, checking the nested
// catalog record before defaulting to one.
func (m *RawMiner) ResolvedWidth() int {
	if m.Width != 0 {
		return int(m.Width)
	}
	if m.Detail.Width != 0 {
		return int(m.Detail.Width)
	}
	return 1
}

// RawRack is one owned rack. ID is the owned instance, RackID the catalog
// template it was bought from. The bonus percent hides behind different keys
// depending on the endpoint; pointers keep presence detectable.
type RawRack struct {
	ID          string                   `json:"_id"`
	RackID      string                   `json:"rack_id"`
	Name        gamejson.LocalizedString `json:"name"`
	Height      gamejson.FlexInt         `json:"height"`
	Size        gamejson.FlexInt         `json:"size"`
	Percent     *gamejson.FlexInt        `json:"percent"`
	Bonus       *gamejson.FlexInt        `json:"bonus"`
	RackPercent *gamejson.FlexInt        `json:"rack_percent"`
	Placement   *Placement               `json:"placement"`
}

// ResolvedHeight returns the rack height, deriving it from size when only
// size was recorded (size is height times two).
func (r *RawRack) ResolvedHeight() int {
	if r.Height != 0 {
		return int(r.Height)
	}
	if r.Size != 0 {
		return int(r.Size) / 2
	}
	return 0
}

// ResolvedPercent returns the rack bonus in centi-percent, trying the keys
// exports use in order: percent, bonus, rack_percent. A rack with none of
// them contributes no bonus.
func (r *RawRack) ResolvedPercent() int {
	for _, v := range []*gamejson.FlexInt{r.Percent, r.Bonus, r.RackPercent} {
		if v != nil {
			return int(*v)
		}
	}
	return 0
}

// RawRoom is one room the player unlocked.
type RawRoom struct {
	ID       string `json:"_id"`
	RoomInfo struct {
		Level gamejson.FlexInt `json:"level"`
	} `json:"room_info"`
}

// Export is the full raw payload of a room config fetch.
type Export struct {
	Miners []RawMiner `json:"miners"`
	Racks  []RawRack  `json:"racks"`
	Rooms  []RawRoom  `json:"rooms"`
}

// ParseExport decodes a raw export document, tolerating comment lines and
// the "data" envelope like the room loader does.
func ParseExport(data []byte) (*Export, error) {
	data = gamejson.StripLineComments(data)

	payload, err := gamejson.UnwrapData(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	return parseExportPayload(payload)
}

func parseExportPayload(payload []byte) (*Export, error) {
	var ex Export
	if err := json.Unmarshal(payload, &ex); err != nil {
		return nil, fmt.Errorf("invalid export JSON: %w", err)
	}
	return &ex, nil
}

// Format identifies the layout of a JSON room document.
type Format int

const (
	FormatUnknown Format = iota
	FormatRoom
	FormatExport
)

// DetectFormat sniffs whether an unwrapped payload is an already normalized
// room snapshot or a raw game export. Raw exports list miners and rooms at
// the top level; normalized snapshots nest miners inside their racks.
func DetectFormat(payload []byte) Format {
	var probe struct {
		Level  *int              `json:"level"`
		Miners []json.RawMessage `json:"miners"`
		Rooms  []json.RawMessage `json:"rooms"`
		Racks  []json.RawMessage `json:"racks"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return FormatUnknown
	}

	if probe.Miners != nil || probe.Rooms != nil {
		return FormatExport
	}
	if probe.Level != nil {
		return FormatRoom
	}
	if probe.Racks == nil {
		return FormatUnknown
	}
	if len(probe.Racks) == 0 {
		return FormatRoom
	}

	var rackProbe struct {
		Miners []json.RawMessage `json:"miners"`
	}
	if err := json.Unmarshal(probe.Racks[0], &rackProbe); err != nil {
		return FormatUnknown
	}
	if rackProbe.Miners != nil {
		return FormatRoom
	}
	return FormatExport
}
