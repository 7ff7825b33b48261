package snapshot

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/tomokisaito/roompower/internal/gamejson"
	"github.com/tomokisaito/roompower/internal/room"
)

// Options steers normalization.
type Options struct {
	// RoomLevel selects which room upgrade level to keep. Nil picks the
	// highest level present in the export.
	RoomLevel *int

	// Languages orders the resolution of localized unit names. Empty means
	// English first.
	Languages []language.Tag
}

// Report summarizes what one normalization kept and dropped.
type Report struct {
	RoomLevel      int `yaml:"room_level" json:"room_level"`
	RacksKept      int `yaml:"racks_kept" json:"racks_kept"`
	RacksDropped   int `yaml:"racks_dropped" json:"racks_dropped"`
	MinersPlaced   int `yaml:"miners_placed" json:"miners_placed"`
	MinersUnplaced int `yaml:"miners_unplaced" json:"miners_unplaced"`
	MinersOutside  int `yaml:"miners_outside" json:"miners_outside"`
	GeneratedIDs   int `yaml:"generated_ids" json:"generated_ids"`
}

// Normalizer turns raw exports into room snapshots: racks filtered to one
// room level, miners resolved onto their racks by placement id, names
// flattened to plain strings, missing rack ids filled in.
type Normalizer struct {
	logger *zap.Logger
	opts   Options
}

// NewNormalizer creates a normalizer with the given options.
func NewNormalizer(logger *zap.Logger, opts Options) *Normalizer {
	return &Normalizer{
		logger: logger.Named("normalizer"),
		opts:   opts,
	}
}

// LoadRoom reads a room document of either format from disk. Raw exports
// are normalized in memory and described by the returned report; already
// normalized snapshots pass through with a nil report.
func (n *Normalizer) LoadRoom(path string) (*room.Room, *Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read room file: %w", err)
	}

	data = gamejson.StripLineComments(data)
	payload, err := gamejson.UnwrapData(data)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	switch DetectFormat(payload) {
	case FormatRoom:
		r, err := room.Parse(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse room snapshot %s: %w", path, err)
		}
		n.logger.Debug("Loaded normalized room snapshot",
			zap.String("path", path),
			zap.Int("racks", len(r.Racks)),
		)
		return r, nil, nil

	case FormatExport:
		ex, err := parseExportPayload(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse export %s: %w", path, err)
		}
		r, rep, err := n.Normalize(ex)
		if err != nil {
			return nil, nil, err
		}
		return r, rep, nil

	default:
		return nil, nil, fmt.Errorf("%s is neither a room snapshot nor a raw export", path)
	}
}

// Normalize resolves a raw export into one room snapshot. Racks outside the
// selected room level and miners without a resolvable rack are dropped; the
// report carries the counts.
func (n *Normalizer) Normalize(export *Export) (*room.Room, *Report, error) {
	if export == nil {
		return nil, nil, fmt.Errorf("export must not be nil")
	}

	level, roomIDs := n.selectRoom(export)
	rep := &Report{RoomLevel: level}

	// Racks keep export order. The index maps both the owned id and the
	// catalog id onto the kept rack, first match winning, so miner
	// placements resolve the same way they do in the game's own payloads.
	racks := make([]room.Rack, 0, len(export.Racks))
	rackIndex := make(map[string]int)

	for i := range export.Racks {
		raw := &export.Racks[i]

		if raw.Placement == nil || raw.Placement.UserRoomID == "" {
			rep.RacksDropped++
			continue
		}
		if roomIDs != nil && !roomIDs[raw.Placement.UserRoomID] {
			rep.RacksDropped++
			continue
		}

		rk := room.Rack{
			ID:           raw.ID,
			Name:         raw.Name.Resolve(n.opts.Languages...),
			Height:       raw.ResolvedHeight(),
			BonusPercent: raw.ResolvedPercent(),
			Miners:       []room.Miner{},
		}
		if rk.ID == "" {
			rk.ID = uuid.NewString()
			rep.GeneratedIDs++
		}

		idx := len(racks)
		racks = append(racks, rk)
		if raw.ID != "" {
			if _, dup := rackIndex[raw.ID]; !dup {
				rackIndex[raw.ID] = idx
			}
		}
		if raw.RackID != "" {
			if _, dup := rackIndex[raw.RackID]; !dup {
				rackIndex[raw.RackID] = idx
			}
		}
	}
	rep.RacksKept = len(racks)

	for i := range export.Miners {
		m := &export.Miners[i]

		if m.Placement == nil || m.Placement.UserRackID == "" {
			rep.MinersUnplaced++
			continue
		}
		idx, ok := rackIndex[m.Placement.UserRackID]
		if !ok {
			rep.MinersOutside++
			continue
		}

		racks[idx].Miners = append(racks[idx].Miners, n.convertMiner(m))
		rep.MinersPlaced++
	}

	n.logger.Info("Normalized room export",
		zap.Int("room_level", rep.RoomLevel),
		zap.Int("racks_kept", rep.RacksKept),
		zap.Int("racks_dropped", rep.RacksDropped),
		zap.Int("miners_placed", rep.MinersPlaced),
		zap.Int("miners_unplaced", rep.MinersUnplaced),
		zap.Int("miners_outside", rep.MinersOutside),
	)

	return &room.Room{Level: level, Racks: racks}, rep, nil
}

// selectRoom decides which room level the snapshot represents and which room
// ids belong to it. A nil id set means every placed rack is kept.
func (n *Normalizer) selectRoom(export *Export) (int, map[string]bool) {
	if n.opts.RoomLevel != nil {
		level := *n.opts.RoomLevel
		ids := roomIDsAtLevel(export.Rooms, level)
		if len(ids) == 0 {
			n.logger.Warn("No room at requested level in export", zap.Int("level", level))
		}
		return level, ids
	}

	if len(export.Rooms) == 0 {
		n.logger.Warn("Export carries no room list, keeping every placed rack",
			zap.Int("assumed_level", room.MaxLevel))
		return room.MaxLevel, nil
	}

	level := 0
	for i := range export.Rooms {
		if l := int(export.Rooms[i].RoomInfo.Level); l > level {
			level = l
		}
	}
	return level, roomIDsAtLevel(export.Rooms, level)
}

func roomIDsAtLevel(rooms []RawRoom, level int) map[string]bool {
	ids := make(map[string]bool)
	for i := range rooms {
		if int(rooms[i].RoomInfo.Level) == level && rooms[i].ID != "" {
			ids[rooms[i].ID] = true
		}
	}
	return ids
}

func (n *Normalizer) convertMiner(m *RawMiner) room.Miner {
	return room.Miner{
		Name:         m.ResolvedName(n.opts.Languages...),
		Level:        int(m.Level),
		Power:        m.ResolvedPower(),
		BonusPercent: m.ResolvedBonusPercent(),
		Width:        m.ResolvedWidth(),
	}
}
