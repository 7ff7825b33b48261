package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/tomokisaito/roompower/internal/room"
)

// sampleExport is a trimmed config capture: two rooms at different levels,
// racks placed in both plus one never placed, and miners in every placement
// state the endpoints produce.
const sampleExport = `{
  "rooms": [
    {"_id": "room-a", "room_info": {"level": 1}},
    {"_id": "room-b", "room_info": {"level": 2}}
  ],
  "racks": [
    {"_id": "rack-1", "rack_id": "cat-1", "name": "left", "height": 3, "percent": 200, "placement": {"user_room_id": "room-b"}},
    {"_id": "rack-2", "size": 8, "bonus": "450", "placement": {"user_room_id": "room-b"}},
    {"_id": "rack-old", "height": 3, "placement": {"user_room_id": "room-a"}},
    {"_id": "rack-loose", "height": 3}
  ],
  "miners": [
    {"_id": "m1", "name": "Solar", "level": 1, "power": 100, "bonus_percent": 100, "width": 2, "placement": {"user_rack_id": "rack-1", "user_room_id": "room-b"}},
    {"_id": "m2", "miner_name": {"en": "Fan", "fr": "Ventilateur"}, "level": 1, "hashrate": "50", "bonus": 50, "miner": {"width": 1}, "placement": {"user_rack_id": "cat-1", "user_room_id": "room-b"}},
    {"_id": "m3", "name": "Ghost", "power": 10, "placement": {"user_rack_id": "rack-old", "user_room_id": "room-a"}},
    {"_id": "m4", "name": "Shelf", "power": 10},
    {"_id": "m5", "name": "Crate", "power": 10, "placement": {"user_rack_id": "", "user_room_id": ""}}
  ]
}`

func parseSample(t *testing.T) *Export {
	t.Helper()
	ex, err := ParseExport([]byte(sampleExport))
	require.NoError(t, err)
	return ex
}

// TestNormalize tests resolving a raw export into the highest level room.
func TestNormalize(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(zap.NewNop(), Options{})
	r, rep, err := n.Normalize(parseSample(t))
	require.NoError(t, err)

	assert.Equal(t, 2, r.Level)
	require.Len(t, r.Racks, 2)

	left := r.Racks[0]
	assert.Equal(t, "rack-1", left.ID)
	assert.Equal(t, "left", left.Name)
	assert.Equal(t, 3, left.Height)
	assert.Equal(t, 200, left.BonusPercent)
	require.Len(t, left.Miners, 2)

	// m1 resolves through the owned rack id, m2 through the catalog id.
	assert.Equal(t, room.Miner{Name: "Solar", Level: 1, Power: 100, BonusPercent: 100, Width: 2}, left.Miners[0])
	assert.Equal(t, room.Miner{Name: "Fan", Level: 1, Power: 50, BonusPercent: 50, Width: 1}, left.Miners[1])

	// rack-2 recorded only a size and the bonus under its older key.
	tall := r.Racks[1]
	assert.Equal(t, 4, tall.Height)
	assert.Equal(t, 450, tall.BonusPercent)
	assert.Empty(t, tall.Miners)

	require.NotNil(t, rep)
	assert.Equal(t, &Report{
		RoomLevel:      2,
		RacksKept:      2,
		RacksDropped:   2,
		MinersPlaced:   2,
		MinersUnplaced: 2,
		MinersOutside:  1,
	}, rep)
}

// TestNormalizeLanguagePreference tests localized name resolution.
func TestNormalizeLanguagePreference(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(zap.NewNop(), Options{Languages: []language.Tag{language.French}})
	r, _, err := n.Normalize(parseSample(t))
	require.NoError(t, err)

	require.Len(t, r.Racks, 2)
	require.Len(t, r.Racks[0].Miners, 2)
	assert.Equal(t, "Ventilateur", r.Racks[0].Miners[1].Name)
}

// TestNormalizeExplicitLevel tests pinning the room level instead of taking
// the highest.
func TestNormalizeExplicitLevel(t *testing.T) {
	t.Parallel()

	level := 1
	n := NewNormalizer(zap.NewNop(), Options{RoomLevel: &level})
	r, rep, err := n.Normalize(parseSample(t))
	require.NoError(t, err)

	assert.Equal(t, 1, r.Level)
	require.Len(t, r.Racks, 1)
	assert.Equal(t, "rack-old", r.Racks[0].ID)
	require.Len(t, r.Racks[0].Miners, 1)
	assert.Equal(t, "Ghost", r.Racks[0].Miners[0].Name)

	assert.Equal(t, 1, rep.RoomLevel)
	assert.Equal(t, 1, rep.MinersPlaced)
	assert.Equal(t, 3, rep.RacksDropped)
}

// TestNormalizeGeneratesRackIDs tests id backfill for racks exported without one.
func TestNormalizeGeneratesRackIDs(t *testing.T) {
	t.Parallel()

	input := `{
	  "rooms": [{"_id": "room-a", "room_info": {"level": 0}}],
	  "racks": [{"rack_id": "cat-9", "height": 3, "placement": {"user_room_id": "room-a"}}],
	  "miners": [{"_id": "m1", "name": "Solar", "power": 10, "placement": {"user_rack_id": "cat-9", "user_room_id": "room-a"}}]
	}`
	ex, err := ParseExport([]byte(input))
	require.NoError(t, err)

	n := NewNormalizer(zap.NewNop(), Options{})
	r, rep, err := n.Normalize(ex)
	require.NoError(t, err)

	require.Len(t, r.Racks, 1)
	assert.NotEmpty(t, r.Racks[0].ID)
	assert.Equal(t, 1, rep.GeneratedIDs)

	// Placement still resolves through the catalog id.
	require.Len(t, r.Racks[0].Miners, 1)
	assert.Equal(t, "Solar", r.Racks[0].Miners[0].Name)
}

// TestNormalizeWithoutRoomList tests the fallback when an export omits rooms.
func TestNormalizeWithoutRoomList(t *testing.T) {
	t.Parallel()

	input := `{
	  "racks": [
	    {"_id": "rack-1", "height": 3, "placement": {"user_room_id": "somewhere"}},
	    {"_id": "rack-2", "height": 4}
	  ],
	  "miners": []
	}`
	ex, err := ParseExport([]byte(input))
	require.NoError(t, err)

	n := NewNormalizer(zap.NewNop(), Options{})
	r, rep, err := n.Normalize(ex)
	require.NoError(t, err)

	// Every placed rack survives and the level defaults to the maximum.
	assert.Equal(t, room.MaxLevel, r.Level)
	assert.Equal(t, 1, rep.RacksKept)
	assert.Equal(t, 1, rep.RacksDropped)
}

// TestNormalizeNilExport tests the nil guard.
func TestNormalizeNilExport(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(zap.NewNop(), Options{})
	_, _, err := n.Normalize(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be nil")
}

// TestLoadRoom tests loading both document formats from disk.
func TestLoadRoom(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(zap.NewNop(), Options{})

	t.Run("normalized snapshot passes through", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "room.json")
		content := `{"level": 1, "racks": [{"height": 3, "bonus": 100, "miners": [{"name": "a", "level": 1, "power": 10, "bonus_percent": 0}]}]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		r, rep, err := n.LoadRoom(path)
		require.NoError(t, err)
		assert.Nil(t, rep)
		assert.Equal(t, 1, r.Level)
		require.Len(t, r.Racks, 1)
	})

	t.Run("raw export normalizes", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "export.json")
		require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0644))

		r, rep, err := n.LoadRoom(path)
		require.NoError(t, err)
		require.NotNil(t, rep)
		assert.Equal(t, 2, r.Level)
		assert.Equal(t, 2, rep.MinersPlaced)
	})

	t.Run("unrecognized document", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "odd.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"foo": 1}`), 0644))

		_, _, err := n.LoadRoom(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "neither a room snapshot nor a raw export")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := n.LoadRoom(filepath.Join(t.TempDir(), "gone.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read room file")
	})
}
