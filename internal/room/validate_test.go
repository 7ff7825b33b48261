package room

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRoom() *Room {
	return &Room{
		Level: 1,
		Racks: []Rack{
			{
				Height:       3,
				BonusPercent: 200,
				Miners: []Miner{
					{Name: "a", Level: 1, Power: 100, BonusPercent: 100, Width: 1},
					{Name: "b", Level: 1, Power: 50, BonusPercent: 50, Width: 2},
				},
			},
		},
	}
}

// TestValidate tests placement rules and the reported field paths.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(r *Room)
		wantPath string
		wantMsg  string
	}{
		{
			name:   "valid room",
			mutate: func(r *Room) {},
		},
		{
			name:     "level above max",
			mutate:   func(r *Room) { r.Level = 4 },
			wantPath: "level",
			wantMsg:  "between 0 and 3",
		},
		{
			name:     "negative level",
			mutate:   func(r *Room) { r.Level = -1 },
			wantPath: "level",
		},
		{
			name: "too many racks for level",
			mutate: func(r *Room) {
				r.Level = 0
				for len(r.Racks) <= 12 {
					r.Racks = append(r.Racks, Rack{Height: 3})
				}
			},
			wantPath: "racks",
			wantMsg:  "at most 12",
		},
		{
			name:     "bad rack height",
			mutate:   func(r *Room) { r.Racks[0].Height = 5 },
			wantPath: "racks[0].height",
			wantMsg:  "must be 3 or 4",
		},
		{
			name:     "negative rack bonus",
			mutate:   func(r *Room) { r.Racks[0].BonusPercent = -1 },
			wantPath: "racks[0].bonus",
		},
		{
			name:     "empty miner name",
			mutate:   func(r *Room) { r.Racks[0].Miners[1].Name = "" },
			wantPath: "racks[0].miners[1].name",
			wantMsg:  "must not be empty",
		},
		{
			name:     "negative miner level",
			mutate:   func(r *Room) { r.Racks[0].Miners[0].Level = -2 },
			wantPath: "racks[0].miners[0].level",
		},
		{
			name:     "negative power",
			mutate:   func(r *Room) { r.Racks[0].Miners[0].Power = -5 },
			wantPath: "racks[0].miners[0].power",
		},
		{
			name:     "NaN power",
			mutate:   func(r *Room) { r.Racks[0].Miners[0].Power = math.NaN() },
			wantPath: "racks[0].miners[0].power",
			wantMsg:  "finite",
		},
		{
			name:     "infinite power",
			mutate:   func(r *Room) { r.Racks[0].Miners[0].Power = math.Inf(1) },
			wantPath: "racks[0].miners[0].power",
		},
		{
			name:     "negative miner bonus",
			mutate:   func(r *Room) { r.Racks[0].Miners[0].BonusPercent = -100 },
			wantPath: "racks[0].miners[0].bonus_percent",
		},
		{
			name:     "bad width",
			mutate:   func(r *Room) { r.Racks[0].Miners[0].Width = 3 },
			wantPath: "racks[0].miners[0].width",
			wantMsg:  "must be 1 or 2",
		},
		{
			name: "rack overflows its width units",
			mutate: func(r *Room) {
				for len(r.Racks[0].Miners) < 7 {
					r.Racks[0].Miners = append(r.Racks[0].Miners, Miner{Name: "pad", Power: 1, Width: 1})
				}
			},
			wantPath: "racks[0].miners",
			wantMsg:  "fits 6",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := validRoom()
			tt.mutate(r)

			err := NewValidator().Validate(r)
			if tt.wantPath == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.wantPath, fieldErr.Path)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

// TestValidateNilRoom tests the nil guard.
func TestValidateNilRoom(t *testing.T) {
	t.Parallel()

	err := NewValidator().Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room: must not be nil")
}

// TestValidateZeroWidthCountsAsOne tests that unrecorded widths still fill slots.
func TestValidateZeroWidthCountsAsOne(t *testing.T) {
	t.Parallel()

	rack := Rack{Height: 3}
	for i := 0; i < 6; i++ {
		rack.Miners = append(rack.Miners, Miner{Name: "m", Power: 1})
	}
	r := &Room{Level: 1, Racks: []Rack{rack}}
	require.NoError(t, NewValidator().Validate(r))

	r.Racks[0].Miners = append(r.Racks[0].Miners, Miner{Name: "m", Power: 1})
	err := NewValidator().Validate(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "occupy 7 width units")
}
