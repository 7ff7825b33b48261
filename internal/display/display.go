// Package display formats calculator output for people. Power values are
// scaled the way the game scales them, bonuses are converted from
// centi-percent, and breakdowns render as an aligned table, JSON, or YAML.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/tomokisaito/roompower/internal/power"
	"github.com/tomokisaito/roompower/internal/room"
)

// Output formats the CLI accepts.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidFormat reports whether name is a supported output format.
func ValidFormat(name string) bool {
	switch name {
	case FormatTable, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// powerUnits ascend from the game's base unit in thousand steps.
var powerUnits = []string{"Gh/s", "Th/s", "Ph/s", "Eh/s", "Zh/s"}

// FormatPower renders a raw power value, counted in Gh/s, scaled to the
// largest unit that keeps the number under a thousand.
func FormatPower(raw float64) string {
	p := raw
	idx := 0
	for p >= 1000 && idx < len(powerUnits)-1 {
		p /= 1000.0
		idx++
	}
	return fmt.Sprintf("%.2f %s", p, powerUnits[idx])
}

// FormatBonus renders a centi-percent bonus as a percentage, dropping the
// decimals when they are zero: 4500 becomes "45%", 4550 becomes "45.50%".
func FormatBonus(centi int) string {
	val := float64(centi) / 100.0
	if val == math.Trunc(val) {
		return fmt.Sprintf("%d%%", int(val))
	}
	return fmt.Sprintf("%.2f%%", val)
}

// Comma groups the integer part of a power value in thousands, matching how
// the game presents totals.
func Comma(v float64) string {
	return humanize.Comma(int64(v))
}

// Render writes the breakdown for one room in the requested format.
func Render(w io.Writer, format string, r *room.Room, b power.Breakdown) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, b)
	case FormatYAML:
		return RenderYAML(w, b)
	default:
		return RenderTable(w, r, b)
	}
}

// RenderTable writes the breakdown as an aligned text table.
func RenderTable(w io.Writer, r *room.Room, b power.Breakdown) error {
	fmt.Fprintf(w, "Room Power Breakdown - %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintln(w, "Room:")
	fmt.Fprintf(w, "  Level            : %d\n", r.Level)
	fmt.Fprintf(w, "  Racks            : %d\n", len(r.Racks))
	fmt.Fprintf(w, "  Miners           : %d (%d unique)\n", r.MinerCount(), power.UniqueBonusMiners(r))

	fmt.Fprintln(w, "\nPower:")
	fmt.Fprintf(w, "  Raw Power        : %s (%s)\n", Comma(b.RawPower), FormatPower(b.RawPower))
	fmt.Fprintf(w, "  Miner Bonus      : %s -> %s (%s)\n",
		FormatBonus(b.MinerBonusPercentTotal), Comma(b.MinerBonusPower), FormatPower(b.MinerBonusPower))
	fmt.Fprintf(w, "  Rack Bonus Total : %s (%s)\n", Comma(b.RackBonusPowerTotal), FormatPower(b.RackBonusPowerTotal))
	fmt.Fprintf(w, "  Final Power      : %s (%s)\n", Comma(b.FinalPower), FormatPower(b.FinalPower))

	if len(b.Racks) > 0 {
		fmt.Fprintln(w, "\nRacks:")
		for i, rk := range b.Racks {
			fmt.Fprintf(w, "  - %s raw=%s bonus=%s -> %s miners=%d\n",
				rackLabel(i, rk),
				FormatPower(rk.RawPower),
				FormatBonus(rk.BonusPercent),
				FormatPower(rk.BonusPower),
				rk.MinerCount,
			)
		}
	}
	return nil
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// RenderYAML writes v as YAML.
func RenderYAML(w io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func rackLabel(i int, rk power.RackBreakdown) string {
	switch {
	case rk.Name != "":
		return fmt.Sprintf("#%d %s", i+1, rk.Name)
	case rk.ID != "":
		return fmt.Sprintf("#%d %s", i+1, rk.ID)
	default:
		return fmt.Sprintf("#%d", i+1)
	}
}
