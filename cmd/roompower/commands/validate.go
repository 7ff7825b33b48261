package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomokisaito/roompower/internal/room"
	"github.com/tomokisaito/roompower/internal/snapshot"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a room snapshot against the game's constraints",
	Long: `Check level bounds, rack capacity, rack heights, miner fields, and rack
occupancy. Raw exports are normalized in memory before the checks run.
The first violation is reported with the path of the offending field.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("file", "f", "", "room snapshot or raw export (default from config)")
	validateCmd.Flags().Int("room-level", -1, "room level to keep when normalizing an export")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := manager.Get()

	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		file = cfg.Room.Path
	}

	opts := snapshot.Options{Languages: languagesOf(cfg)}
	if level, _ := cmd.Flags().GetInt("room-level"); level >= 0 {
		opts.RoomLevel = &level
	}

	normalizer := snapshot.NewNormalizer(rootLogger, opts)
	r, _, err := normalizer.LoadRoom(file)
	if err != nil {
		return err
	}

	if err := room.NewValidator().Validate(r); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	fmt.Printf("%s: valid (level %d, %d racks, %d miners)\n", file, r.Level, len(r.Racks), r.MinerCount())
	return nil
}
