package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomokisaito/roompower/internal/display"
	"github.com/tomokisaito/roompower/internal/room"
	"github.com/tomokisaito/roompower/internal/snapshot"
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Convert a raw game export into a room snapshot",
	Long: `Resolve the flat miner, rack, and room lists of a raw export into the
nested room snapshot the calculator consumes. Racks outside the selected
room and miners without a resolvable rack are dropped and counted in the
report.`,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringP("file", "f", "", "raw export to normalize (default from config)")
	normalizeCmd.Flags().StringP("output", "o", "", "where to write the snapshot (default from config)")
	normalizeCmd.Flags().Int("room-level", -1, "room level to keep")
	normalizeCmd.Flags().String("format", "", "report format (table, json, yaml)")
	normalizeCmd.Flags().Bool("force", false, "overwrite an existing output file")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg := manager.Get()

	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		file = cfg.Room.Path
	}
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = cfg.Room.Path
	}
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Display.Format
	}
	if !display.ValidFormat(format) {
		return fmt.Errorf("invalid output format: %s", format)
	}
	force, _ := cmd.Flags().GetBool("force")

	if output == file {
		return fmt.Errorf("output %s would overwrite the input, pick another --output", output)
	}
	if _, err := os.Stat(output); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", output)
	}

	opts := snapshot.Options{Languages: languagesOf(cfg)}
	if level, _ := cmd.Flags().GetInt("room-level"); level >= 0 {
		opts.RoomLevel = &level
	}

	normalizer := snapshot.NewNormalizer(rootLogger, opts)
	r, rep, err := normalizer.LoadRoom(file)
	if err != nil {
		return err
	}

	if err := room.Save(r, output); err != nil {
		return err
	}

	switch format {
	case display.FormatJSON:
		return display.RenderJSON(os.Stdout, rep)
	case display.FormatYAML:
		return display.RenderYAML(os.Stdout, rep)
	default:
		printReport(output, rep)
		return nil
	}
}

func printReport(output string, rep *snapshot.Report) {
	if rep == nil {
		fmt.Printf("Input was already a room snapshot; written unchanged to %s\n", output)
		return
	}

	fmt.Printf("Wrote %s\n\n", output)
	fmt.Println("Normalization:")
	fmt.Printf("  Room Level       : %d\n", rep.RoomLevel)
	fmt.Printf("  Racks Kept       : %d\n", rep.RacksKept)
	fmt.Printf("  Racks Dropped    : %d\n", rep.RacksDropped)
	fmt.Printf("  Miners Placed    : %d\n", rep.MinersPlaced)
	fmt.Printf("  Miners Unplaced  : %d\n", rep.MinersUnplaced)
	fmt.Printf("  Miners Outside   : %d\n", rep.MinersOutside)
	if rep.GeneratedIDs > 0 {
		fmt.Printf("  Generated IDs    : %d\n", rep.GeneratedIDs)
	}
}
