package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomokisaito/roompower/internal/display"
	"github.com/tomokisaito/roompower/internal/logging"
	"github.com/tomokisaito/roompower/internal/power"
	"github.com/tomokisaito/roompower/internal/room"
	"github.com/tomokisaito/roompower/internal/snapshot"
	"github.com/tomokisaito/roompower/internal/watch"
)

// calcCmd represents the calc command
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute room power from a snapshot",
	Long: `Compute raw power, the deduplicated miner bonus, and per-rack bonuses
for one room. Accepts both normalized room snapshots and raw game
exports; exports are normalized in memory first.`,
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().StringP("file", "f", "", "room snapshot or raw export (default from config)")
	calcCmd.Flags().Int("room-level", -1, "room level to keep when normalizing an export")
	calcCmd.Flags().String("format", "", "output format (table, json, yaml)")
	calcCmd.Flags().Bool("watch", false, "recompute when the file changes")
	calcCmd.Flags().Duration("interval", 0, "watch debounce (default from config)")
}

func runCalc(cmd *cobra.Command, args []string) error {
	cfg := manager.Get()

	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		file = cfg.Room.Path
	}
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Display.Format
	}
	if !display.ValidFormat(format) {
		return fmt.Errorf("invalid output format: %s", format)
	}

	opts := snapshot.Options{Languages: languagesOf(cfg)}
	if level, _ := cmd.Flags().GetInt("room-level"); level >= 0 {
		opts.RoomLevel = &level
	}

	watchMode, _ := cmd.Flags().GetBool("watch")
	if !watchMode {
		return calcOnce(file, format, opts)
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	if interval == 0 {
		interval = cfg.Room.Debounce
	}

	render := func() error {
		// Clear screen (ANSI escape code)
		fmt.Print("\033[H\033[2J")
		return calcOnce(file, format, opts)
	}
	if err := render(); err != nil {
		return err
	}

	watcher, err := watch.NewFileWatcher(rootLogger, file, interval)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Start(func() {
		logging.LogIf(rootLogger, render(), "Recompute failed")
	}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

func calcOnce(file, format string, opts snapshot.Options) error {
	normalizer := snapshot.NewNormalizer(rootLogger, opts)
	r, _, err := normalizer.LoadRoom(file)
	if err != nil {
		return err
	}

	if err := room.NewValidator().Validate(r); err != nil {
		return fmt.Errorf("invalid room in %s: %w", file, err)
	}

	b := power.Compute(r)
	return display.Render(os.Stdout, format, r, b)
}
