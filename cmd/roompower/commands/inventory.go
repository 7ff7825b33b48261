package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tomokisaito/roompower/internal/display"
	"github.com/tomokisaito/roompower/internal/inventory"
)

// inventoryCmd represents the inventory command
var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect saved inventory pages",
}

var inventoryStatsCmd = &cobra.Command{
	Use:   "stats [pages...]",
	Short: "Aggregate statistics over inventory pages",
	Long: `Aggregate power, bonus, and size statistics over saved inventory pages.
With no arguments, every extracted page in the inventory directory is
read; page file names decide whether they hold miners or racks.`,
	RunE: runInventoryStats,
}

var inventoryLookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Args:  cobra.ExactArgs(1),
	Short: "Find one item by name and level",
	RunE:  runInventoryLookup,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryStatsCmd)
	inventoryCmd.AddCommand(inventoryLookupCmd)

	inventoryCmd.PersistentFlags().String("dir", "", "directory of extracted pages (default from config)")

	inventoryStatsCmd.Flags().String("kind", "", "restrict pages given as arguments to miner or rack")
	inventoryStatsCmd.Flags().String("format", "", "output format (table, json, yaml)")

	inventoryLookupCmd.Flags().Int("level", 0, "item level")
	inventoryLookupCmd.Flags().String("kind", "miner", "item kind (miner, rack)")
	inventoryLookupCmd.Flags().String("format", "", "output format (table, json, yaml)")
}

func loadInventory(cmd *cobra.Command, args []string, kind inventory.Kind) ([]inventory.Entry, error) {
	cfg := manager.Get()

	loader := inventory.NewLoader(rootLogger, languagesOf(cfg)...)
	if len(args) > 0 {
		return loader.LoadFiles(args, kind)
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Inventory.Dir
	}
	return loader.LoadDir(dir)
}

func runInventoryStats(cmd *cobra.Command, args []string) error {
	kindFlag, _ := cmd.Flags().GetString("kind")
	kind, err := parseKind(kindFlag, inventory.KindMiner)
	if err != nil {
		return err
	}

	entries, err := loadInventory(cmd, args, kind)
	if err != nil {
		return err
	}

	stats := inventory.ComputeStats(entries)

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = manager.Get().Display.Format
	}
	switch format {
	case display.FormatJSON:
		return display.RenderJSON(os.Stdout, stats)
	case display.FormatYAML:
		return display.RenderYAML(os.Stdout, stats)
	case display.FormatTable:
		printStats(stats)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", format)
	}
}

func runInventoryLookup(cmd *cobra.Command, args []string) error {
	cfg := manager.Get()

	kindFlag, _ := cmd.Flags().GetString("kind")
	kind, err := parseKind(kindFlag, inventory.KindMiner)
	if err != nil {
		return err
	}
	level, _ := cmd.Flags().GetInt("level")

	entries, err := loadInventory(cmd, nil, kind)
	if err != nil {
		return err
	}

	catalog, err := inventory.NewCatalog(rootLogger, cfg.Inventory.Catalog)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.PutAll(entries); err != nil {
		return err
	}

	entry, ok := catalog.Lookup(kind, args[0], level)
	if !ok {
		return fmt.Errorf("no %s named %q at level %d", kind, args[0], level)
	}
	rootLogger.Debug("Catalog lookup", zap.Any("stats", catalog.Stats()))

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Display.Format
	}
	switch format {
	case display.FormatJSON:
		return display.RenderJSON(os.Stdout, entry)
	case display.FormatYAML:
		return display.RenderYAML(os.Stdout, entry)
	case display.FormatTable:
		printEntry(entry)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", format)
	}
}

func parseKind(value string, fallback inventory.Kind) (inventory.Kind, error) {
	switch value {
	case "":
		return fallback, nil
	case string(inventory.KindMiner):
		return inventory.KindMiner, nil
	case string(inventory.KindRack):
		return inventory.KindRack, nil
	default:
		return "", fmt.Errorf("invalid kind %q (want miner or rack)", value)
	}
}

func printStats(s inventory.Stats) {
	fmt.Println("Miners:")
	fmt.Printf("  Count            : %d (%d unique)\n", s.Miners.Count, s.Miners.UniquePairs)
	fmt.Printf("  Total Power      : %s (%s)\n", display.Comma(s.Miners.TotalPower), display.FormatPower(s.Miners.TotalPower))
	fmt.Printf("  Mean Power       : %s\n", display.FormatPower(s.Miners.MeanPower))
	fmt.Printf("  Median Power     : %s\n", display.FormatPower(s.Miners.MedianPower))
	fmt.Printf("  P90 Power        : %s\n", display.FormatPower(s.Miners.P90Power))
	fmt.Printf("  Max Power        : %s\n", display.FormatPower(s.Miners.MaxPower))
	fmt.Printf("  Bonus If Unique  : %s\n", display.FormatBonus(s.Miners.BonusPercentTotal))

	widths := make([]int, 0, len(s.Miners.WidthCounts))
	for w := range s.Miners.WidthCounts {
		widths = append(widths, w)
	}
	sort.Ints(widths)
	for _, w := range widths {
		fmt.Printf("  Width %d Units    : %d\n", w, s.Miners.WidthCounts[w])
	}

	fmt.Println("\nRacks:")
	fmt.Printf("  Count            : %d\n", s.Racks.Count)

	heights := make([]int, 0, len(s.Racks.ByHeight))
	for h := range s.Racks.ByHeight {
		heights = append(heights, h)
	}
	sort.Ints(heights)
	for _, h := range heights {
		hs := s.Racks.ByHeight[h]
		fmt.Printf("  - height %d count=%d mean=%.2f%% max=%s\n",
			h, hs.Count, hs.MeanPercent/100, display.FormatBonus(hs.MaxPercent))
	}
}

func printEntry(e inventory.Entry) {
	fmt.Printf("Name   : %s\n", e.Name)
	fmt.Printf("Kind   : %s\n", e.Kind)
	fmt.Printf("Level  : %d\n", e.Level)
	if e.Kind == inventory.KindRack {
		fmt.Printf("Height : %d (size %d)\n", e.Height, e.Height*2)
		fmt.Printf("Bonus  : %s\n", display.FormatBonus(e.BonusPercent))
		return
	}
	fmt.Printf("Power  : %s\n", display.FormatPower(e.Power))
	fmt.Printf("Bonus  : %s\n", display.FormatBonus(e.BonusPercent))
	fmt.Printf("Width  : %d\n", e.Width)
}
