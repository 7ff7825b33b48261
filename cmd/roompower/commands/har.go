package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomokisaito/roompower/internal/display"
	"github.com/tomokisaito/roompower/internal/har"
)

// harCmd represents the har command
var harCmd = &cobra.Command{
	Use:   "har",
	Short: "Work with browser HAR captures",
}

var harExtractCmd = &cobra.Command{
	Use:   "extract <archive>",
	Args:  cobra.ExactArgs(1),
	Short: "Extract inventory captures from a HAR archive",
	Long: `Scan a browser HAR archive, plain or gzipped, for the game's paged
inventory responses and write them as numbered page files the inventory
commands read. Unrelated responses paging the same way land in
other_response files for inspection.`,
	RunE: runHARExtract,
}

func init() {
	rootCmd.AddCommand(harCmd)
	harCmd.AddCommand(harExtractCmd)

	harExtractCmd.Flags().StringP("outdir", "o", "", "directory for extracted pages (default from config)")
	harExtractCmd.Flags().Int("limit", 0, "page size to match (default from config)")
	harExtractCmd.Flags().String("format", "", "report format (table, json, yaml)")
}

func runHARExtract(cmd *cobra.Command, args []string) error {
	cfg := manager.Get()

	outdir, _ := cmd.Flags().GetString("outdir")
	if outdir == "" {
		outdir = cfg.HAR.OutDir
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit == 0 {
		limit = cfg.HAR.PageLimit
	}
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Display.Format
	}
	if !display.ValidFormat(format) {
		return fmt.Errorf("invalid output format: %s", format)
	}

	extractor := har.NewExtractor(rootLogger, har.Options{
		OutDir:    outdir,
		PageLimit: limit,
	})
	rep, err := extractor.Extract(args[0])
	if err != nil {
		return err
	}

	switch format {
	case display.FormatJSON:
		return display.RenderJSON(os.Stdout, rep)
	case display.FormatYAML:
		return display.RenderYAML(os.Stdout, rep)
	default:
		printHARReport(rep, outdir)
		return nil
	}
}

func printHARReport(rep *har.Report, outdir string) {
	fmt.Printf("Archive          : %s\n", rep.Path)
	if !rep.Modified.IsZero() {
		fmt.Printf("Captured         : %s (%s)\n", rep.Modified.Format("2006-01-02 15:04:05"), rep.Age)
	}
	fmt.Printf("Entries Scanned  : %d\n", rep.Entries)
	fmt.Printf("Miner Pages      : %d\n", rep.Miners)
	fmt.Printf("Rack Pages       : %d\n", rep.Racks)
	fmt.Printf("Other Responses  : %d\n", rep.Others)
	fmt.Printf("Output Directory : %s\n", outdir)
}
