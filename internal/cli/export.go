package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdnasoft/sparkpack/internal/export"
	"github.com/sdnasoft/sparkpack/internal/workorder"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate an export package from a work order",
	Long: `Generate every artifact a work order requests from a payload of
time-coded event records.

The payload is a JSON file holding the flat record array (or a
{"segments": [...]} document). When --media points at the source file its
duration, resolution, and frame rate are probed with ffprobe; otherwise
timeline defaults are synthesized from the records.

One format failing never blocks the others: failures are recorded in the
package manifest and the export completes as long as anything succeeded.

Examples:
  sparkpack export --work-order order.json --data events.json
  sparkpack export -w order.json -d events.json -m /media/show.mp4
  sparkpack export -w order.json -d events.json -o /tmp/exports --config sparkpack.toml`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("work-order", "w", "", "Path to the work order JSON file (required)")
	exportCmd.Flags().
		StringP("data", "d", "", "Path to the event payload JSON file (required)")
	exportCmd.Flags().
		StringP("media", "m", "", "Path to the source media file for probing")
	exportCmd.Flags().
		String("export-id", "", "Use a fixed export id instead of a generated one")
	exportCmd.MarkFlagRequired("work-order")
	exportCmd.MarkFlagRequired("data")
}

func runExport(cmd *cobra.Command, args []string) error {
	woPath, _ := cmd.Flags().GetString("work-order")
	dataPath, _ := cmd.Flags().GetString("data")
	mediaPath, _ := cmd.Flags().GetString("media")
	exportID, _ := cmd.Flags().GetString("export-id")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	wo, err := workorder.Load(woPath)
	if err != nil {
		return err
	}

	if mediaPath != "" {
		if _, err := os.Stat(mediaPath); err != nil {
			return fmt.Errorf("media file not found: %s", mediaPath)
		}
	}

	records, err := export.LoadRecords(dataPath)
	if err != nil {
		return err
	}

	logger.Infow("Starting export",
		"work_order", woPath,
		"records", len(records),
		"media", mediaPath,
	)

	runner := export.NewRunner(cfg, logger)
	res, err := runner.Run(export.Options{
		WorkOrder: wo,
		Records:   records,
		MediaPath: mediaPath,
		ExportID:  exportID,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Export package: %s\n", res.ExportDir)
	fmt.Printf("  Status: %s\n", res.Manifest.Status)
	fmt.Printf("  Artifacts: %d\n", len(res.Manifest.Artifacts))
	for _, art := range res.Manifest.Artifacts {
		fmt.Printf("    %s (%s, %d bytes)\n", art.Filename, art.Format, art.Size)
	}
	if len(res.Manifest.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(res.Manifest.Errors))
		for _, msg := range res.Manifest.Errors {
			fmt.Printf("    %s\n", msg)
		}
	}

	if res.Manifest.Status == "failed" {
		return fmt.Errorf("export failed: no artifacts were generated")
	}
	return nil
}
