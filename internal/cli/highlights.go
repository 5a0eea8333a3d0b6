package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdnasoft/sparkpack/internal/highlight"
)

var highlightsCmd = &cobra.Command{
	Use:   "highlights",
	Short: "Work with highlight import documents",
}

var highlightsValidateCmd = &cobra.Command{
	Use:   "validate [document]",
	Short: "Validate a highlight import document",
	Long: `Check an sdna.spark.import.v1 document produced by an external
assistant: schema version, time ranges, overlaps, and evidence references.

Pass --duration when the asset length is known so ranges can be bounds
checked against it.

Examples:
  sparkpack highlights validate import.json
  sparkpack highlights validate import.json --duration 3600`,
	Args: cobra.ExactArgs(1),
	RunE: runHighlightsValidate,
}

func init() {
	rootCmd.AddCommand(highlightsCmd)
	highlightsCmd.AddCommand(highlightsValidateCmd)

	highlightsValidateCmd.Flags().
		Float64("duration", 0, "Asset duration in seconds (0 = unknown)")
}

func runHighlightsValidate(cmd *cobra.Command, args []string) error {
	duration, _ := cmd.Flags().GetFloat64("duration")

	doc, err := highlight.Load(args[0])
	if err != nil {
		return err
	}

	problems := doc.Validate(duration)
	if len(problems) == 0 {
		fmt.Printf("Document is valid: %d highlights for asset %s\n",
			len(doc.Highlights), doc.Asset.RepoGUID)
		return nil
	}

	for _, p := range problems {
		fmt.Printf("  %s\n", p)
	}
	return fmt.Errorf("document has %d problem(s)", len(problems))
}
