package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdnasoft/sparkpack/internal/probe"
	"github.com/sdnasoft/sparkpack/internal/timecode"
)

var probeCmd = &cobra.Command{
	Use:   "probe [media_file]",
	Short: "Inspect a media file's duration, resolution, and frame rate",
	Long: `Inspect a media file with ffprobe and print the properties an export
run would use for timecode math.

Examples:
  sparkpack probe video.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("file not found: %s", mediaPath)
	}

	info, err := probe.Inspect(mediaPath)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	fmt.Printf("%s\n", mediaPath)
	fmt.Printf("  Duration: %.3fs\n", info.DurationSeconds)
	fmt.Printf("  Resolution: %dx%d\n", info.Width, info.Height)
	fmt.Printf("  Frame rate: %s", info.FPS)
	if rate, err := timecode.ParseRate(info.FPS); err == nil {
		fmt.Printf(" (%.3f fps, timebase %d)", rate.FPS(), rate.Timebase())
	}
	fmt.Println()

	return nil
}
