package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdnasoft/sparkpack/internal/config"
	"github.com/sdnasoft/sparkpack/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sparkpack",
	Short: "Build export packages from time-coded AI events",
	Long: `Sparkpack turns time-coded AI analysis of a media asset (transcript
segments, detected events, review comments) into editorial export packages:
SRT/VTT subtitles, CSV and JSON data, XMEML and FCPXML timelines, and CMX
3600 EDLs, plus the grounding files an external assistant needs to reason
about the content.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().
		StringP("output", "o", "", "Base directory for export packages")
}

// loadConfig resolves configuration for a command: defaults, then the
// config file when given, then the --output flag override.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Output.BaseDir = out
	}
	return cfg, nil
}
