package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"image-watermarker/internal/app"
	"image-watermarker/internal/config"
	"image-watermarker/internal/domain"
	"image-watermarker/internal/usecase/batch"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

var (
	configFlag        string
	inputFlag         string
	outputFlag        string
	textFlag          string
	fontSizeFlag      int
	opacityFlag       int
	paddingTBFlag     int
	paddingLRFlag     int
	cropFlag          bool
	maxConcurrentFlag int
	failurePolicyFlag string
	metricsFileFlag   string
	jsonFlag          bool
	pickFlag          bool
)

var rootCmd = &cobra.Command{
	Use:   "watermarker",
	Short: "Tile a text watermark over every image in a folder",
	Long: `Watermarker reads every .jpg, .jpeg and .png file in the input folder,
optionally crops it to a centered 5:4 region, tiles the watermark text across
it and writes the result under the same name to the output folder.

Examples:
  watermarker -i ./photos -o ./out -t "© ACME"
  watermarker -i ./photos -o ./out --crop --opacity 30 --font-size 32
  watermarker --pick --json`,
	SilenceUsage: true,
	RunE:         runMain,
}

func init() {
	rootCmd.Flags().StringVar(&configFlag, "config", "", "Path to a YAML config file (overrides CONFIG_PATH)")
	rootCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Folder with the source images")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Folder for the watermarked images")
	rootCmd.Flags().StringVarP(&textFlag, "text", "t", domain.DefaultWatermarkText, "Watermark text")
	rootCmd.Flags().IntVar(&fontSizeFlag, "font-size", domain.DefaultFontSize, "Font size in pixels (1-200)")
	rootCmd.Flags().IntVar(&opacityFlag, "opacity", domain.DefaultWatermarkOpacity, "Watermark opacity in percent (0-100)")
	rootCmd.Flags().IntVar(&paddingTBFlag, "padding-tb", domain.DefaultPadding, "Vertical padding between tiles (0-1000)")
	rootCmd.Flags().IntVar(&paddingLRFlag, "padding-lr", domain.DefaultPadding, "Horizontal padding between tiles (0-1000)")
	rootCmd.Flags().BoolVar(&cropFlag, "crop", false, "Crop every image to a centered 5:4 region first")
	rootCmd.Flags().IntVar(&maxConcurrentFlag, "max-concurrent", domain.DefaultMaxConcurrent, "Images processed at once")
	rootCmd.Flags().StringVar(&failurePolicyFlag, "failure-policy", string(domain.FailFast), "fail-fast or collect-all")
	rootCmd.Flags().StringVar(&metricsFileFlag, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the run result as JSON")
	rootCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose missing folders with a native dialog")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	zlog.Init()

	if configFlag != "" {
		if err := os.Setenv("CONFIG_PATH", configFlag); err != nil {
			return fmt.Errorf("failed to set CONFIG_PATH: %w", err)
		}
	}

	cfg, err := config.MustLoad()
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to load config")
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	job := cfg.JobConfig(inputFlag, outputFlag)
	overrideJob(cmd, &job)

	if pickFlag {
		if job.InputDir, err = pickFolder(job.InputDir, "Select input folder"); err != nil {
			return err
		}
		if job.OutputDir, err = pickFolder(job.OutputDir, "Select output folder"); err != nil {
			return err
		}
	}

	watermarker, err := app.NewApp(cfg, &zlog.Logger)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to create app")
		return err
	}

	result := watermarker.Run(context.Background(), job, batch.ProgressFunc(printProgress))

	if err := printResult(result, job.OutputDir); err != nil {
		return err
	}
	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("max-concurrent") {
		if maxConcurrentFlag < 1 {
			return fmt.Errorf("--max-concurrent must be at least 1, got %d", maxConcurrentFlag)
		}
		cfg.Batch.MaxConcurrent = maxConcurrentFlag
	}
	if flags.Changed("failure-policy") {
		switch domain.FailurePolicy(failurePolicyFlag) {
		case domain.FailFast, domain.CollectAll:
			cfg.Batch.FailurePolicy = failurePolicyFlag
		default:
			return fmt.Errorf("--failure-policy must be %q or %q, got %q", domain.FailFast, domain.CollectAll, failurePolicyFlag)
		}
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = metricsFileFlag
	}
	return nil
}

// overrideJob applies only the flags given explicitly, so config file and
// environment defaults survive.
func overrideJob(cmd *cobra.Command, job *domain.WatermarkJobConfig) {
	flags := cmd.Flags()

	if flags.Changed("text") {
		job.WatermarkText = textFlag
	}
	if flags.Changed("font-size") {
		job.FontSize = fontSizeFlag
	}
	if flags.Changed("opacity") {
		job.Opacity = opacityFlag
	}
	if flags.Changed("padding-tb") {
		job.PaddingTopBottom = paddingTBFlag
	}
	if flags.Changed("padding-lr") {
		job.PaddingLeftRight = paddingLRFlag
	}
	if flags.Changed("crop") {
		job.Crop = cropFlag
	}
}

func pickFolder(current, title string) (string, error) {
	if strings.TrimSpace(current) != "" {
		return current, nil
	}

	selected, err := zenity.SelectFile(
		zenity.Directory(),
		zenity.Title(title),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", fmt.Errorf("%s: cancelled", title)
		}
		return "", fmt.Errorf("folder picker failed: %w", err)
	}
	return selected, nil
}

func printProgress(p domain.BatchProgress) {
	fmt.Fprintf(os.Stderr, "Processing images... %d/%d (%d%%)\n", p.Processed, p.Total, p.Percentage)
	fmt.Fprintf(os.Stderr, "Current batch: %s\n", strings.Join(p.CurrentBatch, ", "))
}

func printResult(result domain.RunResult, outputDir string) error {
	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	}

	if !result.Success {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Message)
		return nil
	}

	fmt.Println(result.Message)
	fmt.Printf("Output: %s (%s)\n", outputDir, humanize.Bytes(outputSize(outputDir, result.ProcessedFilenames)))
	return nil
}

func outputSize(dir string, names []string) uint64 {
	var total uint64
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		total += uint64(info.Size())
	}
	return total
}
