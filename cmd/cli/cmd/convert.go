package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hashlife/pkg/parallel"
)

var (
	convertGzip   bool
	convertRule   string
	convertSuffix string
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Re-canonicalize macrocell files, optionally gzipping them",
	Long: `Convert reads each macrocell file and writes it back out through the
engine. The result is canonical: a second conversion is byte-for-byte
stable. Files are processed in parallel.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processed, err := parallel.ForEach(cmd.Context(), args, parallel.DefaultPoolConfig(),
			func(ctx context.Context, path string) error {
				return convertOne(path)
			})
		logger.Info("converted %d of %d files", processed, len(args))
		return err
	},
}

func convertOne(path string) error {
	e, err := newEngine(convertRule)
	if err != nil {
		return err
	}
	if err := loadPatternFile(e, path); err != nil {
		return err
	}
	out := outputName(path)
	if err := writePatternFile(e, out, "", convertGzip); err != nil {
		return err
	}
	logger.Debug("converted %s -> %s", path, out)
	return nil
}

// outputName derives the destination filename from the conversion flags.
func outputName(path string) string {
	base := strings.TrimSuffix(path, ".gz")
	out := base + convertSuffix
	if convertGzip {
		out += ".gz"
	}
	return out
}

func init() {
	convertCmd.Flags().BoolVar(&convertGzip, "gzip", false, "Gzip the output files")
	convertCmd.Flags().StringVarP(&convertRule, "rule", "r", "", "Rule to start from; a #R line in the pattern file replaces it")
	convertCmd.Flags().StringVar(&convertSuffix, "suffix", ".out", "Suffix appended to the input file name (before any .gz)")
	rootCmd.AddCommand(convertCmd)
}
