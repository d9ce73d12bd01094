package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hashlife/pkg/utils"
)

var (
	runInput      string
	runOutput     string
	runRule       string
	runIncrement  string
	runGzipOutput bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evolve a pattern by a number of generations",
	Long: `Run loads a macrocell pattern, advances it by the given number of
generations using the hashlife algorithm, and optionally writes the
result back out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runInput == "" {
			return fmt.Errorf("input pattern is required (-i)")
		}
		inc, ok := new(big.Int).SetString(runIncrement, 10)
		if !ok || inc.Sign() <= 0 {
			return fmt.Errorf("bad generation count: %s", runIncrement)
		}

		_, span := otel.Tracer("hashlife").Start(cmd.Context(), "run")
		defer span.End()
		span.SetAttributes(
			attribute.String("pattern.input", runInput),
			attribute.String("run.increment", runIncrement),
		)

		timer := utils.NewTimer("run", utils.WithLogger(logger), utils.WithEnabled(verbose))

		e, err := newEngine(runRule)
		if err != nil {
			return err
		}
		if _, err := timer.TimeFuncWithError("load", func() error {
			return loadPatternFile(e, runInput)
		}); err != nil {
			return err
		}
		logger.Info("loaded %s (rule %s, %d states)", runInput, e.GetRule(), e.NumCellStates())

		e.SetIncrement(inc)
		if _, err := timer.TimeFuncWithError("step", func() error {
			return e.Step()
		}); err != nil {
			return err
		}

		pop := e.GetPopulation()
		fmt.Printf("generation: %s\n", e.Generation().String())
		fmt.Printf("population: %s\n", pop.String())
		if !e.IsEmpty() {
			top, left, bottom, right := e.FindEdges()
			fmt.Printf("bounds: x %s..%s, y %s..%s\n", left, right, top, bottom)
		}

		if runOutput != "" {
			if _, err := timer.TimeFuncWithError("write", func() error {
				return writePatternFile(e, runOutput, "", runGzipOutput)
			}); err != nil {
				return err
			}
			logger.Info("wrote %s", runOutput)
		}
		if verbose {
			timer.PrintSummary()
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "Input macrocell file")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Output macrocell file")
	runCmd.Flags().StringVarP(&runRule, "rule", "r", "", "Rule to start from; a #R line in the pattern file replaces it")
	runCmd.Flags().StringVarP(&runIncrement, "generations", "n", "1", "Generations to advance")
	runCmd.Flags().BoolVar(&runGzipOutput, "gzip", false, "Gzip the output file")
	rootCmd.AddCommand(runCmd)
}
