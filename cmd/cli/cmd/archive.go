package cmd

import (
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hashlife/internal/archive"
	"github.com/hashlife/internal/repository"
	"github.com/hashlife/internal/storage"
)

var (
	archiveInput     string
	archiveName      string
	archiveRule      string
	archiveComments  string
	archiveOutput    string
	archiveRunGens   string
	archiveListLimit int
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the pattern archive",
	Long: `The archive keeps macrocell files in object storage (local disk or
COS) with searchable metadata and run history in a database.`,
}

// newArchiveService wires the configured database and storage backends.
func newArchiveService(cmd *cobra.Command) (*archive.Service, func(), error) {
	repo, err := repository.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.Migrate(cmd.Context()); err != nil {
		repo.Close()
		return nil, nil, err
	}
	store, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	svc := archive.NewService(repo, store,
		archive.WithLogger(logger),
		archive.WithCompression(cfg.Storage.Compress))
	return svc, func() { repo.Close() }, nil
}

var archiveSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Archive a pattern file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if archiveInput == "" {
			return fmt.Errorf("input pattern is required (-i)")
		}
		name := archiveName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(archiveInput), filepath.Ext(archiveInput))
		}
		svc, cleanup, err := newArchiveService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		e, err := newEngine(archiveRule)
		if err != nil {
			return err
		}
		if err := loadPatternFile(e, archiveInput); err != nil {
			return err
		}
		p, err := svc.SavePattern(cmd.Context(), name, e, archiveComments)
		if err != nil {
			return err
		}
		fmt.Printf("archived %s (rule %s, population %s)\n", p.Name, p.Rule, p.Population)
		return nil
	},
}

var archiveLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Fetch an archived pattern into a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if archiveOutput == "" {
			return fmt.Errorf("output file is required (-o)")
		}
		svc, cleanup, err := newArchiveService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		e, err := newEngine("")
		if err != nil {
			return err
		}
		p, err := svc.LoadPattern(cmd.Context(), args[0], e)
		if err != nil {
			return err
		}
		if err := writePatternFile(e, archiveOutput, p.Comments, false); err != nil {
			return err
		}
		fmt.Printf("wrote %s (rule %s, generation %s)\n", archiveOutput, p.Rule, p.Generation)
		return nil
	},
}

var archiveRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Evolve an archived pattern, recording the run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inc, ok := new(big.Int).SetString(archiveRunGens, 10)
		if !ok || inc.Sign() <= 0 {
			return fmt.Errorf("bad generation count: %s", archiveRunGens)
		}
		svc, cleanup, err := newArchiveService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		e, err := newEngine("")
		if err != nil {
			return err
		}
		if _, err := svc.LoadPattern(cmd.Context(), args[0], e); err != nil {
			return err
		}
		e.SetIncrement(inc)
		run, err := svc.RecordRun(cmd.Context(), args[0], e, func() error {
			return e.Step()
		})
		if err != nil {
			return err
		}
		fmt.Printf("run %s: %s -> generation %s, population %s (%d ms)\n",
			run.RunUUID, run.Status, run.EndGeneration, run.FinalPopulation, run.DurationMillis)
		if _, err := svc.SavePattern(cmd.Context(), args[0], e, ""); err != nil {
			return err
		}
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newArchiveService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		patterns, err := svc.ListPatterns(cmd.Context(), archiveListLimit)
		if err != nil {
			return err
		}
		for _, p := range patterns {
			fmt.Printf("%-24s rule=%-16s gen=%-12s pop=%s\n", p.Name, p.Rule, p.Generation, p.Population)
		}
		return nil
	},
}

var archiveRunsCmd = &cobra.Command{
	Use:   "runs <name>",
	Short: "Show the run history of an archived pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newArchiveService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		runs, err := svc.Runs(cmd.Context(), args[0], archiveListLimit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s %-12s +%-10s gen %s -> %s (%d ms)\n",
				r.RunUUID, r.Status, r.Increment, r.StartGeneration, r.EndGeneration, r.DurationMillis)
		}
		return nil
	},
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an archived pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newArchiveService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		return svc.DeletePattern(cmd.Context(), args[0])
	},
}

func init() {
	archiveSaveCmd.Flags().StringVarP(&archiveInput, "input", "i", "", "Input macrocell file")
	archiveSaveCmd.Flags().StringVar(&archiveName, "name", "", "Archive name (default: input basename)")
	archiveSaveCmd.Flags().StringVarP(&archiveRule, "rule", "r", "", "Rule to start from; a #R line in the pattern file replaces it")
	archiveSaveCmd.Flags().StringVar(&archiveComments, "comments", "", "Comment lines stored with the pattern")
	archiveLoadCmd.Flags().StringVarP(&archiveOutput, "output", "o", "", "Output macrocell file")
	archiveRunCmd.Flags().StringVarP(&archiveRunGens, "generations", "n", "1", "Generations to advance")
	archiveListCmd.Flags().IntVar(&archiveListLimit, "limit", 50, "Maximum rows to list")
	archiveRunsCmd.Flags().IntVar(&archiveListLimit, "limit", 50, "Maximum rows to list")

	archiveCmd.AddCommand(archiveSaveCmd, archiveLoadCmd, archiveRunCmd,
		archiveListCmd, archiveRunsCmd, archiveDeleteCmd)
	rootCmd.AddCommand(archiveCmd)
}
