package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hashlife/pkg/writer"
)

var (
	infoInput    string
	infoRule     string
	infoJSONPath string
)

// patternInfo is the report produced by the info command.
type patternInfo struct {
	File       string `json:"file"`
	Rule       string `json:"rule"`
	States     int    `json:"states"`
	Generation string `json:"generation"`
	Population string `json:"population"`
	Empty      bool   `json:"empty"`
	Top        string `json:"top,omitempty"`
	Left       string `json:"left,omitempty"`
	Bottom     string `json:"bottom,omitempty"`
	Right      string `json:"right,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show rule, population and bounding box of a pattern",
	RunE: func(cmd *cobra.Command, args []string) error {
		if infoInput == "" {
			return fmt.Errorf("input pattern is required (-i)")
		}
		e, err := newEngine(infoRule)
		if err != nil {
			return err
		}
		if err := loadPatternFile(e, infoInput); err != nil {
			return err
		}

		report := patternInfo{
			File:       infoInput,
			Rule:       e.GetRule(),
			States:     e.NumCellStates(),
			Generation: e.Generation().String(),
			Population: e.GetPopulation().String(),
			Empty:      e.IsEmpty(),
		}
		if !report.Empty {
			top, left, bottom, right := e.FindEdges()
			report.Top = top.String()
			report.Left = left.String()
			report.Bottom = bottom.String()
			report.Right = right.String()
		}

		if infoJSONPath != "" {
			w := writer.NewPrettyJSONWriter[patternInfo]()
			if infoJSONPath == "-" {
				return w.Write(report, os.Stdout)
			}
			return w.WriteToFile(report, infoJSONPath)
		}

		fmt.Printf("file:       %s\n", report.File)
		fmt.Printf("rule:       %s (%d states)\n", report.Rule, report.States)
		fmt.Printf("generation: %s\n", report.Generation)
		fmt.Printf("population: %s\n", report.Population)
		if report.Empty {
			fmt.Println("bounds:     empty")
		} else {
			fmt.Printf("bounds:     x %s..%s, y %s..%s\n", report.Left, report.Right, report.Top, report.Bottom)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVarP(&infoInput, "input", "i", "", "Input macrocell file")
	infoCmd.Flags().StringVarP(&infoRule, "rule", "r", "", "Rule to start from; a #R line in the pattern file replaces it")
	infoCmd.Flags().StringVar(&infoJSONPath, "json", "", "Write the report as JSON to this file (- for stdout)")
	rootCmd.AddCommand(infoCmd)
}
