package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/wrangle/recipe"
)

var (
	replayFile   string
	replayRecipe string
	replayOut    string
	replayFormat string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-apply a saved recipe to a file",
	Long: `Loads a file and applies the statements of a recipe saved with
--recipe-out or /recipe, without calling the model.`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "input CSV, TSV or XLSX file (required)")
	replayCmd.Flags().StringVarP(&replayRecipe, "recipe", "r", "", "recipe YAML file (required)")
	replayCmd.Flags().StringVarP(&replayOut, "out", "o", "", "write the result to this file")
	replayCmd.Flags().StringVar(&replayFormat, "format", "", "output format: csv, tsv, xlsx, sqlite (default: from --out extension)")
	_ = replayCmd.MarkFlagRequired("file")
	_ = replayCmd.MarkFlagRequired("recipe")
}

func runReplay(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(replayFormat)
	if err != nil {
		return err
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	r, err := recipe.Load(replayRecipe)
	if err != nil {
		printError("recipe", err)
		return err
	}
	o := newOrchestrator(cfg, log, nil)
	if err := loadFile(o, replayFile); err != nil {
		printError("load", err)
		return err
	}

	w := cmd.OutOrStdout()
	outcomes, err := recipe.Replay(o, r)
	for _, out := range outcomes {
		_ = reportStep(w, out, nil)
	}
	if err != nil {
		return reportStep(w, nil, err)
	}

	if err := finish(w, o, replayOut, format, "", 10); err != nil {
		printError("export", err)
		return err
	}
	return nil
}
