package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spektr-org/wrangle/executor"
	"github.com/spektr-org/wrangle/recipe"
	"github.com/spektr-org/wrangle/session"
	"github.com/spektr-org/wrangle/table"
	"github.com/spektr-org/wrangle/translator"
	"github.com/spektr-org/wrangle/tui"
)

var (
	applyFile         string
	applyInstructions []string
	applyCode         []string
	applyOut          string
	applyFormat       string
	applyRecipeOut    string
	applyPreviewRows  int
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply instructions or statements to a file",
	Long: `Loads a file, applies each instruction (-i) in order, then each
statement (--code) in order, and writes the result.

A failing step stops the run; nothing is written in that case.
Instructions need a configured model provider; statements do not.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "input CSV, TSV or XLSX file (required)")
	applyCmd.Flags().StringArrayVarP(&applyInstructions, "instruction", "i", nil, "plain-English instruction (repeatable)")
	applyCmd.Flags().StringArrayVar(&applyCode, "code", nil, "statement to apply as is (repeatable)")
	applyCmd.Flags().StringVarP(&applyOut, "out", "o", "", "write the result to this file")
	applyCmd.Flags().StringVar(&applyFormat, "format", "", "output format: csv, tsv, xlsx, sqlite (default: from --out extension)")
	applyCmd.Flags().StringVar(&applyRecipeOut, "recipe-out", "", "save the applied steps as a YAML recipe")
	applyCmd.Flags().IntVar(&applyPreviewRows, "preview", 10, "rows to print when --out is not set (0 = all)")
	_ = applyCmd.MarkFlagRequired("file")
}

func runApply(cmd *cobra.Command, args []string) error {
	if len(applyInstructions) == 0 && len(applyCode) == 0 {
		return errors.New("at least one --instruction or --code is required")
	}
	format, err := outputFormat(applyFormat)
	if err != nil {
		return err
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	var tr translator.Translator
	if len(applyInstructions) > 0 {
		if tr, err = newTranslator(cfg, log); err != nil {
			return err
		}
	}
	o := newOrchestrator(cfg, log, tr)
	if err := loadFile(o, applyFile); err != nil {
		printError("load", err)
		return err
	}

	w := cmd.OutOrStdout()
	for _, instr := range applyInstructions {
		out, err := o.ApplyCommand(cmd.Context(), instr)
		if err := reportStep(w, out, err); err != nil {
			return err
		}
	}
	for _, code := range applyCode {
		out, err := o.ApplyCode("", code)
		if err := reportStep(w, out, err); err != nil {
			return err
		}
	}

	if err := finish(w, o, applyOut, format, applyRecipeOut, applyPreviewRows); err != nil {
		printError("export", err)
		return err
	}
	return nil
}

// reportStep prints one outcome, or the user-facing error and the failing
// statement.
func reportStep(w io.Writer, out *session.Outcome, err error) error {
	if err != nil {
		fmt.Fprintln(os.Stderr, session.Message(err))
		var execErr *executor.ExecutionError
		if errors.As(err, &execErr) {
			fmt.Fprintf(os.Stderr, "  statement: %s\n", execErr.Code)
		}
		return err
	}
	fmt.Fprintf(w, "Step %d: %s (%d -> %d rows)\n  %s\n",
		out.Entry.Step, out.Entry.Description, out.RowsBefore, out.RowsAfter, out.Code)
	return nil
}

// finish writes the working table and recipe, then prints the summary.
func finish(w io.Writer, o *session.Orchestrator, out string, format table.Format, recipeOut string, previewRows int) error {
	sum, err := o.Summary()
	if err != nil {
		return err
	}
	working, err := o.Working()
	if err != nil {
		return err
	}

	if out != "" {
		if err := table.WriteFile(out, working, format); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %d rows to %s\n", working.RowCount(), out)
	} else {
		fmt.Fprint(w, tui.RenderPreview(table.BuildPreview(working, previewRows)))
	}

	if recipeOut != "" {
		if err := recipe.Save(recipeOut, recipe.FromLog(sum.FileIdentity, sum.Log, time.Now())); err != nil {
			return err
		}
		fmt.Fprintf(w, "Saved %d steps to %s\n", len(sum.Log), recipeOut)
	}

	fmt.Fprint(w, tui.RenderSummary(sum))
	return nil
}

func outputFormat(s string) (table.Format, error) {
	if s == "" {
		return "", nil
	}
	return table.ParseFormat(s)
}
