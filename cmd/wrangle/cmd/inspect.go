package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spektr-org/wrangle/table"
	"github.com/spektr-org/wrangle/tui"
)

var (
	inspectFile string
	inspectRows int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show inferred column kinds and the first rows of a file",
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "", "input CSV, TSV or XLSX file (required)")
	inspectCmd.Flags().IntVarP(&inspectRows, "rows", "n", 10, "rows to preview (0 = all)")
	_ = inspectCmd.MarkFlagRequired("file")
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inspectFile)
	if err != nil {
		printError("read", err)
		return err
	}
	t, err := table.Load(filepath.Base(inspectFile), data)
	if err != nil {
		printError("load", err)
		return err
	}

	p := table.BuildPreview(t, inspectRows)
	w := cmd.OutOrStdout()
	fmt.Fprint(w, tui.RenderKinds(p))
	fmt.Fprint(w, tui.RenderPreview(p))
	return nil
}
