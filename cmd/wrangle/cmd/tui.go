package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/wrangle/logging"
	"github.com/spektr-org/wrangle/tui"
)

var (
	tuiFile        string
	tuiPreviewRows int
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start an interactive session",
	Long: `Starts the interactive terminal session.

Type an instruction and press Enter to apply it. Commands start with a
slash; /help lists them.

Keys:
  Enter       apply the instruction or command
  PgUp/PgDn   scroll the transcript
  Esc/Ctrl+C  quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVarP(&tuiFile, "file", "f", "", "file to load at start")
	tuiCmd.Flags().IntVar(&tuiPreviewRows, "preview", 10, "rows shown after each step")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	// The terminal belongs to the UI; only errors reach stderr.
	log := logging.New(logging.Options{Level: "error", Format: cfg.General.LogFormat})

	o := newOrchestrator(cfg, log, optionalTranslator(cfg, log))
	return tui.Run(tui.Config{Orchestrator: o, File: tuiFile, PreviewRows: tuiPreviewRows})
}
