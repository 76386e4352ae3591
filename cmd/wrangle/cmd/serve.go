package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/wrangle/logging"
	"github.com/spektr-org/wrangle/server"
	"github.com/spektr-org/wrangle/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve sessions over HTTP",
	Long: `Starts the HTTP API.

Endpoints:
  POST   /v1/sessions                 create a session (optional multipart "file")
  PUT    /v1/sessions/{id}/file       load or replace the file
  POST   /v1/sessions/{id}/apply      {"instruction": "..."} or {"code": "..."}
  POST   /v1/sessions/{id}/reset      restore the original data
  GET    /v1/sessions/{id}/summary    metrics and log
  GET    /v1/sessions/{id}/log        transformation log
  GET    /v1/sessions/{id}/preview    ?which=original|working&rows=N
  GET    /v1/sessions/{id}/download   ?format=csv|tsv|xlsx|sqlite
  GET    /v1/sessions/{id}/recipe     applied steps as YAML
  DELETE /v1/sessions/{id}            end the session`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: from config, 127.0.0.1:8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info("configuration loaded", "translator", cfg.Translator.Provider, "model", cfg.Translator.Model)

	tr := optionalTranslator(cfg, log)
	sessionLog := logging.Component(log, "session")
	reg := session.NewRegistry(func() *session.Orchestrator {
		return newOrchestrator(cfg, sessionLog, tr)
	})

	srv := server.New(reg, server.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		ReadTimeout:    cfg.Server.ReadTimeout.Duration,
		WriteTimeout:   cfg.Server.WriteTimeout.Duration,
		Logger:         log,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Addr()
	}
	return srv.ListenAndServe(cmd.Context(), addr)
}
