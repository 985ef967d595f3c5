package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xhad/docprep/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		if err := validateConfig(cfg); err != nil {
			return err
		}

		backend, err := newCorrector(cfg.Corrector)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s := server.New(server.Config{
			Processor:        cfg.ProcessorConfig(),
			Corrector:        backend,
			Correction:       cfg.OrchestratorConfig(),
			MaxSegmentLength: cfg.Corrector.MaxSegmentLength,
			Logger:           logger,
		})
		return s.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
}
