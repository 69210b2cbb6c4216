package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/leakshield/leakshield/internal/github"
	"github.com/leakshield/leakshield/internal/mcpserver"
	"github.com/leakshield/leakshield/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scan API over HTTP",
	Long:  "Serve POST /v1/scan, GET /healthz and GET /metrics until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagAddr != "" {
			overrides["server.addr"] = flagAddr
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		s, err := newSession(overrides, reg)
		if err != nil {
			return err
		}
		defer s.close()

		fetcher := github.NewClient(time.Duration(s.cfg.Fetch.TimeoutSeconds) * time.Second)
		srv := server.New(s.engine, fetcher, reg, s.logger)
		s.logger.Info("starting server", "addr", s.cfg.Server.Addr, "recognizer", s.engine.Recognizer().Name())
		if err := srv.ListenAndServe(cmd.Context(), s.cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.fail(cmd, fmt.Errorf("http server: %w", err))
		}
		return nil
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve scan tools over the Model Context Protocol (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(buildOverrides(), nil)
		if err != nil {
			return err
		}
		defer s.close()

		fetcher := github.NewClient(time.Duration(s.cfg.Fetch.TimeoutSeconds) * time.Second)
		srv := mcpserver.New(s.engine, fetcher, version, s.logger)
		if err := srv.ServeStdio(); err != nil {
			s.fail(cmd, fmt.Errorf("mcp server: %w", err))
		}
		return nil
	},
}

func init() {
	addEngineFlags(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	addEngineFlags(mcpCmd)
}
