/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package commands

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mustafasahin0/devicestats/internal/collector"
	"github.com/mustafasahin0/devicestats/internal/config"
	"github.com/mustafasahin0/devicestats/internal/server"
	"github.com/mustafasahin0/devicestats/pkg/version"
)

var (
	// Serve command specific flags
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP snapshot endpoint",
	Long: `Start the HTTP server. Every GET /api/stats re-probes the host and returns
a fresh JSON snapshot; nothing is cached between requests.

Endpoints:
  • GET /api/stats    host snapshot
  • GET /api/version  build information
  • GET /health       liveness
  • GET /metrics      Prometheus metrics

Examples:
  # Start server on default port 8080
  devicestats serve

  # Start on localhost only, with a config file
  devicestats serve --host 127.0.0.1 --port 3000 --config devicestats.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "HTTP server listen address (default 0.0.0.0)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP server port (default 8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, func(c *config.Config) {
		if cmd.Flags().Changed("host") {
			c.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			c.Server.Port = servePort
		}
	})
	if err != nil {
		return err
	}

	logger := InitLogger(cfg.Log.Level, cfg.Log.File)
	logger.Info("Starting devicestats",
		"version", version.Info(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
	)
	logger.Info("Configuration loaded", "config", cfg.String())

	assembler := collector.NewAssembler(cfg, collector.NewHostSource(), logger)
	srv := server.NewServer(cfg.Server, assembler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, initiating shutdown", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := srv.Start(ctx, cfg.Address()); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
