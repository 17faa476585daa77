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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mustafasahin0/devicestats/internal/collector"
	"github.com/mustafasahin0/devicestats/internal/exporter"
	"github.com/mustafasahin0/devicestats/pkg/version"
)

const (
	osAndroid = "android"
	osDarwin  = "darwin"
	osLinux   = "linux"
)

var (
	// Snapshot command specific flags
	snapshotFormat   string
	snapshotOutput   string
	snapshotCount    int
	snapshotInterval time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print host snapshots without starting the server",
	Long: `Probe the host and write one or more snapshots to stdout or a file.
The JSON output is identical to the body of GET /api/stats.

Examples:
  # One JSON snapshot
  devicestats snapshot

  # Append a CSV row every 30 seconds, ten times
  devicestats snapshot --format csv --output host.csv --count 10 --interval 30s`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "f", string(exporter.FormatJSON),
		"Output format (json, yaml, csv)")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "",
		"Append to this file instead of writing to stdout")
	snapshotCmd.Flags().IntVar(&snapshotCount, "count", 1,
		"Number of snapshots to take (0 = until interrupted)")
	snapshotCmd.Flags().DurationVar(&snapshotInterval, "interval", time.Second,
		"Delay between snapshots when --count is not 1")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	if snapshotCount < 0 {
		return fmt.Errorf("count must be >= 0, got %d", snapshotCount)
	}
	if snapshotCount != 1 && snapshotInterval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", snapshotInterval)
	}

	format, err := exporter.ParseFormat(snapshotFormat)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	loc, err := loadLocation()
	if err != nil {
		return err
	}

	logger := InitLogger(cfg.Log.Level, cfg.Log.File)
	logger.Debug("Starting devicestats snapshot",
		"version", version.Info(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
	)
	logPlatformNotes(logger)

	var out *exporter.Exporter
	if snapshotOutput != "" {
		out, err = exporter.NewFile(snapshotOutput, format, loc)
		if err != nil {
			return err
		}
	} else {
		out = exporter.New(os.Stdout, format, loc)
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("Failed to close exporter", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assembler := collector.NewAssembler(cfg, collector.NewHostSource(), logger)

	ticker := time.NewTicker(max(snapshotInterval, time.Millisecond))
	defer ticker.Stop()

	for taken := 0; snapshotCount == 0 || taken < snapshotCount; taken++ {
		if taken > 0 {
			select {
			case <-ctx.Done():
				logger.Info("Interrupted", "snapshots", out.RecordCount())
				return nil
			case <-ticker.C:
			}
		}

		snap, err := assembler.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to take snapshot: %w", err)
		}
		if err := out.Write(snap); err != nil {
			return err
		}
		// Streamed output should be visible per snapshot, not per buffer.
		if err := out.Flush(); err != nil {
			return err
		}
	}

	logger.Debug("Snapshots written", "count", out.RecordCount())
	return nil
}

// logPlatformNotes logs which readings are expected to be degraded on this platform.
func logPlatformNotes(logger *slog.Logger) {
	switch runtime.GOOS {
	case osAndroid:
		logger.Debug("Running on Android: battery needs the termux-api helper, sensors are usually restricted")
	case osDarwin:
		logger.Debug("Running on macOS: /proc is unavailable, readings come from system calls only")
	case osLinux:
		if os.Getenv("TERMUX_VERSION") != "" {
			logger.Debug("Running under Termux: battery needs the termux-api helper")
		}
	default:
		logger.Warn("Running on untested platform, many readings may be null", "os", runtime.GOOS)
	}
}
