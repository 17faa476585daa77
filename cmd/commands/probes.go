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

	"github.com/spf13/cobra"

	"github.com/mustafasahin0/devicestats/internal/collector"
	"github.com/mustafasahin0/devicestats/internal/inventory"
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "Show which source answered each reading",
	Long: `Take one snapshot and report, per reading, which source produced it,
followed by the availability of every configured source.
This helps to tune thermal paths and the battery helper for a device.

Examples:
  # Inspect the default probe chain
  devicestats probes

  # Try an extra thermal zone
  devicestats probes --thermal-paths /sys/class/thermal/thermal_zone7/temp`,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)
}

func runProbes(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := InitLogger(cfg.Log.Level, cfg.Log.File)
	src := collector.NewHostSource()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n========================================")
	fmt.Fprintln(out, "   devicestats - Probe Report")
	fmt.Fprintln(out, "========================================")

	collection, err := collector.NewAssembler(cfg, src, logger).Collect(context.Background())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error collecting snapshot: %v\n", err)
	} else {
		fmt.Fprint(out, inventory.FormatSourcesTable(collection.Sources))
	}

	fmt.Fprint(out, inventory.FormatCandidatesTable(inventory.ListCandidates(src, cfg.Probes)))

	fmt.Fprintln(out, "\nNotes:")
	fmt.Fprintln(out, "  - Readings whose source is \"none\" are reported as null")
	fmt.Fprintln(out, "  - Sources are tried in the order listed; the first usable one wins")
	fmt.Fprintln(out, "  - Use comma to separate multiple thermal paths: --thermal-paths=\"a,b\"")
	fmt.Fprintln(out)

	return nil
}
