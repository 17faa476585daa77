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
	"time"

	"github.com/spf13/cobra"

	"github.com/mustafasahin0/devicestats/internal/config"
)

var (
	// Probe source flags, shared by every command that collects snapshots
	batteryHelper string
	helperTimeout time.Duration
	thermalPaths  string
	noHostSensors bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&batteryHelper, "battery-helper", config.DefaultBatteryHelper,
		"Battery status helper program (empty = disabled)")
	flags.DurationVar(&helperTimeout, "helper-timeout", config.DefaultHelperTimeout,
		"Maximum run time of the battery helper")
	flags.StringVar(&thermalPaths, "thermal-paths", "",
		"Comma-separated thermal zone files to try in order (empty = defaults)")
	flags.BoolVar(&noHostSensors, "no-host-sensors", false,
		"Do not fall back to OS temperature sensors")
}

// applyProbeFlags overrides probe settings with explicitly set flags.
func applyProbeFlags(cmd *cobra.Command, p *config.ProbeConfig) {
	flags := cmd.Flags()
	if flags.Changed("battery-helper") {
		p.BatteryHelper = batteryHelper
	}
	if flags.Changed("helper-timeout") {
		p.HelperTimeout = helperTimeout
	}
	if paths := config.ParseCommaSeparated(thermalPaths); len(paths) > 0 {
		p.ThermalPaths = paths
	}
	if noHostSensors {
		p.HostSensors = false
	}
}
