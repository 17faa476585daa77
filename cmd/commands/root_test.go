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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mustafasahin0/devicestats/internal/config"
)

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devicestats.yaml")
	yml := "device:\n  name: from-file\nprobes:\n  battery_helper: custom-helper\n  helper_timeout: 2s\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cmd := serveCmd
	t.Cleanup(func() {
		configPath, thermalPaths, noHostSensors = "", "", false
		helperTimeout, servePort = config.DefaultHelperTimeout, 0
		resetChanged(t, cmd, "config", "helper-timeout", "thermal-paths", "no-host-sensors", "port")
	})

	require.NoError(t, cmd.ParseFlags([]string{
		"--config", path,
		"--helper-timeout", "5s",
		"--thermal-paths", "/a/temp, /b/temp",
		"--no-host-sensors",
		"--port", "9090",
	}))

	cfg, err := buildConfig(cmd, func(c *config.Config) { c.Server.Port = servePort })
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Device.Name)
	assert.Equal(t, "custom-helper", cfg.Probes.BatteryHelper)
	assert.Equal(t, 5*time.Second, cfg.Probes.HelperTimeout)
	assert.Equal(t, []string{"/a/temp", "/b/temp"}, cfg.Probes.ThermalPaths)
	assert.False(t, cfg.Probes.HostSensors)
	assert.Equal(t, 9090, cfg.Server.Port)
}

// resetChanged clears pflag's Changed state; persistent flags are shared by
// every command, so a parsed flag would otherwise leak into later tests.
func resetChanged(t *testing.T, cmd *cobra.Command, names ...string) {
	t.Helper()
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			f = rootCmd.PersistentFlags().Lookup(name)
		}
		require.NotNil(t, f, name)
		f.Changed = false
	}
}

func TestBuildConfig_NoFlagsKeepsDefaults(t *testing.T) {
	cfg, err := buildConfig(serveCmd)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultHelperTimeout, cfg.Probes.HelperTimeout)
	assert.Equal(t, config.DefaultBatteryHelper, cfg.Probes.BatteryHelper)
	assert.True(t, cfg.Probes.HostSensors)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
}

func TestBuildConfig_InvalidOverride(t *testing.T) {
	_, err := buildConfig(versionCmd, func(c *config.Config) { c.Server.Port = -1 })
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoadLocation(t *testing.T) {
	t.Cleanup(func() { timezone = "Local" })

	timezone = "UTC"
	loc, err := loadLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), loc.String())

	timezone = "Not/AZone"
	_, err = loadLocation()
	assert.Error(t, err)
}
