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

package collector

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mustafasahin0/devicestats/internal/config"
	"github.com/mustafasahin0/devicestats/pkg/metrics"
)

const (
	memInfoFixture = `MemTotal:        8000000 kB
MemFree:          500000 kB
MemAvailable:    2000000 kB
Buffers:          100000 kB
`
	armCPUInfo = `processor	: 0
BogoMIPS	: 38.40
processor	: 1
BogoMIPS	: 38.40
processor	: 2
processor	: 3
Hardware	: Qualcomm Technologies, Inc SM8250
`
	x86CPUInfo = `processor	: 0
vendor_id	: GenuineIntel
model name	: Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz
processor	: 1
model name	: Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz
`
)

func TestMemoryProbe(t *testing.T) {
	tests := []struct {
		name       string
		src        *fakeSource
		want       metrics.MemoryReading
		wantSource string
	}{
		{
			name:       "Gopsutil Available",
			src:        &fakeSource{vm: &mem.VirtualMemoryStat{Total: 1000, Available: 400, Free: 100}},
			want:       metrics.MemoryReading{Total: 1000, Free: 400},
			wantSource: "gopsutil",
		},
		{
			name:       "Gopsutil Without Available Uses Free",
			src:        &fakeSource{vm: &mem.VirtualMemoryStat{Total: 1000, Free: 100}},
			want:       metrics.MemoryReading{Total: 1000, Free: 100},
			wantSource: "gopsutil",
		},
		{
			name: "Zero Total Falls Back To Meminfo",
			src: &fakeSource{
				vm:    &mem.VirtualMemoryStat{},
				files: fstest.MapFS{"proc/meminfo": file(memInfoFixture)},
			},
			want:       metrics.MemoryReading{Total: 8000000 * 1024, Free: 2000000 * 1024},
			wantSource: config.DefaultMemInfoPath,
		},
		{
			name:       "Meminfo Only",
			src:        &fakeSource{files: fstest.MapFS{"proc/meminfo": file(memInfoFixture)}},
			want:       metrics.MemoryReading{Total: 8000000 * 1024, Free: 2000000 * 1024},
			wantSource: config.DefaultMemInfoPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewMemoryProbe(tt.src, config.DefaultMemInfoPath, discardLogger())
			got := p.Probe(context.Background())
			require.True(t, got.Found)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}

	t.Run("No Source", func(t *testing.T) {
		p := NewMemoryProbe(&fakeSource{}, config.DefaultMemInfoPath, discardLogger())
		got := p.Probe(context.Background())
		assert.False(t, got.Found)
		assert.Equal(t, SourceNone, got.Source)
	})
}

func TestParseMemInfo(t *testing.T) {
	t.Run("MemFree When No MemAvailable", func(t *testing.T) {
		got, err := parseMemInfo("MemTotal: 2048 kB\nMemFree: 1024 kB\n")
		require.NoError(t, err)
		assert.Equal(t, metrics.MemoryReading{Total: 2048 * 1024, Free: 1024 * 1024}, got)
	})

	t.Run("Missing Total", func(t *testing.T) {
		_, err := parseMemInfo("MemFree: 1024 kB\n")
		assert.Error(t, err)
	})
}

func TestCPUIdentityProbe(t *testing.T) {
	tests := []struct {
		name        string
		src         *fakeSource
		wantCores   int
		wantModel   string
		coreSource  string
		modelSource string
	}{
		{
			name:        "Hardware Line Preferred",
			src:         &fakeSource{files: fstest.MapFS{"proc/cpuinfo": file(armCPUInfo + "model name\t: ARMv8\n")}},
			wantCores:   4,
			wantModel:   "Qualcomm Technologies, Inc SM8250",
			coreSource:  config.DefaultCPUInfoPath,
			modelSource: config.DefaultCPUInfoPath,
		},
		{
			name:        "Model Name Line",
			src:         &fakeSource{files: fstest.MapFS{"proc/cpuinfo": file(x86CPUInfo)}},
			wantCores:   2,
			wantModel:   "Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz",
			coreSource:  config.DefaultCPUInfoPath,
			modelSource: config.DefaultCPUInfoPath,
		},
		{
			name: "Zero Processor Lines Fall Through To Descriptors",
			src: &fakeSource{
				files: fstest.MapFS{"proc/cpuinfo": file("Hardware\t: Something\n")},
				cpus:  []cpu.InfoStat{{ModelName: "Apple M2"}, {ModelName: "Apple M2"}, {ModelName: "Apple M2"}},
			},
			wantCores:   3,
			wantModel:   "Something",
			coreSource:  "gopsutil",
			modelSource: config.DefaultCPUInfoPath,
		},
		{
			name: "Unreadable Cpuinfo Uses Descriptors",
			src: &fakeSource{
				cpus: []cpu.InfoStat{{ModelName: " Apple M2 "}},
			},
			wantCores:   1,
			wantModel:   "Apple M2",
			coreSource:  "gopsutil",
			modelSource: "gopsutil",
		},
		{
			name: "Processor Lines Without Label Take Model From Descriptors",
			src: &fakeSource{
				files: fstest.MapFS{"proc/cpuinfo": file("processor\t: 0\nprocessor\t: 1\n")},
				cpus:  []cpu.InfoStat{{ModelName: "Cortex-A55"}},
			},
			wantCores:   2,
			wantModel:   "Cortex-A55",
			coreSource:  config.DefaultCPUInfoPath,
			modelSource: "gopsutil",
		},
		{
			name:        "Nothing Available Uses Defaults",
			src:         &fakeSource{cpus: []cpu.InfoStat{}},
			wantCores:   config.DefaultCoreCount,
			wantModel:   config.DefaultCPUModel,
			coreSource:  SourceDefault,
			modelSource: SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCPUIdentityProbe(tt.src, config.DefaultCPUInfoPath,
				config.DefaultCoreCount, config.DefaultCPUModel, discardLogger())
			got := p.Probe(context.Background())

			assert.Equal(t, tt.wantCores, got.Cores.Value)
			assert.Equal(t, tt.wantModel, got.Model.Value)
			assert.Equal(t, tt.coreSource, got.Cores.Source)
			assert.Equal(t, tt.modelSource, got.Model.Source)
		})
	}
}

func TestCPUIdentityProbe_CancelledStaysTotal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewCPUIdentityProbe(&fakeSource{}, config.DefaultCPUInfoPath, 2, "Fallback", discardLogger())
	got := p.Probe(ctx)

	assert.True(t, got.Cores.Found)
	assert.Equal(t, 2, got.Cores.Value)
	assert.Equal(t, "Fallback", got.Model.Value)
}

func TestCPULoadProbe(t *testing.T) {
	t.Run("Gopsutil", func(t *testing.T) {
		src := &fakeSource{loadAvg: &load.AvgStat{Load1: 1.5, Load5: 0.75, Load15: 0.25}}
		got := NewCPULoadProbe(src, config.DefaultLoadAvgPath, discardLogger()).Probe(context.Background())
		require.True(t, got.Found)
		assert.Equal(t, metrics.LoadAverage{Load1: 1.5, Load5: 0.75, Load15: 0.25}, got.Value)
		assert.Equal(t, "gopsutil", got.Source)
	})

	t.Run("Loadavg File", func(t *testing.T) {
		src := &fakeSource{files: fstest.MapFS{"proc/loadavg": file("0.52 0.58 0.59 1/467 12345\n")}}
		got := NewCPULoadProbe(src, config.DefaultLoadAvgPath, discardLogger()).Probe(context.Background())
		require.True(t, got.Found)
		assert.Equal(t, metrics.LoadAverage{Load1: 0.52, Load5: 0.58, Load15: 0.59}, got.Value)
		assert.Equal(t, config.DefaultLoadAvgPath, got.Source)
	})

	t.Run("Malformed Loadavg", func(t *testing.T) {
		src := &fakeSource{files: fstest.MapFS{"proc/loadavg": file("0.52 abc\n")}}
		got := NewCPULoadProbe(src, config.DefaultLoadAvgPath, discardLogger()).Probe(context.Background())
		assert.False(t, got.Found)
	})
}

func TestThermalProbe(t *testing.T) {
	paths := []string{
		"/sys/class/thermal/thermal_zone0/temp",
		"/sys/devices/virtual/thermal/thermal_zone0/temp",
	}

	tests := []struct {
		name        string
		src         *fakeSource
		hostSensors bool
		want        *float64
		wantSource  string
	}{
		{
			name:       "Millidegrees",
			src:        &fakeSource{files: fstest.MapFS{"sys/class/thermal/thermal_zone0/temp": file("45000\n")}},
			want:       metrics.Ptr(45.0),
			wantSource: paths[0],
		},
		{
			name:       "Whole Degrees From Second Path",
			src:        &fakeSource{files: fstest.MapFS{"sys/devices/virtual/thermal/thermal_zone0/temp": file("45\n")}},
			want:       metrics.Ptr(45.0),
			wantSource: paths[1],
		},
		{
			name: "Unparseable First Path Falls Through",
			src: &fakeSource{files: fstest.MapFS{
				"sys/class/thermal/thermal_zone0/temp":            file("garbage"),
				"sys/devices/virtual/thermal/thermal_zone0/temp": file("38500"),
			}},
			want:       metrics.Ptr(38.5),
			wantSource: paths[1],
		},
		{
			name: "Host Sensors Fallback",
			src: &fakeSource{temps: []host.TemperatureStat{
				{SensorKey: "acpitz", Temperature: 0},
				{SensorKey: "coretemp_package_id_0", Temperature: 52.25},
			}},
			hostSensors: true,
			want:        metrics.Ptr(52.3),
			wantSource:  SourceSensors,
		},
		{
			name:        "Host Sensors Disabled",
			src:         &fakeSource{temps: []host.TemperatureStat{{Temperature: 52}}},
			hostSensors: false,
			wantSource:  SourceNone,
		},
		{
			name:        "Server Without Sensors",
			src:         &fakeSource{},
			hostSensors: true,
			wantSource:  SourceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewThermalProbe(tt.src, paths, tt.hostSensors, discardLogger())
			got := p.Probe(context.Background())
			assert.Equal(t, tt.want, got.Ptr())
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func batteryConfig() config.ProbeConfig {
	cfg := config.Default().Probes
	cfg.HelperTimeout = 200 * time.Millisecond
	return cfg
}

func TestBatteryProbe(t *testing.T) {
	const (
		capacityPath = "sys/class/power_supply/battery/capacity"
		statusPath   = "sys/class/power_supply/battery/status"
		bat0Capacity = "sys/class/power_supply/BAT0/capacity"
		bat0Status   = "sys/class/power_supply/BAT0/status"
	)

	tests := []struct {
		name         string
		src          *fakeSource
		wantLevel    *int
		wantCharging *bool
	}{
		{
			name:         "Helper Charging",
			src:          &fakeSource{run: helperOutput(`{"health":"GOOD","percentage":85,"plugged":"PLUGGED_AC","status":"CHARGING"}`)},
			wantLevel:    metrics.Ptr(85),
			wantCharging: metrics.Ptr(true),
		},
		{
			name:         "Helper Full Counts As Charging",
			src:          &fakeSource{run: helperOutput(`{"percentage":100,"status":"FULL"}`)},
			wantLevel:    metrics.Ptr(100),
			wantCharging: metrics.Ptr(true),
		},
		{
			name:         "Helper Level Field",
			src:          &fakeSource{run: helperOutput(`{"level":42,"status":"DISCHARGING"}`)},
			wantLevel:    metrics.Ptr(42),
			wantCharging: metrics.Ptr(false),
		},
		{
			name: "Malformed Helper Output Falls Back To Files",
			src: &fakeSource{
				run: helperOutput("not json"),
				files: fstest.MapFS{
					capacityPath: file("67\n"),
					statusPath:   file("Discharging\n"),
				},
			},
			wantLevel:    metrics.Ptr(67),
			wantCharging: metrics.Ptr(false),
		},
		{
			name: "Second Candidate Path",
			src: &fakeSource{files: fstest.MapFS{
				bat0Capacity: file("91\n"),
				bat0Status:   file("Full\n"),
			}},
			wantLevel:    metrics.Ptr(91),
			wantCharging: metrics.Ptr(true),
		},
		{
			name:      "Partial Result Preserved",
			src:       &fakeSource{files: fstest.MapFS{capacityPath: file("50\n")}},
			wantLevel: metrics.Ptr(50),
		},
		{
			name: "Helper Status Unknown Falls Back For Charging Only",
			src: &fakeSource{
				run:   helperOutput(`{"percentage":30,"status":"UNKNOWN"}`),
				files: fstest.MapFS{statusPath: file("Charging\n")},
			},
			wantLevel:    metrics.Ptr(30),
			wantCharging: metrics.Ptr(true),
		},
		{
			name:      "Out Of Range Level Rejected",
			src:       &fakeSource{files: fstest.MapFS{capacityPath: file("250\n"), bat0Capacity: file("80\n")}},
			wantLevel: metrics.Ptr(80),
		},
		{
			name: "No Battery",
			src:  &fakeSource{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewBatteryProbe(tt.src, batteryConfig(), discardLogger())
			got := p.Probe(context.Background())

			assert.Equal(t, tt.wantLevel, got.Level.Ptr())
			assert.Equal(t, tt.wantCharging, got.Charging.Ptr())
			assert.LessOrEqual(t, tt.src.runCalls.Load(), int32(1), "helper must run at most once")
		})
	}
}

func TestBatteryProbe_HelperTimeout(t *testing.T) {
	src := &fakeSource{
		run: func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		files: fstest.MapFS{
			"sys/class/power_supply/battery/capacity": file("12\n"),
			"sys/class/power_supply/battery/status":   file("Not charging\n"),
		},
	}
	cfg := batteryConfig()
	cfg.HelperTimeout = 20 * time.Millisecond

	start := time.Now()
	got := NewBatteryProbe(src, cfg, discardLogger()).Probe(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, metrics.Ptr(12), got.Level.Ptr())
	assert.Equal(t, metrics.Ptr(false), got.Charging.Ptr())
	assert.Equal(t, int32(1), src.runCalls.Load())
}

func TestBatteryProbe_HelperDisabled(t *testing.T) {
	src := &fakeSource{run: helperOutput(`{"percentage":85,"status":"CHARGING"}`)}
	cfg := batteryConfig()
	cfg.BatteryHelper = ""

	got := NewBatteryProbe(src, cfg, discardLogger()).Probe(context.Background())

	assert.False(t, got.Level.Found)
	assert.False(t, got.Charging.Found)
	assert.Equal(t, int32(0), src.runCalls.Load())
}

func TestParseChargingStatus(t *testing.T) {
	tests := []struct {
		status  string
		want    bool
		wantErr bool
	}{
		{"Charging", true, false},
		{"CHARGING", true, false},
		{"Full\n", true, false},
		{"Discharging", false, false},
		{"Not charging", false, false},
		{"NOT_CHARGING", false, false},
		{"Unknown", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got, err := parseChargingStatus(tt.status)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUptimeProbe(t *testing.T) {
	t.Run("Gopsutil", func(t *testing.T) {
		got := NewUptimeProbe(&fakeSource{uptime: metrics.Ptr(uint64(3725))}, config.DefaultUptimePath, discardLogger()).
			Probe(context.Background())
		assert.Equal(t, Found("gopsutil", uint64(3725)), got)
	})

	t.Run("Proc Uptime", func(t *testing.T) {
		src := &fakeSource{files: fstest.MapFS{"proc/uptime": file("90000.87 170000.12\n")}}
		got := NewUptimeProbe(src, config.DefaultUptimePath, discardLogger()).Probe(context.Background())
		assert.Equal(t, Found(config.DefaultUptimePath, uint64(90000)), got)
	})

	t.Run("Unavailable", func(t *testing.T) {
		got := NewUptimeProbe(&fakeSource{}, config.DefaultUptimePath, discardLogger()).Probe(context.Background())
		assert.False(t, got.Found)
	})
}

func TestDeviceProbe(t *testing.T) {
	t.Run("Host Info", func(t *testing.T) {
		src := &fakeSource{hostInfo: &host.InfoStat{OS: "android", KernelArch: "aarch64", Hostname: "localhost"}}
		got := NewDeviceProbe(src, "Pixel 7", discardLogger()).Probe(context.Background())
		assert.Equal(t, metrics.DeviceInfo{
			Name:         "Pixel 7",
			Platform:     "android",
			Architecture: "aarch64",
			Hostname:     "localhost",
		}, got)
	})

	t.Run("Name Defaults To Hostname", func(t *testing.T) {
		src := &fakeSource{hostname: "server-01"}
		got := NewDeviceProbe(src, "", discardLogger()).Probe(context.Background())
		assert.Equal(t, "server-01", got.Name)
		assert.Equal(t, "server-01", got.Hostname)
		assert.NotEmpty(t, got.Platform)
		assert.NotEmpty(t, got.Architecture)
	})

	t.Run("Nothing Available", func(t *testing.T) {
		got := NewDeviceProbe(&fakeSource{}, "", discardLogger()).Probe(context.Background())
		assert.Equal(t, unknownValue, got.Hostname)
		assert.Equal(t, unknownValue, got.Name)
	})
}
