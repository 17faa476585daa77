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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mustafasahin0/devicestats/internal/config"
	"github.com/mustafasahin0/devicestats/pkg/metrics"
)

// ErrHostUnavailable is returned when neither memory nor load average can be
// read from any source, meaning the OS interface itself is gone.
var ErrHostUnavailable = errors.New("host metrics unavailable")

// SourceReport records which strategy produced a snapshot field.
type SourceReport struct {
	Field  string `json:"field" yaml:"field"`
	Source string `json:"source" yaml:"source"`
}

// Collection is a snapshot together with the provenance of its fields.
type Collection struct {
	Snapshot *metrics.Snapshot
	Sources  []SourceReport
}

// Assembler orchestrates all probes.
type Assembler struct {
	device      *DeviceProbe
	memory      *MemoryProbe
	cpuIdentity *CPUIdentityProbe
	cpuLoad     *CPULoadProbe
	thermal     *ThermalProbe
	battery     *BatteryProbe
	uptime      *UptimeProbe
	now         func() time.Time
	logger      *slog.Logger
}

// NewAssembler creates a new assembler reading the host through src.
func NewAssembler(cfg *config.Config, src Source, logger *slog.Logger) *Assembler {
	p := cfg.Probes
	return &Assembler{
		device:      NewDeviceProbe(src, cfg.Device.Name, logger),
		memory:      NewMemoryProbe(src, p.MemInfoPath, logger),
		cpuIdentity: NewCPUIdentityProbe(src, p.CPUInfoPath, p.DefaultCoreCount, p.DefaultCPUModel, logger),
		cpuLoad:     NewCPULoadProbe(src, p.LoadAvgPath, logger),
		thermal:     NewThermalProbe(src, p.ThermalPaths, p.HostSensors, logger),
		battery:     NewBatteryProbe(src, p, logger),
		uptime:      NewUptimeProbe(src, p.UptimePath, logger),
		now:         time.Now,
		logger:      logger,
	}
}

// Snapshot runs every probe and returns the assembled snapshot.
func (a *Assembler) Snapshot(ctx context.Context) (*metrics.Snapshot, error) {
	c, err := a.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return c.Snapshot, nil
}

// Collect runs every probe concurrently and assembles the snapshot.
// A probe that finds nothing only leaves its fields null.
func (a *Assembler) Collect(ctx context.Context) (*Collection, error) {
	start := time.Now()

	var (
		device   metrics.DeviceInfo
		memory   Result[metrics.MemoryReading]
		identity CPUIdentity
		load     Result[metrics.LoadAverage]
		thermal  Result[float64]
		battery  BatteryReading
		uptime   Result[uint64]
	)

	// Each goroutine owns one variable; Wait publishes them.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { device = a.device.Probe(gctx); return nil })
	g.Go(func() error { memory = a.memory.Probe(gctx); return nil })
	g.Go(func() error { identity = a.cpuIdentity.Probe(gctx); return nil })
	g.Go(func() error { load = a.cpuLoad.Probe(gctx); return nil })
	g.Go(func() error { thermal = a.thermal.Probe(gctx); return nil })
	g.Go(func() error { battery = a.battery.Probe(gctx); return nil })
	g.Go(func() error { uptime = a.uptime.Probe(gctx); return nil })
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("snapshot collection cancelled: %w", err)
	}

	if !memory.Found && !load.Found {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		a.logger.Error("No memory or load source readable")
		return nil, ErrHostUnavailable
	}

	snap := &metrics.Snapshot{
		Device:    device,
		Memory:    buildMemoryStats(memory),
		CPU:       buildCPUStats(identity, load, thermal),
		System:    buildSystemStats(uptime),
		Battery:   metrics.BatteryStats{LevelPercent: battery.Level.Ptr(), Charging: battery.Charging.Ptr()},
		Timestamp: a.now().UTC(),
	}

	sources := []SourceReport{
		{Field: "memory", Source: memory.Source},
		{Field: "cpu.cores", Source: identity.Cores.Source},
		{Field: "cpu.model", Source: identity.Model.Source},
		{Field: "cpu.load", Source: load.Source},
		{Field: "cpu.temperature", Source: thermal.Source},
		{Field: "battery.level", Source: battery.Level.Source},
		{Field: "battery.charging", Source: battery.Charging.Source},
		{Field: "system.uptime", Source: uptime.Source},
	}
	for _, s := range sources {
		probeResultsTotal.WithLabelValues(s.Field, s.Source).Inc()
	}

	duration := time.Since(start)
	snapshotCollectionDuration.Observe(duration.Seconds())
	snapshotCollectionTotal.WithLabelValues("success").Inc()

	a.logger.Debug("Snapshot collected",
		"duration", duration,
		"memory", memory.Source,
		"load", load.Source,
		"temperature", thermal.Source,
		"battery_level", battery.Level.Source,
		"uptime", uptime.Source,
	)

	return &Collection{Snapshot: snap, Sources: sources}, nil
}

func buildMemoryStats(r Result[metrics.MemoryReading]) metrics.MemoryStats {
	if !r.Found {
		return metrics.MemoryStats{}
	}
	total, free := r.Value.Total, r.Value.Free
	if free > total {
		free = total
	}
	used := metrics.CalculateUsed(total, free)
	return metrics.MemoryStats{
		TotalBytes:  metrics.Ptr(total),
		UsedBytes:   metrics.Ptr(used),
		FreeBytes:   metrics.Ptr(free),
		UsedPercent: metrics.Ptr(metrics.CalculateUsedPercent(total, free)),
		Total:       metrics.Ptr(metrics.FormatBytes(total)),
		Used:        metrics.Ptr(metrics.FormatBytes(used)),
		Free:        metrics.Ptr(metrics.FormatBytes(free)),
	}
}

func buildCPUStats(identity CPUIdentity, load Result[metrics.LoadAverage], thermal Result[float64]) metrics.CPUStats {
	stats := metrics.CPUStats{
		Model:              identity.Model.Value,
		CoreCount:          identity.Cores.Value,
		TemperatureCelsius: thermal.Ptr(),
	}
	if load.Found {
		stats.UsagePercent = metrics.Ptr(metrics.CalculateLoadUsagePercent(load.Value.Load1, stats.CoreCount))
		stats.LoadAverages = metrics.FormatLoadAverages(load.Value)
	}
	return stats
}

func buildSystemStats(uptime Result[uint64]) metrics.SystemStats {
	if !uptime.Found {
		return metrics.SystemStats{}
	}
	return metrics.SystemStats{
		UptimeSeconds: metrics.Ptr(uptime.Value),
		UptimeHuman:   metrics.Ptr(metrics.FormatUptime(uptime.Value)),
	}
}
