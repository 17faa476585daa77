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
	"strconv"
	"strings"
	"sync"

	"github.com/mustafasahin0/devicestats/pkg/metrics"
	"github.com/shirou/gopsutil/v3/cpu"
)

// SourceDefault names the fixed fallback values.
const SourceDefault = "default"

// CPUIdentity is the resolved processor model and logical core count.
type CPUIdentity struct {
	Cores Result[int]
	Model Result[string]
}

// CPUIdentityProbe determines the logical core count and a model label.
// The chain is total: it always yields a value.
type CPUIdentityProbe struct {
	src          Source
	cpuInfoPath  string
	defaultCores int
	defaultModel string
	logger       *slog.Logger
}

// NewCPUIdentityProbe creates a new CPU identity probe instance.
func NewCPUIdentityProbe(src Source, cpuInfoPath string, defaultCores int, defaultModel string, logger *slog.Logger) *CPUIdentityProbe {
	return &CPUIdentityProbe{
		src:          src,
		cpuInfoPath:  cpuInfoPath,
		defaultCores: defaultCores,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// cpuInfo is the part of /proc/cpuinfo the probe cares about.
type cpuInfo struct {
	processors int
	model      string
}

// Probe resolves core count and model as two chains over the same ordered
// sources: /proc/cpuinfo, the gopsutil descriptor list, then the defaults.
func (c *CPUIdentityProbe) Probe(ctx context.Context) CPUIdentity {
	// Each source is read at most once per probe.
	readInfo := sync.OnceValues(func() (cpuInfo, error) {
		data, err := c.src.ReadFile(c.cpuInfoPath)
		if err != nil {
			return cpuInfo{}, err
		}
		return parseCPUInfo(string(data)), nil
	})
	readDescriptors := sync.OnceValues(func() ([]cpu.InfoStat, error) {
		infos, err := c.src.CPUInfo(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get CPU descriptors: %w", err)
		}
		if len(infos) == 0 {
			return nil, errors.New("no CPU descriptors reported")
		}
		return infos, nil
	})

	cores := FirstOf(ctx, c.logger, "cpu.cores",
		Strategy[int]{Name: c.cpuInfoPath, Try: func(context.Context) (int, error) {
			info, err := readInfo()
			if err != nil {
				return 0, err
			}
			if info.processors == 0 {
				return 0, errors.New("no processor lines")
			}
			return info.processors, nil
		}},
		Strategy[int]{Name: "gopsutil", Try: func(context.Context) (int, error) {
			infos, err := readDescriptors()
			if err != nil {
				return 0, err
			}
			return len(infos), nil
		}},
		Strategy[int]{Name: SourceDefault, Try: func(context.Context) (int, error) {
			return c.defaultCores, nil
		}},
	)

	model := FirstOf(ctx, c.logger, "cpu.model",
		Strategy[string]{Name: c.cpuInfoPath, Try: func(context.Context) (string, error) {
			info, err := readInfo()
			if err != nil {
				return "", err
			}
			if info.model == "" {
				return "", errors.New("no Hardware or model name line")
			}
			return info.model, nil
		}},
		Strategy[string]{Name: "gopsutil", Try: func(context.Context) (string, error) {
			infos, err := readDescriptors()
			if err != nil {
				return "", err
			}
			name := strings.TrimSpace(infos[0].ModelName)
			if name == "" {
				return "", errors.New("descriptor has no model name")
			}
			return name, nil
		}},
		Strategy[string]{Name: SourceDefault, Try: func(context.Context) (string, error) {
			return c.defaultModel, nil
		}},
	)

	// A cancelled context can skip the default step; the chain must stay total.
	if !cores.Found {
		cores = Found(SourceDefault, c.defaultCores)
	}
	if !model.Found {
		model = Found(SourceDefault, c.defaultModel)
	}

	return CPUIdentity{Cores: cores, Model: model}
}

// parseCPUInfo counts "processor" lines and picks the first Hardware label,
// falling back to the first "model name". Hardware is what ARM kernels on
// phones expose and is the more descriptive of the two there.
func parseCPUInfo(content string) cpuInfo {
	var info cpuInfo
	var hardware, modelName string

	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "processor":
			info.processors++
		case "Hardware":
			if hardware == "" {
				hardware = value
			}
		case "model name":
			if modelName == "" {
				modelName = value
			}
		}
	}

	info.model = hardware
	if info.model == "" {
		info.model = modelName
	}
	return info
}

// CPULoadProbe reads the 1/5/15-minute load averages.
type CPULoadProbe struct {
	src         Source
	loadAvgPath string
	logger      *slog.Logger
}

// NewCPULoadProbe creates a new CPU load probe instance.
func NewCPULoadProbe(src Source, loadAvgPath string, logger *slog.Logger) *CPULoadProbe {
	return &CPULoadProbe{
		src:         src,
		loadAvgPath: loadAvgPath,
		logger:      logger,
	}
}

// Probe returns the load averages, or NotFound when no source is readable.
func (c *CPULoadProbe) Probe(ctx context.Context) Result[metrics.LoadAverage] {
	return FirstOf(ctx, c.logger, "cpu.load",
		Strategy[metrics.LoadAverage]{Name: "gopsutil", Try: func(ctx context.Context) (metrics.LoadAverage, error) {
			avg, err := c.src.LoadAverage(ctx)
			if err != nil {
				return metrics.LoadAverage{}, fmt.Errorf("failed to get load average: %w", err)
			}
			return metrics.LoadAverage{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
		}},
		Strategy[metrics.LoadAverage]{Name: c.loadAvgPath, Try: func(context.Context) (metrics.LoadAverage, error) {
			data, err := c.src.ReadFile(c.loadAvgPath)
			if err != nil {
				return metrics.LoadAverage{}, err
			}
			return parseLoadAvg(string(data))
		}},
	)
}

// parseLoadAvg reads the first three fields of /proc/loadavg.
func parseLoadAvg(content string) (metrics.LoadAverage, error) {
	fields := strings.Fields(content)
	if len(fields) < 3 {
		return metrics.LoadAverage{}, fmt.Errorf("unexpected loadavg format %q", content)
	}

	var values [3]float64
	for i := range values {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return metrics.LoadAverage{}, fmt.Errorf("invalid load value %q: %w", fields[i], err)
		}
		values[i] = v
	}
	return metrics.LoadAverage{Load1: values[0], Load5: values[1], Load15: values[2]}, nil
}
