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

	"github.com/mustafasahin0/devicestats/pkg/metrics"
)

// MemoryProbe reads total and free physical memory.
type MemoryProbe struct {
	src         Source
	memInfoPath string
	logger      *slog.Logger
}

// NewMemoryProbe creates a new memory probe instance.
func NewMemoryProbe(src Source, memInfoPath string, logger *slog.Logger) *MemoryProbe {
	return &MemoryProbe{
		src:         src,
		memInfoPath: memInfoPath,
		logger:      logger,
	}
}

// Probe returns the memory reading, or NotFound when no source is readable.
func (m *MemoryProbe) Probe(ctx context.Context) Result[metrics.MemoryReading] {
	return FirstOf(ctx, m.logger, "memory",
		Strategy[metrics.MemoryReading]{Name: "gopsutil", Try: m.fromGopsutil},
		Strategy[metrics.MemoryReading]{Name: m.memInfoPath, Try: m.fromMemInfo},
	)
}

func (m *MemoryProbe) fromGopsutil(ctx context.Context) (metrics.MemoryReading, error) {
	vm, err := m.src.VirtualMemory(ctx)
	if err != nil {
		return metrics.MemoryReading{}, fmt.Errorf("failed to get memory stats: %w", err)
	}
	if vm.Total == 0 {
		return metrics.MemoryReading{}, errors.New("total memory is zero")
	}

	// Available includes reclaimable cache; Free alone overstates usage on Linux.
	free := vm.Available
	if free == 0 {
		free = vm.Free
	}
	return metrics.MemoryReading{Total: vm.Total, Free: free}, nil
}

func (m *MemoryProbe) fromMemInfo(_ context.Context) (metrics.MemoryReading, error) {
	data, err := m.src.ReadFile(m.memInfoPath)
	if err != nil {
		return metrics.MemoryReading{}, err
	}
	return parseMemInfo(string(data))
}

// parseMemInfo extracts MemTotal and MemAvailable (or MemFree) from /proc/meminfo.
func parseMemInfo(content string) (metrics.MemoryReading, error) {
	var total, available, free uint64
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = kb * 1024
		case "MemAvailable:":
			available = kb * 1024
		case "MemFree:":
			free = kb * 1024
		}
	}

	if total == 0 {
		return metrics.MemoryReading{}, errors.New("MemTotal not found")
	}
	if available > 0 {
		free = available
	}
	return metrics.MemoryReading{Total: total, Free: free}, nil
}
