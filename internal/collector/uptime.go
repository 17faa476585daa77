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
	"math"
	"strconv"
	"strings"
)

// UptimeProbe reads the host-wide uptime (seconds since boot).
type UptimeProbe struct {
	src        Source
	uptimePath string
	logger     *slog.Logger
}

// NewUptimeProbe creates a new uptime probe instance.
func NewUptimeProbe(src Source, uptimePath string, logger *slog.Logger) *UptimeProbe {
	return &UptimeProbe{
		src:        src,
		uptimePath: uptimePath,
		logger:     logger,
	}
}

// Probe returns uptime in whole seconds.
func (u *UptimeProbe) Probe(ctx context.Context) Result[uint64] {
	return FirstOf(ctx, u.logger, "system.uptime",
		Strategy[uint64]{Name: "gopsutil", Try: func(ctx context.Context) (uint64, error) {
			secs, err := u.src.Uptime(ctx)
			if err != nil {
				return 0, fmt.Errorf("failed to get uptime: %w", err)
			}
			return secs, nil
		}},
		Strategy[uint64]{Name: u.uptimePath, Try: func(context.Context) (uint64, error) {
			data, err := u.src.ReadFile(u.uptimePath)
			if err != nil {
				return 0, err
			}
			return parseUptime(string(data))
		}},
	)
}

// parseUptime reads the first field of /proc/uptime ("12345.67 54321.00").
func parseUptime(content string) (uint64, error) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return 0, errors.New("empty uptime file")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid uptime %q: %w", fields[0], err)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid uptime %q", fields[0])
	}
	return uint64(v), nil
}
