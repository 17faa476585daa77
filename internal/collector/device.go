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
	"log/slog"
	"runtime"
	"strings"

	"github.com/mustafasahin0/devicestats/pkg/metrics"
)

const unknownValue = "unknown"

// DeviceProbe describes the host. It never fails; missing fields fall back to
// the Go runtime and finally to "unknown".
type DeviceProbe struct {
	src    Source
	name   string
	logger *slog.Logger
}

// NewDeviceProbe creates a new device probe. An empty name means the hostname.
func NewDeviceProbe(src Source, name string, logger *slog.Logger) *DeviceProbe {
	return &DeviceProbe{
		src:    src,
		name:   strings.TrimSpace(name),
		logger: logger,
	}
}

// Probe returns the device identity.
func (d *DeviceProbe) Probe(ctx context.Context) metrics.DeviceInfo {
	var info metrics.DeviceInfo

	hi, err := d.src.HostInfo(ctx)
	if err != nil || hi == nil {
		d.logger.Debug("Host info unavailable", "error", err)
	} else {
		info.Platform = hi.OS
		info.Architecture = hi.KernelArch
		info.Hostname = hi.Hostname
	}

	if info.Platform == "" {
		info.Platform = runtime.GOOS
	}
	if info.Architecture == "" {
		info.Architecture = runtime.GOARCH
	}
	if info.Hostname == "" {
		if h, err := d.src.Hostname(); err == nil && h != "" {
			info.Hostname = h
		} else {
			info.Hostname = unknownValue
		}
	}

	info.Name = d.name
	if info.Name == "" {
		info.Name = info.Hostname
	}
	return info
}
