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
	"io"
	"log/slog"
	"sync/atomic"
	"testing/fstest"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

var errUnavailable = errors.New("not available on this host")

// fakeSource is a deterministic Source. Nil stats report errUnavailable.
type fakeSource struct {
	vm       *mem.VirtualMemoryStat
	cpus     []cpu.InfoStat
	loadAvg  *load.AvgStat
	hostInfo *host.InfoStat
	uptime   *uint64
	temps    []host.TemperatureStat
	hostname string
	files    fstest.MapFS
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
	runCalls atomic.Int32
}

func (f *fakeSource) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	if f.vm == nil {
		return nil, errUnavailable
	}
	return f.vm, nil
}

func (f *fakeSource) CPUInfo(context.Context) ([]cpu.InfoStat, error) {
	if f.cpus == nil {
		return nil, errUnavailable
	}
	return f.cpus, nil
}

func (f *fakeSource) LoadAverage(context.Context) (*load.AvgStat, error) {
	if f.loadAvg == nil {
		return nil, errUnavailable
	}
	return f.loadAvg, nil
}

func (f *fakeSource) HostInfo(context.Context) (*host.InfoStat, error) {
	if f.hostInfo == nil {
		return nil, errUnavailable
	}
	return f.hostInfo, nil
}

func (f *fakeSource) Uptime(context.Context) (uint64, error) {
	if f.uptime == nil {
		return 0, errUnavailable
	}
	return *f.uptime, nil
}

func (f *fakeSource) Temperatures(context.Context) ([]host.TemperatureStat, error) {
	if f.temps == nil {
		return nil, errUnavailable
	}
	return f.temps, nil
}

func (f *fakeSource) Hostname() (string, error) {
	if f.hostname == "" {
		return "", errUnavailable
	}
	return f.hostname, nil
}

func (f *fakeSource) ReadFile(path string) ([]byte, error) {
	return NewHostSourceFS(f.files).ReadFile(path)
}

func (f *fakeSource) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.runCalls.Add(1)
	if f.run == nil {
		return nil, errUnavailable
	}
	return f.run(ctx, name, args...)
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func helperOutput(out string) func(context.Context, string, ...string) ([]byte, error) {
	return func(context.Context, string, ...string) ([]byte, error) {
		return []byte(out), nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
