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
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// helperWaitDelay bounds how long a killed helper may hold its output pipes.
const helperWaitDelay = 500 * time.Millisecond

// Source is the read-only view of the host that probes are built on.
// Every method may fail; probes turn failures into unknown values.
type Source interface {
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	CPUInfo(ctx context.Context) ([]cpu.InfoStat, error)
	LoadAverage(ctx context.Context) (*load.AvgStat, error)
	HostInfo(ctx context.Context) (*host.InfoStat, error)
	Uptime(ctx context.Context) (uint64, error)
	Temperatures(ctx context.Context) ([]host.TemperatureStat, error)
	Hostname() (string, error)

	// ReadFile reads an absolute pseudo-filesystem path such as /proc/cpuinfo.
	ReadFile(path string) ([]byte, error)

	// Run executes an external helper and returns its stdout.
	// The process is reaped before Run returns, including on ctx expiry.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// HostSource implements Source with gopsutil and the local filesystem.
type HostSource struct {
	fsys fs.FS
}

// NewHostSource creates a Source rooted at "/".
func NewHostSource() *HostSource {
	return &HostSource{fsys: os.DirFS("/")}
}

// NewHostSourceFS creates a Source whose pseudo-files are read from fsys.
// Paths are resolved relative to the root of fsys.
func NewHostSourceFS(fsys fs.FS) *HostSource {
	return &HostSource{fsys: fsys}
}

// VirtualMemory implements Source.
func (s *HostSource) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

// CPUInfo implements Source.
func (s *HostSource) CPUInfo(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

// LoadAverage implements Source.
func (s *HostSource) LoadAverage(ctx context.Context) (*load.AvgStat, error) {
	return load.AvgWithContext(ctx)
}

// HostInfo implements Source.
func (s *HostSource) HostInfo(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

// Uptime implements Source.
func (s *HostSource) Uptime(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

// Temperatures implements Source.
func (s *HostSource) Temperatures(ctx context.Context) ([]host.TemperatureStat, error) {
	return host.SensorsTemperaturesWithContext(ctx)
}

// Hostname implements Source.
func (s *HostSource) Hostname() (string, error) {
	return os.Hostname()
}

// ReadFile implements Source.
func (s *HostSource) ReadFile(path string) ([]byte, error) {
	name := strings.TrimPrefix(path, "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid path %q", path)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Run implements Source.
func (s *HostSource) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("helper %q not available: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.WaitDelay = helperWaitDelay

	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("helper %q did not finish: %w", name, ctxErr)
	}
	if err != nil {
		return nil, fmt.Errorf("helper %q failed: %w", name, err)
	}
	return out, nil
}
