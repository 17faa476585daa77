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

package inventory

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/mustafasahin0/devicestats/internal/collector"
	"github.com/mustafasahin0/devicestats/internal/config"
	"github.com/mustafasahin0/devicestats/pkg/metrics"
)

// Dependency injection points for testing
var (
	lookPath           = exec.LookPath
	sensorTemperatures = host.SensorsTemperatures
)

// Candidate kinds.
const (
	KindFile    = "file"
	KindHelper  = "helper"
	KindSensors = "sensors"
)

const naString = "N/A"

// Reader reads absolute pseudo-filesystem paths.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

// Candidate is one configured source a probe may read from.
type Candidate struct {
	Probe     string
	Kind      string
	Location  string
	Available bool
	Detail    string
}

// ListCandidates checks every configured source without running the
// battery helper itself.
func ListCandidates(r Reader, cfg config.ProbeConfig) []Candidate {
	candidates := []Candidate{
		checkFile(r, "cpu", cfg.CPUInfoPath, summarizeLines),
		checkFile(r, "memory", cfg.MemInfoPath, summarizeLines),
		checkFile(r, "load", cfg.LoadAvgPath, firstLine),
		checkFile(r, "uptime", cfg.UptimePath, firstLine),
	}

	for _, path := range cfg.ThermalPaths {
		candidates = append(candidates, checkFile(r, "thermal", path, func(s string) string {
			c, err := metrics.ParseThermal(s)
			if err != nil {
				return "unparseable"
			}
			return fmt.Sprintf("%.1f C", c)
		}))
	}

	if cfg.HostSensors {
		candidates = append(candidates, checkSensors())
	}

	if cfg.BatteryHelper != "" {
		c := Candidate{Probe: "battery", Kind: KindHelper, Location: cfg.BatteryHelper}
		if path, err := lookPath(cfg.BatteryHelper); err == nil {
			c.Available = true
			c.Detail = path
		} else {
			c.Detail = "not installed"
		}
		candidates = append(candidates, c)
	}

	for _, path := range cfg.BatteryCapacityPaths {
		candidates = append(candidates, checkFile(r, "battery", path, firstLine))
	}
	for _, path := range cfg.BatteryStatusPaths {
		candidates = append(candidates, checkFile(r, "battery", path, firstLine))
	}

	return candidates
}

func checkFile(r Reader, probe, path string, describe func(string) string) Candidate {
	c := Candidate{Probe: probe, Kind: KindFile, Location: path}
	data, err := r.ReadFile(path)
	if err != nil {
		c.Detail = "unreadable"
		return c
	}
	c.Available = true
	c.Detail = describe(string(data))
	return c
}

func checkSensors() Candidate {
	c := Candidate{Probe: "thermal", Kind: KindSensors, Location: collector.SourceSensors}
	temps, _ := sensorTemperatures()
	if len(temps) == 0 {
		c.Detail = "no sensors"
		return c
	}
	c.Available = true
	c.Detail = fmt.Sprintf("%d sensors", len(temps))
	return c
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return truncate(line, 30)
}

func summarizeLines(s string) string {
	return fmt.Sprintf("%d lines", strings.Count(s, "\n"))
}

// FormatCandidatesTable formats probe candidates as a table.
func FormatCandidatesTable(candidates []Candidate) string {
	var sb strings.Builder

	sb.WriteString("\nProbe Sources:\n")
	sb.WriteString(strings.Repeat("=", 100))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-10s %-8s %-50s %-6s %s\n", "PROBE", "KIND", "LOCATION", "OK", "DETAIL"))
	sb.WriteString(strings.Repeat("-", 100))
	sb.WriteString("\n")

	for _, c := range candidates {
		ok := "no"
		if c.Available {
			ok = "yes"
		}
		detail := c.Detail
		if detail == "" {
			detail = naString
		}
		sb.WriteString(fmt.Sprintf("%-10s %-8s %-50s %-6s %s\n",
			c.Probe,
			c.Kind,
			truncate(c.Location, 50),
			ok,
			detail,
		))
	}

	sb.WriteString(strings.Repeat("=", 100))
	sb.WriteString("\n")

	return sb.String()
}

// FormatSourcesTable formats which source produced each snapshot field.
func FormatSourcesTable(sources []collector.SourceReport) string {
	var sb strings.Builder

	sb.WriteString("\nResolved Fields:\n")
	sb.WriteString(strings.Repeat("=", 80))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-20s %s\n", "FIELD", "SOURCE"))
	sb.WriteString(strings.Repeat("-", 80))
	sb.WriteString("\n")

	for _, s := range sources {
		source := s.Source
		if source == collector.SourceNone {
			source = "(unknown)"
		}
		sb.WriteString(fmt.Sprintf("%-20s %s\n", s.Field, source))
	}

	sb.WriteString(strings.Repeat("=", 80))
	sb.WriteString("\n")

	return sb.String()
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
