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

package exporter

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mustafasahin0/devicestats/pkg/metrics"
)

// Format is an output encoding for snapshots.
type Format string

// Supported output formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

const (
	naString        = "N/A"
	timestampLayout = "2006-01-02 15:04:05"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be json, yaml, or csv)", s)
	}
}

// Exporter writes snapshots to an output stream with buffering.
// Several snapshots may be written; CSV gets one header and one row per snapshot.
type Exporter struct {
	format        Format
	file          *os.File
	bufWriter     *bufio.Writer
	csvWriter     *csv.Writer
	jsonEncoder   *json.Encoder
	yamlEncoder   *yaml.Encoder
	location      *time.Location // Timezone for CSV timestamps
	headerWritten bool
	recordCount   int
}

// New creates an exporter writing to w.
func New(w io.Writer, format Format, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}

	bufWriter := bufio.NewWriterSize(w, 8192)
	e := &Exporter{
		format:    format,
		bufWriter: bufWriter,
		location:  loc,
	}

	switch format {
	case FormatCSV:
		e.csvWriter = csv.NewWriter(bufWriter)
	case FormatYAML:
		e.yamlEncoder = yaml.NewEncoder(bufWriter)
		e.yamlEncoder.SetIndent(2)
	default:
		e.jsonEncoder = json.NewEncoder(bufWriter)
		e.jsonEncoder.SetIndent("", "  ")
	}

	return e
}

// NewFile creates an exporter appending to the file at path.
// A CSV header is only written when the file is empty.
func NewFile(path string, format Format, loc *time.Location) (*Exporter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	e := New(file, format, loc)
	e.file = file
	e.headerWritten = stat.Size() > 0
	return e, nil
}

// Write encodes one snapshot.
func (e *Exporter) Write(snapshot *metrics.Snapshot) error {
	var err error
	switch e.format {
	case FormatCSV:
		err = e.writeCSV(snapshot)
	case FormatYAML:
		err = e.yamlEncoder.Encode(snapshot)
	default:
		err = e.jsonEncoder.Encode(snapshot)
	}
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	e.recordCount++
	return nil
}

func (e *Exporter) writeCSV(snapshot *metrics.Snapshot) error {
	if !e.headerWritten {
		if err := e.csvWriter.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.headerWritten = true
	}
	return e.csvWriter.Write(e.buildRow(snapshot))
}

var csvHeader = []string{
	"Timestamp",
	"Device",
	"Platform",
	"Architecture",
	"Hostname",
	"Memory Total (bytes)",
	"Memory Used (bytes)",
	"Memory Free (bytes)",
	"Memory Utilization (%)",
	"CPU Model",
	"CPU Cores",
	"CPU Usage (%)",
	"Load 1m",
	"Load 5m",
	"Load 15m",
	"Temperature (C)",
	"Uptime (s)",
	"Uptime",
	"Battery Level (%)",
	"Battery Charging",
}

// buildRow flattens a snapshot into one CSV row; unknown values become N/A.
func (e *Exporter) buildRow(s *metrics.Snapshot) []string {
	row := []string{
		s.Timestamp.In(e.location).Format(timestampLayout),
		s.Device.Name,
		s.Device.Platform,
		s.Device.Architecture,
		s.Device.Hostname,
		formatUint(s.Memory.TotalBytes),
		formatUint(s.Memory.UsedBytes),
		formatUint(s.Memory.FreeBytes),
		formatInt(s.Memory.UsedPercent),
		s.CPU.Model,
		strconv.Itoa(s.CPU.CoreCount),
		formatInt(s.CPU.UsagePercent),
	}

	for i := 0; i < 3; i++ {
		if i < len(s.CPU.LoadAverages) {
			row = append(row, s.CPU.LoadAverages[i])
		} else {
			row = append(row, naString)
		}
	}

	temperature := naString
	if s.CPU.TemperatureCelsius != nil {
		temperature = strconv.FormatFloat(*s.CPU.TemperatureCelsius, 'f', 1, 64)
	}
	uptimeHuman := naString
	if s.System.UptimeHuman != nil {
		uptimeHuman = *s.System.UptimeHuman
	}
	charging := naString
	if s.Battery.Charging != nil {
		charging = strconv.FormatBool(*s.Battery.Charging)
	}

	return append(row,
		temperature,
		formatUint(s.System.UptimeSeconds),
		uptimeHuman,
		formatInt(s.Battery.LevelPercent),
		charging,
	)
}

func formatUint(v *uint64) string {
	if v == nil {
		return naString
	}
	return strconv.FormatUint(*v, 10)
}

func formatInt(v *int) string {
	if v == nil {
		return naString
	}
	return strconv.Itoa(*v)
}

// Flush writes buffered data to the underlying writer.
func (e *Exporter) Flush() error {
	if e.csvWriter != nil {
		e.csvWriter.Flush()
		if err := e.csvWriter.Error(); err != nil {
			return fmt.Errorf("CSV writer error: %w", err)
		}
	}

	if err := e.bufWriter.Flush(); err != nil {
		return fmt.Errorf("buffer writer error: %w", err)
	}
	return nil
}

// Close flushes remaining data and closes the output file, if any.
func (e *Exporter) Close() error {
	if e.yamlEncoder != nil {
		if err := e.yamlEncoder.Close(); err != nil {
			return fmt.Errorf("YAML encoder error: %w", err)
		}
	}

	if err := e.Flush(); err != nil {
		return err
	}

	if e.file != nil {
		if err := e.file.Close(); err != nil {
			return fmt.Errorf("failed to close file: %w", err)
		}
	}
	return nil
}

// RecordCount returns the number of snapshots written.
func (e *Exporter) RecordCount() int {
	return e.recordCount
}
