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

package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MiB is 2^20 bytes.
	MiB = 1 << 20
	// GiB is 2^30 bytes.
	GiB = 1 << 30

	// millidegreeThreshold separates millidegree from whole-degree thermal readings.
	millidegreeThreshold = 1000

	// UptimePlaceholder is rendered when the uptime is shorter than a minute.
	UptimePlaceholder = "< 1m"
)

// CalculateUsedPercent returns round(used / total * 100).
// Formula: used = total - free. Returns 0 for a zero total.
func CalculateUsedPercent(total, free uint64) int {
	if total == 0 {
		return 0
	}
	used := CalculateUsed(total, free)
	return int(math.Round(float64(used) / float64(total) * 100.0))
}

// CalculateUsed returns total - free, floored at zero.
func CalculateUsed(total, free uint64) uint64 {
	if free > total {
		return 0
	}
	return total - free
}

// CalculateLoadUsagePercent estimates CPU usage from the 1-minute load average.
// Formula: clamp(round(load1 / cores * 100), 0, 100)
//
// Load average counts runnable and uninterruptible tasks, not CPU time, so this
// is an approximation for display only.
func CalculateLoadUsagePercent(load1 float64, cores int) int {
	if cores <= 0 || math.IsNaN(load1) {
		return 0
	}
	pct := math.Round(load1 / float64(cores) * 100.0)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}

// FormatBytes renders a byte count as "X.XX GB" from 1 GiB up, else as whole "N MB".
func FormatBytes(b uint64) string {
	if b >= GiB {
		return fmt.Sprintf("%.2f GB", float64(b)/GiB)
	}
	return fmt.Sprintf("%d MB", uint64(math.Round(float64(b)/MiB)))
}

// FormatUptime renders seconds as "1d 2h 3m", skipping zero units.
func FormatUptime(seconds uint64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	if len(parts) == 0 {
		return UptimePlaceholder
	}
	return strings.Join(parts, " ")
}

// FormatLoad renders a load average with two decimals.
func FormatLoad(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatLoadAverages renders the 1/5/15-minute values in order.
func FormatLoadAverages(avg LoadAverage) []string {
	return []string{FormatLoad(avg.Load1), FormatLoad(avg.Load5), FormatLoad(avg.Load15)}
}

// ParseThermal converts the content of a thermal zone file to degrees Celsius.
// Values whose magnitude exceeds 1000 are millidegrees. The result is rounded to one decimal.
func ParseThermal(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid thermal reading %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid thermal reading %q", raw)
	}
	if math.Abs(v) > millidegreeThreshold {
		v /= 1000.0
	}
	return math.Round(v*10) / 10, nil
}
