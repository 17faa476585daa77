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

import "time"

// Snapshot is one point-in-time reading of the host.
// Unknown values are nil pointers so every key is always present in JSON (as null).
type Snapshot struct {
	Device    DeviceInfo   `json:"device" yaml:"device"`
	Memory    MemoryStats  `json:"memory" yaml:"memory"`
	CPU       CPUStats     `json:"cpu" yaml:"cpu"`
	System    SystemStats  `json:"system" yaml:"system"`
	Battery   BatteryStats `json:"battery" yaml:"battery"`
	Timestamp time.Time    `json:"timestamp" yaml:"timestamp"`
}

// DeviceInfo describes the host. All fields are always populated.
type DeviceInfo struct {
	Name         string `json:"name" yaml:"name"`
	Platform     string `json:"platform" yaml:"platform"`
	Architecture string `json:"architecture" yaml:"architecture"`
	Hostname     string `json:"hostname" yaml:"hostname"`
}

// MemoryStats represents physical memory usage.
type MemoryStats struct {
	TotalBytes  *uint64 `json:"totalBytes" yaml:"totalBytes"`
	UsedBytes   *uint64 `json:"usedBytes" yaml:"usedBytes"`
	FreeBytes   *uint64 `json:"freeBytes" yaml:"freeBytes"`
	UsedPercent *int    `json:"usedPercent" yaml:"usedPercent"` // 0-100
	Total       *string `json:"total" yaml:"total"`             // e.g. "7.50 GB"
	Used        *string `json:"used" yaml:"used"`
	Free        *string `json:"free" yaml:"free"`
}

// CPUStats represents processor identity and load.
type CPUStats struct {
	Model     string `json:"model" yaml:"model"`
	CoreCount int    `json:"coreCount" yaml:"coreCount"`
	// UsagePercent is estimated from the 1-minute load average, not measured.
	UsagePercent       *int     `json:"usagePercent" yaml:"usagePercent"`
	LoadAverages       []string `json:"loadAverages" yaml:"loadAverages"` // 1, 5, 15 minutes
	TemperatureCelsius *float64 `json:"temperatureCelsius" yaml:"temperatureCelsius"`
}

// SystemStats represents host-wide uptime.
type SystemStats struct {
	UptimeSeconds *uint64 `json:"uptimeSeconds" yaml:"uptimeSeconds"`
	UptimeHuman   *string `json:"uptimeHuman" yaml:"uptimeHuman"`
}

// BatteryStats represents battery state. Level and charging are independent.
type BatteryStats struct {
	LevelPercent *int  `json:"levelPercent" yaml:"levelPercent"`
	Charging     *bool `json:"charging" yaml:"charging"`
}

// LoadAverage holds the raw 1/5/15-minute load averages.
type LoadAverage struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// MemoryReading holds raw physical memory counters in bytes.
type MemoryReading struct {
	Total uint64
	Free  uint64
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
