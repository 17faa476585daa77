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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mustafasahin0/devicestats/internal/config"
)

// BatteryReading is the resolved battery level and charging state.
// Each field resolves on its own; a partial result is valid.
type BatteryReading struct {
	Level    Result[int]
	Charging Result[bool]
}

// helperStatus is the subset of the battery helper's JSON output we use.
// termux-battery-status emits "percentage"; other helpers use "level".
type helperStatus struct {
	Percentage *float64 `json:"percentage"`
	Level      *float64 `json:"level"`
	Status     string   `json:"status"`
}

// BatteryProbe reads battery state from a helper program, then from
// power_supply pseudo-files. Hosts without a battery yield NotFound.
type BatteryProbe struct {
	src           Source
	helper        string
	helperArgs    []string
	helperTimeout time.Duration
	capacityPaths []string
	statusPaths   []string
	logger        *slog.Logger
}

// NewBatteryProbe creates a new battery probe from the probe configuration.
func NewBatteryProbe(src Source, cfg config.ProbeConfig, logger *slog.Logger) *BatteryProbe {
	return &BatteryProbe{
		src:           src,
		helper:        cfg.BatteryHelper,
		helperArgs:    cfg.BatteryHelperArgs,
		helperTimeout: cfg.HelperTimeout,
		capacityPaths: cfg.BatteryCapacityPaths,
		statusPaths:   cfg.BatteryStatusPaths,
		logger:        logger,
	}
}

// Probe resolves level and charging state independently.
func (b *BatteryProbe) Probe(ctx context.Context) BatteryReading {
	// The helper runs at most once; both chains share its output.
	runHelper := sync.OnceValues(func() (helperStatus, error) {
		return b.runHelper(ctx)
	})

	levelStrategies := make([]Strategy[int], 0, len(b.capacityPaths)+1)
	chargingStrategies := make([]Strategy[bool], 0, len(b.statusPaths)+1)

	if b.helper != "" {
		levelStrategies = append(levelStrategies, Strategy[int]{Name: b.helper, Try: func(context.Context) (int, error) {
			st, err := runHelper()
			if err != nil {
				return 0, err
			}
			return st.level()
		}})
		chargingStrategies = append(chargingStrategies, Strategy[bool]{Name: b.helper, Try: func(context.Context) (bool, error) {
			st, err := runHelper()
			if err != nil {
				return false, err
			}
			return parseChargingStatus(st.Status)
		}})
	}

	for _, path := range b.capacityPaths {
		path := path
		levelStrategies = append(levelStrategies, Strategy[int]{Name: path, Try: func(context.Context) (int, error) {
			data, err := b.src.ReadFile(path)
			if err != nil {
				return 0, err
			}
			return parseCapacity(string(data))
		}})
	}
	for _, path := range b.statusPaths {
		path := path
		chargingStrategies = append(chargingStrategies, Strategy[bool]{Name: path, Try: func(context.Context) (bool, error) {
			data, err := b.src.ReadFile(path)
			if err != nil {
				return false, err
			}
			return parseChargingStatus(string(data))
		}})
	}

	return BatteryReading{
		Level:    FirstOf(ctx, b.logger, "battery.level", levelStrategies...),
		Charging: FirstOf(ctx, b.logger, "battery.charging", chargingStrategies...),
	}
}

// runHelper invokes the helper under its own deadline. A timeout only fails
// this strategy; the caller's context is left intact for the file fallbacks.
func (b *BatteryProbe) runHelper(ctx context.Context) (helperStatus, error) {
	hctx, cancel := context.WithTimeout(ctx, b.helperTimeout)
	defer cancel()

	out, err := b.src.Run(hctx, b.helper, b.helperArgs...)
	if err != nil {
		return helperStatus{}, err
	}

	var st helperStatus
	if err := json.Unmarshal(out, &st); err != nil {
		return helperStatus{}, fmt.Errorf("failed to parse %s output: %w", b.helper, err)
	}
	return st, nil
}

func (s helperStatus) level() (int, error) {
	v := s.Percentage
	if v == nil {
		v = s.Level
	}
	if v == nil {
		return 0, errors.New("helper reported no percentage")
	}
	return validLevel(*v)
}

// parseCapacity parses a power_supply capacity file.
func parseCapacity(content string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid capacity %q: %w", strings.TrimSpace(content), err)
	}
	return validLevel(v)
}

func validLevel(v float64) (int, error) {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return 0, fmt.Errorf("battery level %v out of range", v)
	}
	return int(math.Round(v)), nil
}

// parseChargingStatus maps a status string to the charging flag.
// "charging" and "full" count as charging; an empty or "unknown" status is no answer.
func parseChargingStatus(status string) (bool, error) {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "", unknownValue:
		return false, fmt.Errorf("indeterminate battery status %q", status)
	case "charging", "full":
		return true, nil
	default:
		return false, nil
	}
}
