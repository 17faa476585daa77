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

	"github.com/mustafasahin0/devicestats/pkg/metrics"
)

// SourceSensors names the gopsutil sensor strategy.
const SourceSensors = "sensors"

// ThermalProbe reads the device temperature from the first readable thermal zone.
// Most servers expose none; an absent reading is normal.
type ThermalProbe struct {
	src         Source
	paths       []string
	hostSensors bool
	logger      *slog.Logger
}

// NewThermalProbe creates a new thermal probe instance.
func NewThermalProbe(src Source, paths []string, hostSensors bool, logger *slog.Logger) *ThermalProbe {
	return &ThermalProbe{
		src:         src,
		paths:       paths,
		hostSensors: hostSensors,
		logger:      logger,
	}
}

// Probe returns the temperature in degrees Celsius.
func (t *ThermalProbe) Probe(ctx context.Context) Result[float64] {
	strategies := make([]Strategy[float64], 0, len(t.paths)+1)
	for _, path := range t.paths {
		strategies = append(strategies, Strategy[float64]{Name: path, Try: t.readZone(path)})
	}
	if t.hostSensors {
		strategies = append(strategies, Strategy[float64]{Name: SourceSensors, Try: t.fromSensors})
	}
	return FirstOf(ctx, t.logger, "cpu.temperature", strategies...)
}

func (t *ThermalProbe) readZone(path string) func(context.Context) (float64, error) {
	return func(context.Context) (float64, error) {
		data, err := t.src.ReadFile(path)
		if err != nil {
			return 0, err
		}
		return metrics.ParseThermal(string(data))
	}
}

func (t *ThermalProbe) fromSensors(ctx context.Context) (float64, error) {
	temps, err := t.src.Temperatures(ctx)
	// gopsutil returns partial readings together with a warnings error.
	if len(temps) == 0 {
		if err == nil {
			err = errors.New("no sensors reported")
		}
		return 0, fmt.Errorf("failed to read sensors: %w", err)
	}
	for _, ts := range temps {
		if ts.Temperature > 0 {
			return metrics.ParseThermal(fmt.Sprintf("%f", ts.Temperature))
		}
	}
	return 0, errors.New("no sensor with a positive reading")
}
