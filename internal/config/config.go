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

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Device DeviceConfig `yaml:"device"`
	Probes ProbeConfig  `yaml:"probes"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       float64       `yaml:"rate_limit"` // requests per second on /api, 0 = unlimited
	RateBurst       int           `yaml:"rate_burst"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty = stderr
}

// DeviceConfig describes the host for display.
type DeviceConfig struct {
	Name string `yaml:"name"` // empty = hostname
}

// ProbeConfig holds the candidate sources each probe tries in order.
type ProbeConfig struct {
	CPUInfoPath string `yaml:"cpuinfo_path"`
	MemInfoPath string `yaml:"meminfo_path"`
	LoadAvgPath string `yaml:"loadavg_path"`
	UptimePath  string `yaml:"uptime_path"`

	ThermalPaths []string `yaml:"thermal_paths"`
	HostSensors  bool     `yaml:"host_sensors"` // fall back to gopsutil sensors after ThermalPaths

	BatteryHelper        string        `yaml:"battery_helper"` // empty disables the helper
	BatteryHelperArgs    []string      `yaml:"battery_helper_args"`
	HelperTimeout        time.Duration `yaml:"helper_timeout"`
	BatteryCapacityPaths []string      `yaml:"battery_capacity_paths"`
	BatteryStatusPaths   []string      `yaml:"battery_status_paths"`

	DefaultCoreCount int    `yaml:"default_core_count"`
	DefaultCPUModel  string `yaml:"default_cpu_model"`
}

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "info"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimit       = 0.0 // unlimited
	DefaultRateBurst       = 20
	DefaultBatteryHelper   = "termux-battery-status"
	DefaultHelperTimeout   = 3 * time.Second
	MaxHelperTimeout       = 10 * time.Second
	DefaultCoreCount       = 1
	DefaultCPUModel        = "Unknown CPU"
	DefaultCPUInfoPath     = "/proc/cpuinfo"
	DefaultMemInfoPath     = "/proc/meminfo"
	DefaultLoadAvgPath     = "/proc/loadavg"
	DefaultUptimePath      = "/proc/uptime"
	defaultPowerSupplyPath = "/sys/class/power_supply"
	defaultThermalZonePath = "/sys/class/thermal/thermal_zone0/temp"
	defaultVirtualZonePath = "/sys/devices/virtual/thermal/thermal_zone0/temp"
	defaultBatteryCapacity = defaultPowerSupplyPath + "/battery/capacity"
	defaultBatteryStatus   = defaultPowerSupplyPath + "/battery/status"
	defaultBAT0Capacity    = defaultPowerSupplyPath + "/BAT0/capacity"
	defaultBAT0Status      = defaultPowerSupplyPath + "/BAT0/status"
	defaultBAT1Capacity    = defaultPowerSupplyPath + "/BAT1/capacity"
	defaultBAT1Status      = defaultPowerSupplyPath + "/BAT1/status"
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit:       DefaultRateLimit,
			RateBurst:       DefaultRateBurst,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Probes: ProbeConfig{
			CPUInfoPath:          DefaultCPUInfoPath,
			MemInfoPath:          DefaultMemInfoPath,
			LoadAvgPath:          DefaultLoadAvgPath,
			UptimePath:           DefaultUptimePath,
			ThermalPaths:         []string{defaultThermalZonePath, defaultVirtualZonePath},
			HostSensors:          true,
			BatteryHelper:        DefaultBatteryHelper,
			HelperTimeout:        DefaultHelperTimeout,
			BatteryCapacityPaths: []string{defaultBatteryCapacity, defaultBAT0Capacity, defaultBAT1Capacity},
			BatteryStatusPaths:   []string{defaultBatteryStatus, defaultBAT0Status, defaultBAT1Status},
			DefaultCoreCount:     DefaultCoreCount,
			DefaultCPUModel:      DefaultCPUModel,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// parseCommaSeparated parses a comma-separated string into a slice of trimmed strings.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// ParseCommaSeparated is the exported version of parseCommaSeparated.
func ParseCommaSeparated(s string) []string {
	return parseCommaSeparated(s)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}

	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return errors.New("rate burst must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	return c.Probes.Validate()
}

// Validate checks the probe settings.
func (p *ProbeConfig) Validate() error {
	if p.BatteryHelper != "" {
		if p.HelperTimeout <= 0 {
			return errors.New("helper timeout must be positive")
		}
		if p.HelperTimeout > MaxHelperTimeout {
			return fmt.Errorf("helper timeout must not exceed %v", MaxHelperTimeout)
		}
	}

	if p.DefaultCoreCount < 1 {
		return errors.New("default core count must be at least 1")
	}

	if strings.TrimSpace(p.DefaultCPUModel) == "" {
		return errors.New("default CPU model cannot be empty")
	}

	paths := map[string][]string{
		"cpuinfo path":           {p.CPUInfoPath},
		"meminfo path":           {p.MemInfoPath},
		"loadavg path":           {p.LoadAvgPath},
		"uptime path":            {p.UptimePath},
		"thermal paths":          p.ThermalPaths,
		"battery capacity paths": p.BatteryCapacityPaths,
		"battery status paths":   p.BatteryStatusPaths,
	}
	for name, list := range paths {
		for _, path := range list {
			if !strings.HasPrefix(path, "/") {
				return fmt.Errorf("%s must be absolute: %q", name, path)
			}
		}
	}

	return nil
}

// Address returns the listen address of the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// String returns a human-readable representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Address=%s, LogLevel=%s, Helper=%q, HelperTimeout=%v, ThermalPaths=%d, BatteryPaths=%d}",
		c.Address(), c.Log.Level, c.Probes.BatteryHelper, c.Probes.HelperTimeout,
		len(c.Probes.ThermalPaths), len(c.Probes.BatteryCapacityPaths))
}
