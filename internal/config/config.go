// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config binds the firmware to host hardware. Device addresses, timings and
// screen texts are fixed and not part of it.
type Config struct {
	// I2C
	I2CBus      string // periph bus name; empty selects the first bus
	I2CSpeedKHz int

	// GPIO
	TriggerPin string // active low, pulled up
	BuzzerPin  string // active high
}

const defaultI2CSpeedKHz = 400

var (
	globalConfig *Config
	globalErr    error
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with defaults for every optional key.
func Default() *Config {
	return &Config{
		I2CSpeedKHz: defaultI2CSpeedKHz,
	}
}

// Load reads a KEY=VALUE configuration file.
func Load(configPath string) (*Config, error) {
	values, err := godotenv.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(values)
}

// Parse builds a Config from key/value pairs.
func Parse(values map[string]string) (*Config, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := Default()
	for _, key := range keys {
		if err := cfg.setValue(key, values[key]); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// I2C
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_SPEED_KHZ":
		speed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid I2C_SPEED_KHZ %q: %w", value, err)
		}
		if speed < 10 || speed > 1000 {
			return fmt.Errorf("I2C_SPEED_KHZ must be 10-1000, got %d", speed)
		}
		c.I2CSpeedKHz = speed

	// GPIO
	case "TRIGGER_PIN":
		c.TriggerPin = value
	case "BUZZER_PIN":
		c.BuzzerPin = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.TriggerPin == "" {
		return fmt.Errorf("TRIGGER_PIN is required")
	}
	if c.BuzzerPin == "" {
		return fmt.Errorf("BUZZER_PIN is required")
	}
	if c.TriggerPin == c.BuzzerPin {
		return fmt.Errorf("TRIGGER_PIN and BUZZER_PIN must differ, both are %q", c.TriggerPin)
	}
	return nil
}

// InitGlobal loads the configuration file once; later calls return the
// first result, including its error.
func InitGlobal(configPath string) error {
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, globalErr = Load(configPath)
	})
	configMu.RLock()
	defer configMu.RUnlock()
	return globalErr
}

// Get returns the global configuration, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
