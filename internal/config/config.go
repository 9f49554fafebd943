// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the bridge daemon's YAML configuration: which GPIO
// pins carry CLOCK/DATA/LATCH, which control board model is wired up, and
// an error-message language that is passed on as purespa.Opts.Language.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Hatles/esp32-purespa/devices/purespa"
)

// Pins names the three GPIO lines the bus is wired to, by the name
// periph.io/x/periph/conn/gpio/gpioreg knows them under (e.g. "GPIO4",
// "6").
type Pins struct {
	Clock string `yaml:"clock"`
	Data  string `yaml:"data"`
	Latch string `yaml:"latch"`
}

// Timing holds optional overrides of the firmware's CYCLE::PERIOD and
// BUTTON::ACK_TIMEOUT constants, for bench testing against a slower
// simulated panel. Both are time.Duration strings (e.g. "50ms"); an empty
// field leaves the corresponding default in place.
type Timing struct {
	Period     string `yaml:"period"`
	AckTimeout string `yaml:"ackTimeout"`
}

// Config is the bridge daemon's top-level configuration document.
type Config struct {
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Pins     Pins   `yaml:"pins"`
	Timing   Timing `yaml:"timing"`
}

// Default returns the configuration used when no file is given: an SB-H20
// board wired to CLOCK=GPIO4, DATA=GPIO5, LATCH=GPIO6, English messages.
func Default() *Config {
	return &Config{
		Model:    "sb-h20",
		Language: "en",
		Pins: Pins{
			Clock: "GPIO4",
			Data:  "GPIO5",
			Latch: "GPIO6",
		},
	}
}

// Load reads and parses a YAML configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// ParseModel converts the configured model name into a purespa.Model.
func (c *Config) ParseModel() (purespa.Model, error) {
	return purespa.ParseModel(c.Model)
}

// ParseLanguage converts the configured language name into a
// purespa.Language. An unrecognized or empty name defaults to English.
func (c *Config) ParseLanguage() purespa.Language {
	switch c.Language {
	case "de":
		return purespa.LangDE
	case "code":
		return purespa.LangCode
	default:
		return purespa.LangEN
	}
}

// ParsePeriod parses the configured CYCLE::PERIOD override. It returns zero
// (no override) when Timing.Period is empty.
func (c *Config) ParsePeriod() (time.Duration, error) {
	if c.Timing.Period == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timing.Period)
	if err != nil {
		return 0, fmt.Errorf("config: timing.period: %w", err)
	}
	return d, nil
}

// ParseAckTimeout parses the configured BUTTON::ACK_TIMEOUT override. It
// returns zero (no override) when Timing.AckTimeout is empty.
func (c *Config) ParseAckTimeout() (time.Duration, error) {
	if c.Timing.AckTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timing.AckTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: timing.ackTimeout: %w", err)
	}
	return d, nil
}
