// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Hatles/esp32-purespa/devices/purespa"
)

func TestDefault(t *testing.T) {
	c := Default()
	model, err := c.ParseModel()
	assert.NoError(t, err)
	assert.Equal(t, purespa.SBH20, model)
	assert.Equal(t, purespa.LangEN, c.ParseLanguage())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "purespa.yaml")
	doc := "model: sjb-hs\nlanguage: de\npins:\n  clock: GPIO17\n  data: GPIO27\n  latch: GPIO22\n"
	assert.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	assert.NoError(t, err)

	model, err := c.ParseModel()
	assert.NoError(t, err)
	assert.Equal(t, purespa.SJBHS, model)
	assert.Equal(t, purespa.LangDE, c.ParseLanguage())
	assert.Equal(t, "GPIO17", c.Pins.Clock)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultHasNoTimingOverrides(t *testing.T) {
	c := Default()
	period, err := c.ParsePeriod()
	assert.NoError(t, err)
	assert.Zero(t, period)

	ackTimeout, err := c.ParseAckTimeout()
	assert.NoError(t, err)
	assert.Zero(t, ackTimeout)
}

func TestLoadTimingOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "purespa.yaml")
	doc := "model: sb-h20\ntiming:\n  period: 50ms\n  ackTimeout: 2s\n"
	assert.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	assert.NoError(t, err)

	period, err := c.ParsePeriod()
	assert.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, period)

	ackTimeout, err := c.ParseAckTimeout()
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Second, ackTimeout)
}

func TestParsePeriodInvalid(t *testing.T) {
	c := Default()
	c.Timing.Period = "not-a-duration"
	_, err := c.ParsePeriod()
	assert.Error(t, err)
}
