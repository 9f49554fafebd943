// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDevLEDGettersUndefinedBeforeFirstLatch(t *testing.T) {
	d := newTestDev(SBH20)
	assert.Equal(t, Undefined, d.IsPowerOn())
	assert.Equal(t, Undefined, d.IsBuzzerOn())
	assert.Equal(t, UndefinedInt, d.GetActWaterTempCelsius())
	assert.Equal(t, 0, d.GetDisinfectionTime(), "disinfection is off (False) while undefined")
}

func TestDevLEDGettersAfterLatch(t *testing.T) {
	d := newTestDev(SBH20)
	mask := SBH20.led()
	d.state.ledStatus.Store(uint32(mask.power | mask.heaterOn))
	d.state.buzzer.Store(true)

	assert.Equal(t, True, d.IsPowerOn())
	assert.Equal(t, False, d.IsFilterOn())
	assert.Equal(t, True, d.IsHeaterOn())
	assert.Equal(t, False, d.IsHeaterStandby())
	assert.Equal(t, True, d.IsBuzzerOn())
}

func TestDevJetAndDisinfectionGatedByModel(t *testing.T) {
	sb := newTestDev(SBH20)
	sb.state.ledStatus.Store(0) // latched, but SB-H20 has no jet/disinfection bits
	assert.Equal(t, False, sb.IsJetOn())
	assert.Equal(t, False, sb.IsDisinfectionOn())

	sj := newTestDev(SJBHS)
	mask := SJBHS.led()
	sj.state.ledStatus.Store(uint32(mask.jet | mask.disinfection))
	assert.Equal(t, True, sj.IsJetOn())
	assert.Equal(t, True, sj.IsDisinfectionOn())
}

func TestDevGetActWaterTempCelsius(t *testing.T) {
	d := newTestDev(SBH20)
	d.state.waterTemp.Store(uint32(mkWord('0', '3', '5', 'C')))
	assert.Equal(t, 35, d.GetActWaterTempCelsius())
}

func TestDevGetErrorCodeAndMessage(t *testing.T) {
	d := newTestDev(SBH20)
	assert.Equal(t, "", d.GetErrorCode())

	d.state.errorCode.Store(uint32('E') | uint32('9')<<8 | uint32('0')<<16)
	assert.Equal(t, "E90", d.GetErrorCode())
	assert.Equal(t, "no water flow", d.GetErrorMessage(d.GetErrorCode(), LangEN))
}

func TestDevStringAndModel(t *testing.T) {
	d := newTestDev(SJBHS)
	assert.Equal(t, SJBHS, d.GetModel())
	assert.Equal(t, "Intex PureSpa SJB-HS", d.GetModelName())
	assert.Contains(t, d.String(), "SJB-HS")
}

func TestDevSnapshotReflectsState(t *testing.T) {
	d := newTestDev(SBH20)
	mask := SBH20.led()
	d.state.ledStatus.Store(uint32(mask.power | mask.filter | mask.noBeep))
	d.state.online.Store(true)
	d.state.waterTemp.Store(uint32(mkWord('0', '2', '8', 'C')))
	d.state.frameCounter.Store(42)

	snap := d.Snapshot()
	assert.True(t, snap.Online)
	assert.Equal(t, True, snap.Power)
	assert.Equal(t, True, snap.Filter)
	assert.Equal(t, False, snap.Buzzer, "NO_BEEP bit set means buzzer is off")
	assert.Equal(t, 28, snap.ActWaterTempCelsius)
	assert.Equal(t, uint32(42), snap.TotalFrames)
}
