// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import (
	"sync/atomic"
	"time"
)

// Desired-water-temperature bounds accepted by SetDesiredWaterTempCelsius
// (spec.md §4.7).
const (
	waterTempSetMin = 20
	waterTempSetMax = 40
)

// pressButton is the Command Engine's single-key press primitive (spec.md
// §4.7): after the bus settles (waitBuzzerOff), it arms the key's press
// counter for BUTTON::PRESS_COUNT frames and waits up to the ack timeout for
// either the counter to drain (the injector stopped replying) or the buzzer
// to come on (the panel acknowledged). It reports whether the buzzer came
// on.
func (d *Dev) pressButton(counter *atomic.Uint32) bool {
	d.waitBuzzerOff()

	tries := int(d.t.ackTimeout / d.t.ackCheckPeriod)
	counter.Store(uint32(d.t.pressCount))
	for counter.Load() != 0 && !d.state.buzzer.Load() && tries > 0 {
		sleep(d.t.ackCheckPeriod)
		tries--
	}
	return d.state.buzzer.Load()
}

// waitBuzzerOff blocks until the buzzer goes off or the ack timeout elapses,
// then settles for two more cycle periods so the bus is quiescent before the
// caller arms a new press. It reports false on timeout.
func (d *Dev) waitBuzzerOff() bool {
	tries := int(d.t.ackTimeout / d.t.ackCheckPeriod)
	for d.state.buzzer.Load() && tries > 0 {
		sleep(d.t.ackCheckPeriod)
		tries--
	}
	if tries == 0 {
		return false
	}
	sleep(2 * d.t.cyclePeriod)
	return true
}

// changeWaterTemp nudges the setpoint one notch up (up>0) or down (up<0): a
// short press, then a wait for the buzzer to acknowledge. It refuses while
// the panel is off or latched into an error (spec.md §4.7).
func (d *Dev) changeWaterTemp(up int) bool {
	if d.IsPowerOn() != True || d.state.errorCode.Load() != 0 {
		return false
	}
	d.waitBuzzerOff()

	var counter *atomic.Uint32
	switch {
	case up > 0:
		counter = &d.buttons.tempUp
	case up < 0:
		counter = &d.buttons.tempDown
	default:
		return false
	}

	tries := int(d.t.pressShortCount) * cyclePeriodMs / buttonAckCheckMs
	counter.Store(uint32(d.t.pressShortCount))
	for counter.Load() != 0 && tries > 0 {
		sleep(d.t.ackCheckPeriod)
		tries--
	}
	counter.Store(0)

	tries = (int(d.t.pressCount) - int(d.t.pressShortCount)) * cyclePeriodMs / buttonAckCheckMs
	for !d.state.buzzer.Load() && tries > 0 {
		sleep(d.t.ackCheckPeriod)
		tries--
	}
	return d.state.buzzer.Load()
}

// SetDesiredWaterTempCelsius drives the setpoint toward temp by repeated
// short presses, re-reading the panel's actual setpoint after every
// acknowledged press, until it matches or the retry budget (scaled to the
// starting distance) is exhausted. temp outside [20,40] is ignored.
func (d *Dev) SetDesiredWaterTempCelsius(temp int) {
	if temp < waterTempSetMin || temp > waterTempSetMax {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.IsPowerOn() != True || d.state.errorCode.Load() != 0 {
		return
	}

	if !d.changeWaterTemp(-1) {
		d.changeWaterTemp(+1)
	}

	const stepMs = 5 * cyclePeriodMs
	changeTries := 3
	setTemp := UndefinedInt
	readActual := true

	for {
		readTries := 4 * blinkPeriodMs / stepMs
		newSetTemp := setTemp
		if readActual {
			newSetTemp = UndefinedInt
			d.waitBuzzerOff()
			sleep(blinkPeriodMs * time.Millisecond)
		}
		for readActual {
			newSetTemp = d.GetDesiredWaterTempCelsius()
			readTries--
			readActual = newSetTemp == setTemp && readTries > 0
			if readActual {
				sleep(stepMs * time.Millisecond)
			}
		}

		if newSetTemp == UndefinedInt {
			return
		}

		if setTemp == UndefinedInt {
			diff := newSetTemp - temp
			if diff < 0 {
				diff = -diff
			}
			changeTries += diff
			changeTries += changeTries / 10
		}
		setTemp = newSetTemp

		if temp > setTemp {
			readActual = d.changeWaterTemp(+1)
			changeTries--
		} else if temp < setTemp {
			readActual = d.changeWaterTemp(-1)
			changeTries--
		}

		if temp == setTemp || changeTries <= 0 {
			return
		}
	}
}

// SetDisinfectionTime rounds hours up to the next supported rung (0, 3, 5,
// 8; anything above 5 becomes 8) and presses the disinfection key until the panel reports that value, up to
// 8 tries. A no-op on models without a disinfection timer.
func (d *Dev) SetDisinfectionTime(hours int) {
	if !d.model.hasDisinfection() {
		return
	}
	switch {
	case hours > 5:
		hours = 8
	case hours > 3:
		hours = 5
	case hours > 0:
		hours = 3
	default:
		hours = 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.IsPowerOn() != True || d.state.errorCode.Load() != 0 {
		return
	}

	for tries := 8; tries > 0; tries-- {
		actHours := d.GetDisinfectionTime()
		if actHours == UndefinedInt || actHours == hours {
			return
		}
		d.pressButton(&d.buttons.disinfection)
	}
}

// SetPowerOn presses the power key iff the panel's current state disagrees
// with on.
func (d *Dev) SetPowerOn(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if on != (d.IsPowerOn() == True) {
		d.pressButton(&d.buttons.power)
	}
}

// SetFilterOn presses the filter key iff the panel's current state
// disagrees with on.
func (d *Dev) SetFilterOn(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if on != (d.IsFilterOn() == True) {
		d.pressButton(&d.buttons.filter)
	}
}

// SetBubbleOn presses the bubble key iff the panel's current state
// disagrees with on.
func (d *Dev) SetBubbleOn(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if on != (d.IsBubbleOn() == True) {
		d.pressButton(&d.buttons.bubble)
	}
}

// SetJetOn presses the jet key iff the panel's current state disagrees with
// on. A no-op on models without a jet pump.
func (d *Dev) SetJetOn(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.model.hasJet() {
		return
	}
	if on != (d.IsJetOn() == True) {
		d.pressButton(&d.buttons.jet)
	}
}

// SetHeaterOn presses the heater key iff the panel's current heater/standby
// state disagrees with on.
func (d *Dev) SetHeaterOn(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	active := d.IsHeaterOn() == True || d.IsHeaterStandby() == True
	if on != active {
		d.pressButton(&d.buttons.heater)
	}
}
