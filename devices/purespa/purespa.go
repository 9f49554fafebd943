// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/periph/conn/gpio"
)

// sleep is a package-level indirection over time.Sleep so tests can
// substitute a zero-delay stand-in, grounded on devices/bmxx80's
// `var doSleep = time.Sleep`.
var sleep = time.Sleep

// Opts configures a Dev.
type Opts struct {
	// Model selects the control board variant. Defaults to SBH20 if zero.
	Model Model
	// Language is stored on the Dev. GetErrorMessage does not read it; it
	// translates into the language passed to it.
	Language Language
	// Period overrides CYCLE::PERIOD. Zero keeps the firmware default
	// (21ms); set for bench testing against a slower simulated panel.
	Period time.Duration
	// AckTimeout overrides BUTTON::ACK_TIMEOUT. Zero keeps the
	// model-derived default.
	AckTimeout time.Duration
}

// DefaultOpts returns the default options: SB-H20, English error messages.
func DefaultOpts() *Opts {
	return &Opts{Model: SBH20, Language: LangEN}
}

// Dev is a handle to the bus decoder and command engine for one Intex
// PureSpa control board. It implements periph.io/x/periph/conn.Resource.
type Dev struct {
	model    Model
	language Language
	t        timing

	state   *spaState
	buttons *buttonCounters
	rx      *receiver
	live    *livenessLoop

	mu sync.Mutex // serializes Command Engine operations (arming presses)
}

// New wires CLOCK, DATA and LATCH to a new bus decoder and launches its
// receiver goroutine. CLOCK must support rising-edge interrupts; LATCH and
// DATA are read as plain inputs (DATA is switched to a transient output by
// the button injector during a reply).
//
// New only fails if a pin cannot be put into the required mode, the Go
// analogue of the original firmware's fatal "interrupt registration
// failed at startup" (spec.md §7).
func New(clk, data, latch gpio.PinIO, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = DefaultOpts()
	}
	model := opts.Model
	if model == 0 {
		model = SBH20
	}

	t := newTimingWithOverrides(model.buttonFrames(), opts.Period, opts.AckTimeout)
	state := newSpaState()
	buttons := &buttonCounters{}

	d := &Dev{
		model:    model,
		language: opts.Language,
		t:        t,
		state:    state,
		buttons:  buttons,
	}

	d.rx = newReceiver(clk, data, latch, model, t, state, buttons)
	if err := d.rx.start(); err != nil {
		return nil, fmt.Errorf("purespa: %w", err)
	}
	d.live = newLivenessLoop(state, t.cyclePeriod, t.receiveTimeout)
	d.live.start()
	return d, nil
}

// String implements conn.Resource and fmt.Stringer.
func (d *Dev) String() string {
	return fmt.Sprintf("purespa{%s}", d.model)
}

// Halt stops the receiver goroutine and the liveness loop. It implements
// conn.Resource.
func (d *Dev) Halt() error {
	d.rx.halt()
	d.live.stop()
	return nil
}

// GetModel returns the configured control board variant.
func (d *Dev) GetModel() Model { return d.model }

// GetModelName returns the configured control board variant's display name.
func (d *Dev) GetModelName() string { return d.model.String() }

// IsOnline reports whether a LED update has been observed within the
// receive timeout window (spec.md §4.6).
func (d *Dev) IsOnline() bool { return d.state.online.Load() }

// GetTotalFrames returns the monotonic frame counter.
func (d *Dev) GetTotalFrames() uint32 { return d.state.frameCounter.Load() }

// GetDroppedFrames returns the dropped-frame counter.
func (d *Dev) GetDroppedFrames() uint32 { return d.state.frameDropped.Load() }

// GetActWaterTempCelsius returns the steady water temperature in Celsius,
// or UndefinedInt if none has been confirmed.
func (d *Dev) GetActWaterTempCelsius() int {
	return celsiusOrUndefined(d.state.waterTemp.Load())
}

// GetDesiredWaterTempCelsius returns the captured setpoint in Celsius, or
// UndefinedInt if none has been confirmed.
func (d *Dev) GetDesiredWaterTempCelsius() int {
	return celsiusOrUndefined(d.state.desiredTemp.Load())
}

func celsiusOrUndefined(word uint32) int {
	if word == undefUint32 {
		return UndefinedInt
	}
	c, ok := convertToCelsius(displayWord(word))
	if !ok {
		return UndefinedInt
	}
	return c
}

// GetDisinfectionTime returns the disinfection timer in hours: 0 if
// disinfection is off, UndefinedInt if it's on but no time word has been
// confirmed yet, or the confirmed hour count otherwise. See DESIGN.md's
// resolution of the "getDisinfectionTime" open question.
func (d *Dev) GetDisinfectionTime() int {
	if d.IsDisinfectionOn() != True {
		return 0
	}
	word := d.state.disinfectionTime.Load()
	if word == undefUint32 {
		return UndefinedInt
	}
	return displayWord(word).numeric()
}

// GetErrorCode returns the three-character panel error code, or "" if none
// is latched.
func (d *Dev) GetErrorCode() string {
	return formatErrorCode(d.state.errorCode.Load())
}

// GetErrorMessage translates an error code into the given language.
func (d *Dev) GetErrorMessage(code string, lang Language) string {
	return errorMessage(code, lang)
}

// GetRawLedValue returns the raw latched LED bitmap, or 0xFFFF if none has
// been latched yet.
func (d *Dev) GetRawLedValue() uint16 {
	return uint16(d.state.ledStatus.Load())
}

func (d *Dev) ledBit(bit uint16) Tristate {
	v := d.state.ledStatus.Load()
	defined := v != undefLED
	return tristate(defined, defined && uint16(v)&bit != 0)
}

// IsPowerOn reports the POWER LED state.
func (d *Dev) IsPowerOn() Tristate { return d.ledBit(d.model.led().power) }

// IsFilterOn reports the FILTER LED state.
func (d *Dev) IsFilterOn() Tristate { return d.ledBit(d.model.led().filter) }

// IsBubbleOn reports the BUBBLE LED state.
func (d *Dev) IsBubbleOn() Tristate { return d.ledBit(d.model.led().bubble) }

// IsHeaterOn reports whether the heater is on or in standby.
func (d *Dev) IsHeaterOn() Tristate {
	m := d.model.led()
	return d.ledBit(m.heaterOn | m.heaterStandby)
}

// IsHeaterStandby reports the HEATER_STANDBY LED state.
func (d *Dev) IsHeaterStandby() Tristate { return d.ledBit(d.model.led().heaterStandby) }

// IsJetOn reports the JET LED state. Always False on models without a jet
// pump.
func (d *Dev) IsJetOn() Tristate {
	if !d.model.hasJet() {
		return False
	}
	return d.ledBit(d.model.led().jet)
}

// IsDisinfectionOn reports the DISINFECTION LED state. Always False on
// models without a disinfection timer.
func (d *Dev) IsDisinfectionOn() Tristate {
	if !d.model.hasDisinfection() {
		return False
	}
	return d.ledBit(d.model.led().disinfection)
}

// IsBuzzerOn reports the derived buzzer state (inverted NO_BEEP bit).
func (d *Dev) IsBuzzerOn() Tristate {
	if d.state.ledStatus.Load() == undefLED {
		return Undefined
	}
	return tristate(true, d.state.buzzer.Load())
}
