// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import "sync/atomic"

// undefUint32 is the UNDEF::UINT sentinel: no confirmed display word yet.
const undefUint32 = ^uint32(0)

// undefLED is the UNDEF::USHORT sentinel for the LED bitmap.
const undefLED = uint32(0xFFFF)

// UndefinedInt is the spec's UNDEF::INT sentinel (-99), returned by the
// integer getters when the underlying value has never been confirmed.
const UndefinedInt = -99

// Tristate is a three-valued boolean realizing the spec's
// true/false/UNDEFINED getter contract.
type Tristate uint8

// Tristate values.
const (
	Undefined Tristate = iota
	False
	True
)

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "undefined"
	}
}

func tristate(defined bool, value bool) Tristate {
	if !defined {
		return Undefined
	}
	if value {
		return True
	}
	return False
}

// spaState is the denoised, cross-goroutine Spa State singleton (spec.md
// §3). The liveness loop writes online and clears stateUpdated; every other
// field is written only by the bit-receiver goroutine. The liveness loop and
// the command engine read it. Every field is a word-sized atomic to realize
// "single 16/32-bit loads and stores" without locks on the writer side.
type spaState struct {
	waterTemp        atomic.Uint32 // packed display word, or undefUint32
	desiredTemp      atomic.Uint32 // packed display word, or undefUint32
	disinfectionTime atomic.Uint32 // packed display word, or undefUint32
	errorCode        atomic.Uint32 // 24-bit ASCII code, or 0
	ledStatus        atomic.Uint32 // 16-bit bitmap, or undefLED

	buzzer       atomic.Bool
	online       atomic.Bool
	stateUpdated atomic.Bool

	frameCounter atomic.Uint32
	frameDropped atomic.Uint32
}

func newSpaState() *spaState {
	s := &spaState{}
	s.waterTemp.Store(undefUint32)
	s.desiredTemp.Store(undefUint32)
	s.disinfectionTime.Store(undefUint32)
	s.ledStatus.Store(undefLED)
	return s
}

// buttonCounters is the per-key press-duration countdown (spec.md §3). Each
// field is armed (set non-zero) only by the command engine. On the receiver
// goroutine the button injector decrements or clears it and the LED decoder
// clears all of them; changeWaterTemp also clears its own counter when its
// short press window ends.
type buttonCounters struct {
	filter       atomic.Uint32
	heater       atomic.Uint32
	bubble       atomic.Uint32
	power        atomic.Uint32
	tempUp       atomic.Uint32
	tempDown     atomic.Uint32
	jet          atomic.Uint32
	disinfection atomic.Uint32
}

// clearAll zeroes every counter. Called by the LED decoder the instant the
// buzzer latches on, so that a single acknowledgement terminates every
// pending press (spec.md §4.4, invariant "button reply atomicity").
func (b *buttonCounters) clearAll() {
	b.filter.Store(0)
	b.heater.Store(0)
	b.bubble.Store(0)
	b.power.Store(0)
	b.tempUp.Store(0)
	b.tempDown.Store(0)
	b.jet.Store(0)
	b.disinfection.Store(0)
}

// Snapshot is a value-typed copy of the Spa State for callers that want
// every value in one struct (e.g. the status monitor). It is additive
// surface; the individual getters remain the spec-mandated interface.
type Snapshot struct {
	Online               bool
	ActWaterTempCelsius  int
	DesiredWaterTemp     int
	DisinfectionTime     int
	ErrorCode            string
	Power, Filter        Tristate
	Bubble               Tristate
	Heater, HeaterStandby Tristate
	Jet, Disinfection    Tristate
	Buzzer               Tristate
	TotalFrames          uint32
	DroppedFrames        uint32
}

// Snapshot returns a copy of the denoised spa state, filled by calling each
// getter in turn. The fields are read one after another, so they are not
// guaranteed to come from the same decoder update.
func (d *Dev) Snapshot() Snapshot {
	return Snapshot{
		Online:               d.IsOnline(),
		ActWaterTempCelsius:  d.GetActWaterTempCelsius(),
		DesiredWaterTemp:     d.GetDesiredWaterTempCelsius(),
		DisinfectionTime:     d.GetDisinfectionTime(),
		ErrorCode:            d.GetErrorCode(),
		Power:                d.IsPowerOn(),
		Filter:               d.IsFilterOn(),
		Bubble:               d.IsBubbleOn(),
		Heater:               d.IsHeaterOn(),
		HeaterStandby:        d.IsHeaterStandby(),
		Jet:                  d.IsJetOn(),
		Disinfection:         d.IsDisinfectionOn(),
		Buzzer:               d.IsBuzzerOn(),
		TotalFrames:          d.GetTotalFrames(),
		DroppedFrames:        d.GetDroppedFrames(),
	}
}
