// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import (
	"sync/atomic"
	"time"

	"periph.io/x/periph/conn/gpio"
)

// buttonInjector is the Button Injector (spec.md §4.5): for every
// button-scan frame it identifies the polled key, counts down that key's
// press counter, and — while the counter is non-zero and the buzzer hasn't
// already acknowledged — pulls DATA low for the scan's sample window to
// simulate a closed key.
type buttonInjector struct {
	mask buttonMask
	data gpio.PinIO
}

func newButtonInjector(mask buttonMask, data gpio.PinIO) *buttonInjector {
	return &buttonInjector{mask: mask, data: data}
}

// feed processes one completed button-scan frame.
func (bi *buttonInjector) feed(f frame, state *spaState, buttons *buttonCounters) {
	counter := bi.counterFor(f, buttons)
	if counter == nil {
		return
	}
	if bi.updateCounter(counter, state) {
		bi.sendReply()
	}
}

// counterFor identifies which key this scan frame polls, matching the
// original firmware's decodeButton dispatch order (filter, heater, bubble,
// power, temp-up, temp-down, then the SJB-HS-only disinfection and jet
// keys). TEMP_UNIT is part of the button mask for frame classification only
// — the original never wires a press counter to it, and neither do we.
func (bi *buttonInjector) counterFor(f frame, buttons *buttonCounters) *atomic.Uint32 {
	switch {
	case f&frame(bi.mask.filter) != 0:
		return &buttons.filter
	case f&frame(bi.mask.heater) != 0:
		return &buttons.heater
	case f&frame(bi.mask.bubble) != 0:
		return &buttons.bubble
	case f&frame(bi.mask.power) != 0:
		return &buttons.power
	case f&frame(bi.mask.tempUp) != 0:
		return &buttons.tempUp
	case f&frame(bi.mask.tempDown) != 0:
		return &buttons.tempDown
	case bi.mask.disinfection != 0 && f&frame(bi.mask.disinfection) != 0:
		return &buttons.disinfection
	case bi.mask.jet != 0 && f&frame(bi.mask.jet) != 0:
		return &buttons.jet
	default:
		return nil
	}
}

// updateCounter implements spec.md §4.5: if the panel already sees the
// press as acknowledged (buzzer on), clear the counter; otherwise decrement
// it and arm a reply.
func (bi *buttonInjector) updateCounter(counter *atomic.Uint32, state *spaState) bool {
	v := counter.Load()
	if v == 0 {
		return false
	}
	if state.buzzer.Load() {
		counter.Store(0)
		return false
	}
	counter.Store(v - 1)
	return true
}

// sendReply drives the electrical reply: wait ~1µs, pull DATA low for
// ~2µs, then return it to a high-impedance input. It runs inline on the
// receiver goroutine, immediately after the scan frame is decoded, so the
// timing stays aligned with the panel's own sampling window (spec.md §4.5).
func (bi *buttonInjector) sendReply() {
	if bi.data == nil {
		return
	}
	time.Sleep(time.Microsecond)
	_ = bi.data.Out(gpio.Low)
	time.Sleep(2 * time.Microsecond)
	_ = bi.data.In(gpio.Float, gpio.NoEdge)
}
