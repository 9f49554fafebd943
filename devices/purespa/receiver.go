// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import (
	"runtime"
	"time"

	"periph.io/x/periph/conn/gpio"
)

// frameBits is the bus frame width (FRAME::BITS).
const frameBits = 16

// receiver is the Bit Receiver (spec.md §4.1): it samples DATA on every
// CLOCK rising edge, gates assembly with LATCH, reassembles 16-bit frames,
// and dispatches each completed frame to the Frame Classifier and decoders.
//
// Go has no interrupt context; the closest idiomatic analogue is a
// dedicated goroutine pinned to its OS thread (runtime.LockOSThread, the
// same technique devices/tm1637 uses for its output bit-bang loop) that
// blocks on WaitForEdge and does all decode work inline, bounded and
// allocation-free, before looping. See DESIGN.md and SPEC_FULL.md §2.
type receiver struct {
	clk, data, latch gpio.PinIO

	buttonType frame
	ledMask    ledMask

	accumulator  uint16
	bitsReceived uint

	display *displayDecoder
	led     *ledDecoder
	button  *buttonInjector

	state   *spaState
	buttons *buttonCounters

	stop chan struct{}
	done chan struct{}
}

func newReceiver(clk, data, latch gpio.PinIO, model Model, t timing, state *spaState, buttons *buttonCounters) *receiver {
	return &receiver{
		clk:        clk,
		data:       data,
		latch:      latch,
		buttonType: model.button().typeMask(),
		ledMask:    model.led(),
		display:    newDisplayDecoder(t),
		led:        newLEDDecoder(),
		button:     newButtonInjector(model.button(), data),
		state:      state,
		buttons:    buttons,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// start configures the pins and launches the receiver goroutine.
func (r *receiver) start() error {
	if err := r.clk.In(gpio.Float, gpio.RisingEdge); err != nil {
		return err
	}
	if err := r.latch.In(gpio.Float, gpio.NoEdge); err != nil {
		return err
	}
	if err := r.data.In(gpio.Float, gpio.NoEdge); err != nil {
		return err
	}
	go r.run()
	return nil
}

func (r *receiver) halt() {
	close(r.stop)
	<-r.done
}

func (r *receiver) run() {
	defer close(r.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-r.stop:
			return
		default:
		}
		if !r.clk.WaitForEdge(100 * time.Millisecond) {
			continue
		}
		r.onClockRising()
	}
}

// onClockRising implements spec.md §4.1's bit-accumulation rule exactly,
// including the final-bit exception (the last bit is accepted even after
// LATCH has just de-asserted) and the narrower mid-frame drop accounting:
// a frame is only counted as dropped when LATCH de-asserts while a partial
// frame (bitsReceived in [1, BITS-2]) was in progress.
func (r *receiver) onClockRising() {
	var bit uint16
	if r.data.Read() == gpio.Low { // active-low bus: logical bit = NOT pin level
		bit = 1
	}
	enabled := r.latch.Read() == gpio.Low

	if enabled || r.bitsReceived == frameBits-1 {
		r.accumulator = (r.accumulator << 1) | bit
		r.bitsReceived++

		if r.bitsReceived == frameBits {
			r.state.frameCounter.Add(1)
			r.dispatch(frame(r.accumulator))
			r.accumulator = 0
			r.bitsReceived = 0
		}
		return
	}

	if r.bitsReceived >= 1 && r.bitsReceived <= frameBits-2 {
		r.state.frameDropped.Add(1)
		r.state.frameCounter.Add(1)
	}
	r.accumulator = 0
	r.bitsReceived = 0
}

// dispatch is the Frame Classifier (spec.md §4.2).
func (r *receiver) dispatch(f frame) {
	switch classify(f, r.buttonType) {
	case kindDigit:
		r.display.feed(f, r.state.frameCounter.Load(), r.state)
	case kindLED:
		r.led.feed(f, r.ledMask, r.state, r.buttons)
	case kindButton:
		r.button.feed(f, r.state, r.buttons)
	}
}
