// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

// ledDecoder holds the LED Decoder's working state, owned exclusively by
// the bit-receiver goroutine (spec.md §4.4).
type ledDecoder struct {
	latest       uint32 // 16-bit bitmap, or undefLED
	stableCount  uint
}

func newLEDDecoder() *ledDecoder {
	return &ledDecoder{latest: undefLED, stableCount: confirmFramesRegular}
}

// feed processes one completed LED frame. On the confirmFramesRegular'th
// identical frame it latches state.ledStatus, recomputes the buzzer flag,
// raises stateUpdated for the liveness loop, and — on a buzzer-on
// transition — clears every button-press counter (spec.md §4.4 and the
// "button reply atomicity" invariant).
func (ld *ledDecoder) feed(f frame, mask ledMask, state *spaState, buttons *buttonCounters) {
	v := uint32(f)
	if v == ld.latest {
		ld.stableCount--
		if ld.stableCount == 0 {
			state.ledStatus.Store(v)
			buzzerOn := v&uint32(mask.noBeep) == 0
			state.buzzer.Store(buzzerOn)
			state.stateUpdated.Store(true)
			ld.stableCount = confirmFramesRegular

			if buzzerOn {
				buttons.clearAll()
			}
		}
		return
	}
	ld.latest = v
	ld.stableCount = confirmFramesRegular
}
