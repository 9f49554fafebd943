// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

// frame is a single 16-bit word shifted off the bus, MSB-first.
type frame uint16

// Shared, model-independent bit layout. Digit position/segment bits and the
// cue/LED type markers are identical on SB-H20 and SJB-HS; only LED feature
// bits and button-scan bits for the disinfection timer and jet pump differ
// (see model.go).
const (
	frameCue frame = 0x0100

	digitPos1 frame = 0x0040
	digitPos2 frame = 0x0020
	digitPos3 frame = 0x0800
	digitPos4 frame = 0x0004

	segmentA  frame = 0x2000
	segmentB  frame = 0x1000
	segmentC  frame = 0x0200
	segmentD  frame = 0x0400
	segmentE  frame = 0x0080
	segmentF  frame = 0x0008
	segmentG  frame = 0x0010
	segments  frame = segmentA | segmentB | segmentC | segmentD | segmentE | segmentF | segmentG

	ledMarker frame = 0x4000

	digitTypeMask = digitPos1 | digitPos2 | digitPos3 | digitPos4
)

// kind identifies which decoder should handle a completed frame.
type kind uint8

const (
	kindIgnored kind = iota
	kindDigit
	kindLED
	kindButton
)

// typeMask returns the set of bits that identify a button-scan frame
// for the given model: every key's scan bit, unioned with the cue marker as
// the original firmware's FRAME_TYPE::BUTTON does (a button-scan frame
// always carries the cue bit alongside exactly one key bit).
func (bm buttonMask) typeMask() frame {
	m := frameCue | frame(bm.filter) | frame(bm.bubble) | frame(bm.power) |
		frame(bm.tempUp) | frame(bm.tempDown) | frame(bm.tempUnit) | frame(bm.heater)
	if bm.disinfection != 0 {
		m |= frame(bm.disinfection)
	}
	if bm.jet != 0 {
		m |= frame(bm.jet)
	}
	return m
}

// classify dispatches a completed frame to exactly one decoder, following
// the first matching predicate in order: cue (ignored), digit, LED, button,
// zero (ignored). Every non-dropped frame reaches this function exactly
// once.
func classify(f frame, buttonType frame) kind {
	switch {
	case f == frameCue:
		return kindIgnored
	case f&digitTypeMask != 0:
		return kindDigit
	case f&ledMarker != 0:
		return kindLED
	case f&buttonType != 0:
		return kindButton
	default:
		// f == 0, or an unrecognized pattern: ignored.
		return kindIgnored
	}
}
