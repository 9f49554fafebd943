// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import "math"

// Position acceptance bitmask, mirroring the original firmware's
// DIGIT::POS_1..POS_ALL receivedDigits state.
const (
	posState1   uint8 = 0x8
	posState2   uint8 = 0x4
	posState3   uint8 = 0x2
	posState4   uint8 = 0x1
	posState12  uint8 = posState1 | posState2
	posState123 uint8 = posState1 | posState2 | posState3
	posStateAll uint8 = posState1 | posState2 | posState3 | posState4
)

const blankChar = ' '

// segmentToChar maps a digit frame's A..G segment bits to its glyph. An
// unrecognized pattern returns ok=false and the frame is discarded, per
// spec.md §4.3 Step A.
func segmentToChar(segs frame) (byte, bool) {
	switch segs {
	case 0:
		return blankChar, true
	case segmentA | segmentB | segmentC | segmentD | segmentE | segmentF:
		return '0', true
	case segmentB | segmentC:
		return '1', true
	case segmentA | segmentB | segmentG | segmentE | segmentD:
		return '2', true
	case segmentA | segmentB | segmentC | segmentD | segmentG:
		return '3', true
	case segmentF | segmentG | segmentB | segmentC:
		return '4', true
	case segmentA | segmentF | segmentG | segmentC | segmentD:
		return '5', true
	case segmentA | segmentF | segmentE | segmentD | segmentC | segmentG:
		return '6', true
	case segmentA | segmentB | segmentC:
		return '7', true
	case segmentA | segmentB | segmentC | segmentD | segmentE | segmentF | segmentG:
		return '8', true
	case segmentA | segmentB | segmentC | segmentD | segmentF | segmentG:
		return '9', true
	case segmentA | segmentF | segmentE | segmentD:
		return 'C', true
	case segmentB | segmentC | segmentD | segmentE | segmentG:
		return 'D', true
	case segmentA | segmentF | segmentE | segmentD | segmentG:
		return 'E', true
	case segmentE | segmentF | segmentA | segmentG:
		return 'F', true
	case segmentB | segmentC | segmentE | segmentF | segmentG:
		return 'H', true
	case segmentA | segmentB | segmentC | segmentE | segmentF:
		return 'N', true
	default:
		return 0, false
	}
}

// displayWord packs the four ASCII digit positions into a 32-bit value:
// byte 0 is position 1, byte 1 position 2, byte 2 position 3, byte 3
// position 4 — matching the original firmware's byte layout exactly, which
// matters because the classification helpers below operate on that layout.
type displayWord uint32

func (v displayWord) lastChar() byte    { return byte(v >> 24) }
func (v displayWord) firstChar() byte   { return byte(v) }
func (v displayWord) errorCode24() uint32 {
	return uint32(v) & 0x00FFFFFF
}

// numeric interprets positions 1-3 as a three digit integer, position 1
// being the hundreds digit.
func (v displayWord) numeric() int {
	return int(byte(v)-'0')*100 + int(byte(v>>8)-'0')*10 + int(byte(v>>16)-'0')
}

func (v displayWord) isTemperature() bool {
	c := v.lastChar()
	return c == 'C' || c == 'F'
}

func (v displayWord) isTime() bool { return v.lastChar() == 'H' }

func (v displayWord) isError() bool { return v.firstChar() == 'E' }

// isBlank mirrors the original's displayIsBlank: positions 1-3 (the low
// three bytes) must all be spaces. Position 4 (the unit/type character) is
// deliberately not checked, matching the original firmware exactly.
func (v displayWord) isBlank() bool {
	const blank3 = uint32(blankChar)<<16 | uint32(blankChar)<<8 | uint32(blankChar)
	return uint32(v)&0x00FFFFFF == blank3
}

// convertToCelsius implements spec.md §4.3's temperature unit conversion:
// 'C' is passed through, 'F' is converted with round(((F-32)*5)/9), any
// other unit character is undefined, and only [0, 60] °C is accepted.
func convertToCelsius(v displayWord) (int, bool) {
	celsius := v.numeric()
	switch v.lastChar() {
	case 'F':
		celsius = int(math.Round(((float64(celsius) - 32) * 5) / 9))
	case 'C':
		// already Celsius
	default:
		return 0, false
	}
	if celsius < 0 || celsius > 60 {
		return 0, false
	}
	return celsius, true
}

// displayDecoder holds the Display Decoder's working state. It is owned
// exclusively by the bit-receiver goroutine: no field here is touched by
// any other goroutine, so none needs to be atomic (spec.md §5).
type displayDecoder struct {
	t timing

	receivedDigits uint8
	displayValue   uint32

	latestDisplayValue displayWord
	stableValueCount   uint

	stableBlankCount uint

	isBlinking               bool
	lastBlankFrameCounter    uint32
	blankCounter             uint

	latestBlinkingTemp       uint32 // displayWord, or undefUint32
	stableBlinkingTempCount  uint

	latestWaterTemp    uint32 // displayWord, or undefUint32
	stableWaterCount    uint

	latestDisinfection uint32 // displayWord, or undefUint32
	stableDisinfectionCount uint
}

func newDisplayDecoder(t timing) *displayDecoder {
	return &displayDecoder{
		t:                       t,
		stableValueCount:        confirmFramesRegular,
		stableBlankCount:        confirmFramesRegular,
		latestWaterTemp:         undefUint32,
		latestBlinkingTemp:      undefUint32,
		latestDisinfection:      undefUint32,
		stableWaterCount:        t.confirmFramesNotBlinking,
		stableDisinfectionCount: t.confirmFramesNotBlinking,
	}
}

// feed processes one completed digit frame. frameCounter is the Spa State's
// current frame counter value, used to time blink-window decisions.
func (dd *displayDecoder) feed(f frame, frameCounter uint32, state *spaState) {
	digit, ok := segmentToChar(f & segments)
	if !ok {
		return
	}

	switch f & digitTypeMask {
	case digitPos1:
		dd.displayValue = (dd.displayValue & 0xFFFFFF00) | uint32(digit)
		dd.receivedDigits = posState1
	case digitPos2:
		if dd.receivedDigits == posState1 {
			dd.displayValue = (dd.displayValue & 0xFFFF00FF) | (uint32(digit) << 8)
			dd.receivedDigits |= posState2
		} else {
			dd.receivedDigits = 0
		}
	case digitPos3:
		if dd.receivedDigits == posState12 {
			dd.displayValue = (dd.displayValue & 0xFF00FFFF) | (uint32(digit) << 16)
			dd.receivedDigits |= posState3
		} else {
			dd.receivedDigits = 0
		}
	case digitPos4:
		if dd.receivedDigits == posState123 {
			dd.displayValue = (dd.displayValue & 0x00FFFFFF) | (uint32(digit) << 24)
			dd.receivedDigits = posStateAll
		} else {
			dd.receivedDigits = 0
		}
	default:
		return
	}

	if dd.receivedDigits != posStateAll {
		return
	}

	word := displayWord(dd.displayValue)

	switch {
	case word == dd.latestDisplayValue:
		dd.stableValueCount--
		if dd.stableValueCount == 0 {
			dd.stableValueCount = confirmFramesRegular
			dd.confirm(word, frameCounter, state)
		}
	case word.isBlank():
		dd.feedBlank(frameCounter, state)
	default:
		dd.latestDisplayValue = word
		dd.stableValueCount = confirmFramesRegular
		dd.stableBlankCount = confirmFramesRegular
	}
}

// confirm handles a display word that, after becoming the candidate, has
// been repeated confirmFramesRegular more times (spec.md §4.3 Step C).
func (dd *displayDecoder) confirm(word displayWord, frameCounter uint32, state *spaState) {
	if dd.isBlinking && frameDiff(frameCounter, dd.lastBlankFrameCounter) > dd.t.blinkStoppedFrames {
		dd.isBlinking = false
		dd.latestBlinkingTemp = undefUint32
	}

	if word.isError() {
		state.errorCode.Store(word.errorCode24())
		return
	}

	switch {
	case word.isTemperature():
		dd.confirmTemperature(word, frameCounter, state)
	case word.isTime():
		dd.confirmTime(word, state)
	}
}

func (dd *displayDecoder) confirmTemperature(word displayWord, frameCounter uint32, state *spaState) {
	if dd.isBlinking {
		if uint32(word) == dd.latestBlinkingTemp {
			dd.stableBlinkingTempCount++
		} else if frameDiff(frameCounter, dd.lastBlankFrameCounter) < dd.t.blinkTempFrames {
			dd.latestBlinkingTemp = uint32(word)
			dd.stableBlinkingTempCount = 0
		}
		return
	}

	if uint32(word) == dd.latestWaterTemp {
		dd.stableWaterCount--
		if dd.stableWaterCount == 0 {
			if state.waterTemp.Load() != dd.latestWaterTemp {
				state.waterTemp.Store(dd.latestWaterTemp)
			}
			dd.stableWaterCount = dd.t.confirmFramesNotBlinking
		}
		return
	}
	dd.latestWaterTemp = uint32(word)
	dd.stableWaterCount = dd.t.confirmFramesNotBlinking
}

// confirmTime implements the resolution of the "getDisinfectionTime" open
// question (DESIGN.md): since the original firmware never populates
// latestDisinfectionTime from any decoder path, the disinfection time is
// instead derived here from a confirmed time-unit ('H') display word, using
// the same steady-value stabilization as the water temperature.
func (dd *displayDecoder) confirmTime(word displayWord, state *spaState) {
	if uint32(word) == dd.latestDisinfection {
		dd.stableDisinfectionCount--
		if dd.stableDisinfectionCount == 0 {
			state.disinfectionTime.Store(dd.latestDisinfection)
			dd.stableDisinfectionCount = dd.t.confirmFramesNotBlinking
		}
		return
	}
	dd.latestDisinfection = uint32(word)
	dd.stableDisinfectionCount = dd.t.confirmFramesNotBlinking
}

func (dd *displayDecoder) feedBlank(frameCounter uint32, state *spaState) {
	if dd.stableBlankCount > 0 {
		dd.stableBlankCount--
		return
	}

	if dd.isBlinking {
		if dd.latestBlinkingTemp != undefUint32 {
			dd.blankCounter++
		}
		if state.errorCode.Load() == 0 && dd.blankCounter > 2 &&
			dd.stableBlinkingTempCount >= confirmFramesRegular &&
			state.desiredTemp.Load() != dd.latestBlinkingTemp {
			state.desiredTemp.Store(dd.latestBlinkingTemp)
		}
		dd.latestBlinkingTemp = undefUint32
		dd.stableBlinkingTempCount = 0
	} else {
		dd.isBlinking = true
		dd.blankCounter = 0
	}
	dd.lastBlankFrameCounter = frameCounter
}

// frameDiff returns newVal-oldVal, wrapping around uint32 overflow exactly
// as the original firmware's `diff()` helper does for its unsigned counters.
func frameDiff(newVal, oldVal uint32) uint32 {
	return newVal - oldVal
}
