// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// charSegments is the test-only inverse of segmentToChar, used to assemble
// digit frames for the characters these tests exercise.
var charSegments = map[byte]frame{
	' ': 0,
	'0': segmentA | segmentB | segmentC | segmentD | segmentE | segmentF,
	'1': segmentB | segmentC,
	'3': segmentA | segmentB | segmentC | segmentD | segmentG,
	'8': segmentA | segmentB | segmentC | segmentD | segmentE | segmentF | segmentG,
	'C': segmentA | segmentF | segmentE | segmentD,
	'F': segmentE | segmentF | segmentA | segmentG,
	'H': segmentB | segmentC | segmentE | segmentF | segmentG,
	'E': segmentA | segmentF | segmentE | segmentD | segmentG,
}

func mkWord(p1, p2, p3, p4 byte) displayWord {
	return displayWord(uint32(p1) | uint32(p2)<<8 | uint32(p3)<<16 | uint32(p4)<<24)
}

func TestSegmentToChar(t *testing.T) {
	got, ok := segmentToChar(segmentA | segmentB | segmentC | segmentD | segmentE | segmentF)
	assert.True(t, ok)
	assert.Equal(t, byte('0'), got)

	got, ok = segmentToChar(0)
	assert.True(t, ok)
	assert.Equal(t, byte(blankChar), got)

	_, ok = segmentToChar(segmentA | segmentG) // no glyph uses exactly this pattern
	assert.False(t, ok)
}

func TestDisplayWordAccessors(t *testing.T) {
	w := mkWord('1', '0', '0', 'C')
	assert.Equal(t, 100, w.numeric())
	assert.True(t, w.isTemperature())
	assert.False(t, w.isTime())
	assert.False(t, w.isError())

	h := mkWord('0', '0', '8', 'H')
	assert.True(t, h.isTime())
	assert.Equal(t, 8, h.numeric())

	blank := mkWord(' ', ' ', ' ', 'C')
	assert.True(t, blank.isBlank(), "position 4 is excluded from the blank check")

	notBlank := mkWord(' ', ' ', '1', 'C')
	assert.False(t, notBlank.isBlank())

	e := mkWord('E', '9', '0', ' ')
	assert.True(t, e.isError())
	assert.Equal(t, uint32('E')|uint32('9')<<8|uint32('0')<<16, e.errorCode24())
}

func TestConvertToCelsius(t *testing.T) {
	c, ok := convertToCelsius(mkWord('0', '3', '5', 'C'))
	assert.True(t, ok)
	assert.Equal(t, 35, c)

	c, ok = convertToCelsius(mkWord('1', '0', '0', 'F'))
	assert.True(t, ok)
	assert.Equal(t, 38, c) // round((100-32)*5/9) = round(37.78) = 38

	_, ok = convertToCelsius(mkWord('9', '9', '9', 'F'))
	assert.False(t, ok, "converted value out of [0,60] range is rejected")

	_, ok = convertToCelsius(mkWord('0', '3', '5', 'H'))
	assert.False(t, ok, "non temperature unit character is rejected")
}

func TestFrameDiffWraps(t *testing.T) {
	assert.Equal(t, uint32(5), frameDiff(10, 5))
	assert.Equal(t, uint32(0xFFFFFFFF), frameDiff(0, 1))
}

func feedWord(dd *displayDecoder, frameCounter uint32, state *spaState, w displayWord) {
	dd.feed(digitPos1|charSegments[byte(w)], frameCounter, state)
	dd.feed(digitPos2|charSegments[byte(w>>8)], frameCounter, state)
	dd.feed(digitPos3|charSegments[byte(w>>16)], frameCounter, state)
	dd.feed(digitPos4|charSegments[byte(w>>24)], frameCounter, state)
}

func TestDisplayDecoderPositionOrdering(t *testing.T) {
	tm := newTiming(SBH20.buttonFrames())
	dd := newDisplayDecoder(tm)
	state := newSpaState()

	// Position 2 before position 1 is ignored entirely.
	dd.feed(digitPos2|charSegments['0'], 0, state)
	assert.Equal(t, uint8(0), dd.receivedDigits)

	dd.feed(digitPos1|charSegments['1'], 0, state)
	assert.Equal(t, posState1, dd.receivedDigits)

	// Position 3 before position 2 discards the partial word.
	dd.feed(digitPos3|charSegments['0'], 0, state)
	assert.Equal(t, uint8(0), dd.receivedDigits)

	// With the partial word discarded, position 2 is out of order too.
	dd.feed(digitPos2|charSegments['0'], 0, state)
	assert.Equal(t, uint8(0), dd.receivedDigits)

	dd.feed(digitPos1|charSegments['3'], 0, state) // pos1 always resets the sequence
	assert.Equal(t, posState1, dd.receivedDigits)

	dd.feed(digitPos2|charSegments['0'], 0, state)
	assert.Equal(t, posState12, dd.receivedDigits)
}

func TestDisplayDecoderFeedTriggersConfirmOnStableValue(t *testing.T) {
	tm := newTiming(SBH20.buttonFrames())
	dd := newDisplayDecoder(tm)
	state := newSpaState()
	word := mkWord('1', '0', '0', 'C')

	// Prime latestDisplayValue with one full pass.
	feedWord(dd, 0, state, word)
	assert.Equal(t, word, dd.latestDisplayValue)

	// Force the decoder to the brink of confirmation, then feed the word
	// one more time.
	dd.stableValueCount = 1
	dd.latestWaterTemp = uint32(word)
	dd.stableWaterCount = 1
	feedWord(dd, 0, state, word)

	assert.Equal(t, uint32(word), state.waterTemp.Load())
}

func TestConfirmRoutesErrorCode(t *testing.T) {
	tm := newTiming(SBH20.buttonFrames())
	dd := newDisplayDecoder(tm)
	state := newSpaState()
	word := mkWord('E', '9', '0', ' ')

	dd.confirm(word, 0, state)

	assert.Equal(t, word.errorCode24(), state.errorCode.Load())
	// An error word never touches the water temperature state.
	assert.Equal(t, undefUint32, state.waterTemp.Load())
}

func TestConfirmTemperatureStabilizesSteadyValue(t *testing.T) {
	tm := newTiming(SBH20.buttonFrames())
	dd := newDisplayDecoder(tm)
	state := newSpaState()
	word := mkWord('0', '3', '0', 'C')

	dd.latestWaterTemp = uint32(word)
	dd.stableWaterCount = 2

	dd.confirmTemperature(word, 0, state)
	assert.Equal(t, undefUint32, state.waterTemp.Load(), "not yet stable")

	dd.confirmTemperature(word, 0, state)
	assert.Equal(t, uint32(word), state.waterTemp.Load())
}

func TestConfirmTemperatureBlinkingCapturesSetpoint(t *testing.T) {
	tm := newTiming(SBH20.buttonFrames())
	dd := newDisplayDecoder(tm)
	state := newSpaState()
	word := mkWord('0', '3', '5', 'C')

	dd.isBlinking = true
	dd.lastBlankFrameCounter = 0

	dd.confirmTemperature(word, 1, state)
	assert.Equal(t, uint32(word), dd.latestBlinkingTemp)
	assert.Equal(t, uint(0), dd.stableBlinkingTempCount)

	dd.confirmTemperature(word, 2, state)
	assert.Equal(t, uint(1), dd.stableBlinkingTempCount)
}

func TestConfirmTimeStabilizesDisinfectionTime(t *testing.T) {
	tm := newTiming(SJBHS.buttonFrames())
	dd := newDisplayDecoder(tm)
	state := newSpaState()
	word := mkWord('0', '0', '8', 'H')

	dd.latestDisinfection = uint32(word)
	dd.stableDisinfectionCount = 1

	dd.confirmTime(word, state)
	assert.Equal(t, uint32(word), state.disinfectionTime.Load())
}

func TestFeedBlankPublishesBlinkingSetpoint(t *testing.T) {
	tm := newTiming(SBH20.buttonFrames())
	dd := newDisplayDecoder(tm)
	state := newSpaState()

	dd.stableBlankCount = 0
	dd.isBlinking = true
	dd.latestBlinkingTemp = uint32(mkWord('0', '3', '5', 'C'))
	dd.stableBlinkingTempCount = confirmFramesRegular
	dd.blankCounter = 3
	want := dd.latestBlinkingTemp

	dd.feedBlank(10, state)

	assert.Equal(t, want, state.desiredTemp.Load())
}

func TestFeedBlankWithErrorSkipsSetpointPublish(t *testing.T) {
	tm := newTiming(SBH20.buttonFrames())
	dd := newDisplayDecoder(tm)
	state := newSpaState()
	state.errorCode.Store(uint32('E') | uint32('9')<<8 | uint32('0')<<16)

	dd.stableBlankCount = 0
	dd.isBlinking = true
	dd.latestBlinkingTemp = uint32(mkWord('0', '3', '5', 'C'))
	dd.stableBlinkingTempCount = confirmFramesRegular
	dd.blankCounter = 3

	dd.feedBlank(10, state)

	assert.Equal(t, undefUint32, state.desiredTemp.Load())
}
