// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import "time"

// Base timing constants from spec.md §4, independent of model.
const (
	cyclePeriodMs        = 21  // CYCLE::PERIOD
	displayFrameGroups   = 5   // CYCLE::DISPLAY_FRAME_GROUPS
	blinkPeriodMs        = 500 // BLINK::PERIOD
	buttonAckCheckMs     = 10  // BUTTON::ACK_CHECK_PERIOD
	confirmFramesRegular = 3   // CONFIRM_FRAMES::REGULAR
)

// timing holds the model-derived frame-rate constants used by the display
// and command state machines. All arithmetic below mirrors the original
// firmware's unsigned-integer division exactly, including its truncation,
// since that is the behavior the panel was tuned against.
type timing struct {
	cyclePeriod time.Duration

	frameFrequency uint // FRAME::FREQUENCY = CYCLE::TOTAL_FRAMES / CYCLE::PERIOD

	confirmFramesNotBlinking uint // CONFIRM_FRAMES::NOT_BLINKING
	blinkTempFrames          uint // BLINK::TEMP_FRAMES
	blinkStoppedFrames       uint // BLINK::STOPPED_FRAMES

	pressCount      uint          // BUTTON::PRESS_COUNT
	pressShortCount uint          // BUTTON::PRESS_SHORT_COUNT
	ackCheckPeriod  time.Duration // BUTTON::ACK_CHECK_PERIOD
	ackTimeout      time.Duration // BUTTON::ACK_TIMEOUT
	receiveTimeout  time.Duration // CYCLE::RECEIVE_TIMEOUT
}

func newTiming(buttonFrames uint) timing {
	return newTimingWithOverrides(buttonFrames, 0, 0)
}

// newTimingWithOverrides derives the same model-scaled constants as
// newTiming, but lets a bench rig substitute CYCLE::PERIOD and
// BUTTON::ACK_TIMEOUT for a slower simulated panel (spec.md §4.9). A zero
// override leaves the corresponding default untouched.
func newTimingWithOverrides(buttonFrames uint, periodOverride, ackTimeoutOverride time.Duration) timing {
	periodMs := uint(cyclePeriodMs)
	if periodOverride > 0 {
		periodMs = uint(periodOverride.Milliseconds())
	}

	totalFrames := 25 + buttonFrames
	frameFrequency := totalFrames / periodMs

	pressCount := blinkPeriodMs / periodMs
	pressShortCount := uint(380) / periodMs

	t := timing{
		cyclePeriod:              time.Duration(periodMs) * time.Millisecond,
		frameFrequency:           frameFrequency,
		confirmFramesNotBlinking: (blinkPeriodMs / 2 * frameFrequency) / displayFrameGroups,
		blinkTempFrames:          blinkPeriodMs / 4 * frameFrequency,
		blinkStoppedFrames:       2 * blinkPeriodMs * frameFrequency,
		pressCount:               pressCount,
		pressShortCount:          pressShortCount,
		ackCheckPeriod:           buttonAckCheckMs * time.Millisecond,
		ackTimeout:               time.Duration(2*pressCount*periodMs) * time.Millisecond,
		receiveTimeout:           50 * time.Duration(periodMs) * time.Millisecond,
	}
	if ackTimeoutOverride > 0 {
		t.ackTimeout = ackTimeoutOverride
	}
	return t
}
