// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLivenessLoopLatchesOnlineImmediatelyOnUpdate(t *testing.T) {
	state := newSpaState()
	l := newLivenessLoop(state, time.Millisecond, 10*time.Millisecond)
	state.stateUpdated.Store(true)

	now := time.Now()
	l.tick(now)

	assert.True(t, state.online.Load())
	assert.Equal(t, now, l.lastUpdate)
}

func TestLivenessLoopStaysOnlineWithinTimeout(t *testing.T) {
	state := newSpaState()
	l := newLivenessLoop(state, time.Millisecond, 10*time.Millisecond)
	start := time.Now()
	state.stateUpdated.Store(true)
	l.tick(start)

	l.tick(start.Add(5 * time.Millisecond))
	assert.True(t, state.online.Load())
}

func TestLivenessLoopDropsOfflineAfterTimeoutElapses(t *testing.T) {
	state := newSpaState()
	l := newLivenessLoop(state, time.Millisecond, 10*time.Millisecond)
	start := time.Now()
	state.stateUpdated.Store(true)
	l.tick(start)

	l.tick(start.Add(11 * time.Millisecond))
	assert.False(t, state.online.Load())
}

func TestLivenessLoopStartStop(t *testing.T) {
	state := newSpaState()
	l := newLivenessLoop(state, time.Millisecond, 10*time.Millisecond)
	l.start()
	l.stop()
}
