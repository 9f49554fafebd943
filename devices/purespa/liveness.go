// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import "time"

// livenessLoop watches spaState.stateUpdated and derives state.online
// (spec.md §4.6), mirroring PureSpaIO::loop()'s timeout check exactly: it
// wakes every CYCLE::PERIOD, and the instant a state update is observed it
// latches online and records the time; online drops only once more than
// receiveTimeout has elapsed since that last recorded update. It runs on its
// own goroutine, separate from the bit-receiver goroutine, since it has no
// business sharing the receiver's locked OS thread.
type livenessLoop struct {
	state      *spaState
	period     time.Duration
	timeout    time.Duration
	lastUpdate time.Time
	stopCh     chan struct{}
	doneCh     chan struct{}
}

func newLivenessLoop(state *spaState, period, timeout time.Duration) *livenessLoop {
	return &livenessLoop{
		state:   state,
		period:  period,
		timeout: timeout,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

func (l *livenessLoop) start() {
	go l.run()
}

func (l *livenessLoop) run() {
	defer close(l.doneCh)
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			l.tick(now)
		}
	}
}

func (l *livenessLoop) tick(now time.Time) {
	if l.state.stateUpdated.Swap(false) {
		l.lastUpdate = now
		l.state.online.Store(true)
		return
	}
	if l.state.online.Load() && now.Sub(l.lastUpdate) > l.timeout {
		l.state.online.Store(false)
	}
}

func (l *livenessLoop) stop() {
	close(l.stopCh)
	<-l.doneCh
}
