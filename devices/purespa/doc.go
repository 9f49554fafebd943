// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package purespa decodes the three-wire shift-register bus shared by an
// Intex PureSpa control board and its front-panel keypad/display, and drives
// the panel by simulating button presses.
//
// More details
//
// A Dev reassembles 16-bit bus frames on every CLOCK rising edge, routes
// each completed frame to a display, LED or button decoder depending on its
// bit pattern, and maintains a denoised snapshot of the spa's state (water
// temperature, setpoint, disinfection timer, error code, LED states). The
// Set* methods drive the panel by arming per-key press counters that the bus
// receiver answers on the panel's own button-scan frames.
package purespa
