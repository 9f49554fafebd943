// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package purespa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		want    Model
		wantErr bool
	}{
		{"sb-h20", SBH20, false},
		{"SB-H20", SBH20, false},
		{"sbh20", SBH20, false},
		{"sjb-hs", SJBHS, false},
		{"SJB-HS", SJBHS, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseModel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestModelButtonFrames(t *testing.T) {
	assert.Equal(t, uint(7), SBH20.buttonFrames())
	assert.Equal(t, uint(9), SJBHS.buttonFrames())
}

func TestModelFeatures(t *testing.T) {
	assert.False(t, SBH20.hasDisinfection())
	assert.False(t, SBH20.hasJet())
	assert.True(t, SJBHS.hasDisinfection())
	assert.True(t, SJBHS.hasJet())

	sbLed := SBH20.led()
	assert.Zero(t, sbLed.disinfection)
	assert.Zero(t, sbLed.jet)

	sjLed := SJBHS.led()
	assert.NotZero(t, sjLed.disinfection)
	assert.NotZero(t, sjLed.jet)
	// SJB-HS's invented bits must not collide with the shared base LED bits.
	assert.Zero(t, sjLed.disinfection&sjLed.power)
	assert.Zero(t, sjLed.jet&sjLed.filter)
}

func TestModelString(t *testing.T) {
	assert.Equal(t, "Intex PureSpa SB-H20", SBH20.String())
	assert.Equal(t, "Intex PureSpa SJB-HS", SJBHS.String())
}
