// SPDX-License-Identifier: MIT

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDroneStateIsValid(t *testing.T) {
	for _, s := range AllDroneStates() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, DroneState("flying").IsValid())
	assert.False(t, DroneState("").IsValid())
}

func TestDroneStateCanTransitionTo(t *testing.T) {
	tests := []struct {
		from DroneState
		to   DroneState
		want bool
	}{
		{DroneStateIdle, DroneStateTraveling, true},
		{DroneStateIdle, DroneStateSearching, true},
		{DroneStateIdle, DroneStateAtTarget, false},
		{DroneStateTraveling, DroneStateAtTarget, true},
		{DroneStateTraveling, DroneStateIdle, true},
		{DroneStateAtTarget, DroneStateReturning, true},
		{DroneStateReturning, DroneStateIdle, true},
		{DroneStateReturning, DroneStateTraveling, false},
		{DroneStateSearching, DroneStateTraveling, true},
		{DroneState("bogus"), DroneStateIdle, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestParseDroneState(t *testing.T) {
	s, err := ParseDroneState("traveling")
	require.NoError(t, err)
	assert.Equal(t, DroneStateTraveling, s)

	_, err = ParseDroneState("hovering")
	assert.Error(t, err)
}

func TestDroneStateUnmarshalJSONRejectsUnknown(t *testing.T) {
	var s DroneState
	require.NoError(t, json.Unmarshal([]byte(`"at_target"`), &s))
	assert.Equal(t, DroneStateAtTarget, s)

	err := json.Unmarshal([]byte(`"warp"`), &s)
	assert.Error(t, err)
}
