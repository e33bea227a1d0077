// SPDX-License-Identifier: MIT

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissionStatusIsTerminal(t *testing.T) {
	assert.False(t, MissionStatusPlanned.IsTerminal())
	assert.False(t, MissionStatusRunning.IsTerminal())
	assert.True(t, MissionStatusCompleted.IsTerminal())
	assert.True(t, MissionStatusAborted.IsTerminal())
	assert.True(t, MissionStatusExhausted.IsTerminal())
}

func TestMissionStatusCanTransitionTo(t *testing.T) {
	assert.True(t, MissionStatusPlanned.CanTransitionTo(MissionStatusRunning))
	assert.True(t, MissionStatusPlanned.CanTransitionTo(MissionStatusAborted))
	assert.False(t, MissionStatusPlanned.CanTransitionTo(MissionStatusCompleted))

	assert.True(t, MissionStatusRunning.CanTransitionTo(MissionStatusCompleted))
	assert.True(t, MissionStatusRunning.CanTransitionTo(MissionStatusExhausted))
	assert.False(t, MissionStatusRunning.CanTransitionTo(MissionStatusPlanned))

	// Terminal states never transition.
	for _, s := range AllMissionStatuses() {
		if !s.IsTerminal() {
			continue
		}
		for _, target := range AllMissionStatuses() {
			assert.False(t, s.CanTransitionTo(target), "%s -> %s", s, target)
		}
	}
}

func TestParseMissionStatus(t *testing.T) {
	s, err := ParseMissionStatus("exhausted")
	require.NoError(t, err)
	assert.Equal(t, MissionStatusExhausted, s)

	_, err = ParseMissionStatus("paused")
	assert.Error(t, err)
}
