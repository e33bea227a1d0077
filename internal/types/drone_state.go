// SPDX-License-Identifier: MIT

// Package types provides type-safe enumerations and constants shared across
// the rescue-mission service.
//
// This package centralizes typed constants and state types to prevent
// string-based bugs and enable exhaustive switch statements.
package types

import (
	"encoding/json"
	"fmt"
)

// DroneState represents the current operational state of a drone.
type DroneState string

// Drone state constants define all possible states of a deployed drone.
const (
	// DroneStateIdle indicates the drone has no target assigned.
	DroneStateIdle DroneState = "idle"

	// DroneStateTraveling indicates the drone is following a planned path.
	DroneStateTraveling DroneState = "traveling"

	// DroneStateAtTarget indicates the drone has reached its assigned target.
	DroneStateAtTarget DroneState = "at_target"

	// DroneStateReturning indicates the drone is heading back to the spawn point.
	DroneStateReturning DroneState = "returning"

	// DroneStateSearching indicates the drone is sweeping for undiscovered survivors.
	DroneStateSearching DroneState = "searching"
)

// String returns the string representation of the drone state.
func (s DroneState) String() string {
	return string(s)
}

// IsValid checks whether the drone state is one of the defined constants.
func (s DroneState) IsValid() bool {
	switch s {
	case DroneStateIdle, DroneStateTraveling, DroneStateAtTarget, DroneStateReturning, DroneStateSearching:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks whether this state can transition to the target state.
//
// Valid transitions:
//   - Idle → Traveling, Searching
//   - Traveling → AtTarget, Traveling, Idle
//   - AtTarget → Idle, Returning, Traveling
//   - Returning → Idle
//   - Searching → Traveling, Idle
func (s DroneState) CanTransitionTo(target DroneState) bool {
	switch s {
	case DroneStateIdle:
		return target == DroneStateTraveling || target == DroneStateSearching
	case DroneStateTraveling:
		return target == DroneStateAtTarget || target == DroneStateTraveling || target == DroneStateIdle
	case DroneStateAtTarget:
		return target == DroneStateIdle || target == DroneStateReturning || target == DroneStateTraveling
	case DroneStateReturning:
		return target == DroneStateIdle
	case DroneStateSearching:
		return target == DroneStateTraveling || target == DroneStateIdle
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler for DroneState.
func (s DroneState) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler for DroneState.
func (s *DroneState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	state := DroneState(str)
	if !state.IsValid() {
		return fmt.Errorf("invalid drone state: %q", str)
	}

	*s = state
	return nil
}

// ParseDroneState parses a string into a DroneState, returning an error if invalid.
func ParseDroneState(s string) (DroneState, error) {
	state := DroneState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid drone state: %q (valid: idle, traveling, at_target, returning, searching)", s)
	}
	return state, nil
}

// AllDroneStates returns all defined drone states.
func AllDroneStates() []DroneState {
	return []DroneState{
		DroneStateIdle,
		DroneStateTraveling,
		DroneStateAtTarget,
		DroneStateReturning,
		DroneStateSearching,
	}
}
