// SPDX-License-Identifier: MIT

package types

import (
	"encoding/json"
	"fmt"
)

// MissionStatus represents the lifecycle state of a rescue mission.
type MissionStatus string

// Mission status constants define all possible states of a mission.
const (
	// MissionStatusPlanned indicates the mission is created but not yet stepped.
	MissionStatusPlanned MissionStatus = "planned"

	// MissionStatusRunning indicates the mission is being advanced.
	MissionStatusRunning MissionStatus = "running"

	// MissionStatusCompleted indicates every known survivor has been rescued.
	MissionStatusCompleted MissionStatus = "completed"

	// MissionStatusAborted indicates the mission was stopped before completion.
	MissionStatusAborted MissionStatus = "aborted"

	// MissionStatusExhausted indicates the step budget ran out with survivors remaining.
	MissionStatusExhausted MissionStatus = "exhausted"
)

// String returns the string representation of the mission status.
func (s MissionStatus) String() string {
	return string(s)
}

// IsValid checks whether the mission status is one of the defined constants.
func (s MissionStatus) IsValid() bool {
	switch s {
	case MissionStatusPlanned, MissionStatusRunning, MissionStatusCompleted, MissionStatusAborted, MissionStatusExhausted:
		return true
	default:
		return false
	}
}

// IsTerminal checks whether the mission status represents a final state.
// A mission in a terminal state will not transition to another state.
func (s MissionStatus) IsTerminal() bool {
	switch s {
	case MissionStatusCompleted, MissionStatusAborted, MissionStatusExhausted:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks whether this status can transition to the target status.
//
// Valid transitions:
//   - Planned → Running, Aborted
//   - Running → Completed, Aborted, Exhausted
//   - Terminal states cannot transition
func (s MissionStatus) CanTransitionTo(target MissionStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch s {
	case MissionStatusPlanned:
		return target == MissionStatusRunning || target == MissionStatusAborted
	case MissionStatusRunning:
		return target == MissionStatusCompleted || target == MissionStatusAborted || target == MissionStatusExhausted
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler for MissionStatus.
func (s MissionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler for MissionStatus.
func (s *MissionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status := MissionStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid mission status: %q", str)
	}

	*s = status
	return nil
}

// ParseMissionStatus parses a string into a MissionStatus, returning an error if invalid.
func ParseMissionStatus(s string) (MissionStatus, error) {
	status := MissionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid mission status: %q (valid: planned, running, completed, aborted, exhausted)", s)
	}
	return status, nil
}

// AllMissionStatuses returns all defined mission statuses.
func AllMissionStatuses() []MissionStatus {
	return []MissionStatus{
		MissionStatusPlanned,
		MissionStatusRunning,
		MissionStatusCompleted,
		MissionStatusAborted,
		MissionStatusExhausted,
	}
}
