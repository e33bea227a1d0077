// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldMissionID = "mission_id"
	FieldDroneID   = "drone_id"
	FieldCallsign  = "callsign"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStep      = "step"

	// Mission fields
	FieldTarget     = "target"
	FieldCost       = "cost"
	FieldSurvivors  = "survivors"
	FieldRescued    = "rescued"
	FieldDiscovered = "discovered"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path / file fields
	FieldPath = "path"
)
