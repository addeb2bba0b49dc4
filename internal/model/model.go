package model

// Status is the last operational state reported for a service.
type Status string

const (
	StatusRunning    Status = "running"
	StatusStopped    Status = "stopped"
	StatusStarting   Status = "starting"
	StatusStopping   Status = "stopping"
	StatusRestarting Status = "restarting"
)

// Transitional reports whether the status is one of the in-between states.
func (s Status) Transitional() bool {
	switch s {
	case StatusStarting, StatusStopping, StatusRestarting:
		return true
	default:
		return false
	}
}

// StartupPolicy mirrors the service startup configuration.
type StartupPolicy string

const (
	PolicyAutomatic StartupPolicy = "automatic"
	PolicyManual    StartupPolicy = "manual"
	PolicyDisabled  StartupPolicy = "disabled"
)

// Item is one controllable service. ID is stable across refreshes.
type Item struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"display_name"`
	Type        ServiceType   `json:"type"`
	Status      Status        `json:"status"`
	Policy      StartupPolicy `json:"policy"`
	Description string        `json:"description,omitempty"`
}

// Label returns the display name, falling back to the identifier.
func (i Item) Label() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.ID
}

// Action is a control request against a single item.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
)

// Transitional returns the status shown while the action is in flight.
func (a Action) Transitional() Status {
	switch a {
	case ActionStart:
		return StatusStarting
	case ActionStop:
		return StatusStopping
	case ActionRestart:
		return StatusRestarting
	default:
		return ""
	}
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionStop, ActionRestart:
		return true
	default:
		return false
	}
}

// ParseAction converts user input into an Action.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	return a, a.Valid()
}
