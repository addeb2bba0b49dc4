package registry

import (
	"time"

	"svcboard/internal/model"
)

// Entry is a tracked service. It is immutable outside registry methods.
type Entry struct {
	ID          string              `json:"id"`
	DisplayName string              `json:"display_name"`
	Type        model.ServiceType   `json:"type"`
	Status      model.Status        `json:"status"`
	Policy      model.StartupPolicy `json:"policy"`
	Description string              `json:"description,omitempty"`
	AddedAt     time.Time           `json:"added_at"`
	ChangedAt   time.Time           `json:"changed_at"`
}

// Item converts the entry to the shared data model.
func (e Entry) Item() model.Item {
	return model.Item{
		ID:          e.ID,
		DisplayName: e.DisplayName,
		Type:        e.Type,
		Status:      e.Status,
		Policy:      e.Policy,
		Description: e.Description,
	}
}

// ListFilter allows narrowing the registry query.
type ListFilter struct {
	IDs        []string
	Types      []model.ServiceType // include if of ANY of these types
	Statuses   []model.Status      // include if in ANY of these statuses
	TextSearch string              // case-insensitive substring over ID and display name
}
