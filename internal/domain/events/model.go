package events

import "time"

// Event es la entidad Event de la plataforma (agenda de la mascota).
type Event struct {
	ID    string `json:"id,omitempty"`
	PetID string `json:"pet_id"`

	Type  EventType `json:"type"`
	Title string    `json:"title"`

	// Date tal cual la guarda la plataforma (RFC3339 o YYYY-MM-DDTHH:MM sin zona).
	Date string `json:"date"`

	Notes    string `json:"notes,omitempty"`
	Location string `json:"location,omitempty"`

	CreatedBy string      `json:"created_by"`
	ActorType ActorType   `json:"actor_type"`
	Status    EventStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

type ListFilter struct {
	Types []EventType
	From  *time.Time
	To    *time.Time
	Query string
	Limit int

	IncludeVoided bool
}
