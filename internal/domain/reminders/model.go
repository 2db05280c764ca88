package reminders

import "time"

// Reminder es el registro de la entidad Reminder de la plataforma.
// Date se conserva como viene (timestamp serializado) y se parsea en cada cálculo.
type Reminder struct {
	ID          string `json:"id,omitempty"`
	PetID       string `json:"pet_id"`
	Kind        Kind   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Status      Status `json:"status"`

	// Source no viaja a la plataforma.
	Source    Source    `json:"-"`
	CreatedAt time.Time `json:"-"`
}
