package events

// EventType es el tipo de evento de la agenda de la mascota.
type EventType string

const (
	EventTypeConsulta    EventType = "consulta"
	EventTypeVacina      EventType = "vacina"
	EventTypeMedicamento EventType = "medicamento"
	EventTypeBanho       EventType = "banho"
	EventTypeOther       EventType = "other"
)

// ParseEventType: tipos desconocidos caen en other.
func ParseEventType(s string) EventType {
	switch t := EventType(s); t {
	case EventTypeConsulta, EventTypeVacina, EventTypeMedicamento, EventTypeBanho:
		return t
	default:
		return EventTypeOther
	}
}

type ActorType string

const (
	ActorTypeOwnerUser ActorType = "owner"
	ActorTypeVetUser   ActorType = "vet"
)

type EventStatus string

const (
	EventStatusActive EventStatus = "active"
	EventStatusVoided EventStatus = "voided"
)
