package entities

import "context"

// Nombres de entidades de la plataforma.
const (
	Pet               = "Pet"
	Event             = "Event"
	DiaryEntry        = "DiaryEntry"
	VetInvitation     = "VetInvitation"
	Record            = "Record"
	Reminder          = "Reminder"
	HealthLog         = "HealthLog"
	Notification      = "Notification"
	VaccinationRecord = "VaccinationRecord"
	MedicationRecord  = "MedicationRecord"
	VetVisit          = "VetVisit"
	HealthCondition   = "HealthCondition"
	EmailTemplate     = "EmailTemplate"
	User              = "User"
	Follow            = "Follow"
)

// Query es el objeto-predicado que acepta Filter: igualdad exacta por campo,
// todas las condiciones en AND. No hay "uno de" ni rangos; esos filtros se
// hacen con varias consultas o del lado local.
type Query map[string]any

// Collection es la vista CRUD que expone la plataforma para una entidad.
// Todas las operaciones son remotas y pueden fallar.
type Collection[T any] interface {
	List(ctx context.Context, sort string, limit int) ([]T, error)
	Filter(ctx context.Context, q Query, sort string) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, patch map[string]any) (T, error)
	Delete(ctx context.Context, id string) error
}
