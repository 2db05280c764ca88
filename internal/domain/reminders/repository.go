package reminders

import (
	"context"
	"fmt"

	"petcare-plus/internal/platform/apperr"
)

var ErrNotFound = fmt.Errorf("reminder %w", apperr.ErrNotFound)

// Repository guarda los recordatorios agendados localmente (no los de la plataforma).
type Repository interface {
	Create(ctx context.Context, r Reminder) error
	GetByID(ctx context.Context, id string) (Reminder, error)
	ListByPets(ctx context.Context, petIDs []string) ([]Reminder, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
