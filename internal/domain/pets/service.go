package pets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petcare-plus/internal/domain/invitations"
	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/clock"
	"petcare-plus/internal/ports/entities"
)

var (
	ErrInvalidInput = apperr.Validation("", "invalid input")
	ErrNotFound     = fmt.Errorf("pet %w", apperr.ErrNotFound)
	ErrForbidden    = fmt.Errorf("pet %w", apperr.ErrForbidden)
)

// Grants es lo que pets necesita de las invitaciones aceptadas.
type Grants interface {
	GetActive(ctx context.Context, petID, vetUserID string) (invitations.Invitation, error)
	ListByVet(ctx context.Context, vetUserID string) ([]invitations.Invitation, error)
}

type Service struct {
	pets   entities.Collection[Pet]
	grants Grants
	now    func() time.Time
}

func NewService(pets entities.Collection[Pet], grants Grants) *Service {
	return &Service{
		pets:   pets,
		grants: grants,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	Sex       string
	BirthDate string
	WeightKg  float64
	Microchip string
	PhotoURL  string
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, apperr.Validation("name", "is required")
	}
	species, ok := ParseSpecies(strings.TrimSpace(in.Species))
	if !ok {
		return Pet{}, apperr.Validation("species", "must be dog, cat or other")
	}
	sex, ok := parseSex(strings.TrimSpace(in.Sex))
	if !ok {
		return Pet{}, apperr.Validation("sex", "must be male, female or unknown")
	}
	bd, err := validBirthDate(in.BirthDate)
	if err != nil {
		return Pet{}, err
	}
	if in.WeightKg < 0 {
		return Pet{}, apperr.Validation("weight_kg", "must be positive")
	}

	now := s.now().UTC()
	return s.pets.Create(ctx, Pet{
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Species:     species,
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         sex,
		BirthDate:   bd,
		WeightKg:    in.WeightKg,
		Microchip:   strings.TrimSpace(in.Microchip),
		PhotoURL:    strings.TrimSpace(in.PhotoURL),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	items, err := s.pets.Filter(ctx, entities.Query{"id": id}, "")
	if err != nil {
		return Pet{}, err
	}
	if len(items) == 0 {
		return Pet{}, ErrNotFound
	}
	return items[0], nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return nil, ErrInvalidInput
	}
	return s.pets.Filter(ctx, entities.Query{"owner_id": ownerUserID}, "name")
}

// UpdateProfileInput: punteros para PATCH real, nil = no tocar.
type UpdateProfileInput struct {
	Name      *string
	Species   *string
	Breed     *string
	Sex       *string
	BirthDate patchBirthDate
	WeightKg  *float64
	Microchip *string
	PhotoURL  *string
	Notes     *string
}

// Para permitir "birth_date": null y diferenciarlo de "no enviado".
type patchBirthDate struct {
	Present bool
	Value   *string
}

// UpdateProfile arma el patch y lo manda a la plataforma. La autorización
// (owner o pet:edit_profile) la resuelve el caller con Authorize.
func (s *Service) UpdateProfile(ctx context.Context, petID string, in UpdateProfileInput) (Pet, error) {
	current, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	patch := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, apperr.Validation("name", "is required")
		}
		patch["name"] = name
	}
	if in.Species != nil {
		sp, ok := ParseSpecies(strings.TrimSpace(*in.Species))
		if !ok {
			return Pet{}, apperr.Validation("species", "must be dog, cat or other")
		}
		patch["species"] = sp
	}
	if in.Breed != nil {
		patch["breed"] = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		sx, ok := parseSex(strings.TrimSpace(*in.Sex))
		if !ok {
			return Pet{}, apperr.Validation("sex", "must be male, female or unknown")
		}
		patch["sex"] = sx
	}
	if in.BirthDate.Present {
		if in.BirthDate.Value == nil {
			patch["birth_date"] = ""
		} else {
			bd, err := validBirthDate(*in.BirthDate.Value)
			if err != nil {
				return Pet{}, err
			}
			patch["birth_date"] = bd
		}
	}
	if in.WeightKg != nil {
		if *in.WeightKg < 0 {
			return Pet{}, apperr.Validation("weight_kg", "must be positive")
		}
		patch["weight_kg"] = *in.WeightKg
	}
	if in.Microchip != nil {
		patch["microchip"] = strings.TrimSpace(*in.Microchip)
	}
	if in.PhotoURL != nil {
		patch["photo_url"] = strings.TrimSpace(*in.PhotoURL)
	}
	if in.Notes != nil {
		patch["notes"] = strings.TrimSpace(*in.Notes)
	}

	if len(patch) == 0 {
		return current, nil
	}
	patch["updated_at"] = s.now().UTC()

	return s.pets.Update(ctx, current.ID, patch)
}

func validBirthDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse(clock.DateLayout, raw); err != nil {
		return "", apperr.Validation("birth_date", "must be YYYY-MM-DD")
	}
	return raw, nil
}
