package pets

import (
	"context"
	"errors"
	"slices"

	"petcare-plus/internal/domain/invitations"
	"petcare-plus/internal/platform/apperr"
)

// OwnerOf expone el ownerUserID de una mascota.
// Se usa para evitar ciclos de imports entre módulos (pets <-> invitations).
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}

// Authorize: owner bypass, si no hace falta una invitación aceptada con el scope.
func (s *Service) Authorize(ctx context.Context, petID, userID string, scope invitations.Scope) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID == userID {
		return p, nil
	}
	if s.grants == nil {
		return Pet{}, ErrForbidden
	}

	inv, err := s.grants.GetActive(ctx, petID, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Pet{}, ErrForbidden
		}
		return Pet{}, err
	}
	if !invitations.HasScope(inv, scope) {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

// AccessiblePetIDs: mascotas propias + compartidas con pet:read.
func (s *Service) AccessiblePetIDs(ctx context.Context, userID string) ([]string, error) {
	owned, err := s.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(owned))
	for _, p := range owned {
		ids = append(ids, p.ID)
	}

	if s.grants == nil {
		return ids, nil
	}
	shared, err := s.grants.ListByVet(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, inv := range shared {
		if !invitations.HasScope(inv, invitations.ScopePetRead) {
			continue
		}
		if slices.Contains(ids, inv.PetID) {
			continue
		}
		ids = append(ids, inv.PetID)
	}
	return ids, nil
}

// Shared es una mascota compartida conmigo vía invitación.
type Shared struct {
	Pet        Pet
	Invitation invitations.Invitation
}

// SharedWith devuelve las mascotas compartidas con el veterinario (pet:read).
func (s *Service) SharedWith(ctx context.Context, vetUserID string) ([]Shared, error) {
	if s.grants == nil {
		return []Shared{}, nil
	}
	invs, err := s.grants.ListByVet(ctx, vetUserID)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	out := make([]Shared, 0)
	for _, inv := range invs {
		// Para mostrar perfil, exigimos pet:read.
		if !invitations.HasScope(inv, invitations.ScopePetRead) {
			continue
		}
		if _, ok := seen[inv.PetID]; ok {
			continue
		}
		seen[inv.PetID] = struct{}{}

		p, err := s.GetByID(ctx, inv.PetID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				// tolera invitaciones huérfanas (mascota borrada en la plataforma)
				continue
			}
			return nil, err
		}
		out = append(out, Shared{Pet: p, Invitation: inv})
	}
	return out, nil
}
