package invitations

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/logger"
	"petcare-plus/internal/ports/entities"
	"petcare-plus/internal/ports/functions"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = apperr.Validation("", "invalid input")
	ErrForbidden      = fmt.Errorf("invitation %w", apperr.ErrForbidden)
	ErrNotFound       = fmt.Errorf("invitation %w", apperr.ErrNotFound)
	ErrBadState       = fmt.Errorf("invitation state: %w", apperr.ErrPrecondition)
	ErrInvalidLicense = apperr.Validation("license_number", "license number could not be validated")
)

type Service struct {
	invites entities.Collection[Invitation]
	fn      functions.Invoker
	log     logger.Logger
	now     func() time.Time
}

func NewService(invites entities.Collection[Invitation], fn functions.Invoker, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		invites: invites,
		fn:      fn,
		log:     log,
		now:     time.Now,
	}
}

type InviteInput struct {
	PetID         string
	PetName       string
	OwnerUserID   string
	OwnerName     string
	VetEmail      string
	VetName       string
	LicenseNumber string
	Scopes        []Scope
}

type validateLicenseResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Invite valida el registro profesional, crea (o actualiza) la invitación y envía el email.
// Re-invitar al mismo veterinario actualiza scopes y reenvía el código.
func (s *Service) Invite(ctx context.Context, in InviteInput) (Invitation, error) {
	petID := strings.TrimSpace(in.PetID)
	ownerID := strings.TrimSpace(in.OwnerUserID)
	email := strings.ToLower(strings.TrimSpace(in.VetEmail))
	license := strings.TrimSpace(in.LicenseNumber)

	if petID == "" || ownerID == "" {
		return Invitation{}, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Invitation{}, apperr.Validation("vet_email", "must be a valid email")
	}
	if license == "" {
		return Invitation{}, apperr.Validation("license_number", "is required")
	}

	scopes := DefaultScopes
	if len(in.Scopes) > 0 {
		var err error
		scopes, err = normalizeScopesStrict(in.Scopes)
		if err != nil {
			return Invitation{}, err
		}
		if len(scopes) == 0 {
			return Invitation{}, ErrInvalidInput
		}
	}

	var lic validateLicenseResponse
	if err := s.fn.Invoke(ctx, functions.ValidateLicenseNumber, map[string]string{"license_number": license}, &lic); err != nil {
		return Invitation{}, err
	}
	if !lic.Valid {
		if lic.Message != "" {
			return Invitation{}, apperr.Validation("license_number", "%s", lic.Message)
		}
		return Invitation{}, ErrInvalidLicense
	}

	now := s.now().UTC()

	existing, matches, err := s.findLatestMatch(ctx, petID, ownerID, email)
	if err != nil {
		return Invitation{}, err
	}

	var inv Invitation
	if existing.ID != "" && existing.Status != StatusRevoked {
		s.revokeOtherMatches(ctx, existing.ID, matches, now)

		inv, err = s.invites.Update(ctx, existing.ID, map[string]any{
			"scopes":         scopes,
			"license_number": license,
			"updated_at":     now,
		})
		if err != nil {
			return Invitation{}, err
		}
	} else {
		inv, err = s.invites.Create(ctx, Invitation{
			PetID:         petID,
			OwnerUserID:   ownerID,
			VetEmail:      email,
			VetName:       strings.TrimSpace(in.VetName),
			LicenseNumber: license,
			InviteCode:    newInviteCode(),
			Scopes:        scopes,
			Status:        StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return Invitation{}, err
		}
	}

	if inv.Status == StatusPending {
		if err := s.sendInvite(ctx, inv, in); err != nil {
			return inv, err
		}
	}
	return inv, nil
}

func (s *Service) sendInvite(ctx context.Context, inv Invitation, in InviteInput) error {
	err := s.fn.Invoke(ctx, functions.SendVetInvite, map[string]string{
		"invitation_id": inv.ID,
		"vet_email":     inv.VetEmail,
		"vet_name":      inv.VetName,
		"invite_code":   inv.InviteCode,
		"pet_id":        inv.PetID,
		"pet_name":      in.PetName,
		"owner_name":    in.OwnerName,
	}, nil)
	if err != nil {
		s.log.Warn("send vet invite failed", map[string]any{"invitation_id": inv.ID, "error": err.Error()})
		return err
	}
	s.log.Info("vet invite sent", map[string]any{"invitation_id": inv.ID, "pet_id": inv.PetID})
	return nil
}

// Accept vincula al veterinario con la invitación. El email del usuario debe coincidir.
func (s *Service) Accept(ctx context.Context, code, vetUserID, vetEmail string) (Invitation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	vetUserID = strings.TrimSpace(vetUserID)
	if code == "" || vetUserID == "" {
		return Invitation{}, ErrInvalidInput
	}

	items, err := s.invites.Filter(ctx, entities.Query{"invite_code": code}, "-updated_at")
	if err != nil {
		return Invitation{}, err
	}
	if len(items) == 0 {
		return Invitation{}, ErrNotFound
	}
	inv := items[0]

	if !strings.EqualFold(inv.VetEmail, strings.TrimSpace(vetEmail)) {
		return Invitation{}, ErrForbidden
	}
	switch inv.Status {
	case StatusRevoked:
		return Invitation{}, ErrBadState
	case StatusAccepted:
		// Idempotente para el mismo veterinario
		if inv.VetUserID == vetUserID {
			return inv, nil
		}
		return Invitation{}, ErrForbidden
	}

	now := s.now().UTC()
	return s.invites.Update(ctx, inv.ID, map[string]any{
		"status":      StatusAccepted,
		"vet_user_id": vetUserID,
		"accepted_at": now,
		"updated_at":  now,
	})
}

// Revoke sólo lo puede hacer el tutor que invitó. Idempotente.
func (s *Service) Revoke(ctx context.Context, id, ownerUserID string) (Invitation, error) {
	id = strings.TrimSpace(id)
	ownerUserID = strings.TrimSpace(ownerUserID)
	if id == "" || ownerUserID == "" {
		return Invitation{}, ErrInvalidInput
	}

	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return Invitation{}, err
	}
	if inv.OwnerUserID != ownerUserID {
		return Invitation{}, ErrForbidden
	}
	if inv.Status == StatusRevoked {
		return inv, nil
	}

	now := s.now().UTC()
	return s.invites.Update(ctx, inv.ID, map[string]any{
		"status":     StatusRevoked,
		"revoked_at": now,
		"updated_at": now,
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (Invitation, error) {
	items, err := s.invites.Filter(ctx, entities.Query{"id": id}, "")
	if err != nil {
		return Invitation{}, err
	}
	if len(items) == 0 {
		return Invitation{}, ErrNotFound
	}
	return items[0], nil
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Invitation, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	return s.invites.Filter(ctx, entities.Query{"pet_id": petID}, "-updated_at")
}

// ListByVet devuelve las invitaciones aceptadas por el veterinario.
func (s *Service) ListByVet(ctx context.Context, vetUserID string) ([]Invitation, error) {
	vetUserID = strings.TrimSpace(vetUserID)
	if vetUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.invites.Filter(ctx, entities.Query{"vet_user_id": vetUserID, "status": string(StatusAccepted)}, "-updated_at")
}

// GetActive devuelve la invitación aceptada del veterinario para la mascota.
func (s *Service) GetActive(ctx context.Context, petID, vetUserID string) (Invitation, error) {
	petID = strings.TrimSpace(petID)
	vetUserID = strings.TrimSpace(vetUserID)
	if petID == "" || vetUserID == "" {
		return Invitation{}, ErrInvalidInput
	}
	items, err := s.invites.Filter(ctx, entities.Query{
		"pet_id":      petID,
		"vet_user_id": vetUserID,
		"status":      string(StatusAccepted),
	}, "-updated_at")
	if err != nil {
		return Invitation{}, err
	}
	if len(items) == 0 {
		return Invitation{}, ErrNotFound
	}
	return items[0], nil
}

func (s *Service) findLatestMatch(ctx context.Context, petID, ownerID, email string) (Invitation, []Invitation, error) {
	items, err := s.invites.Filter(ctx, entities.Query{"pet_id": petID, "owner_id": ownerID}, "")
	if err != nil {
		return Invitation{}, nil, err
	}

	matches := make([]Invitation, 0)
	var winner Invitation
	for _, inv := range items {
		if !strings.EqualFold(inv.VetEmail, email) {
			continue
		}
		matches = append(matches, inv)
		if winner.ID == "" || inv.UpdatedAt.After(winner.UpdatedAt) {
			winner = inv
		}
	}
	return winner, matches, nil
}

func (s *Service) revokeOtherMatches(ctx context.Context, winnerID string, matches []Invitation, now time.Time) {
	for _, inv := range matches {
		if inv.ID == "" || inv.ID == winnerID || inv.Status == StatusRevoked {
			continue
		}
		_, err := s.invites.Update(ctx, inv.ID, map[string]any{
			"status":     StatusRevoked,
			"revoked_at": now,
			"updated_at": now,
		})
		if err != nil {
			s.log.Warn("revoke duplicate invitation failed", map[string]any{"invitation_id": inv.ID, "error": err.Error()})
		}
	}
}

func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	allowed := map[Scope]struct{}{
		ScopePetRead:        {},
		ScopePetEditProfile: {},
		ScopeEventsRead:     {},
		ScopeEventsCreate:   {},
		ScopeEventsVoid:     {},
		ScopeRecordsAdd:     {},
	}

	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))

	for _, raw := range in {
		s := Scope(strings.TrimSpace(string(raw)))
		if s == "" {
			continue
		}
		if _, ok := allowed[s]; !ok {
			return nil, apperr.Validation("scopes", "unknown scope %q", s)
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}
