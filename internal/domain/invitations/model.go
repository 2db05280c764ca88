package invitations

import "time"

type Scope string

const (
	ScopePetRead        Scope = "pet:read"
	ScopePetEditProfile Scope = "pet:edit_profile"
	ScopeEventsRead     Scope = "events:read"
	ScopeEventsCreate   Scope = "events:create"
	ScopeEventsVoid     Scope = "events:void"
	ScopeRecordsAdd     Scope = "records:add"
)

// DefaultScopes: ver perfil + ver agenda.
var DefaultScopes = []Scope{ScopePetRead, ScopeEventsRead}

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRevoked  Status = "revoked"
)

// Invitation es la entidad VetInvitation: un tutor comparte una mascota con un veterinario.
type Invitation struct {
	ID    string `json:"id,omitempty"`
	PetID string `json:"pet_id"`

	OwnerUserID string `json:"owner_id"`

	VetEmail      string `json:"vet_email"`
	VetName       string `json:"vet_name,omitempty"`
	LicenseNumber string `json:"license_number"`
	VetUserID     string `json:"vet_user_id,omitempty"` // se completa al aceptar

	InviteCode string  `json:"invite_code"`
	Scopes     []Scope `json:"scopes"`
	Status     Status  `json:"status"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// HasScope valida si la invitación incluye un scope.
func HasScope(inv Invitation, scope Scope) bool {
	for _, s := range inv.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
