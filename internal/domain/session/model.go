package session

import (
	"context"
	"strings"
	"time"
)

// Intent es lo que la UI quiere retomar después del login.
// Se consume una sola vez.
type Intent struct {
	RedirectAfterLogin string `json:"redirect_after_login,omitempty"`
	UserTypeInvite     string `json:"user_type_invite,omitempty"`
	InviteCode         string `json:"invite_code,omitempty"`
	InviteEmail        string `json:"invite_email,omitempty"`
}

func (i Intent) IsZero() bool {
	return strings.TrimSpace(i.RedirectAfterLogin) == "" &&
		strings.TrimSpace(i.UserTypeInvite) == "" &&
		strings.TrimSpace(i.InviteCode) == "" &&
		strings.TrimSpace(i.InviteEmail) == ""
}

// Preferences guarda flags persistentes por sesión (consentimiento de cookies).
type Preferences struct {
	CookiesAccepted bool       `json:"cookies_accepted"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
}

// IntentStore es de un solo consumidor: Consume lee y borra de forma atómica.
type IntentStore interface {
	Put(ctx context.Context, sessionID string, in Intent) error
	Consume(ctx context.Context, sessionID string) (Intent, bool, error)
}

type PreferenceStore interface {
	Get(ctx context.Context, sessionID string) (Preferences, error)
	// AcceptCookies guarda el consentimiento; changed=false si ya estaba aceptado.
	AcceptCookies(ctx context.Context, sessionID string, at time.Time) (changed bool, err error)
}
