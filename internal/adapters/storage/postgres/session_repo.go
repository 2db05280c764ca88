package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"petcare-plus/internal/domain/session"
)

type IntentStore struct {
	db *sql.DB
}

func NewIntentStore(db *sql.DB) *IntentStore {
	return &IntentStore{db: db}
}

var _ session.IntentStore = (*IntentStore)(nil)

func (s *IntentStore) Put(ctx context.Context, sessionID string, in session.Intent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_intents (
			session_id, redirect_after_login, user_type_invite, invite_code, invite_email, created_at
		) VALUES ($1,$2,$3,$4,$5,now())
		ON CONFLICT (session_id) DO UPDATE SET
			redirect_after_login = EXCLUDED.redirect_after_login,
			user_type_invite     = EXCLUDED.user_type_invite,
			invite_code          = EXCLUDED.invite_code,
			invite_email         = EXCLUDED.invite_email,
			created_at           = EXCLUDED.created_at
	`,
		sessionID,
		in.RedirectAfterLogin,
		in.UserTypeInvite,
		in.InviteCode,
		in.InviteEmail,
	)
	return err
}

// Consume es un único DELETE ... RETURNING: sólo un consumidor ve la fila.
func (s *IntentStore) Consume(ctx context.Context, sessionID string) (session.Intent, bool, error) {
	var in session.Intent
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM session_intents
		WHERE session_id = $1
		RETURNING redirect_after_login, user_type_invite, invite_code, invite_email
	`, sessionID).Scan(
		&in.RedirectAfterLogin,
		&in.UserTypeInvite,
		&in.InviteCode,
		&in.InviteEmail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Intent{}, false, nil
	}
	if err != nil {
		return session.Intent{}, false, err
	}
	return in, true, nil
}

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

var _ session.PreferenceStore = (*PreferenceStore)(nil)

func (s *PreferenceStore) Get(ctx context.Context, sessionID string) (session.Preferences, error) {
	var (
		p  session.Preferences
		at sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT cookies_accepted, accepted_at
		FROM session_preferences
		WHERE session_id = $1
	`, sessionID).Scan(&p.CookiesAccepted, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Preferences{}, nil
	}
	if err != nil {
		return session.Preferences{}, err
	}
	if at.Valid {
		t := at.Time.UTC()
		p.AcceptedAt = &t
	}
	return p, nil
}

// AcceptCookies sólo escribe si todavía no estaba aceptado.
func (s *PreferenceStore) AcceptCookies(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO session_preferences (session_id, cookies_accepted, accepted_at)
		VALUES ($1, TRUE, $2)
		ON CONFLICT (session_id) DO UPDATE SET
			cookies_accepted = TRUE,
			accepted_at      = EXCLUDED.accepted_at
		WHERE session_preferences.cookies_accepted = FALSE
	`, sessionID, at.UTC())
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
