package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/logger"
	"petcare-plus/internal/ports/auth"

	"github.com/cenkalti/backoff/v4"
)

// InviteLandingPath es donde aterriza un veterinario invitado.
const InviteLandingPath = "/vet/invitations/accept"

var ErrSessionRequired = apperr.Validation("session_id", "X-Session-ID header is required")

type Options struct {
	RedirectAttempts int
	RedirectBackoff  time.Duration
	DefaultRedirect  string
	Logger           logger.Logger
}

type Service struct {
	intents  IntentStore
	prefs    PreferenceStore
	verifier auth.AuthVerifier
	opts     Options
	log      logger.Logger
	now      func() time.Time
}

func NewService(intents IntentStore, prefs PreferenceStore, verifier auth.AuthVerifier, opts Options) *Service {
	if opts.RedirectAttempts <= 0 {
		opts.RedirectAttempts = 3
	}
	if opts.RedirectBackoff < 0 {
		opts.RedirectBackoff = 0
	}
	if strings.TrimSpace(opts.DefaultRedirect) == "" {
		opts.DefaultRedirect = "/dashboard"
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{
		intents:  intents,
		prefs:    prefs,
		verifier: verifier,
		opts:     opts,
		log:      opts.Logger,
		now:      time.Now,
	}
}

// SaveIntent guarda (o reemplaza) la intención pendiente de la sesión.
func (s *Service) SaveIntent(ctx context.Context, sessionID string, in Intent) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	if in.IsZero() {
		return apperr.Validation("intent", "nothing to resume")
	}
	if in.RedirectAfterLogin != "" && !isSafeRedirect(in.RedirectAfterLogin) {
		return apperr.Validation("redirect_after_login", "must be a relative path")
	}
	return s.intents.Put(ctx, sessionID, in)
}

// Resume es el resultado de retomar la navegación post-login.
type Resume struct {
	Redirect string      `json:"redirect"`
	UserID   string      `json:"user_id"`
	UserType string      `json:"user_type,omitempty"`
	Intent   *Intent     `json:"intent,omitempty"`
	Claims   auth.Claims `json:"-"`
}

// ResumeAfterLogin consume la intención y confirma la sesión con check-auth,
// con reintentos acotados. Si la confirmación falla la intención se restaura.
func (s *Service) ResumeAfterLogin(ctx context.Context, sessionID, token string) (Resume, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Resume{}, ErrSessionRequired
	}

	in, found, err := s.intents.Consume(ctx, sessionID)
	if err != nil {
		return Resume{}, err
	}

	claims, err := s.confirm(ctx, token)
	if err != nil {
		if found {
			if perr := s.intents.Put(context.WithoutCancel(ctx), sessionID, in); perr != nil {
				s.log.Error("restore intent failed", map[string]any{"session_id": sessionID, "error": perr.Error()})
			}
		}
		return Resume{}, err
	}

	res := Resume{
		Redirect: s.opts.DefaultRedirect,
		UserID:   claims.UserID,
		UserType: string(claims.UserType),
		Claims:   claims,
	}
	if found {
		res.Intent = &in
		res.Redirect = s.target(in)
	}
	s.log.Info("session resumed", map[string]any{"user_id": claims.UserID, "redirect": res.Redirect})
	return res, nil
}

func (s *Service) confirm(ctx context.Context, token string) (auth.Claims, error) {
	var (
		claims  auth.Claims
		attempt int
	)
	op := func() error {
		attempt++
		c, err := s.verifier.Verify(ctx, token)
		if err == nil {
			claims = c
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		s.log.Warn("check-auth failed, retrying", map[string]any{"attempt": attempt, "error": err.Error()})
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RedirectBackoff), uint64(s.opts.RedirectAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(op, b); err != nil {
		return auth.Claims{}, fmt.Errorf("confirm session after %d attempt(s): %w", attempt, err)
	}
	return claims, nil
}

// retryable: sólo fallas de red o 5xx de la plataforma.
func retryable(err error) bool {
	if apperr.IsNetworkUnavailable(err) {
		return true
	}
	var re *apperr.RemoteError
	if errors.As(err, &re) {
		return re.Status == 0 || re.Status >= http.StatusInternalServerError
	}
	return false
}

func (s *Service) target(in Intent) string {
	if code := strings.TrimSpace(in.InviteCode); code != "" {
		q := url.Values{}
		q.Set("code", code)
		if email := strings.TrimSpace(in.InviteEmail); email != "" {
			q.Set("email", email)
		}
		return InviteLandingPath + "?" + q.Encode()
	}
	if isSafeRedirect(in.RedirectAfterLogin) {
		return in.RedirectAfterLogin
	}
	return s.opts.DefaultRedirect
}

// isSafeRedirect acepta sólo paths relativos al sitio.
func isSafeRedirect(p string) bool {
	p = strings.TrimSpace(p)
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}

func (s *Service) Consent(ctx context.Context, sessionID string) (Preferences, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Preferences{}, ErrSessionRequired
	}
	return s.prefs.Get(ctx, sessionID)
}

// AcceptCookies escribe el consentimiento una sola vez.
func (s *Service) AcceptCookies(ctx context.Context, sessionID string) (Preferences, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Preferences{}, ErrSessionRequired
	}
	changed, err := s.prefs.AcceptCookies(ctx, sessionID, s.now().UTC())
	if err != nil {
		return Preferences{}, err
	}
	if changed {
		s.log.Info("cookies accepted", map[string]any{"session_id": sessionID})
	}
	return s.prefs.Get(ctx, sessionID)
}
