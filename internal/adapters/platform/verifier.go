package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/ports/auth"
	"petcare-plus/internal/ports/functions"
)

var (
	ErrTokenEmpty = fmt.Errorf("token is empty: %w", apperr.ErrUnauthorized)
)

// Verifier implementa auth.AuthVerifier llamando a la función check-auth.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

type checkAuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	UserType      string `json:"user_type"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrPlatformNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var out checkAuthResponse
	if err := v.client.Invoke(WithToken(ctx, token), functions.CheckAuth, nil, &out); err != nil {
		var re *apperr.RemoteError
		if errors.As(err, &re) && (re.Status == http.StatusUnauthorized || re.Status == http.StatusForbidden) {
			return auth.Claims{}, ErrPlatformUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("platform verify failed: %w", err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if !out.Authenticated || out.UserID == "" {
		return auth.Claims{}, ErrPlatformUnauthorized
	}

	return auth.Claims{
		UserID:   out.UserID,
		Email:    strings.TrimSpace(out.Email),
		FullName: strings.TrimSpace(out.FullName),
		UserType: auth.UserType(strings.TrimSpace(out.UserType)),
	}, nil
}
