package middleware

import (
	"context"
	"net/http"
	"strings"

	"petcare-plus/internal/adapters/platform"
	"petcare-plus/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Headers del modo dev (sin verifier).
const (
	HeaderDebugUserID   = "X-Debug-User-ID"
	HeaderDebugEmail    = "X-Debug-Email"
	HeaderDebugUserType = "X-Debug-User-Type"
)

// AuthContext:
//   - Si verifier != nil y viene Bearer token => Verify() contra check-auth y setea claims.
//     El token queda en el contexto para reenviarlo a las funciones remotas.
//   - Si verifier == nil => modo dev: si viene header X-Debug-User-ID => setea claims.
//   - Si no hay claims, el request sigue igual; los handlers decidirán si exigen auth.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Dev mode: permitir inyectar user sin verifier
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get(HeaderDebugUserID)); uid != "" {
					claims := auth.Claims{
						UserID:   uid,
						Email:    strings.TrimSpace(r.Header.Get(HeaderDebugEmail)),
						UserType: auth.UserType(strings.TrimSpace(r.Header.Get(HeaderDebugUserType))),
					}
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			// Verifier mode
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := platform.WithToken(r.Context(), token)
			claims, err := verifier.Verify(ctx, token)
			if err != nil {
				// No cortamos aquí para no acoplar. El handler decide 401/403.
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

// WithClaims deja las claims en el contexto (también lo usan los tests).
func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// BearerToken extrae el token de un header "Authorization: Bearer <token>".
func BearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
