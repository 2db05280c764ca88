package session

import (
	"encoding/json"
	"net/http"
	"strings"

	"petcare-plus/internal/middleware"
	"petcare-plus/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// HeaderSessionID identifica la sesión del navegador antes del login.
const HeaderSessionID = "X-Session-ID"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/session", func(sr chi.Router) {
		sr.Post("/intent", saveIntentHandler(svc))
		sr.Post("/resume", resumeHandler(svc))

		sr.Get("/consent", getConsentHandler(svc))
		sr.Put("/consent", acceptConsentHandler(svc))
	})
}

// saveIntentHandler godoc
// @Summary Save what to resume after login
// @Tags session
// @Accept json
// @Param X-Session-ID header string true "session id"
// @Param body body Intent true "intent"
// @Success 204
// @Router /session/intent [post]
func saveIntentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in Intent
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := svc.SaveIntent(r.Context(), sessionID(r), in); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// resumeHandler godoc
// @Summary Resume navigation after login
// @Description Consume la intención guardada y confirma la sesión (check-auth) con reintentos
// @Tags session
// @Produce json
// @Param X-Session-ID header string true "session id"
// @Success 200 {object} Resume
// @Failure 401 {object} map[string]string
// @Router /session/resume [post]
func resumeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		res, err := svc.ResumeAfterLogin(r.Context(), sessionID(r), token)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// getConsentHandler godoc
// @Summary Cookie consent of the session
// @Tags session
// @Produce json
// @Param X-Session-ID header string true "session id"
// @Success 200 {object} Preferences
// @Router /session/consent [get]
func getConsentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Consent(r.Context(), sessionID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// acceptConsentHandler godoc
// @Summary Accept cookies
// @Tags session
// @Produce json
// @Param X-Session-ID header string true "session id"
// @Success 200 {object} Preferences
// @Router /session/consent [put]
func acceptConsentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.AcceptCookies(r.Context(), sessionID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderSessionID))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), map[string]string{"error": apperr.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
