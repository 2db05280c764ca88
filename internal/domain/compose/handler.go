package compose

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"petcare-plus/internal/middleware"
	"petcare-plus/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// PetAccess resuelve qué mascotas puede ver el usuario.
type PetAccess interface {
	AccessiblePetIDs(ctx context.Context, userID string) ([]string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, pets PetAccess) {
	r.Get("/vets/{vetID}/slots", availableSlotsHandler(svc))
	r.Get("/community/suggestions", suggestionsHandler(svc))

	r.Route("/pets/{petID}/health-logs", func(hr chi.Router) {
		hr.Post("/", createHealthLogHandler(svc, pets))
	})
	r.Get("/pets/{petID}/vaccines/timeline", vaccineTimelineHandler(svc, pets))
}

type createHealthLogRequest struct {
	Date       string   `json:"date"`
	Symptoms   []string `json:"symptoms"`
	Activities []string `json:"activities"`
	Mood       string   `json:"mood"`
	Notes      string   `json:"notes"`
}

// availableSlotsHandler godoc
// @Summary Available slots of a vet grouped by period of the day
// @Tags compose
// @Produce json
// @Param vetID path string true "Vet user ID"
// @Param date query string false "YYYY-MM-DD (default: hoy)"
// @Success 200 {object} SlotGroups
// @Router /vets/{vetID}/slots [get]
func availableSlotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userID(w, r); !ok {
			return
		}
		groups, err := svc.AvailableSlots(r.Context(), chi.URLParam(r, "vetID"), r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

// suggestionsHandler godoc
// @Summary Users to follow
// @Tags compose
// @Produce json
// @Success 200 {array} User
// @Router /community/suggestions [get]
func suggestionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := userID(w, r)
		if !ok {
			return
		}
		users, err := svc.Suggestions(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// createHealthLogHandler godoc
// @Summary Record a daily health log
// @Tags compose
// @Accept json
// @Produce json
// @Param petID path string true "Pet ID"
// @Param body body createHealthLogRequest true "log"
// @Success 201 {object} HealthLog
// @Router /pets/{petID}/health-logs [post]
func createHealthLogHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := accessiblePet(w, r, pets)
		if !ok {
			return
		}

		var req createHealthLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		log, err := svc.RecordHealthLog(r.Context(), petID, HealthLogInput{
			Date:     req.Date,
			Symptoms: req.Symptoms,
			Activity: req.Activities,
			Mood:     req.Mood,
			Notes:    req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, log)
	}
}

// vaccineTimelineHandler godoc
// @Summary Vaccination card split into applied, upcoming and overdue
// @Tags compose
// @Produce json
// @Param petID path string true "Pet ID"
// @Success 200 {object} Timeline
// @Router /pets/{petID}/vaccines/timeline [get]
func vaccineTimelineHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := accessiblePet(w, r, pets)
		if !ok {
			return
		}
		tl, err := svc.VaccineTimeline(r.Context(), petID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tl)
	}
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func accessiblePet(w http.ResponseWriter, r *http.Request, pets PetAccess) (string, bool) {
	uid, ok := userID(w, r)
	if !ok {
		return "", false
	}
	petID := chi.URLParam(r, "petID")
	ids, err := pets.AccessiblePetIDs(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return "", false
	}
	if !slices.Contains(ids, petID) {
		writeError(w, apperr.ErrForbidden)
		return "", false
	}
	return petID, true
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), map[string]string{"error": apperr.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
