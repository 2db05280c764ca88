package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"petcare-plus/internal/middleware"
	"petcare-plus/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
)

// PetAccess resuelve qué mascotas puede ver el usuario (propias o compartidas).
type PetAccess interface {
	AccessiblePetIDs(ctx context.Context, userID string) ([]string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, pets PetAccess) {
	r.Route("/reminders", func(rr chi.Router) {
		rr.Get("/", listRemindersHandler(svc, pets))
		rr.Post("/", scheduleReminderHandler(svc, pets))
		rr.Get("/active", activeRemindersHandler(svc, pets))

		rr.Post("/{reminderID}/complete", completeReminderHandler(svc, pets))
		rr.Post("/{reminderID}/dismiss", dismissReminderHandler(svc, pets))
	})
}

type scheduleReminderRequest struct {
	PetID       string `json:"pet_id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type dismissReminderRequest struct {
	// Until opcional: vuelve a notificar en ese instante.
	Until string `json:"until"`
}

type reminderResponse struct {
	ID          string   `json:"id"`
	PetID       string   `json:"pet_id"`
	Type        Kind     `json:"type"`
	Info        KindInfo `json:"info"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`
	Status      Status   `json:"status"`
	Source      Source   `json:"source"`
	TimeLeft    string   `json:"time_left,omitempty"`
	State       State    `json:"state,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// listRemindersHandler godoc
// @Summary List reminders
// @Description Recordatorios de las mascotas visibles, con el tiempo restante recalculado
// @Tags reminders
// @Produce json
// @Success 200 {array} reminderResponse
// @Router /reminders [get]
func listRemindersHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petIDs, ok := accessiblePets(w, r, pets)
		if !ok {
			return
		}
		if q := strings.TrimSpace(r.URL.Query().Get("pet_id")); q != "" {
			if !slices.Contains(petIDs, q) {
				writeError(w, apperr.ErrForbidden)
				return
			}
			petIDs = []string{q}
		}

		views, err := svc.List(r.Context(), petIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(views, locale(r, svc)))
	}
}

// activeRemindersHandler godoc
// @Summary Active reminder notifications
// @Tags reminders
// @Produce json
// @Success 200 {array} reminderResponse
// @Router /reminders/active [get]
func activeRemindersHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petIDs, ok := accessiblePets(w, r, pets)
		if !ok {
			return
		}
		views, err := svc.Active(r.Context(), petIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(views, locale(r, svc)))
	}
}

// scheduleReminderHandler godoc
// @Summary Schedule a local reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Param body body scheduleReminderRequest true "reminder"
// @Success 201 {object} reminderResponse
// @Router /reminders [post]
func scheduleReminderHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petIDs, ok := accessiblePets(w, r, pets)
		if !ok {
			return
		}

		var req scheduleReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.PetID != "" && !slices.Contains(petIDs, req.PetID) {
			writeError(w, apperr.ErrForbidden)
			return
		}

		var date time.Time
		if strings.TrimSpace(req.Date) != "" {
			t, err := time.Parse(time.RFC3339, req.Date)
			if err != nil {
				writeError(w, apperr.Validation("date", "must be RFC3339"))
				return
			}
			date = t
		}

		rem, err := svc.Schedule(r.Context(), ScheduleInput{
			PetID:       req.PetID,
			Kind:        ParseKind(req.Type),
			Title:       req.Title,
			Description: req.Description,
			Date:        date,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		v := View{Reminder: rem, At: date, Due: Compute(date, svc.now()), State: StateHidden}
		writeJSON(w, http.StatusCreated, toResponse(v, locale(r, svc)))
	}
}

// completeReminderHandler godoc
// @Summary Complete a visible reminder
// @Tags reminders
// @Produce json
// @Param reminderID path string true "Reminder ID"
// @Success 200 {object} reminderResponse
// @Failure 409 {object} map[string]string
// @Router /reminders/{reminderID}/complete [post]
func completeReminderHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "reminderID")
		if !canTouch(w, r, svc, pets, id) {
			return
		}

		rem, err := svc.Complete(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(View{Reminder: rem, State: StateCompleted}, locale(r, svc)))
	}
}

// dismissReminderHandler godoc
// @Summary Dismiss a visible reminder
// @Tags reminders
// @Accept json
// @Param reminderID path string true "Reminder ID"
// @Param body body dismissReminderRequest false "snooze"
// @Success 204
// @Router /reminders/{reminderID}/dismiss [post]
func dismissReminderHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "reminderID")
		if !canTouch(w, r, svc, pets, id) {
			return
		}

		var req dismissReminderRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		var until time.Time
		if strings.TrimSpace(req.Until) != "" {
			t, err := time.Parse(time.RFC3339, req.Until)
			if err != nil {
				writeError(w, apperr.Validation("until", "must be RFC3339"))
				return
			}
			until = t
		}

		if err := svc.Dismiss(r.Context(), id, until); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func accessiblePets(w http.ResponseWriter, r *http.Request, pets PetAccess) ([]string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	ids, err := pets.AccessiblePetIDs(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return ids, true
}

// canTouch valida que el recordatorio tenga notificación y sea de una mascota visible.
func canTouch(w http.ResponseWriter, r *http.Request, svc *Service, pets PetAccess, id string) bool {
	petIDs, ok := accessiblePets(w, r, pets)
	if !ok {
		return false
	}
	p := svc.Presenter(id)
	if p == nil {
		writeError(w, ErrNotVisible)
		return false
	}
	if !slices.Contains(petIDs, p.Reminder().PetID) {
		writeError(w, apperr.ErrForbidden)
		return false
	}
	return true
}

func locale(r *http.Request, svc *Service) language.Tag {
	return MatchLocale(r.Header.Get("Accept-Language"), svc.Locale())
}

func toResponses(views []View, tag language.Tag) []reminderResponse {
	out := make([]reminderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toResponse(v, tag))
	}
	return out
}

func toResponse(v View, tag language.Tag) reminderResponse {
	resp := reminderResponse{
		ID:          v.Reminder.ID,
		PetID:       v.Reminder.PetID,
		Type:        v.Reminder.Kind,
		Info:        v.Reminder.Kind.Info(),
		Title:       v.Reminder.Title,
		Description: v.Reminder.Description,
		Date:        v.Reminder.Date,
		Status:      v.Reminder.Status,
		Source:      v.Reminder.Source,
		State:       v.State,
	}
	switch {
	case v.Err != nil:
		resp.Error = apperr.UserMessage(v.Err)
	case !v.At.IsZero():
		resp.TimeLeft = v.Due.Label(tag)
	}
	return resp
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	msg := apperr.UserMessage(err)
	switch {
	case errors.Is(err, ErrPending), errors.Is(err, ErrNotVisible), errors.Is(err, ErrClosed):
		status = http.StatusConflict
		msg = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
