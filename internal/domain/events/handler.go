package events

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petcare-plus/internal/domain/invitations"
	"petcare-plus/internal/domain/pets"
	"petcare-plus/internal/middleware"
	"petcare-plus/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// PetAuthorizer: owner bypass o invitación aceptada con el scope pedido.
type PetAuthorizer interface {
	Authorize(ctx context.Context, petID, userID string, scope invitations.Scope) (pets.Pet, error)
}

func RegisterRoutes(r chi.Router, svc *Service, petsAuth PetAuthorizer) {
	r.Route("/pets/{petID}/events", func(er chi.Router) {
		er.Post("/", createEventHandler(svc, petsAuth))
		er.Get("/", listEventsHandler(svc, petsAuth))

		// Anular (void) evento (owner o veterinario con events:void)
		er.Post("/{eventID}/void", voidEventHandler(svc, petsAuth))

		// Borrar sólo el tutor
		er.Delete("/{eventID}", deleteEventHandler(svc, petsAuth))
	})
}

// createEventRequest es el cuerpo de la solicitud para agendar un evento.
type createEventRequest struct {
	Type     EventType `json:"type" enums:"consulta,vacina,medicamento,banho,other"`
	Date     string    `json:"date"` // RFC3339
	Title    string    `json:"title"`
	Notes    string    `json:"notes"`
	Location string    `json:"location"`
}

// createEventHandler godoc
// @Summary Crear evento de mascota
// @Description El dueño siempre puede crear eventos. Un veterinario necesita una invitación aceptada con scope `events:create`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags events
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body createEventRequest true "Datos del evento; date en formato RFC3339"
// @Success 201 {object} Event
// @Failure 400 {object} map[string]string
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID}/events [post]
func createEventHandler(svc *Service, petsAuth PetAuthorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		p, err := petsAuth.Authorize(r.Context(), petID, claims.UserID, invitations.ScopeEventsCreate)
		if err != nil {
			writeError(w, err)
			return
		}

		actorType := ActorTypeOwnerUser
		if p.OwnerUserID != claims.UserID {
			actorType = ActorTypeVetUser
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeError(w, apperr.Validation("date", "must be RFC3339"))
			return
		}

		e, err := svc.Create(r.Context(), petID, Actor{
			Type: actorType,
			ID:   claims.UserID,
		}, CreateInput{
			Type:     req.Type,
			Date:     t,
			Title:    req.Title,
			Notes:    req.Notes,
			Location: req.Location,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, e)
	}
}

// listEventsHandler godoc
// @Summary Listar eventos de una mascota
// @Description El dueño siempre puede verlos. Un veterinario necesita scope `events:read`. Permite filtrar por tipos, rango de fechas y texto.
// @Tags events
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de eventos a devolver (1-200). Por defecto 50"
// @Param types query string false "Lista CSV de tipos (ej: consulta,banho)"
// @Param from query string false "Fecha mínima (RFC3339)"
// @Param to query string false "Fecha máxima (RFC3339)"
// @Param q query string false "Texto de búsqueda libre en título/notas"
// @Param voided query bool false "Incluir anulados"
// @Success 200 {array} Event
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /pets/{petID}/events [get]
func listEventsHandler(svc *Service, petsAuth PetAuthorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if _, err := petsAuth.Authorize(r.Context(), petID, claims.UserID, invitations.ScopeEventsRead); err != nil {
			writeError(w, err)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			writeError(w, err)
			return
		}

		items, err := svc.ListByPet(r.Context(), petID, filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// voidEventHandler godoc
// @Summary Anular (void) un evento
// @Description El dueño siempre puede anular. Un veterinario necesita scope `events:void`.
// @Tags events
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param eventID path string true "ID del evento"
// @Success 200 {object} Event
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID}/events/{eventID}/void [post]
func voidEventHandler(svc *Service, petsAuth PetAuthorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		eventID := chi.URLParam(r, "eventID")

		// Permisos primero, para no filtrar si existe el evento
		if _, err := petsAuth.Authorize(r.Context(), petID, claims.UserID, invitations.ScopeEventsVoid); err != nil {
			writeError(w, err)
			return
		}

		if _, ok := eventOfPet(w, r, svc, petID, eventID); !ok {
			return
		}

		updated, err := svc.Void(r.Context(), eventID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// deleteEventHandler godoc
// @Summary Borrar un evento
// @Description Sólo el dueño de la mascota.
// @Tags events
// @Param petID path string true "ID de la mascota"
// @Param eventID path string true "ID del evento"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID}/events/{eventID} [delete]
func deleteEventHandler(svc *Service, petsAuth PetAuthorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		eventID := chi.URLParam(r, "eventID")

		p, err := petsAuth.Authorize(r.Context(), petID, claims.UserID, invitations.ScopeEventsVoid)
		if err != nil {
			writeError(w, err)
			return
		}
		if p.OwnerUserID != claims.UserID {
			writeError(w, apperr.ErrForbidden)
			return
		}

		if _, ok := eventOfPet(w, r, svc, petID, eventID); !ok {
			return
		}

		if err := svc.Delete(r.Context(), eventID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// eventOfPet: el evento existe y pertenece a la mascota.
func eventOfPet(w http.ResponseWriter, r *http.Request, svc *Service, petID, eventID string) (Event, bool) {
	ev, err := svc.GetByID(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return Event{}, false
	}
	if ev.PetID != petID {
		writeError(w, ErrNotFound)
		return Event{}, false
	}
	return ev, true
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxLimit {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=consulta,banho
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EventType, 0, len(parts))
		for _, p := range parts {
			t := strings.TrimSpace(p)
			if t == "" {
				continue
			}
			out = append(out, ParseEventType(t))
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	// from/to RFC3339
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, apperr.Validation("from", "must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, apperr.Validation("to", "must be RFC3339")
		}
		filter.To = &t
	}

	filter.Query = strings.TrimSpace(r.URL.Query().Get("q"))
	filter.IncludeVoided = r.URL.Query().Get("voided") == "true"

	return filter, nil
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), map[string]string{"error": apperr.UserMessage(err)})
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
