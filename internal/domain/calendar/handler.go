package calendar

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

func RegisterRoutes(r chi.Router, exp *Exporter, pets PetAccess) {
	r.Get("/pets/{petID}/calendar.ics", exportCalendarHandler(exp, pets))
}

// exportCalendarHandler godoc
// @Summary Export pet agenda as iCalendar
// @Description Eventos y recordatorios pendientes de la mascota en formato .ics
// @Tags calendar
// @Produce text/calendar
// @Param petID path string true "Pet ID"
// @Success 200 {file} file
// @Failure 403 {object} map[string]string
// @Router /pets/{petID}/calendar.ics [get]
func exportCalendarHandler(exp *Exporter, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		ids, err := pets.AccessiblePetIDs(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !slices.Contains(ids, petID) {
			writeError(w, apperr.ErrForbidden)
			return
		}

		if _, err := exp.ExportPet(r.Context(), petID, ResponseDownloader{W: w}); err != nil {
			writeError(w, err)
			return
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.Status(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": apperr.UserMessage(err)})
}
