package pets

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"petcare-plus/internal/domain/invitations"
	"petcare-plus/internal/middleware"
	"petcare-plus/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Pets (owner)
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		// Perfil de mascota (owner o veterinario con pet:read)
		pr.Get("/{petID}", getPetHandler(svc))

		// Actualizar mascota (owner o veterinario con pet:edit_profile)
		pr.Patch("/{petID}", updatePetHandler(svc))
	})

	// Mascotas compartidas conmigo (veterinario)
	r.Get("/me/pets", listMySharedPetsHandler(svc))
}

type createPetRequest struct {
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed"`
	Sex       string  `json:"sex"`
	BirthDate string  `json:"birth_date"` // YYYY-MM-DD opcional
	WeightKg  float64 `json:"weight_kg"`
	Microchip string  `json:"microchip"`
	PhotoURL  string  `json:"photo_url"` // viene de POST /uploads
	Notes     string  `json:"notes"`
}

type petResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Species     Species   `json:"species"`
	Breed       string    `json:"breed"`
	Sex         Sex       `json:"sex"`
	BirthDate   string    `json:"birth_date,omitempty"`
	WeightKg    float64   `json:"weight_kg,omitempty"`
	Microchip   string    `json:"microchip,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type updatePetRequest struct {
	Name      *string  `json:"name"`
	Species   *string  `json:"species"`
	Breed     *string  `json:"breed"`
	Sex       *string  `json:"sex"`
	WeightKg  *float64 `json:"weight_kg"`
	Microchip *string  `json:"microchip"`
	PhotoURL  *string  `json:"photo_url"`
	Notes     *string  `json:"notes"`
}

type sharedPetResponse struct {
	Pet        petResponse         `json:"pet"`
	Invitation sharedInviteSummary `json:"invitation"`
	Scopes     []invitations.Scope `json:"scopes"` // redundante pero útil para UI
}

type sharedInviteSummary struct {
	ID     string             `json:"id"`
	Status invitations.Status `json:"status"`
}

// createPetHandler godoc
// @Summary Create pet
// @Tags pets
// @Accept json
// @Produce json
// @Param body body createPetRequest true "pet"
// @Success 201 {object} petResponse
// @Failure 400 {object} map[string]string
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			BirthDate: req.BirthDate,
			WeightKg:  req.WeightKg,
			Microchip: req.Microchip,
			PhotoURL:  req.PhotoURL,
			Notes:     req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary List my pets
// @Tags pets
// @Produce json
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	// Owner-only (sin mezclar compartidas)
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Get pet profile
// @Tags pets
// @Produce json
// @Param petID path string true "Pet ID"
// @Success 200 {object} petResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Authorize(r.Context(), chi.URLParam(r, "petID"), claims.UserID, invitations.ScopePetRead)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Patch pet profile
// @Description birth_date acepta null para limpiarlo
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "Pet ID"
// @Param body body updatePetRequest true "patch"
// @Success 200 {object} petResponse
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if _, err := svc.Authorize(r.Context(), petID, claims.UserID, invitations.ScopePetEditProfile); err != nil {
			writeError(w, err)
			return
		}

		// Para soportar birth_date: null, decodificamos a map primero y vemos si estuvo presente.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updatePetRequest
		{
			// Re-marshal y decode al struct para reutilizar tags
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		bd := patchBirthDate{}
		if v, exists := raw["birth_date"]; exists {
			bd.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &s
			}
		}

		updated, err := svc.UpdateProfile(r.Context(), petID, UpdateProfileInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			BirthDate: bd,
			WeightKg:  req.WeightKg,
			Microchip: req.Microchip,
			PhotoURL:  req.PhotoURL,
			Notes:     req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

// listMySharedPetsHandler godoc
// @Summary Pets shared with me
// @Tags pets
// @Produce json
// @Success 200 {array} sharedPetResponse
// @Router /me/pets [get]
func listMySharedPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		shared, err := svc.SharedWith(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]sharedPetResponse, 0, len(shared))
		for _, sh := range shared {
			out = append(out, sharedPetResponse{
				Pet: toPetResponse(sh.Pet),
				Invitation: sharedInviteSummary{
					ID:     sh.Invitation.ID,
					Status: sh.Invitation.Status,
				},
				Scopes: sh.Invitation.Scopes,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Sex:         p.Sex,
		BirthDate:   p.BirthDate,
		WeightKg:    p.WeightKg,
		Microchip:   p.Microchip,
		PhotoURL:    p.PhotoURL,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), map[string]string{"error": apperr.UserMessage(err)})
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
// Si más adelante se repite en más módulos, recién conviene extraerlo a un helper común.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
