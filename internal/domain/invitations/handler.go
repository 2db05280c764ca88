package invitations

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"petcare-plus/internal/middleware"
	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// PetOwnerLookup evita importar el paquete pets (rompe ciclos).
type PetOwnerLookup interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, petOwners PetOwnerLookup) {
	// Tutor: invitaciones de una mascota
	r.Route("/pets/{petID}/invitations", func(ir chi.Router) {
		ir.Post("/", inviteVetHandler(svc, petOwners))
		ir.Get("/", listInvitationsByPetHandler(svc, petOwners))
	})

	r.Post("/invitations/accept", acceptInvitationHandler(svc))
	r.Post("/invitations/{invitationID}/revoke", revokeInvitationHandler(svc))

	// Veterinario: mascotas compartidas conmigo
	r.Get("/me/invitations", listMyInvitationsHandler(svc))
}

type inviteVetRequest struct {
	VetEmail      string  `json:"vet_email"`
	VetName       string  `json:"vet_name"`
	LicenseNumber string  `json:"license_number"`
	Scopes        []Scope `json:"scopes"`
}

type acceptInvitationRequest struct {
	InviteCode string `json:"invite_code"`
}

// inviteVetHandler godoc
// @Summary Invite a vet to a pet
// @Description Valida el registro profesional (validate-license-number) y envía el código (send-vet-invite). Sólo el tutor.
// @Tags invitations
// @Accept json
// @Produce json
// @Param petID path string true "Pet ID"
// @Param body body inviteVetRequest true "invite"
// @Success 201 {object} Invitation
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /pets/{petID}/invitations [post]
func inviteVetHandler(svc *Service, petOwners PetOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireOwner(w, r, petOwners)
		if !ok {
			return
		}

		var req inviteVetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		inv, err := svc.Invite(r.Context(), InviteInput{
			PetID:         chi.URLParam(r, "petID"),
			OwnerUserID:   claims.UserID,
			OwnerName:     claims.FullName,
			VetEmail:      req.VetEmail,
			VetName:       req.VetName,
			LicenseNumber: req.LicenseNumber,
			Scopes:        req.Scopes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
	}
}

// listInvitationsByPetHandler godoc
// @Summary List invitations of a pet
// @Tags invitations
// @Produce json
// @Param petID path string true "Pet ID"
// @Success 200 {array} Invitation
// @Router /pets/{petID}/invitations [get]
func listInvitationsByPetHandler(svc *Service, petOwners PetOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireOwner(w, r, petOwners); !ok {
			return
		}
		items, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// acceptInvitationHandler godoc
// @Summary Accept an invitation with its code
// @Tags invitations
// @Accept json
// @Produce json
// @Param body body acceptInvitationRequest true "code"
// @Success 200 {object} Invitation
// @Router /invitations/accept [post]
func acceptInvitationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.UserType != "" && claims.UserType != auth.UserTypeVet {
			writeError(w, ErrForbidden)
			return
		}

		var req acceptInvitationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		inv, err := svc.Accept(r.Context(), req.InviteCode, claims.UserID, claims.Email)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

// revokeInvitationHandler godoc
// @Summary Revoke an invitation
// @Tags invitations
// @Produce json
// @Param invitationID path string true "Invitation ID"
// @Success 200 {object} Invitation
// @Router /invitations/{invitationID}/revoke [post]
func revokeInvitationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		inv, err := svc.Revoke(r.Context(), chi.URLParam(r, "invitationID"), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

// listMyInvitationsHandler godoc
// @Summary Accepted invitations of the current vet
// @Tags invitations
// @Produce json
// @Success 200 {array} Invitation
// @Router /me/invitations [get]
func listMyInvitationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListByVet(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func requireOwner(w http.ResponseWriter, r *http.Request, petOwners PetOwnerLookup) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}

	ownerID, err := petOwners.OwnerOf(r.Context(), chi.URLParam(r, "petID"))
	if err != nil {
		writeError(w, err)
		return auth.Claims{}, false
	}
	if ownerID != claims.UserID {
		writeError(w, apperr.ErrForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), map[string]string{"error": apperr.UserMessage(err)})
}

// writeJSON duplicado por módulo, ver pets/handler.go.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
