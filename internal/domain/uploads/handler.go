package uploads

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"petcare-plus/internal/middleware"
	"petcare-plus/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// multipartOverhead cubre headers y boundaries del form.
const multipartOverhead = 1 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/uploads", uploadHandler(svc))
}

// uploadHandler godoc
// @Summary Upload an image
// @Description Valida tipo (jpeg, png, gif, webp) y tamaño (10 MB) antes de subir
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "image"
// @Success 201 {object} Result
// @Failure 400 {object} map[string]string
// @Router /uploads [post]
func uploadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, svc.MaxBytes()+multipartOverhead)
		if err := r.ParseMultipartForm(svc.MaxBytes() + multipartOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, apperr.Validation("file", "file exceeds maximum allowed size"))
				return
			}
			writeError(w, apperr.Validation("file", "invalid multipart form"))
			return
		}

		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, apperr.Validation("file", "file is required"))
			return
		}
		defer f.Close()

		ct := hdr.Header.Get("Content-Type")
		if err := Validate(hdr.Filename, ct, hdr.Size, svc.MaxBytes()); err != nil {
			writeError(w, err)
			return
		}

		data, err := io.ReadAll(f)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.Upload(r.Context(), hdr.Filename, ct, data)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), map[string]string{"error": apperr.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
