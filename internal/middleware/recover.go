package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"petcare-plus/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// fallbackMessage es lo único que ve el usuario cuando algo explota.
const fallbackMessage = "something went wrong, please try again"

// Recover es el último recurso: atrapa panics, los loguea y responde un JSON
// con retry=true para que el cliente pueda reintentar. Nunca tira el server.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// http.ErrAbortHandler se re-lanza, es la forma de net/http de cortar la respuesta
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered", map[string]any{
					"panic":      rec,
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": chimw.GetReqID(r.Context()),
					"stack":      string(debug.Stack()),
				})

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": fallbackMessage,
					"retry": true,
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
