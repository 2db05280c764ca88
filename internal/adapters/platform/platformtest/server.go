// Package platformtest levanta un doble en memoria de la plataforma
// (entidades, funciones y upload) para tests de adapters y del router.
package platformtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type FunctionHandler func(body map[string]any, authHeader string) (status int, resp any)

type Server struct {
	*httptest.Server

	AppID string

	mu        sync.Mutex
	records   map[string]map[string]map[string]any
	order     map[string][]string
	functions map[string]FunctionHandler
	calls     map[string]int
	uploads   int
}

func New(appID string) *Server {
	s := &Server{
		AppID:     appID,
		records:   map[string]map[string]map[string]any{},
		order:     map[string][]string{},
		functions: map[string]FunctionHandler{},
		calls:     map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// HandleFunction registra la respuesta de una función remota.
func (s *Server) HandleFunction(name string, h FunctionHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.functions[name] = h
}

// Seed agrega un registro; si no trae id se le asigna uno.
func (s *Server) Seed(entity string, rec map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(entity, rec)
}

// Get devuelve una copia del registro (nil si no existe).
func (s *Server) Get(entity, id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[entity][id]
	if !ok {
		return nil
	}
	return copyMap(rec)
}

// All devuelve los registros de la entidad en orden de inserción.
func (s *Server) All(entity string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, id := range s.order[entity] {
		if rec, ok := s.records[entity][id]; ok {
			out = append(out, copyMap(rec))
		}
	}
	return out
}

// Calls cuenta requests por clave "METHOD entity" o "function name".
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *Server) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

func (s *Server) insert(entity string, rec map[string]any) string {
	id, _ := rec["id"].(string)
	if id == "" {
		id = uuid.NewString()
		rec["id"] = id
	}
	if s.records[entity] == nil {
		s.records[entity] = map[string]map[string]any{}
	}
	if _, exists := s.records[entity][id]; !exists {
		s.order[entity] = append(s.order[entity], id)
	}
	s.records[entity][id] = rec
	return id
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/apps/" + s.AppID + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch {
	case parts[0] == "entities" && len(parts) >= 2:
		s.serveEntity(w, r, parts[1:])
	case parts[0] == "functions" && len(parts) == 2:
		s.serveFunction(w, r, parts[1])
	case parts[0] == "integration-endpoints":
		s.serveUpload(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) serveEntity(w http.ResponseWriter, r *http.Request, parts []string) {
	entity := parts[0]

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[r.Method+" "+entity]++

	switch {
	case r.Method == http.MethodGet && len(parts) == 1:
		var q map[string]any
		if raw := r.URL.Query().Get("q"); raw != "" {
			_ = json.Unmarshal([]byte(raw), &q)
		}
		out := make([]map[string]any, 0)
		for _, id := range s.order[entity] {
			rec, ok := s.records[entity][id]
			if !ok || !matches(rec, q) {
				continue
			}
			out = append(out, copyMap(rec))
		}
		if sortKey := r.URL.Query().Get("sort"); sortKey != "" {
			desc := strings.HasPrefix(sortKey, "-")
			key := strings.TrimPrefix(sortKey, "-")
			sort.SliceStable(out, func(i, j int) bool {
				a, _ := out[i][key].(string)
				b, _ := out[j][key].(string)
				if desc {
					return a > b
				}
				return a < b
			})
		}
		writeJSON(w, http.StatusOK, out)

	case r.Method == http.MethodPost && len(parts) == 1:
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		s.insert(entity, rec)
		writeJSON(w, http.StatusCreated, rec)

	case r.Method == http.MethodPut && len(parts) == 2:
		rec, ok := s.records[entity][parts[1]]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		for k, v := range patch {
			rec[k] = v
		}
		writeJSON(w, http.StatusOK, rec)

	case r.Method == http.MethodDelete && len(parts) == 2:
		if _, ok := s.records[entity][parts[1]]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		delete(s.records[entity], parts[1])
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func (s *Server) serveFunction(w http.ResponseWriter, r *http.Request, name string) {
	s.mu.Lock()
	s.calls["function "+name]++
	h, ok := s.functions[name]
	s.mu.Unlock()

	if !ok {
		http.Error(w, "unknown function", http.StatusNotFound)
		return
	}

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	status, resp := h(body, r.Header.Get("Authorization"))
	writeJSON(w, status, resp)
}

func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer f.Close()
	_, _ = io.Copy(io.Discard, f)

	s.mu.Lock()
	s.uploads++
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"file_url": s.URL + "/files/" + hdr.Filename})
}

func matches(rec, q map[string]any) bool {
	for k, want := range q {
		got, ok := rec[k]
		if !ok {
			return false
		}
		if got != want {
			return false
		}
	}
	return true
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
