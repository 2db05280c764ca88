package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"petcare-plus/internal/adapters/platform"
	"petcare-plus/internal/adapters/platform/platformtest"
	"petcare-plus/internal/config"
	"petcare-plus/internal/domain/invitations"
	"petcare-plus/internal/middleware"
	"petcare-plus/internal/ports/entities"
	"petcare-plus/internal/ports/functions"
	"petcare-plus/internal/router"
)

type user struct {
	ID       string
	Email    string
	UserType string
}

var (
	owner = user{ID: "owner-1", Email: "tutor@example.com", UserType: "tutor"}
	vet   = user{ID: "vet-1", Email: "dra.ana@example.com", UserType: "vet"}
)

func newTestServer(t *testing.T) (*httptest.Server, *platformtest.Server) {
	t.Helper()

	plat := platformtest.New("app-1")
	t.Cleanup(plat.Close)

	plat.HandleFunction(functions.ValidateLicenseNumber, func(body map[string]any, _ string) (int, any) {
		return http.StatusOK, map[string]any{"valid": body["license_number"] != "CRMV-SP 00000"}
	})
	plat.HandleFunction(functions.SendVetInvite, func(map[string]any, string) (int, any) {
		return http.StatusOK, map[string]any{"sent": true}
	})

	pc, err := platform.NewClient(platform.Config{BaseURL: plat.URL, AppID: plat.AppID, Timeout: time.Second})
	if err != nil {
		t.Fatalf("platform client: %v", err)
	}

	cfg := config.Defaults()
	cfg.Calendar.Timezone = ""
	cfg.Session.RedirectBackoff = 0

	svcs := router.NewServices(router.Options{Config: cfg, Platform: pc})
	t.Cleanup(svcs.Close)

	ts := httptest.NewServer(router.Mount(svcs, router.Options{Config: cfg, Platform: pc}))
	t.Cleanup(ts.Close)
	return ts, plat
}

func TestHTTP_EndToEnd_InvitationScopes(t *testing.T) {
	ts, plat := newTestServer(t)

	// 1) Tutor crea mascota
	petID := createPet(t, ts.URL, owner, map[string]any{
		"name":    "Milo",
		"species": "dog",
		"breed":   "mixed",
		"sex":     "male",
		"notes":   "test",
	})

	// 2) Veterinario NO puede ver perfil aún
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, vet, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before invitation, got %d", st)
		}
	}

	// 3) Tutor invita al veterinario con scopes necesarios
	code := inviteVet(t, ts.URL, petID, []string{
		string(invitations.ScopePetRead),
		string(invitations.ScopePetEditProfile),
		string(invitations.ScopeEventsRead),
		string(invitations.ScopeEventsCreate),
		string(invitations.ScopeEventsVoid),
	})
	if plat.Calls("function "+functions.SendVetInvite) != 1 {
		t.Fatalf("expected send-vet-invite to be called once")
	}

	// 4) Veterinario acepta con el código
	var invitationID string
	{
		st, body := doReq(t, ts.URL, "POST", "/invitations/accept", vet, map[string]any{"invite_code": code})
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept, got %d body=%s", st, string(body))
		}
		var inv struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &inv)
		if inv.Status != string(invitations.StatusAccepted) {
			t.Fatalf("expected accepted, got %q", inv.Status)
		}
		invitationID = inv.ID
	}

	// 5) Veterinario ya puede ver y editar el perfil
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, vet, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet by vet, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "PATCH", "/pets/"+petID, vet, map[string]any{"name": "Milo Updated", "birth_date": nil})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch pet by vet, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/me/pets", vet, nil)
		if st != http.StatusOK || !strings.Contains(string(body), "Milo Updated") {
			t.Fatalf("expected shared pet listed, got %d body=%s", st, string(body))
		}
	}

	// 6) Veterinario agenda evento, lo lista y lo anula
	when := time.Date(2030, 1, 15, 14, 30, 0, 0, time.UTC)
	eventID := createEvent(t, ts.URL, vet, petID, map[string]any{
		"type":     "consulta",
		"date":     when.Format(time.RFC3339),
		"title":    "Retorno",
		"location": "Clínica Centro",
	})
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/events", vet, nil)
		if st != http.StatusOK || !strings.Contains(string(body), eventID) {
			t.Fatalf("expected 200 list events by vet, got %d body=%s", st, string(body))
		}
	}

	// 7) Tutor agenda un recordatorio y exporta el calendario
	{
		st, body := doReq(t, ts.URL, "POST", "/reminders", owner, map[string]any{
			"pet_id": petID,
			"type":   "vacina",
			"title":  "V10",
			"date":   when.Add(24 * time.Hour).Format(time.RFC3339),
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 schedule reminder, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/calendar.ics", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 calendar export, got %d body=%s", st, string(body))
		}
		ics := string(body)
		if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
			t.Fatalf("expected 2 VEVENTs, got %d\n%s", got, ics)
		}
		if !strings.Contains(ics, "SUMMARY:Retorno (consulta)") {
			t.Fatalf("expected event summary in calendar\n%s", ics)
		}
	}

	// 8) Anular saca el evento del calendario
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/events/"+eventID+"/void", vet, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 void event by vet, got %d body=%s", st, string(body))
		}
		_, body = doReq(t, ts.URL, "GET", "/pets/"+petID+"/calendar.ics", owner, nil)
		if got := strings.Count(string(body), "BEGIN:VEVENT"); got != 1 {
			t.Fatalf("expected 1 VEVENT after void, got %d", got)
		}
	}

	// 9) Veterinario no puede revocar; el tutor sí
	{
		st, _ := doReq(t, ts.URL, "POST", "/invitations/"+invitationID+"/revoke", vet, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 revoke by vet, got %d", st)
		}
		st, body := doReq(t, ts.URL, "POST", "/invitations/"+invitationID+"/revoke", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke by owner, got %d body=%s", st, string(body))
		}
	}

	// 10) Veterinario pierde acceso inmediatamente
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, vet, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 get pet after revoke, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID+"/events", vet, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 list events after revoke, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID+"/calendar.ics", vet, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 calendar after revoke, got %d", st)
		}
	}
}

func TestHTTP_CompleteReminder_StateConflicts(t *testing.T) {
	ts, _ := newTestServer(t)

	petID := createPet(t, ts.URL, owner, map[string]any{"name": "Mia", "species": "cat"})

	schedule := func(title string, at time.Time) string {
		st, body := doReq(t, ts.URL, "POST", "/reminders", owner, map[string]any{
			"pet_id": petID,
			"type":   "medicamento",
			"title":  title,
			"date":   at.UTC().Format(time.RFC3339),
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 schedule reminder, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &resp)
		return resp.ID
	}

	soonID := schedule("Vermífugo", time.Now().Add(2*time.Minute))
	laterID := schedule("Antipulgas", time.Now().Add(72*time.Hour))

	if st, body := doReq(t, ts.URL, "GET", "/reminders/active", owner, nil); st != http.StatusOK {
		t.Fatalf("expected 200 active reminders, got %d body=%s", st, string(body))
	}

	// Notificación oculta: conflicto de estado, no error interno
	st, body := doReq(t, ts.URL, "POST", "/reminders/"+laterID+"/complete", owner, nil)
	if st != http.StatusConflict {
		t.Fatalf("expected 409 completing hidden reminder, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "POST", "/reminders/"+soonID+"/complete", owner, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 complete visible reminder, got %d body=%s", st, string(body))
	}

	// Segundo intento sobre la misma notificación
	st, body = doReq(t, ts.URL, "POST", "/reminders/"+soonID+"/complete", owner, nil)
	if st != http.StatusConflict {
		t.Fatalf("expected 409 on second complete, got %d body=%s", st, string(body))
	}
	if strings.Contains(string(body), "internal error") {
		t.Fatalf("state conflict rendered as internal error: %s", string(body))
	}
}

func TestHTTP_CalendarExport_IncludesEventsWithoutStatus(t *testing.T) {
	ts, plat := newTestServer(t)

	petID := createPet(t, ts.URL, owner, map[string]any{"name": "Thor", "species": "dog"})
	plat.Seed(entities.Event, map[string]any{
		"id":     "ev-legacy",
		"pet_id": petID,
		"type":   "consulta",
		"title":  "Consulta",
		"date":   "2025-12-10T14:00:00Z",
	})

	st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/events", owner, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "ev-legacy") {
		t.Fatalf("expected legacy event listed, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/pets/"+petID+"/calendar.ics", owner, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 calendar export, got %d body=%s", st, string(body))
	}
	if !strings.Contains(string(body), "UID:ev-legacy@") {
		t.Fatalf("expected legacy event in calendar\n%s", string(body))
	}
}

func TestHTTP_InviteVet_RejectsUnknownScope(t *testing.T) {
	ts, plat := newTestServer(t)

	petID := createPet(t, ts.URL, owner, map[string]any{"name": "Milo", "species": "dog"})

	// scope inválido => 400, sin tocar la plataforma
	st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/invitations", owner, map[string]any{
		"vet_email":      vet.Email,
		"license_number": "CRMV-SP 12345",
		"scopes":         []string{"events:read", "events:unknown"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", st)
	}
	if plat.Calls("function "+functions.ValidateLicenseNumber) != 0 {
		t.Fatalf("expected no license validation call")
	}
}

func TestHTTP_InviteVet_InvalidLicense(t *testing.T) {
	ts, plat := newTestServer(t)

	petID := createPet(t, ts.URL, owner, map[string]any{"name": "Milo", "species": "dog"})

	st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/invitations", owner, map[string]any{
		"vet_email":      vet.Email,
		"license_number": "CRMV-SP 00000",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid license, got %d", st)
	}
	if plat.Calls("function "+functions.SendVetInvite) != 0 {
		t.Fatalf("expected no invite email")
	}
}

func TestHTTP_Unauthenticated(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/pets", "/reminders", "/me/pets"} {
		st, _ := doReq(t, ts.URL, "GET", path, user{}, nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 on %s, got %d", path, st)
		}
	}

	st, body := doReq(t, ts.URL, "GET", "/health", user{}, nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected health ok, got %d %q", st, string(body))
	}
}

func TestHTTP_SessionIntent_ResumeOnce(t *testing.T) {
	ts, _ := newTestServer(t)

	post := func(path, token string, body any) (int, []byte) {
		var rdr io.Reader
		if body != nil {
			b, _ := json.Marshal(body)
			rdr = bytes.NewReader(b)
		}
		req, _ := http.NewRequest("POST", ts.URL+path, rdr)
		req.Header.Set("X-Session-ID", "sess-1")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do request: %v", err)
		}
		defer res.Body.Close()
		b, _ := io.ReadAll(res.Body)
		return res.StatusCode, b
	}

	st, body := post("/session/intent", "", map[string]any{"invite_code": "ABCD1234", "invite_email": vet.Email})
	if st != http.StatusNoContent {
		t.Fatalf("expected 204 save intent, got %d body=%s", st, string(body))
	}

	st, body = post("/session/resume", vet.ID, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "/vet/invitations/accept?code=ABCD1234") {
		t.Fatalf("expected invite landing redirect, got %d body=%s", st, string(body))
	}

	// Segunda vez ya no hay intención: redirect por defecto
	st, body = post("/session/resume", vet.ID, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "/dashboard") {
		t.Fatalf("expected default redirect, got %d body=%s", st, string(body))
	}
}

func createPet(t *testing.T, baseURL string, u user, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", u, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func inviteVet(t *testing.T, baseURL, petID string, scopes []string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets/"+petID+"/invitations", owner, map[string]any{
		"vet_email":      vet.Email,
		"vet_name":       "Dra. Ana",
		"license_number": "CRMV-SP 12345",
		"scopes":         scopes,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 invite vet, got %d body=%s", st, string(body))
	}

	var resp struct {
		InviteCode string `json:"invite_code"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.InviteCode == "" {
		t.Fatalf("invite vet: missing code body=%s", string(body))
	}
	return resp.InviteCode
}

func createEvent(t *testing.T, baseURL string, u user, petID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets/"+petID+"/events", u, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create event, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create event: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path string, u user, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u.ID != "" {
		req.Header.Set(middleware.HeaderDebugUserID, u.ID)
		req.Header.Set(middleware.HeaderDebugEmail, u.Email)
		req.Header.Set(middleware.HeaderDebugUserType, u.UserType)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
