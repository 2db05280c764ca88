package invitations

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"petcare-plus/internal/adapters/platform"
	"petcare-plus/internal/adapters/platform/platformtest"
	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/ports/entities"
	"petcare-plus/internal/ports/functions"
)

// -------------------------
// Test platform
// -------------------------

func newTestService(t *testing.T) (*Service, *platformtest.Server) {
	t.Helper()

	srv := platformtest.New("app-1")
	t.Cleanup(srv.Close)

	srv.HandleFunction(functions.ValidateLicenseNumber, func(body map[string]any, _ string) (int, any) {
		lic, _ := body["license_number"].(string)
		if lic == "CRMV-SP 00000" {
			return http.StatusOK, map[string]any{"valid": false, "message": "license not found"}
		}
		return http.StatusOK, map[string]any{"valid": true}
	})
	srv.HandleFunction(functions.SendVetInvite, func(_ map[string]any, _ string) (int, any) {
		return http.StatusOK, map[string]any{"sent": true}
	})

	c, err := platform.NewClient(platform.Config{BaseURL: srv.URL, AppID: srv.AppID, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	svc := NewService(platform.NewCollection[Invitation](c, entities.VetInvitation), c, nil)
	return svc, srv
}

func baseInput() InviteInput {
	return InviteInput{
		PetID:         "pet-1",
		OwnerUserID:   "owner-1",
		VetEmail:      "Dra.Ana@Example.com",
		VetName:       "Dra. Ana",
		LicenseNumber: "CRMV-SP 12345",
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Invite_DefaultScopes_WhenEmpty(t *testing.T) {
	svc, srv := newTestService(t)

	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	inv, err := svc.Invite(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if inv.Status != StatusPending {
		t.Fatalf("expected status pending, got %s", inv.Status)
	}
	if !inv.CreatedAt.Equal(now) || !inv.UpdatedAt.Equal(now) {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
	if inv.VetEmail != "dra.ana@example.com" {
		t.Fatalf("expected normalized email, got %s", inv.VetEmail)
	}
	if len(inv.InviteCode) != 8 {
		t.Fatalf("expected 8-char invite code, got %q", inv.InviteCode)
	}
	if !HasScope(inv, ScopePetRead) || !HasScope(inv, ScopeEventsRead) {
		t.Fatalf("expected default scopes pet:read + events:read, got %#v", inv.Scopes)
	}
	if got := srv.Calls("function " + functions.SendVetInvite); got != 1 {
		t.Fatalf("expected send-vet-invite once, got %d", got)
	}
}

func TestService_Invite_InvalidLicense_NeverCreates(t *testing.T) {
	svc, srv := newTestService(t)

	in := baseInput()
	in.LicenseNumber = "CRMV-SP 00000"

	_, err := svc.Invite(context.Background(), in)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := srv.Calls("POST " + entities.VetInvitation); got != 0 {
		t.Fatalf("expected no create, got %d", got)
	}
	if got := srv.Calls("function " + functions.SendVetInvite); got != 0 {
		t.Fatalf("expected no email, got %d", got)
	}
}

func TestService_Invite_StrictScopes_RejectsUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	in := baseInput()
	in.Scopes = []Scope{ScopeEventsRead, Scope("bad:scope")}

	_, err := svc.Invite(context.Background(), in)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_Invite_Dedup_UpdatesSameInvitation(t *testing.T) {
	svc, srv := newTestService(t)

	now1 := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(5 * time.Minute)

	svc.now = func() time.Time { return now1 }
	in := baseInput()
	in.Scopes = []Scope{ScopeEventsRead}
	inv1, err := svc.Invite(context.Background(), in)
	if err != nil {
		t.Fatalf("Invite #1 error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	in.Scopes = []Scope{ScopeEventsRead, ScopeEventsCreate}
	inv2, err := svc.Invite(context.Background(), in)
	if err != nil {
		t.Fatalf("Invite #2 error: %v", err)
	}

	if inv2.ID != inv1.ID {
		t.Fatalf("expected same invitation (dedup), got %s vs %s", inv1.ID, inv2.ID)
	}
	if inv2.InviteCode != inv1.InviteCode {
		t.Fatalf("expected invite code to be kept")
	}
	if !inv2.UpdatedAt.Equal(now2) {
		t.Fatalf("expected UpdatedAt to change on reinvite")
	}
	if !HasScope(inv2, ScopeEventsCreate) || !HasScope(inv2, ScopeEventsRead) {
		t.Fatalf("expected scopes updated, got %#v", inv2.Scopes)
	}
	if got := srv.Calls("function " + functions.SendVetInvite); got != 2 {
		t.Fatalf("expected invite resent, got %d", got)
	}
}

func TestService_Accept_SetsAccepted_AndIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, baseInput())
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	accepted, err := svc.Accept(ctx, inv.InviteCode, "vet-1", "dra.ana@example.com")
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if accepted.Status != StatusAccepted || accepted.VetUserID != "vet-1" {
		t.Fatalf("expected accepted by vet-1, got %s / %s", accepted.Status, accepted.VetUserID)
	}

	again, err := svc.Accept(ctx, inv.InviteCode, "vet-1", "DRA.ANA@example.com")
	if err != nil {
		t.Fatalf("Accept #2 error: %v", err)
	}
	if again.Status != StatusAccepted {
		t.Fatalf("expected accepted after idempotent accept, got %s", again.Status)
	}

	if _, err := svc.Accept(ctx, inv.InviteCode, "vet-2", "dra.ana@example.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for another vet, got %v", err)
	}

	active, err := svc.GetActive(ctx, "pet-1", "vet-1")
	if err != nil {
		t.Fatalf("GetActive error: %v", err)
	}
	if active.ID != inv.ID {
		t.Fatalf("expected active invitation %s, got %s", inv.ID, active.ID)
	}
}

func TestService_Accept_WrongEmailForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, baseInput())
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	if _, err := svc.Accept(ctx, inv.InviteCode, "vet-1", "other@example.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Accept(ctx, "NOPE0000", "vet-1", "dra.ana@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Revoke_OnlyOwner_AndBlocksAccept(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, baseInput())
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	if _, err := svc.Revoke(ctx, inv.ID, "someone-else"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	revoked, err := svc.Revoke(ctx, inv.ID, "owner-1")
	if err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if revoked.Status != StatusRevoked || revoked.RevokedAt == nil {
		t.Fatalf("expected revoked with timestamp, got %#v", revoked)
	}

	if _, err := svc.Accept(ctx, inv.InviteCode, "vet-1", "dra.ana@example.com"); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected bad state after revoke, got %v", err)
	}
	if apperr.Status(ErrBadState) != http.StatusConflict {
		t.Fatalf("expected bad state to map to 409")
	}
}
