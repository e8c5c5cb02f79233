package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestCreateSessionRejectsUnauthorizedOperator verifies a session manager
// locked to one operator ID refuses to mint a session for anyone else.
func TestCreateSessionRejectsUnauthorizedOperator(t *testing.T) {
	sm := NewSessionManager(42)
	_, err := sm.CreateSession(7, "intruder", 7)
	if err == nil {
		t.Fatal("expected session creation to fail for an unauthorized operator id")
	}
}

// TestCreateSessionAllowsAnyoneWhenUnrestricted verifies operator id 0
// accepts any caller.
func TestCreateSessionAllowsAnyoneWhenUnrestricted(t *testing.T) {
	sm := NewSessionManager(0)
	if _, err := sm.CreateSession(7, "anyone", 7); err != nil {
		t.Fatalf("expected an unrestricted session manager to accept any caller, got %v", err)
	}
}

// TestSetSessionCookieRoundTripsThroughValidateSession verifies a cookie
// set by SetSessionCookie is recognized by ValidateSession on a later
// request carrying the same cookie.
func TestSetSessionCookieRoundTripsThroughValidateSession(t *testing.T) {
	sm := NewSessionManager(0)
	sessionID, err := sm.CreateSession(1, "commander", 1)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	rec := httptest.NewRecorder()
	sm.SetSessionCookie(rec, sessionID)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	session := sm.ValidateSession(req)
	if session == nil {
		t.Fatal("expected the round-tripped cookie to validate to a session")
	}
	if session.Username != "commander" {
		t.Errorf("expected username 'commander', got %q", session.Username)
	}
}

// TestValidateSessionRejectsTamperedCookie verifies a cookie value
// modified after signing fails to decode rather than validating.
func TestValidateSessionRejectsTamperedCookie(t *testing.T) {
	sm := NewSessionManager(0)
	sessionID, _ := sm.CreateSession(1, "commander", 1)

	rec := httptest.NewRecorder()
	sm.SetSessionCookie(rec, sessionID)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie to be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered := *cookies[0]
	tampered.Value = tampered.Value + "tampered"
	req.AddCookie(&tampered)

	if sm.ValidateSession(req) != nil {
		t.Error("expected a tampered cookie to fail validation")
	}
}

// TestDeleteSessionInvalidatesIt verifies a deleted session no longer
// resolves through GetSession.
func TestDeleteSessionInvalidatesIt(t *testing.T) {
	sm := NewSessionManager(0)
	sessionID, _ := sm.CreateSession(1, "commander", 1)
	sm.DeleteSession(sessionID)
	if sm.GetSession(sessionID) != nil {
		t.Error("expected a deleted session to no longer resolve")
	}
}

// TestOperatorAuthMiddlewareBlocksWithoutSession verifies a request with
// no session cookie is rejected with 401 before reaching the handler.
func TestOperatorAuthMiddlewareBlocksWithoutSession(t *testing.T) {
	sm := NewSessionManager(0)
	called := false
	handler := sm.OperatorAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/battles", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("expected the wrapped handler not to run without a valid session")
	}
}

// TestHandleAuthStatusReflectsSessionState verifies the status endpoint
// reports authenticated=false with no cookie and true with a valid one.
func TestHandleAuthStatusReflectsSessionState(t *testing.T) {
	sm := NewSessionManager(0)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rec := httptest.NewRecorder()
	sm.HandleAuthStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Errorf("expected unauthenticated status, got %s", rec.Body.String())
	}

	sessionID, _ := sm.CreateSession(1, "commander", 1)
	rec2 := httptest.NewRecorder()
	sm.SetSessionCookie(rec2, sessionID)

	req2 := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	for _, c := range rec2.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec3 := httptest.NewRecorder()
	sm.HandleAuthStatus(rec3, req2)
	if !strings.Contains(rec3.Body.String(), `"authenticated":true`) {
		t.Errorf("expected authenticated status, got %s", rec3.Body.String())
	}
}
