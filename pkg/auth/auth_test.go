package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"

	"github.com/golang-jwt/jwt/v5"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "auth-test")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := configuration.Initialize(filepath.Join(dir, "settings.cfg")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// withPassword configures an access password for the duration of a test.
func withPassword(t *testing.T, password string) {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	configuration.SetString("Auth", "password_hash", hash)
	t.Cleanup(func() { configuration.SetString("Auth", "password_hash", "") })
}

func TestGenerateSessionID(t *testing.T) {
	id1 := generateSessionID()
	id2 := generateSessionID()

	if id1 == "" {
		t.Error("session id should not be empty")
	}
	if id1 == id2 {
		t.Error("session ids should be unique")
	}
	if len(id1) != 36 {
		t.Errorf("session id %q is not in UUID format", id1)
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("test-session-123")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	claims, err := ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("ValidateSessionToken: %v", err)
	}
	if claims.SessionID != "test-session-123" {
		t.Errorf("SessionID = %q, want %q", claims.SessionID, "test-session-123")
	}
	if claims.Issuer != tokenIssuer {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, tokenIssuer)
	}
}

func signClaims(t *testing.T, claims SessionClaims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return signed
}

func TestRejectedTokens(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
	foreign := valid
	foreign.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "invalid.token.here"},
		{"incomplete", "eyJ0eXAiOiJKV1QiLCJhbGciOiJIUzI1NiJ9"},
		{"expired", signClaims(t, SessionClaims{SessionID: "s", RegisteredClaims: expired}, getJWTSecret())},
		{"wrong secret", signClaims(t, SessionClaims{SessionID: "s", RegisteredClaims: valid}, "other-secret")},
		{"wrong issuer", signClaims(t, SessionClaims{SessionID: "s", RegisteredClaims: foreign}, getJWTSecret())},
		{"no session id", signClaims(t, SessionClaims{RegisteredClaims: valid}, getJWTSecret())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateSessionToken(tt.token); err == nil {
				t.Errorf("token accepted")
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	if err := CheckPassword("anything"); err != nil {
		t.Errorf("without a hash: err = %v, want nil", err)
	}
	if PasswordRequired() {
		t.Errorf("PasswordRequired without a hash")
	}

	withPassword(t, "secret")
	if !PasswordRequired() {
		t.Errorf("PasswordRequired = false with a hash")
	}
	if err := CheckPassword("secret"); err != nil {
		t.Errorf("correct password: err = %v", err)
	}
	if err := CheckPassword("wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong password: err = %v, want ErrInvalidPassword", err)
	}
}

func createSession(t *testing.T, method, body string) (*httptest.ResponseRecorder, SessionResponse) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/session", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	HandleCreateSession(w, req)

	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestSessionCreationHandler(t *testing.T) {
	w, resp := createSession(t, http.MethodPost, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !resp.Success || resp.SessionID == "" {
		t.Fatalf("response = %+v", resp)
	}
	claims, err := ValidateSessionToken(resp.Token)
	if err != nil {
		t.Fatalf("returned token invalid: %v", err)
	}
	if claims.SessionID != resp.SessionID {
		t.Errorf("token session %q, response session %q", claims.SessionID, resp.SessionID)
	}
}

func TestSessionCreationHandlerRejects(t *testing.T) {
	if w, _ := createSession(t, http.MethodGet, ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d, want 405", w.Code)
	}
	if w, _ := createSession(t, http.MethodPost, "{not json"); w.Code != http.StatusBadRequest {
		t.Errorf("bad body: status = %d, want 400", w.Code)
	}

	withPassword(t, "secret")
	if w, resp := createSession(t, http.MethodPost, `{"password":"wrong"}`); w.Code != http.StatusUnauthorized || resp.Token != "" {
		t.Errorf("wrong password: status = %d, token = %q", w.Code, resp.Token)
	}
	if w, resp := createSession(t, http.MethodPost, `{"password":"secret"}`); w.Code != http.StatusOK || resp.Token == "" {
		t.Errorf("right password: status = %d, token = %q", w.Code, resp.Token)
	}
}

func TestExtractTokenFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		query   string
		want    string
		wantErr bool
	}{
		{name: "bearer header", header: "Bearer abc", want: "abc"},
		{name: "query parameter", query: "?token=xyz", want: "xyz"},
		{name: "header wins", header: "Bearer abc", query: "?token=xyz", want: "abc"},
		{name: "malformed header", header: "Basic abc", wantErr: true},
		{name: "missing", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := ExtractTokenFromRequest(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireSessionToken(t *testing.T) {
	var seen string
	handler := RequireSessionToken(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionIDFromContext(r.Context())
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	token, err := GenerateSessionToken("ctx-session")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
	if seen != "ctx-session" {
		t.Errorf("session id in context = %q, want %q", seen, "ctx-session")
	}
}

func BenchmarkTokenValidation(b *testing.B) {
	token, err := GenerateSessionToken("benchmark-session")
	if err != nil {
		b.Fatalf("GenerateSessionToken: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ValidateSessionToken(token); err != nil {
			b.Fatalf("ValidateSessionToken: %v", err)
		}
	}
}
