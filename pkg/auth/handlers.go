package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/antibyte/retrobasic/pkg/logger"

	"github.com/google/uuid"
)

// SessionRequest is the optional body of POST /api/session.
type SessionRequest struct {
	Password string `json:"password"`
}

// SessionResponse is returned by HandleCreateSession.
type SessionResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

// HandleCreateSession issues a session id and a token for it.
func HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		logger.Warn(logger.AreaAuth, "invalid method for session creation: %s", r.Method)
		respondWithError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SessionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := CheckPassword(req.Password); err != nil {
		logger.Warn(logger.AreaAuth, "session refused for %s: %v", getClientIP(r), err)
		respondWithError(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	sessionID := generateSessionID()
	token, err := GenerateSessionToken(sessionID)
	if err != nil {
		logger.Error(logger.AreaAuth, "token generation failed: %v", err)
		respondWithError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	logger.Info(logger.AreaAuth, "session %s created for %s", sessionID, getClientIP(r))
	json.NewEncoder(w).Encode(SessionResponse{
		Success:   true,
		Token:     token,
		SessionID: sessionID,
		Message:   "Session created successfully",
	})
}

func generateSessionID() string {
	return uuid.NewString()
}

// getClientIP prefers the proxy headers over the socket address.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(SessionResponse{
		Success: false,
		Message: message,
	})
}
