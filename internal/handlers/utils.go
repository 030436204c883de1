package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const contextOwnerKey contextKey = "owner"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func ownerFromContext(ctx context.Context) (uuid.UUID, error) {
	owner, ok := ctx.Value(contextOwnerKey).(uuid.UUID)
	if !ok || owner == uuid.Nil {
		return uuid.Nil, errors.New("missing owner")
	}
	return owner, nil
}

func contextWithOwner(ctx context.Context, owner uuid.UUID) context.Context {
	return context.WithValue(ctx, contextOwnerKey, owner)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
