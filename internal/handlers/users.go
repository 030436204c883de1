package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/daily-diet/apiserver/internal/services"
	"github.com/daily-diet/apiserver/internal/store"
	"github.com/daily-diet/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const defaultTokenTTL = 24 * time.Hour

// UserHandler provides registration and identity endpoints.
type UserHandler struct {
	userService *services.UserService
	secret      []byte
	tokenTTL    time.Duration
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(userService *services.UserService, sessionSecret string, tokenTTL time.Duration) *UserHandler {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &UserHandler{
		userService: userService,
		secret:      []byte(sessionSecret),
		tokenTTL:    tokenTTL,
	}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, handler *UserHandler) {
	r.Post("/", handler.Register)
}

// Register creates a new identity and hands the caller a session
// credential via the session cookie. The credential is the only way
// subsequent requests are attributed to this identity.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if _, err := h.userService.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to check user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	credential, err := issueCredential(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setSessionCookie(w, credential, h.tokenTTL)
	writeJSON(w, http.StatusCreated, RegisterResponse{User: user})
}

// Me returns the identity resolved by the access gate.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), owner)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterResponse struct {
	User types.User `json:"user"`
}
