package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"pokefinder-cloud/internal/auth"
	usersapp "pokefinder-cloud/internal/users/application"
	users "pokefinder-cloud/internal/users/domain"
)

// Handler provides the /api/users endpoints.
type Handler struct {
	service *usersapp.Service
	secret  []byte
	logger  *log.Logger
}

// NewHandler constructs a users handler.
func NewHandler(service *usersapp.Service, secret []byte, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("users handler: nil service")
	}
	if len(secret) == 0 {
		return nil, errors.New("users handler: empty secret")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, secret: secret, logger: logger}, nil
}

// Mount registers the account routes.
func (h *Handler) Mount(router *mux.Router) {
	router.HandleFunc("/api/users/register/", h.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/users/login/", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/users/logout/", h.Logout).Methods(http.MethodPost)
}

// Register handles POST /api/users/register/.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input usersapp.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	session, err := h.service.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			http.Error(w, "username taken", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// Login handles POST /api/users/login/.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	session, err := h.service.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Logout handles POST /api/users/logout/. The route is auth-protected, so
// the token has already been validated; revoke it by id.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseToken(auth.ExtractToken(r), h.secret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.service.Logout(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.Printf("logout revoke error: %v", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
