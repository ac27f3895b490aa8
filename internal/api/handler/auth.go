package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/clauseease/clauseease/internal/api/response"
	"github.com/clauseease/clauseease/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// Credentials is the auth surface handlers call into.
type Credentials interface {
	Register(ctx context.Context, input domain.UserCreate) (*domain.User, error)
	Login(ctx context.Context, input domain.UserLogin) (*domain.PublicUser, string, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth Credentials
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Credentials) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// validationMessage flattens the first validation failure into the
// human-readable message the API contract expects.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			return "All fields are required"
		case "email":
			return "Invalid email format"
		case "min":
			if field == "password" {
				return fmt.Sprintf("Password must be at least %s characters", e.Param())
			}
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("invalid %s", field)
	}
	return "Invalid request"
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	if _, err := h.auth.Register(r.Context(), input); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			response.BadRequest(w, "Email already registered")
			return
		}
		log.Error().Err(err).Msg("registration failed")
		response.InternalError(w)
		return
	}

	response.Created(w, "Registered successfully")
}

// loginSuccess is the login response body: a greeting, the public user
// fields and a token clients may persist to restore the session.
type loginSuccess struct {
	Message string            `json:"message"`
	User    domain.PublicUser `json:"user"`
	Token   string            `json:"token,omitempty"`
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		response.BadRequest(w, "Email & password required")
		return
	}

	user, token, err := h.auth.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid email or password")
			return
		}
		log.Error().Err(err).Msg("login failed")
		response.InternalError(w)
		return
	}

	response.OK(w, loginSuccess{
		Message: fmt.Sprintf("Login successful. Welcome %s!", user.Name),
		User:    *user,
		Token:   token,
	})
}
