package api

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

const maxBodyBytes = 4 << 10

// Registrar performs roster mutations.
type Registrar interface {
	Signup(ctx context.Context, name, email string) error
	Unregister(ctx context.Context, name, email string) error
}

// SignupHandler handles sign-up and unregister requests.
type SignupHandler struct {
	deps Registrar
}

// NewSignupHandler creates a new signup handler.
func NewSignupHandler(deps Registrar) *SignupHandler {
	return &SignupHandler{deps: deps}
}

// HandleSignup handles POST /activities/{activity_name}/signup?email=.
func (h *SignupHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	const op = "api.signup"
	name := r.PathValue("activity_name")
	email, err := emailFrom(r)
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%s: %w", op, err))
		return
	}
	if err := h.deps.Signup(r.Context(), name, email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Signed up %s for %s", strings.TrimSpace(email), name)})
}

// HandleUnregister handles DELETE /activities/{activity_name}/signup?email=.
func (h *SignupHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	const op = "api.unregister"
	name := r.PathValue("activity_name")
	email, err := emailFrom(r)
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%s: %w", op, err))
		return
	}
	if err := h.deps.Unregister(r.Context(), name, email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Unregistered %s from %s", strings.TrimSpace(email), name)})
}

// emailFrom reads the email from the query string, falling back to a JSON
// or form body.
func emailFrom(r *http.Request) (string, error) {
	if email := r.URL.Query().Get("email"); email != "" {
		return email, nil
	}
	if r.Body == nil || r.Body == http.NoBody {
		return "", ErrMissingEmail
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if body.Email == "" {
			return "", ErrMissingEmail
		}
		return body.Email, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if email := r.PostForm.Get("email"); email != "" {
			return email, nil
		}
	}
	return "", ErrMissingEmail
}
