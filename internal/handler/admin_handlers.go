package handler

import (
	"errors"
	"net/http"
	"strings"

	"arkpower/internal/auth"
	"arkpower/internal/domain"
	"arkpower/internal/models"
	"arkpower/internal/users"

	"github.com/gorilla/mux"
)

// TokenHandler - POST /jwt
//
// Without RequireLogin the token embeds whatever the caller sent. With it,
// the password is checked first and only the stored email is embedded.
func (h *Handler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeDocument(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, models.MsgInvalidJSON)
		return
	}

	email, _ := payload[domain.EmailField].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		writeError(w, http.StatusBadRequest, models.MsgEmailRequired)
		return
	}

	profile := map[string]any(payload)
	if h.RequireLogin {
		password, _ := payload[domain.PasswordField].(string)
		user, err := h.Users.Authenticate(r.Context(), email, password)
		if err != nil {
			if errors.Is(err, users.ErrInvalidCredentials) {
				h.Log.InfoContext(r.Context(), "login failed", "email", email)
				writeError(w, http.StatusUnauthorized, models.MsgUnauthorized)
				return
			}
			h.internalError(w, r, "login lookup", err)
			return
		}
		email, profile = user.Email, nil
	}

	token, _, err := h.Tokens.Issue(email, profile)
	if err != nil {
		h.internalError(w, r, "sign token", err)
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}

// CheckAdminHandler - GET /users/admin/{email}
func (h *Handler) CheckAdminHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, models.MsgUnauthorized)
		return
	}

	admin, err := h.Users.CheckAdmin(r.Context(), mux.Vars(r)["email"], claims.Email)
	if err != nil {
		h.internalError(w, r, "admin check", err)
		return
	}
	writeJSON(w, http.StatusOK, models.AdminResponse{Admin: admin})
}

// PromoteUserHandler - PATCH /users/{id}
func (h *Handler) PromoteUserHandler(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, domain.RoleAdmin)
}

// SuspendUserHandler - PATCH /suspend/{id}
func (h *Handler) SuspendUserHandler(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, domain.RoleSuspend)
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request, role domain.Role) {
	id := mux.Vars(r)["id"]
	res, err := h.Users.SetRole(r.Context(), id, role)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRole) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, "set role", err)
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, models.MsgNotFound)
		return
	}

	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		h.Log.InfoContext(r.Context(), "role changed", "user_id", id, "role", role, "by", claims.Email)
	}
	writeJSON(w, http.StatusOK, res)
}
