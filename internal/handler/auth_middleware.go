package handler

import (
	"net/http"

	"arkpower/internal/auth"
	"arkpower/internal/models"
)

// requireAuth rejects callers without a valid bearer token. Missing and
// invalid tokens get the same answer.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.Tokens.Verify(r.Header.Get("Authorization"))
		if err != nil {
			h.Log.DebugContext(r.Context(), "token rejected", "reason", err, "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, models.MsgUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// requireAdmin must run after requireAuth.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, models.MsgUnauthorized)
			return
		}

		admin, err := h.Users.IsAdmin(r.Context(), claims.Email)
		if err != nil {
			h.internalError(w, r, "admin lookup", err)
			return
		}
		if !admin {
			h.Log.WarnContext(r.Context(), "non-admin on admin route", "email", claims.Email, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, models.MsgForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
