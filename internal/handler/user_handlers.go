package handler

import (
	"errors"
	"net/http"

	"arkpower/internal/models"
	"arkpower/internal/users"

	"github.com/gorilla/mux"
)

// RegisterUserHandler - POST /users
//
// An email that is already registered answers 200 with an empty array.
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, models.MsgInvalidJSON)
		return
	}

	res, created, err := h.Users.Register(r.Context(), doc)
	if err != nil {
		if errors.Is(err, users.ErrEmailRequired) {
			writeError(w, http.StatusBadRequest, models.MsgEmailRequired)
			return
		}
		h.internalError(w, r, "register user", err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, []any{})
		return
	}

	h.Log.InfoContext(r.Context(), "user registered", "id", res.InsertedID)
	writeJSON(w, http.StatusOK, res)
}

// ListUsersHandler - GET /users
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.Users.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteUserHandler - DELETE /users/{id}
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.Users.Delete(r.Context(), id)
	if err != nil {
		h.internalError(w, r, "delete user", err)
		return
	}
	if res.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, models.MsgNotFound)
		return
	}

	h.Log.InfoContext(r.Context(), "user deleted", "id", id)
	writeJSON(w, http.StatusOK, res)
}
