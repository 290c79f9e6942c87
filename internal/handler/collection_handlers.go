package handler

import (
	"errors"
	"net/http"

	"arkpower/internal/models"
	"arkpower/internal/store"

	"github.com/gorilla/mux"
)

// registerCollection mounts list/get/create/update/delete for c. Reads and
// creates go on the public router when c allows it, everything else needs
// an admin token.
func (h *Handler) registerCollection(public, admin *mux.Router, c models.Collection) {
	base := "/" + c.Path
	item := base + "/{id}"

	readers := admin
	if c.PublicRead {
		readers = public
	}
	readers.HandleFunc(base, h.listDocuments(c)).Methods(http.MethodGet)
	readers.HandleFunc(item, h.getDocument(c)).Methods(http.MethodGet)

	creators := admin
	if c.PublicCreate {
		creators = public
	}
	creators.HandleFunc(base, h.createDocument(c)).Methods(http.MethodPost)

	admin.HandleFunc(item, h.updateDocument(c)).Methods(http.MethodPut, http.MethodPatch)
	admin.HandleFunc(item, h.deleteDocument(c)).Methods(http.MethodDelete)
}

func (h *Handler) listDocuments(c models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.Docs.Find(r.Context(), c.Name)
		if err != nil {
			h.internalError(w, r, "list "+c.Name, err)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

func (h *Handler) getDocument(c models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.Docs.FindByID(r.Context(), c.Name, mux.Vars(r)["id"])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, models.MsgNotFound)
				return
			}
			h.internalError(w, r, "get "+c.Name, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) createDocument(c models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, models.MsgInvalidJSON)
			return
		}

		res, err := h.Docs.InsertOne(r.Context(), c.Name, doc)
		if err != nil {
			h.internalError(w, r, "insert "+c.Name, err)
			return
		}
		h.Log.InfoContext(r.Context(), "document created", "collection", c.Name, "id", res.InsertedID)
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) updateDocument(c models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, models.MsgInvalidJSON)
			return
		}

		id := mux.Vars(r)["id"]
		res, err := h.Docs.UpdateByID(r.Context(), c.Name, id, doc)
		if err != nil {
			h.internalError(w, r, "update "+c.Name, err)
			return
		}
		if res.MatchedCount == 0 {
			writeError(w, http.StatusNotFound, models.MsgNotFound)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) deleteDocument(c models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		res, err := h.Docs.DeleteByID(r.Context(), c.Name, id)
		if err != nil {
			h.internalError(w, r, "delete "+c.Name, err)
			return
		}
		if res.DeletedCount == 0 {
			writeError(w, http.StatusNotFound, models.MsgNotFound)
			return
		}
		h.Log.InfoContext(r.Context(), "document deleted", "collection", c.Name, "id", id)
		writeJSON(w, http.StatusOK, res)
	}
}
