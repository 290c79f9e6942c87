package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"arkpower/internal/auth"
	"arkpower/internal/domain"
	"arkpower/internal/models"
	"arkpower/internal/store"
	"arkpower/internal/users"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("request body must be a JSON object")

// DefaultCollections are the content collections served besides users.
var DefaultCollections = []models.Collection{
	{Path: "products", Name: store.Products, PublicRead: true},
	{Path: "news", Name: store.News, PublicRead: true},
	{Path: "careers", Name: store.Careers, PublicRead: true},
	{Path: "footer", Name: store.Footer, PublicRead: true},
	{Path: "hero", Name: store.HeroImages, PublicRead: true},
	{Path: "subscribers", Name: store.Subscribers, PublicCreate: true},
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	Docs         store.DocumentStore
	Users        *users.Service
	Tokens       *auth.Manager
	Log          *slog.Logger
	RequireLogin bool
	Collections  []models.Collection
}

func NewHandler(docs store.DocumentStore, tokens *auth.Manager, log *slog.Logger, requireLogin bool) *Handler {
	return &Handler{
		Docs:         docs,
		Users:        users.NewService(docs),
		Tokens:       tokens,
		Log:          log,
		RequireLogin: requireLogin,
		Collections:  DefaultCollections,
	}
}

// Routes builds the router. Request logging and CORS wrap the whole router
// so that unmatched requests and preflights are covered too.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, models.MsgNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/", h.HomeHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/jwt", h.TokenHandler).Methods(http.MethodPost)
	r.HandleFunc("/users", h.RegisterUserHandler).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(h.requireAuth)
	authed.HandleFunc("/users/admin/{email}", h.CheckAdminHandler).Methods(http.MethodGet)

	admin := r.NewRoute().Subrouter()
	admin.Use(h.requireAuth, h.requireAdmin)
	admin.HandleFunc("/users", h.ListUsersHandler).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", h.PromoteUserHandler).Methods(http.MethodPatch)
	admin.HandleFunc("/users/{id}", h.DeleteUserHandler).Methods(http.MethodDelete)
	admin.HandleFunc("/suspend/{id}", h.SuspendUserHandler).Methods(http.MethodPatch)

	for _, c := range h.Collections {
		h.registerCollection(r, admin, c)
	}

	return h.requestLogger(cors(r))
}

// HomeHandler - liveness banner
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ARK POWER LIMITED IS RUNNING ON THIS PORT.")
}

// HealthHandler pings the store.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Docs.Ping(r.Context()); err != nil {
		h.Log.ErrorContext(r.Context(), "store ping failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, models.MsgStoreUnhealthy)
		return
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// internalError logs the cause and answers with a generic 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.Log.ErrorContext(r.Context(), msg, "error", err, "method", r.Method, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, models.MsgInternal)
}

func decodeDocument(r *http.Request) (domain.Document, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))

	var doc domain.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errInvalidBody
	}
	if doc == nil {
		return nil, errInvalidBody
	}
	// exactly one value per body
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errInvalidBody
	}
	return doc, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: true, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
