package models

// ErrorResponse is the body of every error answer. Error is always true.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// TokenResponse - response of POST /jwt
type TokenResponse struct {
	Token string `json:"token"`
}

// AdminResponse - response of GET /users/admin/{email}
type AdminResponse struct {
	Admin bool `json:"admin"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Collection describes one resource route and who may use it.
type Collection struct {
	Path         string
	Name         string
	PublicRead   bool
	PublicCreate bool
}

// Messages shared by handlers and tests.
const (
	MsgUnauthorized   = "unauthorized access"
	MsgForbidden      = "forbidden access"
	MsgNotFound       = "not found"
	MsgInternal       = "internal server error"
	MsgInvalidJSON    = "invalid JSON payload"
	MsgEmailRequired  = "email is required"
	MsgStoreUnhealthy = "store unavailable"
)
