package domain

import "errors"

// Document is a schema-less record as stored in a collection. The store
// identifier is always exposed under IDField as a string.
type Document map[string]any

const (
	IDField           = "_id"
	EmailField        = "email"
	RoleField         = "role"
	PasswordField     = "password"
	PasswordHashField = "passwordHash"
)

// Role gates administrative capability. The zero value means no role.
type Role string

const (
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleSuspend Role = "suspend"
)

var ErrInvalidRole = errors.New("invalid role")

func (r Role) Assignable() bool {
	return r == RoleAdmin || r == RoleSuspend
}

type User struct {
	ID           string `json:"_id"`
	Email        string `json:"email"`
	Role         Role   `json:"role,omitempty"`
	PasswordHash string `json:"-"`
}

// UserFromDocument picks the fields the access-control logic cares about.
// A role stored with a non-string type is treated as no role.
func UserFromDocument(doc Document) User {
	u := User{}
	u.ID, _ = doc[IDField].(string)
	u.Email, _ = doc[EmailField].(string)
	if role, ok := doc[RoleField].(string); ok {
		u.Role = Role(role)
	}
	u.PasswordHash, _ = doc[PasswordHashField].(string)
	return u
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// MatchResult mirrors the acknowledgement of an update: callers inspect
// MatchedCount to detect a no-op.
type MatchResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// WithoutID returns a shallow copy without the identifier field.
func (d Document) WithoutID() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}
