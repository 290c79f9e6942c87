package store

import (
	"context"
	"errors"

	"arkpower/internal/domain"
)

var (
	// ErrNotFound is also returned by FindByID for identifiers the backend
	// cannot parse; UpdateByID and DeleteByID report those as zero matches.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned by InsertOne when a unique index rejects the
	// document.
	ErrDuplicate = errors.New("duplicate document")
)

// Collection names as they exist in the database.
const (
	Users       = "users"
	Products    = "products"
	News        = "newsAndEvents"
	Careers     = "careers"
	Subscribers = "subscribers"
	Footer      = "footer"
	HeroImages  = "heroImages"
)

// DocumentStore is the single collaboration point with the database. All
// documents returned carry their identifier under domain.IDField as a string.
type DocumentStore interface {
	Find(ctx context.Context, collection string) ([]domain.Document, error)
	FindByID(ctx context.Context, collection, id string) (domain.Document, error)
	FindOne(ctx context.Context, collection, field, value string) (domain.Document, error)
	InsertOne(ctx context.Context, collection string, doc domain.Document) (domain.InsertResult, error)
	// UpdateByID overwrites the given fields unconditionally. A missing
	// document yields a zero MatchedCount, not an error.
	UpdateByID(ctx context.Context, collection, id string, set domain.Document) (domain.MatchResult, error)
	DeleteByID(ctx context.Context, collection, id string) (domain.DeleteResult, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
