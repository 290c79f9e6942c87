package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"arkpower/internal/auth"
	"arkpower/internal/domain"
	"arkpower/internal/store"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service implements registration, the admin role check and role
// mutation on top of the users collection.
type Service struct {
	docs store.DocumentStore
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

// Register inserts doc unless a user with the same email exists, in which
// case created is false and nothing is written. A caller-supplied role is
// dropped; a password is stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, doc domain.Document) (res domain.InsertResult, created bool, err error) {
	email, _ := doc[domain.EmailField].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.InsertResult{}, false, ErrEmailRequired
	}

	_, err = s.docs.FindOne(ctx, store.Users, domain.EmailField, email)
	switch {
	case err == nil:
		return domain.InsertResult{}, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.InsertResult{}, false, err
	}

	record := doc.WithoutID()
	record[domain.EmailField] = email
	delete(record, domain.RoleField)
	delete(record, domain.PasswordHashField)
	if password, ok := record[domain.PasswordField].(string); ok && password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return domain.InsertResult{}, false, fmt.Errorf("hash password: %w", err)
		}
		record[domain.PasswordHashField] = hash
	}
	delete(record, domain.PasswordField)

	res, err = s.docs.InsertOne(ctx, store.Users, record)
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, store.ErrDuplicate) {
			return domain.InsertResult{}, false, nil
		}
		return domain.InsertResult{}, false, err
	}
	return res, true, nil
}

// CheckAdmin answers whether pathEmail is an admin, but only for the caller
// it belongs to. A mismatch returns false without touching the store.
func (s *Service) CheckAdmin(ctx context.Context, pathEmail, claimsEmail string) (bool, error) {
	if claimsEmail != pathEmail {
		return false, nil
	}
	return s.IsAdmin(ctx, pathEmail)
}

// IsAdmin looks the user up by email. A missing record is a negative
// answer, not an error.
func (s *Service) IsAdmin(ctx context.Context, email string) (bool, error) {
	doc, err := s.docs.FindOne(ctx, store.Users, domain.EmailField, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return domain.UserFromDocument(doc).IsAdmin(), nil
}

// SetRole overwrites the role of the user with the given store id. No
// prior-role check is made; the last writer wins.
func (s *Service) SetRole(ctx context.Context, id string, role domain.Role) (domain.MatchResult, error) {
	if !role.Assignable() {
		return domain.MatchResult{}, domain.ErrInvalidRole
	}
	return s.docs.UpdateByID(ctx, store.Users, id, domain.Document{domain.RoleField: string(role)})
}

// SetRoleByEmail is the out-of-band path used to bootstrap the first admin.
func (s *Service) SetRoleByEmail(ctx context.Context, email string, role domain.Role) (domain.MatchResult, error) {
	if !role.Assignable() {
		return domain.MatchResult{}, domain.ErrInvalidRole
	}
	doc, err := s.docs.FindOne(ctx, store.Users, domain.EmailField, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.MatchResult{Acknowledged: true}, nil
		}
		return domain.MatchResult{}, err
	}
	return s.SetRole(ctx, domain.UserFromDocument(doc).ID, role)
}

// Authenticate checks a password against the stored bcrypt hash. Users
// registered without a password can never authenticate this way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	doc, err := s.docs.FindOne(ctx, store.Users, domain.EmailField, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	user := domain.UserFromDocument(doc)
	if user.PasswordHash == "" || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// List returns every user with the password hash removed.
func (s *Service) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docs.Find(ctx, store.Users)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		delete(doc, domain.PasswordHashField)
	}
	return docs, nil
}

func (s *Service) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	return s.docs.DeleteByID(ctx, store.Users, id)
}
