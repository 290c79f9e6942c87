// Package memory keeps collections in process memory. It backs the test
// suites and STORE_DRIVER=memory for local development.
package memory

import (
	"context"
	"reflect"
	"sync"

	"arkpower/internal/domain"
	"arkpower/internal/store"

	"github.com/google/uuid"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string][]domain.Document
}

func NewStore() *Store {
	return &Store{collections: make(map[string][]domain.Document)}
}

func (s *Store) Find(ctx context.Context, collection string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	out := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, copyDocument(doc))
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, collection, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(collection, id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	return copyDocument(s.collections[collection][idx]), nil
}

func (s *Store) FindOne(ctx context.Context, collection, field, value string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if v, ok := doc[field].(string); ok && v == value {
			return copyDocument(doc), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc domain.Document) (domain.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if collection == store.Users {
		if email, ok := doc[domain.EmailField].(string); ok {
			for _, existing := range s.collections[collection] {
				if existing[domain.EmailField] == email {
					return domain.InsertResult{}, store.ErrDuplicate
				}
			}
		}
	}

	stored := doc.WithoutID()
	id := uuid.NewString()
	stored[domain.IDField] = id
	s.collections[collection] = append(s.collections[collection], stored)

	return domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *Store) UpdateByID(ctx context.Context, collection, id string, set domain.Document) (domain.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(collection, id)
	if idx < 0 {
		return domain.MatchResult{Acknowledged: true}, nil
	}

	doc := s.collections[collection][idx]
	var modified int64
	for k, v := range set {
		if k == domain.IDField {
			continue
		}
		if old, ok := doc[k]; !ok || !reflect.DeepEqual(old, v) {
			modified = 1
		}
		doc[k] = v
	}

	return domain.MatchResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) (domain.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(collection, id)
	if idx < 0 {
		return domain.DeleteResult{Acknowledged: true}, nil
	}

	docs := s.collections[collection]
	s.collections[collection] = append(docs[:idx], docs[idx+1:]...)
	return domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(collection, id string) int {
	for i, doc := range s.collections[collection] {
		if doc[domain.IDField] == id {
			return i
		}
	}
	return -1
}

func copyDocument(doc domain.Document) domain.Document {
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
