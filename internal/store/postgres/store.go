// Package postgres stores collections as JSONB rows in a single documents
// table. Identifiers are UUIDs generated by the service.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"arkpower/internal/domain"
	"arkpower/internal/store"
	"arkpower/internal/store/postgres/migrations"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc FROM documents WHERE collection = $1 ORDER BY created_at, id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) FindByID(ctx context.Context, collection, id string) (domain.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, doc FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	return s.scanOne(row, collection)
}

func (s *Store) FindOne(ctx context.Context, collection, field, value string) (domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, doc FROM documents WHERE collection = $1 AND doc->>($2::text) = $3 ORDER BY created_at LIMIT 1`,
		collection, field, value)
	return s.scanOne(row, collection)
}

func (s *Store) scanOne(row *sql.Row, collection string) (domain.Document, error) {
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return doc, nil
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc domain.Document) (domain.InsertResult, error) {
	payload, err := json.Marshal(doc.WithoutID())
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("encode document: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`,
		collection, id, payload)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.InsertResult{}, store.ErrDuplicate
		}
		return domain.InsertResult{}, fmt.Errorf("insert %s: %w", collection, err)
	}

	return domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// UpdateByID merges set into the stored document. Postgres rewrites the row
// on every match, so ModifiedCount equals MatchedCount.
func (s *Store) UpdateByID(ctx context.Context, collection, id string, set domain.Document) (domain.MatchResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.MatchResult{Acknowledged: true}, nil
	}
	payload, err := json.Marshal(set.WithoutID())
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("encode update: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET doc = doc || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, payload)
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("update %s: %w", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("update %s: %w", collection, err)
	}
	return domain.MatchResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) (domain.DeleteResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.DeleteResult{Acknowledged: true}, nil
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete %s: %w", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete %s: %w", collection, err)
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner) (domain.Document, error) {
	var (
		id  string
		raw []byte
	)
	if err := sc.Scan(&id, &raw); err != nil {
		return nil, err
	}

	doc := domain.Document{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
	}
	if doc == nil {
		doc = domain.Document{}
	}
	doc[domain.IDField] = id
	return doc, nil
}
