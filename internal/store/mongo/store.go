package mongo

import (
	"context"
	"errors"
	"fmt"

	"arkpower/internal/domain"
	"arkpower/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads and writes collections of a single database. It owns the
// client and disconnects it on Close.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// EnsureIndexes creates the unique email index that keeps registration
// idempotent under concurrent requests. It fails when the users collection
// already holds duplicate emails.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(store.Users).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: domain.EmailField, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index (duplicate emails in %q must be merged first): %w", store.Users, err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string) ([]domain.Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	docs := make([]domain.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, toDocument(m))
	}
	return docs, nil
}

func (s *Store) FindByID(ctx context.Context, collection, id string) (domain.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return s.findOne(ctx, collection, bson.M{"_id": oid})
}

func (s *Store) FindOne(ctx context.Context, collection, field, value string) (domain.Document, error) {
	return s.findOne(ctx, collection, bson.M{field: value})
}

func (s *Store) findOne(ctx context.Context, collection string, filter bson.M) (domain.Document, error) {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return toDocument(m), nil
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc domain.Document) (domain.InsertResult, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc.WithoutID()))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.InsertResult{}, store.ErrDuplicate
		}
		return domain.InsertResult{}, fmt.Errorf("insert %s: %w", collection, err)
	}

	return domain.InsertResult{Acknowledged: true, InsertedID: idString(res.InsertedID)}, nil
}

func (s *Store) UpdateByID(ctx context.Context, collection, id string, set domain.Document) (domain.MatchResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.MatchResult{Acknowledged: true}, nil
	}
	fields := set.WithoutID()
	if len(fields) == 0 {
		// $set with an empty document is rejected by the server.
		n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return domain.MatchResult{}, fmt.Errorf("count %s: %w", collection, err)
		}
		return domain.MatchResult{Acknowledged: true, MatchedCount: n}, nil
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("update %s: %w", collection, err)
	}
	return matchResult(res), nil
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) (domain.DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.DeleteResult{Acknowledged: true}, nil
	}

	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete %s: %w", collection, err)
	}
	return deleteResult(res), nil
}

// An unacknowledged write comes back as mongo.ErrUnacknowledgedWrite, so
// any result that reaches these helpers was acknowledged.
func matchResult(res *mongo.UpdateResult) domain.MatchResult {
	return domain.MatchResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}
}

func deleteResult(res *mongo.DeleteResult) domain.DeleteResult {
	return domain.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocument(m bson.M) domain.Document {
	doc := domain.Document(m)
	if id, ok := doc[domain.IDField]; ok {
		doc[domain.IDField] = idString(id)
	}
	return doc
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
