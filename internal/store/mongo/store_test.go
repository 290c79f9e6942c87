package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"arkpower/internal/domain"
	"arkpower/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestToDocument_NormalizesObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := toDocument(bson.M{"_id": oid, "email": "a@x.com"})

	assert.Equal(t, oid.Hex(), doc[domain.IDField])
	assert.Equal(t, "a@x.com", doc["email"])
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "abc", idString("abc"))
	assert.Equal(t, "42", idString(42))
}

func TestResultsFromDriver(t *testing.T) {
	assert.Equal(t,
		domain.MatchResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 0},
		matchResult(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 0}),
	)
	assert.Equal(t,
		domain.DeleteResult{Acknowledged: true, DeletedCount: 2},
		deleteResult(&mongo.DeleteResult{DeletedCount: 2}),
	)
}

// The client never dials here: malformed ids are answered before any
// round trip to the server.
func TestStore_MalformedIDs(t *testing.T) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	s := NewStore(client, "unit")
	ctx := context.Background()

	_, err = s.FindByID(ctx, store.Products, "not-an-object-id")
	assert.ErrorIs(t, err, store.ErrNotFound)

	upd, err := s.UpdateByID(ctx, store.Users, "not-an-object-id", domain.Document{"role": "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.MatchResult{Acknowledged: true}, upd)

	del, err := s.DeleteByID(ctx, store.Users, "not-an-object-id")
	require.NoError(t, err)
	assert.Equal(t, domain.DeleteResult{Acknowledged: true}, del)
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI is required for integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	dbName := "arkpower_test_" + uuid.NewString()[:8]
	s := NewStore(client, dbName)
	require.NoError(t, s.EnsureIndexes(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(dbName).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestStoreIntegration_CRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	res, err := s.InsertOne(ctx, store.Products, domain.Document{"name": "Inverter"})
	require.NoError(t, err)

	doc, err := s.FindByID(ctx, store.Products, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, res.InsertedID, doc[domain.IDField])

	upd, err := s.UpdateByID(ctx, store.Products, res.InsertedID, domain.Document{"name": "Battery"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.MatchedCount)

	upd, err = s.UpdateByID(ctx, store.Products, primitive.NewObjectID().Hex(), domain.Document{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), upd.MatchedCount)

	upd, err = s.UpdateByID(ctx, store.Products, "not-hex", domain.Document{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), upd.MatchedCount)

	del, err := s.DeleteByID(ctx, store.Products, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)

	_, err = s.FindByID(ctx, store.Products, res.InsertedID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreIntegration_DuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.InsertOne(ctx, store.Users, domain.Document{"email": "a@x.com"})
	require.NoError(t, err)

	_, err = s.InsertOne(ctx, store.Users, domain.Document{"email": "a@x.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	doc, err := s.FindOne(ctx, store.Users, "email", "a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, doc[domain.IDField])
}
