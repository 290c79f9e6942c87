// Package database opens the configured document store. The returned
// handle is owned by the caller and must be closed on shutdown.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"arkpower/config"
	"arkpower/internal/store"
	"arkpower/internal/store/memory"
	mongostore "arkpower/internal/store/mongo"
	"arkpower/internal/store/postgres"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Open connects to the backend named by cfg.Database.Driver and checks the
// connection before returning.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.DocumentStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.Database.MongoURI)
		if err != nil {
			return nil, err
		}
		s := mongostore.NewStore(client, cfg.Database.Name)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(context.Background())
			return nil, err
		}
		log.Info("connected to MongoDB", "database", cfg.Database.Name)
		return s, nil

	case config.DriverPostgres:
		db, err := ConnectPostgres(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("connected to PostgreSQL")
		return postgres.NewStore(db), nil

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Database.Driver)
}

// ConnectMongo uses the Stable API v1 in strict mode and pings the admin
// database.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

func ConnectPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open PostgreSQL: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	return db, nil
}
