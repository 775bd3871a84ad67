package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"kanbanApi/internal/shared/apperr"
)

const (
	BoardsCollection = "board"
	UsersCollection  = "user"
)

// Connect dials the server and pings it before handing out the database.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongodb ping: %w", err)
	}
	slog.Info("connected to mongodb", slog.String("database", database))
	return client, client.Database(database), nil
}

// ObjectID parses a hex id; malformed ids read as missing documents.
func ObjectID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(kind, id)
	}
	return oid, nil
}

// ContainsInsensitive builds a case-insensitive substring match for txt.
func ContainsInsensitive(txt string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(txt), Options: "i"}
}
