// Package mongo implements remote.Gateway on MongoDB. Each collection
// maps to one Mongo collection; documents carry the record id as _id,
// the tenant scope, and the raw JSON document.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/remote"
)

var _ remote.Gateway = (*Gateway)(nil)

// doc is the Mongo document shape for one record.
type doc struct {
	ID    string `bson:"_id"`
	OrgID string `bson:"organization_id,omitempty"`
	Doc   string `bson:"doc"`
}

// Gateway is a MongoDB implementation of remote.Gateway.
type Gateway struct {
	client *mongod.Client
	db     *mongod.Database
	logger *slog.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger sets the logger for the gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a new MongoDB gateway from a connection URI and database
// name, e.g. "mongodb://localhost:27017", "crm".
func New(ctx context.Context, uri, database string, opts ...Option) (*Gateway, error) {
	client, err := mongod.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("syncline/mongo: connect: %w", err)
	}

	g := &Gateway{
		client: client,
		db:     client.Database(database),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}

	// Connect is lazy; surface unreachable backends on first use instead.
	_ = ctx
	return g, nil
}

// FetchAll reads every record in a collection.
func (g *Gateway) FetchAll(ctx context.Context, table string) ([]remote.Row, error) {
	cur, err := g.db.Collection(table).Find(ctx, bson.M{})
	if err != nil {
		return nil, classify(err, "fetch "+table)
	}
	defer cur.Close(ctx)

	var result []remote.Row
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("syncline/mongo: decode %s: %w", table, err)
		}
		result = append(result, remote.Row{
			ID:    d.ID,
			OrgID: d.OrgID,
			Doc:   json.RawMessage(d.Doc),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, classify(err, "fetch "+table)
	}
	return result, nil
}

// Upsert inserts or replaces one record by id.
func (g *Gateway) Upsert(ctx context.Context, table string, row remote.Row) error {
	d := doc{ID: row.ID, OrgID: row.OrgID, Doc: string(row.Doc)}
	_, err := g.db.Collection(table).ReplaceOne(ctx,
		bson.M{"_id": row.ID}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return classify(err, "upsert "+table)
	}
	return nil
}

// Delete removes one record by id. Missing ids are not an error.
func (g *Gateway) Delete(ctx context.Context, table string, recordID string) error {
	_, err := g.db.Collection(table).DeleteOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		return classify(err, "delete "+table)
	}
	return nil
}

// Count returns the number of records in a collection.
func (g *Gateway) Count(ctx context.Context, table string) (int64, error) {
	n, err := g.db.Collection(table).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", syncline.ErrCountFailed, table, err)
	}
	return n, nil
}

// Ping checks server connectivity.
func (g *Gateway) Ping(ctx context.Context) error {
	if err := g.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", syncline.ErrRemoteUnavailable, err)
	}
	return nil
}

// Close disconnects the client.
func (g *Gateway) Close() error {
	return g.client.Disconnect(context.Background())
}

// classify maps transport-level failures to syncline.ErrRemoteUnavailable
// so callers can fall back to cache; server-side rejections pass through.
func classify(err error, op string) error {
	var cmdErr mongod.CommandError
	if errors.As(err, &cmdErr) {
		return fmt.Errorf("syncline/mongo: %s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", syncline.ErrRemoteUnavailable, op, err)
}
