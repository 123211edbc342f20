package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/database"
)

// Config holds MongoDB connection configuration.
type Config struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"jewelry"`
}

// Store implements store.Store on MongoDB with one collection per category.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client and verifies it with a ping, retrying transient
// failures.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	err = database.Retry(ctx, "ping mongo", logger, func() error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Collection returns the named MongoDB collection.
func (s *Store) Collection(name string) store.Collection {
	return &Collection{coll: s.db.Collection(name)}
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// Collection is one category collection. Documents are returned in natural
// order.
type Collection struct {
	coll *mongo.Collection
}

// Find returns documents matching the filter.
func (c *Collection) Find(ctx context.Context, filter store.Filter) (records []domain.ProductRecord, err error) {
	query := toBSON(filter)

	ctx, end := database.TraceOperation(ctx, database.SystemMongo, "find "+c.coll.Name(), c.coll.Name())
	defer func() { end(err) }()

	cur, err := c.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", c.coll.Name(), err)
	}

	records = make([]domain.ProductRecord, 0)
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("mongo find %s: decode: %w", c.coll.Name(), err)
	}
	return records, nil
}

// Upsert replaces documents by ID in one unordered bulk write.
func (c *Collection) Upsert(ctx context.Context, records []domain.ProductRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	ctx, end := database.TraceOperation(ctx, database.SystemMongo, "upsert "+c.coll.Name(), c.coll.Name())
	defer func() { end(err) }()

	models := make([]mongo.WriteModel, 0, len(records))
	for i := range records {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": records[i].ID}).
			SetReplacement(records[i]).
			SetUpsert(true))
	}

	if _, err := c.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongo upsert %s: %w", c.coll.Name(), err)
	}
	return nil
}

// Delete removes a document by ID.
func (c *Collection) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceOperation(ctx, database.SystemMongo, "delete "+c.coll.Name(), c.coll.Name())
	defer func() { end(err) }()

	if _, err := c.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", c.coll.Name(), err)
	}
	return nil
}

// bsonField maps a document field name to its stored key.
func bsonField(field string) string {
	if field == domain.FieldID {
		return "_id"
	}
	return field
}

// exactFold matches a whole value ignoring case.
func exactFold(v string) bson.Regex {
	return bson.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

// toBSON translates a store filter into a MongoDB query document. Clauses
// on the same field are merged.
func toBSON(f store.Filter) bson.M {
	query := bson.M{}

	for _, eq := range f.Equals {
		query[bsonField(eq.Field)] = eq.Value
	}

	for _, in := range f.In {
		values := make(bson.A, 0, len(in.Values))
		for _, v := range in.Values {
			values = append(values, exactFold(v))
		}
		query[bsonField(in.Field)] = bson.M{"$in": values}
	}

	for _, r := range f.Ranges {
		cond := bson.M{}
		if r.Min != nil {
			cond["$gte"] = *r.Min
		}
		if r.Max != nil {
			cond["$lte"] = *r.Max
		}
		if len(cond) > 0 {
			query[bsonField(r.Field)] = cond
		}
	}

	if f.Text != nil && f.Text.Pattern != "" && len(f.Text.Fields) > 0 {
		re := bson.Regex{Pattern: strings.TrimPrefix(f.Text.Pattern, "(?i)"), Options: "i"}
		or := make(bson.A, 0, len(f.Text.Fields))
		for _, field := range f.Text.Fields {
			or = append(or, bson.M{bsonField(field): re})
		}
		query["$or"] = or
	}

	return query
}
