// Package mongo implements the record store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/internal/repository"
	"github.com/journalist-service/server/pkg/database"
	"github.com/journalist-service/server/pkg/pagination"
)

// Store wraps one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore uses database dbName on an already connected client.
func NewStore(client *mongo.Client, dbName string) *Store {
	return &Store{client: client, db: client.Database(dbName)}
}

// Collection returns a handle on the named collection.
func (s *Store) Collection(name string) repository.Collection {
	return NewCollection(s.db.Collection(name))
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return database.PingMongo(s.client)(ctx)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Collection adapts a *mongo.Collection to repository.Collection.
type Collection struct {
	coll *mongo.Collection
}

// NewCollection wraps coll.
func NewCollection(coll *mongo.Collection) *Collection {
	return &Collection{coll: coll}
}

func (c *Collection) trace(ctx context.Context, op, statement string) (context.Context, func(error)) {
	return database.TraceQuery(ctx, database.SystemMongo, c.coll.Name()+"."+op, statement)
}

func (c *Collection) Insert(ctx context.Context, doc domain.Document) (id string, err error) {
	ctx, end := c.trace(ctx, "insert", "insertOne")
	defer func() { end(err) }()

	oid := primitive.NewObjectID()
	record := bson.M(doc.WithoutID())
	record[domain.IDField] = oid

	if _, err := c.coll.InsertOne(ctx, record); err != nil {
		return "", fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	return oid.Hex(), nil
}

func (c *Collection) Find(ctx context.Context, filter domain.Filter, page pagination.Params) (docs []domain.Document, err error) {
	query := bson.M{}
	if !filter.MatchAll() {
		query[filter.Field] = filter.Value
	}

	ctx, end := c.trace(ctx, "find", fmt.Sprintf("find %v", query))
	defer func() { end(err) }()

	opts := options.Find()
	if limit := page.Limit(); limit > 0 {
		opts.SetSkip(page.Offset()).SetLimit(limit)
	}

	cursor, err := c.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}

	var records []bson.M
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}

	docs = make([]domain.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, fromRecord(r))
	}
	return docs, nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (doc domain.Document, err error) {
	ctx, end := c.trace(ctx, "find_by_id", "findOne {_id: ?}")
	defer func() { end(err) }()

	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	var record bson.M
	err = c.coll.FindOne(ctx, bson.M{domain.IDField: oid}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", c.coll.Name(), id, err)
	}
	return fromRecord(record), nil
}

func (c *Collection) UpdateByID(ctx context.Context, id string, fields domain.Document) (res domain.UpdateResult, err error) {
	ctx, end := c.trace(ctx, "update", "updateOne {_id: ?} {$set: ?}")
	defer func() { end(err) }()

	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	set := fields.WithoutID()
	if len(set) == 0 {
		// $set rejects an empty document; report the match without writing.
		n, err := c.coll.CountDocuments(ctx, bson.M{domain.IDField: oid}, options.Count().SetLimit(1))
		if err != nil {
			return domain.UpdateResult{}, fmt.Errorf("update %s %s: %w", c.coll.Name(), id, err)
		}
		return domain.UpdateResult{MatchedCount: n}, nil
	}

	out, err := c.coll.UpdateOne(ctx, bson.M{domain.IDField: oid}, bson.M{"$set": bson.M(set)})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update %s %s: %w", c.coll.Name(), id, err)
	}
	return domain.UpdateResult{MatchedCount: out.MatchedCount, ModifiedCount: out.ModifiedCount}, nil
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (res domain.DeleteResult, err error) {
	ctx, end := c.trace(ctx, "delete", "deleteOne {_id: ?}")
	defer func() { end(err) }()

	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	out, err := c.coll.DeleteOne(ctx, bson.M{domain.IDField: oid})
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete %s %s: %w", c.coll.Name(), id, err)
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: out.DeletedCount}, nil
}

func (c *Collection) EstimatedCount(ctx context.Context) (n int64, err error) {
	ctx, end := c.trace(ctx, "count", "estimatedDocumentCount")
	defer func() { end(err) }()

	n, err = c.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}
	return n, nil
}

// fromRecord exposes the ObjectID as its hex string.
func fromRecord(r bson.M) domain.Document {
	doc := domain.Document(r)
	if id := doc.ID(); id != "" {
		doc[domain.IDField] = id
	}
	return doc
}
