// Package postgres implements the record store as JSONB rows in PostgreSQL.
// All collections share the documents table, keyed by (collection, id).
package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/internal/repository"
	"github.com/journalist-service/server/pkg/database"
	"github.com/journalist-service/server/pkg/pagination"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

type pinger interface {
	Ping(ctx context.Context) error
}

type closer interface {
	Close()
}

// Store is a PostgreSQL-backed repository.Store.
type Store struct {
	db database.DBTX
}

// NewStore wraps db, normally a *pgxpool.Pool.
func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

// Collection returns a handle scoped to name.
func (s *Store) Collection(name string) repository.Collection {
	return &Collection{db: s.db, name: name}
}

// Ping checks connectivity when the underlying handle supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.db.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close(context.Context) error {
	if c, ok := s.db.(closer); ok {
		c.Close()
	}
	return nil
}

// Collection is one logical collection inside the documents table.
type Collection struct {
	db   database.DBTX
	name string
}

const (
	insertSQL = `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3::jsonb)`

	findByIDSQL = `SELECT doc FROM documents WHERE collection = $1 AND id = $2`

	// The CTE reports the match even when the merge would change nothing,
	// mirroring matched/modified counts of a document store.
	updateSQL = `
		WITH target AS (
			SELECT id, doc FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE
		), changed AS (
			UPDATE documents d
			SET doc = d.doc || $3::jsonb, updated_at = NOW()
			FROM target t
			WHERE d.collection = $1 AND d.id = t.id AND NOT t.doc @> $3::jsonb
			RETURNING d.id
		)
		SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM changed)`

	deleteSQL = `DELETE FROM documents WHERE collection = $1 AND id = $2`

	countSQL = `SELECT count(*) FROM documents WHERE collection = $1`
)

func (c *Collection) trace(ctx context.Context, op, statement string) (context.Context, func(error)) {
	return database.TraceQuery(ctx, database.SystemPostgres, c.name+"."+op, statement)
}

func (c *Collection) Insert(ctx context.Context, doc domain.Document) (id string, err error) {
	ctx, end := c.trace(ctx, "insert", insertSQL)
	defer func() { end(err) }()

	body, err := json.Marshal(doc.WithoutID())
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", c.name, err)
	}

	id = domain.NewID()
	if _, err := c.db.Exec(ctx, insertSQL, c.name, id, string(body)); err != nil {
		return "", fmt.Errorf("insert into %s: %w", c.name, err)
	}
	return id, nil
}

// findQuery builds the listing statement. Arguments are positional, so the
// filter and window clauses are appended in a fixed order.
func (c *Collection) findQuery(filter domain.Filter, page pagination.Params) (string, []any, error) {
	query := `SELECT id, doc FROM documents WHERE collection = $1`
	args := []any{c.name}

	if !filter.MatchAll() {
		// Containment equals equality only for scalar values; an object or
		// array value would also match documents holding a superset of it.
		match, err := json.Marshal(map[string]any{filter.Field: filter.Value})
		if err != nil {
			return "", nil, fmt.Errorf("encode filter: %w", err)
		}
		args = append(args, string(match))
		query += fmt.Sprintf(" AND doc @> $%d::jsonb", len(args))
	}

	query += " ORDER BY seq"

	if limit := page.Limit(); limit > 0 {
		args = append(args, limit, page.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return query, args, nil
}

func (c *Collection) Find(ctx context.Context, filter domain.Filter, page pagination.Params) (docs []domain.Document, err error) {
	query, args, err := c.findQuery(filter, page)
	if err != nil {
		return nil, err
	}

	ctx, end := c.trace(ctx, "find", query)
	defer func() { end(err) }()

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.name, err)
	}
	defer rows.Close()

	docs = make([]domain.Document, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", c.name, err)
		}
		doc, err := decode(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", c.name, err)
	}
	return docs, nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (doc domain.Document, err error) {
	ctx, end := c.trace(ctx, "find_by_id", findByIDSQL)
	defer func() { end(err) }()

	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	var raw []byte
	err = c.db.QueryRow(ctx, findByIDSQL, c.name, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", c.name, id, err)
	}
	return decode(id, raw)
}

func (c *Collection) UpdateByID(ctx context.Context, id string, fields domain.Document) (res domain.UpdateResult, err error) {
	ctx, end := c.trace(ctx, "update", updateSQL)
	defer func() { end(err) }()

	if _, err := domain.ParseID(id); err != nil {
		return domain.UpdateResult{}, err
	}

	patch, err := json.Marshal(fields.WithoutID())
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("encode %s update: %w", c.name, err)
	}

	if err := c.db.QueryRow(ctx, updateSQL, c.name, id, string(patch)).Scan(&res.MatchedCount, &res.ModifiedCount); err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update %s %s: %w", c.name, id, err)
	}
	return res, nil
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (res domain.DeleteResult, err error) {
	ctx, end := c.trace(ctx, "delete", deleteSQL)
	defer func() { end(err) }()

	if _, err := domain.ParseID(id); err != nil {
		return domain.DeleteResult{}, err
	}

	tag, err := c.db.Exec(ctx, deleteSQL, c.name, id)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete %s %s: %w", c.name, id, err)
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

func (c *Collection) EstimatedCount(ctx context.Context) (n int64, err error) {
	ctx, end := c.trace(ctx, "count", countSQL)
	defer func() { end(err) }()

	if err := c.db.QueryRow(ctx, countSQL, c.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.name, err)
	}
	return n, nil
}

func decode(id string, raw []byte) (domain.Document, error) {
	doc := domain.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc[domain.IDField] = id
	return doc, nil
}
