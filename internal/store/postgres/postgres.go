package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// TablePrefix is prepended to collection names to form table names.
const TablePrefix = "catalog_"

// DB is the connection surface the store needs. Both *pgxpool.Pool and
// pgxmock pools satisfy it.
type DB interface {
	database.DBTX
	Ping(ctx context.Context) error
	Close()
}

// Migrate creates the catalog tables.
func Migrate(ctx context.Context, db database.DBTX, logger *slog.Logger) error {
	return database.RunMigrations(ctx, db, migrationsFS, "migrations", logger)
}

// Store implements store.Store on PostgreSQL with one JSONB table per
// collection.
type Store struct {
	db DB
}

// New creates a PostgreSQL-backed store.
func New(db DB) *Store {
	return &Store{db: db}
}

// Collection returns the collection stored in table catalog_<name>.
func (s *Store) Collection(name string) store.Collection {
	return &Collection{
		db:    s.db,
		name:  name,
		table: pgx.Identifier{TablePrefix + name}.Sanitize(),
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// Collection is one catalog table.
type Collection struct {
	db    database.DBTX
	name  string
	table string
}

// Find returns documents matching the filter in insertion order.
func (c *Collection) Find(ctx context.Context, filter store.Filter) (records []domain.ProductRecord, err error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, fmt.Errorf("postgres find %s: %w", c.name, err)
	}

	query := "SELECT doc FROM " + c.table + where + " ORDER BY seq"

	ctx, end := database.TraceQuery(ctx, "Find "+c.name, query)
	defer func() { end(err) }()

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres find %s: %w", c.name, err)
	}
	defer rows.Close()

	records = make([]domain.ProductRecord, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("postgres find %s: scan: %w", c.name, err)
		}
		var rec domain.ProductRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("postgres find %s: decode document: %w", c.name, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres find %s: %w", c.name, err)
	}
	return records, nil
}

// Upsert inserts or replaces documents in a single transaction. Replaced
// documents keep their original position.
func (c *Collection) Upsert(ctx context.Context, records []domain.ProductRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO ` + c.table + ` (id, doc, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`

	ctx, end := database.TraceQuery(ctx, "Upsert "+c.name, query)
	defer func() { end(err) }()

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres upsert %s: begin: %w", c.name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	for i := range records {
		doc, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("postgres upsert %s: encode %s: %w", c.name, records[i].ID, err)
		}
		if _, err := tx.Exec(ctx, query, records[i].ID, doc, now); err != nil {
			return fmt.Errorf("postgres upsert %s: %s: %w", c.name, records[i].ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres upsert %s: commit: %w", c.name, err)
	}
	return nil
}

// Delete removes a document by ID.
func (c *Collection) Delete(ctx context.Context, id string) (err error) {
	query := "DELETE FROM " + c.table + " WHERE id = $1"

	ctx, end := database.TraceQuery(ctx, "Delete "+c.name, query)
	defer func() { end(err) }()

	if _, err := c.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("postgres delete %s: %w", c.name, err)
	}
	return nil
}

var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// buildWhere renders the filter as a WHERE clause over the doc column.
// Field names are interpolated and must be plain identifiers; values are
// always bound.
func buildWhere(f store.Filter) (string, []any, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	check := func(field string) error {
		if !fieldName.MatchString(field) {
			return fmt.Errorf("invalid field name %q", field)
		}
		return nil
	}

	for _, eq := range f.Equals {
		if err := check(eq.Field); err != nil {
			return "", nil, err
		}
		doc, err := json.Marshal(map[string]any{eq.Field: eq.Value})
		if err != nil {
			return "", nil, fmt.Errorf("encode %s: %w", eq.Field, err)
		}
		conditions = append(conditions, "doc @> "+arg(string(doc))+"::jsonb")
	}

	for _, in := range f.In {
		if err := check(in.Field); err != nil {
			return "", nil, err
		}
		lowered := make([]string, len(in.Values))
		for i, v := range in.Values {
			lowered[i] = strings.ToLower(v)
		}
		conditions = append(conditions, fmt.Sprintf("lower(doc->>'%s') = ANY(%s)", in.Field, arg(lowered)))
	}

	for _, r := range f.Ranges {
		if err := check(r.Field); err != nil {
			return "", nil, err
		}
		if r.Min != nil {
			conditions = append(conditions, fmt.Sprintf("(doc->>'%s')::numeric >= %s", r.Field, arg(*r.Min)))
		}
		if r.Max != nil {
			conditions = append(conditions, fmt.Sprintf("(doc->>'%s')::numeric <= %s", r.Field, arg(*r.Max)))
		}
	}

	if f.Text != nil && f.Text.Pattern != "" && len(f.Text.Fields) > 0 {
		p := arg(f.Text.Pattern)
		alts := make([]string, 0, len(f.Text.Fields))
		for _, field := range f.Text.Fields {
			if err := check(field); err != nil {
				return "", nil, err
			}
			alts = append(alts, fmt.Sprintf("doc->>'%s' ~* %s", field, p))
		}
		conditions = append(conditions, "("+strings.Join(alts, " OR ")+")")
	}

	if len(conditions) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}
