package store

import (
	"context"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
)

// Equal matches documents whose field equals Value.
type Equal struct {
	Field string
	Value any
}

// In matches documents whose field equals one of Values, ignoring case.
type In struct {
	Field  string
	Values []string
}

// Range matches documents whose numeric field lies within [Min, Max].
// A nil bound is open.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

// Text matches documents where any of Fields matches Pattern, a
// case-insensitive regular expression built from a term alternation.
// Terms carries the same terms unescaped for backends without regex support.
type Text struct {
	Fields  []string
	Pattern string
	Terms   []string
}

// Filter is a store-neutral document query. All clauses must hold.
type Filter struct {
	Equals []Equal
	In     []In
	Ranges []Range
	Text   *Text
}

// IsEmpty reports whether the filter matches every document.
func (f Filter) IsEmpty() bool {
	return len(f.Equals) == 0 && len(f.In) == 0 && len(f.Ranges) == 0 && f.Text == nil
}

// Collection is one category's document collection.
type Collection interface {
	// Find returns all documents matching the filter in store order.
	Find(ctx context.Context, filter Filter) ([]domain.ProductRecord, error)

	// Upsert inserts or replaces documents by ID.
	Upsert(ctx context.Context, records []domain.ProductRecord) error

	// Delete removes a document by ID. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error
}

// Store is a document database holding one collection per category.
type Store interface {
	// Collection returns the named collection.
	Collection(name string) Collection

	// Ping checks whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
