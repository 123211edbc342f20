package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
)

// Store is an in-memory implementation of store.Store. Documents keep their
// insertion order. Thread-safe via sync.RWMutex.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it on first use.
func (s *Store) Collection(name string) store.Collection {
	return s.collection(name)
}

func (s *Store) collection(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{docs: make(map[string]domain.ProductRecord)}
		s.collections[name] = c
	}
	return c
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// LoadFixture reads a JSON object mapping collection names to record arrays
// and upserts every record.
func (s *Store) LoadFixture(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read fixture: %w", err)
	}

	var fixture map[string][]domain.ProductRecord
	if err := json.Unmarshal(data, &fixture); err != nil {
		return 0, fmt.Errorf("decode fixture: %w", err)
	}

	total := 0
	for name, records := range fixture {
		if err := s.collection(name).Upsert(ctx, records); err != nil {
			return total, err
		}
		total += len(records)
	}
	return total, nil
}

// Collection is an ordered in-memory document collection.
type Collection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]domain.ProductRecord
}

// Find returns matching documents in insertion order.
func (c *Collection) Find(_ context.Context, filter store.Filter) ([]domain.ProductRecord, error) {
	var text *regexp.Regexp
	if filter.Text != nil && filter.Text.Pattern != "" {
		re, err := regexp.Compile(filter.Text.Pattern)
		if err != nil {
			return nil, fmt.Errorf("memory find: compile text pattern: %w", err)
		}
		text = re
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]domain.ProductRecord, 0)
	for _, id := range c.order {
		doc := c.docs[id]
		if matches(&doc, filter, text) {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

// Upsert inserts new documents at the end and replaces existing ones in place.
func (c *Collection) Upsert(_ context.Context, records []domain.ProductRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range records {
		id := records[i].ID
		if _, exists := c.docs[id]; !exists {
			c.order = append(c.order, id)
		}
		c.docs[id] = records[i]
	}
	return nil
}

// Delete removes a document by ID.
func (c *Collection) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	return nil
}

func matches(doc *domain.ProductRecord, f store.Filter, text *regexp.Regexp) bool {
	for _, eq := range f.Equals {
		if doc.FieldValue(eq.Field) != eq.Value {
			return false
		}
	}

	for _, in := range f.In {
		s, ok := doc.FieldValue(in.Field).(string)
		if !ok || !slices.ContainsFunc(in.Values, func(v string) bool { return strings.EqualFold(v, s) }) {
			return false
		}
	}

	for _, r := range f.Ranges {
		n, ok := doc.FieldValue(r.Field).(float64)
		if !ok {
			return false
		}
		if r.Min != nil && n < *r.Min {
			return false
		}
		if r.Max != nil && n > *r.Max {
			return false
		}
	}

	if text != nil {
		for _, field := range f.Text.Fields {
			if s, ok := doc.FieldValue(field).(string); ok && text.MatchString(s) {
				return true
			}
		}
		return false
	}

	return true
}
