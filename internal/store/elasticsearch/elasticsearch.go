package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/database"
)

// defaultPageSize is the number of hits fetched per search request. Find
// pages through larger results with search_after, so no window limit
// applies.
const defaultPageSize = 1000

// Config holds Elasticsearch connection configuration.
type Config struct {
	Addresses   []string `env:"ELASTICSEARCH_ADDRESSES" envSeparator:"," envDefault:"http://localhost:9200"`
	IndexPrefix string   `env:"ELASTICSEARCH_INDEX_PREFIX" envDefault:"jewelry"`
}

// Store implements store.Store with one index per collection named
// <prefix>_<collection>.
type Store struct {
	client *elasticsearch.Client
	prefix string
}

// New creates an Elasticsearch-backed store.
func New(cfg Config) (*Store, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.Addresses})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}
	return &Store{client: client, prefix: cfg.IndexPrefix}, nil
}

// IndexName returns the index holding collection name.
func (s *Store) IndexName(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "_" + name
}

// EnsureIndices creates the index of every named collection that does not
// exist yet.
func (s *Store) EnsureIndices(ctx context.Context, names ...string) error {
	for _, name := range names {
		index := s.IndexName(name)

		res, err := s.client.Indices.Exists([]string{index}, s.client.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("elasticsearch: check index %s: %w", index, err)
		}
		_ = res.Body.Close()
		if res.StatusCode == http.StatusOK {
			continue
		}

		res, err = s.client.Indices.Create(index,
			s.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
			s.client.Indices.Create.WithContext(ctx),
		)
		if err != nil {
			return fmt.Errorf("elasticsearch: create index %s: %w", index, err)
		}
		err = responseError("create index "+index, res)
		_ = res.Body.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Collection returns the collection stored in the named index.
func (s *Store) Collection(name string) store.Collection {
	return &Collection{client: s.client, index: s.IndexName(name), pageSize: defaultPageSize}
}

// Ping checks whether the cluster is reachable.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	return responseError("ping", res)
}

// Close is a no-op; the client holds no resources beyond its HTTP transport.
func (s *Store) Close() error { return nil }

// Collection is one category index. Documents are returned in creation order.
type Collection struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source domain.ProductRecord `json:"_source"`
			Sort   []any                `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID    string `json:"_id"`
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// Find returns every document matching the filter, fetching pages of
// pageSize hits keyed on the (createdAt, id) sort.
func (c *Collection) Find(ctx context.Context, filter store.Filter) (records []domain.ProductRecord, err error) {
	first, err := json.Marshal(searchBody(filter, c.pageSize, nil))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch find %s: encode query: %w", c.index, err)
	}

	ctx, end := database.TraceOperation(ctx, database.SystemElasticsearch, "search "+c.index, string(first))
	defer func() { end(err) }()

	records = make([]domain.ProductRecord, 0)
	body := first
	for {
		sr, err := c.search(ctx, body)
		if err != nil {
			return nil, err
		}
		hits := sr.Hits.Hits
		for _, hit := range hits {
			records = append(records, hit.Source)
		}
		if len(hits) < c.pageSize || len(hits[len(hits)-1].Sort) == 0 {
			return records, nil
		}

		body, err = json.Marshal(searchBody(filter, c.pageSize, hits[len(hits)-1].Sort))
		if err != nil {
			return nil, fmt.Errorf("elasticsearch find %s: encode query: %w", c.index, err)
		}
	}
}

func (c *Collection) search(ctx context.Context, body []byte) (*searchResponse, error) {
	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(c.index),
		c.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch find %s: %w", c.index, err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError("find "+c.index, res); err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("elasticsearch find %s: decode response: %w", c.index, err)
	}
	return &sr, nil
}

// Upsert indexes documents with the bulk API and refreshes the index so
// they are searchable on return.
func (c *Collection) Upsert(ctx context.Context, records []domain.ProductRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range records {
		action := map[string]any{"index": map[string]any{"_index": c.index, "_id": records[i].ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch upsert %s: encode action: %w", c.index, err)
		}
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("elasticsearch upsert %s: encode document: %w", c.index, err)
		}
	}

	ctx, end := database.TraceOperation(ctx, database.SystemElasticsearch, "bulk "+c.index, "")
	defer func() { end(err) }()

	res, err := c.client.Bulk(bytes.NewReader(buf.Bytes()),
		c.client.Bulk.WithContext(ctx),
		c.client.Bulk.WithIndex(c.index),
		c.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch upsert %s: %w", c.index, err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError("upsert "+c.index, res); err != nil {
		return err
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return fmt.Errorf("elasticsearch upsert %s: decode response: %w", c.index, err)
	}
	if br.Errors {
		var msgs []string
		for _, item := range br.Items {
			for _, result := range item {
				if result.Error.Type != "" {
					msgs = append(msgs, fmt.Sprintf("id=%s: %s: %s", result.ID, result.Error.Type, result.Error.Reason))
				}
			}
		}
		return fmt.Errorf("elasticsearch upsert %s: partial errors: %s", c.index, strings.Join(msgs, "; "))
	}
	return nil
}

// Delete removes a document by ID. A missing document is not an error.
func (c *Collection) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceOperation(ctx, database.SystemElasticsearch, "delete "+c.index, id)
	defer func() { end(err) }()

	res, err := c.client.Delete(c.index, id,
		c.client.Delete.WithContext(ctx),
		c.client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete %s: %w", c.index, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError("delete "+c.index, res)
}

// responseError converts an error response into a Go error.
func responseError(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error.Type != "" {
		return fmt.Errorf("elasticsearch %s: %s: %s", op, er.Error.Type, er.Error.Reason)
	}
	return fmt.Errorf("elasticsearch %s: unexpected status %s", op, res.Status())
}

// searchBody builds the search request for a filter: every clause goes into
// a bool filter context, so no relevance is computed.
func searchBody(f store.Filter, size int, after []any) map[string]any {
	body := map[string]any{
		"size":             size,
		"track_total_hits": false,
		"query":            map[string]any{"bool": boolQuery(f)},
		"sort": []any{
			map[string]any{domain.FieldCreatedAt: map[string]any{"order": "asc", "unmapped_type": "date"}},
			map[string]any{domain.FieldID: "asc"},
		},
	}
	if len(after) > 0 {
		body["search_after"] = after
	}
	return body
}

func boolQuery(f store.Filter) map[string]any {
	filters := make([]any, 0, len(f.Equals)+len(f.In)+len(f.Ranges)+1)

	for _, eq := range f.Equals {
		filters = append(filters, map[string]any{"term": map[string]any{eq.Field: eq.Value}})
	}

	for _, in := range f.In {
		should := make([]any, 0, len(in.Values))
		for _, v := range in.Values {
			should = append(should, map[string]any{
				"term": map[string]any{in.Field: map[string]any{"value": v, "case_insensitive": true}},
			})
		}
		filters = append(filters, map[string]any{
			"bool": map[string]any{"should": should, "minimum_should_match": 1},
		})
	}

	for _, r := range f.Ranges {
		bounds := map[string]any{}
		if r.Min != nil {
			bounds["gte"] = *r.Min
		}
		if r.Max != nil {
			bounds["lte"] = *r.Max
		}
		if len(bounds) > 0 {
			filters = append(filters, map[string]any{"range": map[string]any{r.Field: bounds}})
		}
	}

	if f.Text != nil && len(f.Text.Terms) > 0 && len(f.Text.Fields) > 0 {
		should := make([]any, 0, len(f.Text.Fields)*len(f.Text.Terms))
		for _, field := range f.Text.Fields {
			for _, term := range f.Text.Terms {
				should = append(should, map[string]any{
					"wildcard": map[string]any{field: map[string]any{
						"value":            "*" + escapeWildcard(term) + "*",
						"case_insensitive": true,
					}},
				})
			}
		}
		filters = append(filters, map[string]any{
			"bool": map[string]any{"should": should, "minimum_should_match": 1},
		})
	}

	return map[string]any{"filter": filters}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
