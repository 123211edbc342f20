package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
)

// recordedRequest captures a request made to the fake cluster.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeCluster is a minimal Elasticsearch HTTP endpoint.
type fakeCluster struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(r *http.Request) (int, string)
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
	f.mu.Unlock()

	status, resp := http.StatusOK, `{}`
	if f.respond != nil {
		status, resp = f.respond(r)
	}
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp)
}

func (f *fakeCluster) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStore(t *testing.T, fc *fakeCluster) *Store {
	t.Helper()
	srv := httptest.NewServer(fc)
	t.Cleanup(srv.Close)

	s, err := New(Config{Addresses: []string{srv.URL}, IndexPrefix: "jewelry"})
	require.NoError(t, err)
	return s
}

func ptr(f float64) *float64 { return &f }

// --- Query Translation Tests ---

func TestBoolQuery_Clauses(t *testing.T) {
	q := boolQuery(store.Filter{
		Equals: []store.Equal{{Field: domain.FieldIsActive, Value: true}},
		In:     []store.In{{Field: domain.FieldShape, Values: []string{"Oval"}}},
		Ranges: []store.Range{{Field: domain.FieldPrice, Min: ptr(1), Max: ptr(2)}},
		Text:   &store.Text{Fields: []string{domain.FieldTitle}, Terms: []string{"halo", "a*b"}},
	})

	data, err := json.Marshal(q)
	require.NoError(t, err)

	assert.JSONEq(t, `{"filter":[
		{"term":{"isActive":true}},
		{"bool":{"minimum_should_match":1,"should":[
			{"term":{"shape":{"value":"Oval","case_insensitive":true}}}
		]}},
		{"range":{"price":{"gte":1,"lte":2}}},
		{"bool":{"minimum_should_match":1,"should":[
			{"wildcard":{"title":{"value":"*halo*","case_insensitive":true}}},
			{"wildcard":{"title":{"value":"*a\\*b*","case_insensitive":true}}}
		]}}
	]}`, string(data))
}

func TestBoolQuery_Empty(t *testing.T) {
	data, err := json.Marshal(boolQuery(store.Filter{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"filter":[]}`, string(data))
}

func TestSearchBody_SortsByCreation(t *testing.T) {
	body := searchBody(store.Filter{}, defaultPageSize, nil)
	assert.Equal(t, defaultPageSize, body["size"])
	assert.NotContains(t, body, "search_after")
	sort, ok := body["sort"].([]any)
	require.True(t, ok)
	assert.Len(t, sort, 2)

	next := searchBody(store.Filter{}, defaultPageSize, []any{1700000000000.0, "d-9"})
	assert.Equal(t, []any{1700000000000.0, "d-9"}, next["search_after"])
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "jewelry_diamonds", (&Store{prefix: "jewelry"}).IndexName("diamonds"))
	assert.Equal(t, "diamonds", (&Store{}).IndexName("diamonds"))
}

// --- Collection Tests ---

func TestCollection_Find(t *testing.T) {
	fc := &fakeCluster{respond: func(*http.Request) (int, string) {
		return http.StatusOK, `{"hits":{"hits":[
			{"_source":{"id":"d-1","shape":"Round","carat":1.5,"price":5000,"isAvailable":true}},
			{"_source":{"id":"d-2","shape":"Oval","carat":0.9,"price":2100,"isAvailable":true}}
		]}}`
	}}
	s := newTestStore(t, fc)

	recs, err := s.Collection("diamonds").Find(context.Background(), store.Filter{
		In: []store.In{{Field: domain.FieldShape, Values: []string{"Round", "Oval"}}},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "d-1", recs[0].ID)
	assert.Equal(t, 0.9, recs[1].Carat)

	req := fc.last()
	assert.Equal(t, "/jewelry_diamonds/_search", req.Path)
	assert.Contains(t, req.Body, `{"term":{"shape":{"case_insensitive":true,"value":"Round"}}}`)
	assert.Contains(t, req.Body, `{"term":{"shape":{"case_insensitive":true,"value":"Oval"}}}`)
}

func TestCollection_FindPagesPastOneRequest(t *testing.T) {
	fc := &fakeCluster{respond: func(r *http.Request) (int, string) {
		body, _ := io.ReadAll(r.Body)
		switch {
		case !strings.Contains(string(body), "search_after"):
			return http.StatusOK, `{"hits":{"hits":[
				{"_source":{"id":"d-1"},"sort":[1,"d-1"]},
				{"_source":{"id":"d-2"},"sort":[2,"d-2"]}
			]}}`
		case strings.Contains(string(body), `"search_after":[2,"d-2"]`):
			return http.StatusOK, `{"hits":{"hits":[
				{"_source":{"id":"d-3"},"sort":[3,"d-3"]},
				{"_source":{"id":"d-4"},"sort":[4,"d-4"]}
			]}}`
		default:
			return http.StatusOK, `{"hits":{"hits":[
				{"_source":{"id":"d-5"},"sort":[5,"d-5"]}
			]}}`
		}
	}}
	s := newTestStore(t, fc)
	c, ok := s.Collection("diamonds").(*Collection)
	require.True(t, ok)
	c.pageSize = 2

	recs, err := c.Find(context.Background(), store.Filter{})
	require.NoError(t, err)

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"d-1", "d-2", "d-3", "d-4", "d-5"}, ids)
	assert.Contains(t, fc.last().Body, `"search_after":[4,"d-4"]`)
}

func TestCollection_FindError(t *testing.T) {
	fc := &fakeCluster{respond: func(*http.Request) (int, string) {
		return http.StatusNotFound, `{"error":{"type":"index_not_found_exception","reason":"no such index"},"status":404}`
	}}
	s := newTestStore(t, fc)

	_, err := s.Collection("gemstones").Find(context.Background(), store.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index_not_found_exception")
}

func TestCollection_Upsert(t *testing.T) {
	fc := &fakeCluster{respond: func(*http.Request) (int, string) {
		return http.StatusOK, `{"errors":false,"items":[]}`
	}}
	s := newTestStore(t, fc)

	err := s.Collection("earrings").Upsert(context.Background(), []domain.ProductRecord{
		{ID: "e-1", Title: "Studs", IsAvailable: true, Price: 200},
		{ID: "e-2", Title: "Hoops", IsAvailable: true, Price: 150},
	})
	require.NoError(t, err)

	req := fc.last()
	assert.Equal(t, "/jewelry_earrings/_bulk", req.Path)
	assert.Contains(t, req.Query, "refresh=true")
	lines := strings.Split(strings.TrimSpace(req.Body), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"index":{"_index":"jewelry_earrings","_id":"e-1"}}`, lines[0])
	assert.Contains(t, lines[3], `"title":"Hoops"`)
}

func TestCollection_UpsertPartialErrors(t *testing.T) {
	fc := &fakeCluster{respond: func(*http.Request) (int, string) {
		return http.StatusOK, `{"errors":true,"items":[
			{"index":{"_id":"e-1","status":201}},
			{"index":{"_id":"e-2","status":400,"error":{"type":"mapper_parsing_exception","reason":"bad price"}}}
		]}`
	}}
	s := newTestStore(t, fc)

	err := s.Collection("earrings").Upsert(context.Background(), []domain.ProductRecord{{ID: "e-1"}, {ID: "e-2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id=e-2: mapper_parsing_exception: bad price")
	assert.NotContains(t, err.Error(), "id=e-1")
}

func TestCollection_DeleteMissingIsNotError(t *testing.T) {
	fc := &fakeCluster{respond: func(*http.Request) (int, string) {
		return http.StatusNotFound, `{"result":"not_found"}`
	}}
	s := newTestStore(t, fc)

	require.NoError(t, s.Collection("necklaces").Delete(context.Background(), "n-9"))
	assert.Equal(t, http.MethodDelete, fc.last().Method)
	assert.Equal(t, "/jewelry_necklaces/_doc/n-9", fc.last().Path)
}

func TestStore_EnsureIndicesCreatesMissing(t *testing.T) {
	fc := &fakeCluster{respond: func(r *http.Request) (int, string) {
		if r.Method == http.MethodHead {
			if strings.Contains(r.URL.Path, "settings") {
				return http.StatusOK, ``
			}
			return http.StatusNotFound, ``
		}
		return http.StatusOK, `{"acknowledged":true}`
	}}
	s := newTestStore(t, fc)

	require.NoError(t, s.EnsureIndices(context.Background(), "settings", "bracelets"))

	var created []string
	for _, r := range fc.requests {
		if r.Method == http.MethodPut {
			created = append(created, r.Path)
			assert.Contains(t, r.Body, `"dynamic": false`)
		}
	}
	assert.Equal(t, []string{"/jewelry_bracelets"}, created)
}

func TestStore_Ping(t *testing.T) {
	fc := &fakeCluster{}
	s := newTestStore(t, fc)
	require.NoError(t, s.Ping(context.Background()))
}
