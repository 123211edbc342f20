package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID    string  `json:"id" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

type testBatch struct {
	Records []testRecord `json:"records" validate:"required,min=1,max=2,dive"`
}

type testBounds struct {
	Min  float64 `validate:"gte=0"`
	Max  float64 `validate:"gtefield=Min"`
	Sort string  `validate:"oneof=relevance newest"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(testBatch{Records: []testRecord{{ID: "a", Price: 10}}}))
}

func TestValidate_DiveKeysByIndex(t *testing.T) {
	err := Validate(testBatch{Records: []testRecord{{ID: "a"}, {Price: -1}}})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["Records[1].ID"])
	assert.Equal(t, "must be greater than or equal to 0", fields["Records[1].Price"])
}

func TestValidate_CollectionSize(t *testing.T) {
	err := Validate(testBatch{Records: []testRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must contain at most 2 items", valErr.Fields()["Records"])
}

func TestValidate_FieldComparisonAndOneOf(t *testing.T) {
	err := Validate(testBounds{Min: 500, Max: 100, Sort: "popular"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be greater than or equal to Min", fields["Max"])
	assert.Equal(t, "must be one of: relevance newest", fields["Sort"])
	assert.Contains(t, err.Error(), "field 'Max'")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"records":[{"id":"r1","price":99.5}]}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))

	var dst testBatch
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "r1", dst.Records[0].ID)
}

func TestDecodeAndValidate_UnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"items":[]}`))

	var dst testBatch
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_Malformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{`))

	var dst testBatch
	assert.Error(t, DecodeAndValidate(req, &dst))
}
