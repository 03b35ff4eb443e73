package dtos

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/pkg/composables"
)

func TestPartListQueryDecoding(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/admin/parts?brand=Bosch&category=Brakes&search=pad&active=true&limit=10&offset=20", nil)

	q, err := composables.UseQuery(&PartListQuery{}, r)
	require.NoError(t, err)

	assert.Equal(t, "Bosch", q.Brand)
	assert.Equal(t, "Brakes", q.Category)
	assert.Equal(t, "pad", q.Search)
	require.NotNil(t, q.Active)
	assert.True(t, *q.Active)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 20, q.Offset)
}

func TestPartListQueryDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/admin/parts", nil)

	q, err := composables.UseQuery(&PartListQuery{}, r)
	require.NoError(t, err)

	assert.Nil(t, q.Active)
	assert.Zero(t, q.Limit)
	assert.Zero(t, q.Offset)
}

func TestCatalogSearchQueryDecoding(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/catalog/parts?q=brake&make=Toyota&model=Corolla&year=2012", nil)

	q, err := composables.UseQuery(&CatalogSearchQuery{}, r)
	require.NoError(t, err)

	assert.Equal(t, "brake", q.Term)
	assert.Equal(t, "Toyota", q.Make)
	assert.Equal(t, "Corolla", q.Model)
	assert.Equal(t, 2012, q.Year)
}

func TestCatalogSearchQueryRejectsBadNumbers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/catalog/parts?year=twelve", nil)

	_, err := composables.UseQuery(&CatalogSearchQuery{}, r)
	assert.Error(t, err)
}
