package query

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSearch(t *testing.T) (*PartSearch, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPartSearch(sqlx.NewDb(db, "postgres")), mock
}

func TestPartSearch(t *testing.T) {
	search, mock := newMockSearch(t)

	rows := sqlmock.NewRows([]string{"id", "sku", "name", "category", "brand", "price", "primary_image_url"}).
		AddRow("0b2d3f1e-0000-0000-0000-000000000001", "BP-1001", "Brake Pad", "Brakes", "Ferodo", "24.99", "https://cdn.example.com/bp-1001.jpg").
		AddRow("0b2d3f1e-0000-0000-0000-000000000002", "BP-1002", "Brake Disc", "Brakes", "Ferodo", "54.00", nil)

	mock.ExpectQuery(`SELECT p\.id, p\.sku, p\.name`).
		WithArgs("brake", "", "", 0, 25, 0).
		WillReturnRows(rows)

	hits, err := search.Search(context.Background(), SearchParams{Term: "brake", Limit: 25})
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "BP-1001", hits[0].SKU)
	assert.True(t, hits[0].Price.Equal(decimal.RequireFromString("24.99")))
	assert.True(t, hits[0].PrimaryImageURL.Valid)
	assert.False(t, hits[1].PrimaryImageURL.Valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartSearchByVehicle(t *testing.T) {
	search, mock := newMockSearch(t)

	mock.ExpectQuery(`SELECT p\.id, p\.sku, p\.name`).
		WithArgs("", "Toyota", "Corolla", 2012, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "name", "category", "brand", "price", "primary_image_url"}))

	hits, err := search.Search(context.Background(), SearchParams{Make: "Toyota", Model: "Corolla", Year: 2012, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, hits)

	assert.NoError(t, mock.ExpectationsWereMet())
}
