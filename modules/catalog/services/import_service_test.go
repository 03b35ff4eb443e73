package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
)

func newImportService(parts part.Repository) *ImportService {
	return NewImportService(parts, &mockImportRepo{}, eventbus.NewEventPublisher(logrus.New()))
}

func TestImportRejectsUnsupportedFormat(t *testing.T) {
	svc := newImportService(newMockPartRepo())

	_, err := svc.Import(context.Background(), "parts.pdf", []byte("whatever"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportRejectsEmptyFile(t *testing.T) {
	svc := newImportService(newMockPartRepo())

	_, err := svc.Import(context.Background(), "parts.csv", []byte("sku,name\n"), nil)
	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestImportRejectsDuplicateSKU(t *testing.T) {
	svc := newImportService(newMockPartRepo())

	input := "sku,name\nBP-1,Brake Pad\nbp-1,Brake Pad Again\n"
	_, err := svc.Import(context.Background(), "parts.csv", []byte(input), nil)

	var dup *DuplicateSKUError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "BP-1", dup.SKU)
}

func TestImportPropagatesParseErrors(t *testing.T) {
	svc := newImportService(newMockPartRepo())

	_, err := svc.Import(context.Background(), "parts.csv", []byte("sku,name,price\nBP-1,Brake Pad,abc\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid price "abc"`)
}

func TestImportUpsertsRowsAndRecordsHistory(t *testing.T) {
	existing := part.New("BP-1001", "Brake Pad")
	existing.Price = decimal.RequireFromString("19.99")

	parts := newMockPartRepo(existing)
	records := &mockImportRepo{}
	svc := NewImportService(parts, records, eventbus.NewEventPublisher(logrus.New()))
	svc.tx = passthroughTx

	input := "sku,name,price\nBP-1001,Brake Pad,24.99\nFL-2002,Oil Filter,9.99\n"
	by := uuid.New()
	rec, err := svc.Import(context.Background(), "parts.csv", []byte(input), &by)
	require.NoError(t, err)

	assert.Equal(t, "parts.csv", rec.Filename)
	assert.Equal(t, 2, rec.RowCount)
	assert.Equal(t, 1, rec.CreatedCount)
	assert.Equal(t, 1, rec.UpdatedCount)
	assert.Len(t, rec.Checksum, 64)
	require.NotNil(t, rec.ImportedBy)
	assert.Equal(t, by, *rec.ImportedBy)

	// The snapshot captures the pre-import price and the new SKU.
	require.NotNil(t, rec.Snapshot)
	require.Len(t, rec.Snapshot.Parts, 1)
	assert.True(t, rec.Snapshot.Parts[0].Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, []string{"FL-2002"}, rec.Snapshot.NewSKUs)

	assert.Equal(t, []string{"BP-1001", "FL-2002"}, parts.upserted)
	assert.True(t, parts.parts["BP-1001"].Price.Equal(decimal.RequireFromString("24.99")))

	require.Len(t, records.records, 1)
	assert.Equal(t, rec.ID, records.records[0].ID)
}

func TestBuildSnapshot(t *testing.T) {
	existing := part.New("BP-1001", "Brake Pad")
	existing.ID = uuid.New()
	existing.Brand = "Ferodo"
	existing.Price = decimal.RequireFromString("24.99")
	existing.CreatedAt = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	existing.Applications = []*part.VehicleApplication{
		{Make: "Toyota", Model: "Corolla", YearFrom: 2010, YearTo: 2015, Engine: "1.8L"},
	}
	existing.CrossReferences = []*part.CrossReference{
		{CompetitorBrand: "Bosch", CompetitorSKU: "0986AB1234"},
	}

	snap := buildSnapshot([]*part.Part{existing}, []string{"BP-1001", "FL-2002", "FL-2003"})

	require.Len(t, snap.Parts, 1)
	assert.Equal(t, "BP-1001", snap.Parts[0].SKU)
	assert.Equal(t, "Ferodo", snap.Parts[0].Brand)
	assert.True(t, snap.Parts[0].Price.Equal(existing.Price))

	require.Len(t, snap.VehicleApplications, 1)
	assert.Equal(t, "BP-1001", snap.VehicleApplications[0].PartSKU)
	assert.Equal(t, "Corolla", snap.VehicleApplications[0].Model)

	require.Len(t, snap.CrossReferences, 1)
	assert.Equal(t, "0986AB1234", snap.CrossReferences[0].CompetitorSKU)

	assert.Equal(t, []string{"FL-2002", "FL-2003"}, snap.NewSKUs)
}

func TestBuildSnapshotAllNew(t *testing.T) {
	snap := buildSnapshot(nil, []string{"A-1", "B-2"})

	assert.Empty(t, snap.Parts)
	assert.Equal(t, []string{"A-1", "B-2"}, snap.NewSKUs)
}
