package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/domain/entities/importrecord"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
)

func snapshotFixture() *importrecord.Snapshot {
	return &importrecord.Snapshot{
		Parts: []importrecord.SnapshotPart{
			{
				ID:        uuid.New(),
				SKU:       "BP-1001",
				Name:      "Brake Pad",
				Category:  "Brakes",
				Brand:     "Ferodo",
				Price:     decimal.RequireFromString("19.99"),
				Active:    true,
				CreatedAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			},
		},
		VehicleApplications: []importrecord.SnapshotApplication{
			{PartSKU: "BP-1001", Make: "Toyota", Model: "Corolla", YearFrom: 2010, YearTo: 2015},
		},
		CrossReferences: []importrecord.SnapshotCrossReference{
			{PartSKU: "BP-1001", CompetitorBrand: "Bosch", CompetitorSKU: "0986AB1234"},
		},
		NewSKUs: []string{"FL-2002"},
	}
}

func TestPreviewShowsPriceChangeAndNewPart(t *testing.T) {
	snap := snapshotFixture()
	rec := &importrecord.ImportRecord{ID: uuid.New(), Filename: "parts.csv", Snapshot: snap}

	// Current state: the import bumped the price and created FL-2002.
	current := part.New("BP-1001", "Brake Pad")
	current.ID = snap.Parts[0].ID
	current.Category = "Brakes"
	current.Brand = "Ferodo"
	current.Price = decimal.RequireFromString("24.99")

	added := part.New("FL-2002", "Oil Filter")

	parts := newMockPartRepo(current, added)
	records := &mockImportRepo{records: []*importrecord.ImportRecord{rec}}
	svc := NewRollbackService(parts, records, eventbus.NewEventPublisher(logrus.New()))

	preview, err := svc.Preview(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, preview)
	assert.Equal(t, rec.ID, preview.Record.ID)

	raw, err := json.Marshal(preview.Patch)
	require.NoError(t, err)
	patch := string(raw)

	assert.Contains(t, patch, `"replace"`)
	assert.Contains(t, patch, `"19.99"`)
	// Rolling back removes the part the import created.
	assert.Contains(t, patch, `"remove"`)
	assert.Contains(t, patch, "FL-2002")
}

func TestPreviewConsumedSnapshot(t *testing.T) {
	rec := &importrecord.ImportRecord{ID: uuid.New(), Filename: "parts.csv"}
	records := &mockImportRepo{records: []*importrecord.ImportRecord{rec}}
	svc := NewRollbackService(newMockPartRepo(), records, eventbus.NewEventPublisher(logrus.New()))

	_, err := svc.Preview(context.Background(), rec.ID)
	assert.ErrorIs(t, err, ErrRollbackConsumed)
}

func TestRollbackRestoresSnapshotAndDeletesNewParts(t *testing.T) {
	snap := snapshotFixture()
	rec := &importrecord.ImportRecord{ID: uuid.New(), Filename: "parts.csv", Snapshot: snap}

	current := part.New("BP-1001", "Brake Pad")
	current.ID = snap.Parts[0].ID
	current.Price = decimal.RequireFromString("24.99")
	added := part.New("FL-2002", "Oil Filter")

	parts := newMockPartRepo(current, added)
	records := &mockImportRepo{records: []*importrecord.ImportRecord{rec}}
	svc := NewRollbackService(parts, records, eventbus.NewEventPublisher(logrus.New()))
	svc.tx = passthroughTx

	rolled, err := svc.Rollback(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, rolled.ID)

	// The part the import created is gone, the touched one is restored.
	assert.Contains(t, parts.deletedSKUs, "FL-2002")
	_, exists := parts.parts["FL-2002"]
	assert.False(t, exists)
	restored := parts.parts["BP-1001"]
	require.NotNil(t, restored)
	assert.True(t, restored.Price.Equal(decimal.RequireFromString("19.99")))

	// The snapshot is consumed, so a second rollback must refuse.
	assert.Contains(t, records.cleared, rec.ID)
	_, err = svc.Rollback(context.Background(), rec.ID)
	assert.ErrorIs(t, err, ErrRollbackConsumed)
}

func TestRollbackRefusesConsumedSnapshot(t *testing.T) {
	rec := &importrecord.ImportRecord{ID: uuid.New(), Filename: "parts.csv"}
	records := &mockImportRepo{records: []*importrecord.ImportRecord{rec}}
	svc := NewRollbackService(newMockPartRepo(), records, eventbus.NewEventPublisher(logrus.New()))
	svc.tx = passthroughTx

	_, err := svc.Rollback(context.Background(), rec.ID)
	assert.ErrorIs(t, err, ErrRollbackConsumed)
	assert.Empty(t, records.cleared)
}

func TestRollbackRefusesOutOfOrder(t *testing.T) {
	newer := &importrecord.ImportRecord{ID: uuid.New(), Filename: "second.csv", Snapshot: snapshotFixture()}
	older := &importrecord.ImportRecord{ID: uuid.New(), Filename: "first.csv", Snapshot: snapshotFixture()}

	parts := newMockPartRepo()
	records := &mockImportRepo{records: []*importrecord.ImportRecord{newer, older}}
	svc := NewRollbackService(parts, records, eventbus.NewEventPublisher(logrus.New()))
	svc.tx = passthroughTx

	_, err := svc.Rollback(context.Background(), older.ID)
	require.ErrorIs(t, err, ErrRollbackOutOfOrder)
	assert.Empty(t, parts.deletedSKUs)
	assert.Empty(t, records.cleared)

	// Undoing the newest import first is allowed.
	_, err = svc.Rollback(context.Background(), newer.ID)
	require.NoError(t, err)
	assert.Contains(t, records.cleared, newer.ID)
}

func TestRestoreParts(t *testing.T) {
	snap := snapshotFixture()
	parts := newMockPartRepo()
	svc := NewRollbackService(parts, &mockImportRepo{}, eventbus.NewEventPublisher(logrus.New()))

	require.NoError(t, svc.restoreParts(context.Background(), snap))

	restored, ok := parts.parts["BP-1001"]
	require.True(t, ok)
	assert.Equal(t, snap.Parts[0].ID, restored.ID)
	assert.True(t, restored.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, snap.Parts[0].CreatedAt, restored.CreatedAt)

	apps := parts.replacedApps[restored.ID]
	require.Len(t, apps, 1)
	assert.Equal(t, "Corolla", apps[0].Model)

	refs := parts.replacedRefs[restored.ID]
	require.Len(t, refs, 1)
	assert.Equal(t, "0986AB1234", refs[0].CompetitorSKU)
}
