package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/domain/entities/importrecord"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence"
)

// passthroughTx stands in for the pool-backed transaction runner so
// service closures can execute against the in-memory repositories.
func passthroughTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type mockPartRepo struct {
	parts map[string]*part.Part

	upserted     []string
	deletedSKUs  []string
	replacedApps map[uuid.UUID][]*part.VehicleApplication
	replacedRefs map[uuid.UUID][]*part.CrossReference
}

func newMockPartRepo(parts ...*part.Part) *mockPartRepo {
	m := &mockPartRepo{
		parts:        map[string]*part.Part{},
		replacedApps: map[uuid.UUID][]*part.VehicleApplication{},
		replacedRefs: map[uuid.UUID][]*part.CrossReference{},
	}
	for _, p := range parts {
		m.parts[p.SKU] = p
	}
	return m
}

func (m *mockPartRepo) GetByID(_ context.Context, id uuid.UUID) (*part.Part, error) {
	for _, p := range m.parts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, persistence.ErrPartNotFound
}

func (m *mockPartRepo) GetBySKU(_ context.Context, sku string) (*part.Part, error) {
	if p, ok := m.parts[sku]; ok {
		return p, nil
	}
	return nil, persistence.ErrPartNotFound
}

func (m *mockPartRepo) GetBySKUs(_ context.Context, skus []string) ([]*part.Part, error) {
	var out []*part.Part
	for _, sku := range skus {
		if p, ok := m.parts[sku]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPartRepo) List(_ context.Context, _ *part.FindParams) ([]*part.Part, error) {
	var out []*part.Part
	for _, p := range m.parts {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPartRepo) Count(_ context.Context, _ *part.FindParams) (int64, error) {
	return int64(len(m.parts)), nil
}

func (m *mockPartRepo) Create(_ context.Context, p *part.Part) error {
	m.parts[p.SKU] = p
	return nil
}

func (m *mockPartRepo) Update(_ context.Context, p *part.Part) error {
	m.parts[p.SKU] = p
	return nil
}

func (m *mockPartRepo) Delete(_ context.Context, id uuid.UUID) error {
	for sku, p := range m.parts {
		if p.ID == id {
			delete(m.parts, sku)
			return nil
		}
	}
	return persistence.ErrPartNotFound
}

func (m *mockPartRepo) Upsert(_ context.Context, p *part.Part) (bool, error) {
	_, existed := m.parts[p.SKU]
	m.parts[p.SKU] = p
	m.upserted = append(m.upserted, p.SKU)
	return !existed, nil
}

func (m *mockPartRepo) DeleteBySKUs(_ context.Context, skus []string) error {
	for _, sku := range skus {
		delete(m.parts, sku)
	}
	m.deletedSKUs = append(m.deletedSKUs, skus...)
	return nil
}

func (m *mockPartRepo) ReplaceApplications(_ context.Context, partID uuid.UUID, apps []*part.VehicleApplication) error {
	m.replacedApps[partID] = apps
	return nil
}

func (m *mockPartRepo) ReplaceCrossReferences(_ context.Context, partID uuid.UUID, refs []*part.CrossReference) error {
	m.replacedRefs[partID] = refs
	return nil
}

type mockImportRepo struct {
	records []*importrecord.ImportRecord
	cleared []uuid.UUID
}

func (m *mockImportRepo) GetByID(_ context.Context, id uuid.UUID) (*importrecord.ImportRecord, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, persistence.ErrImportNotFound
}

func (m *mockImportRepo) List(_ context.Context, _ *importrecord.FindParams) ([]*importrecord.ImportRecord, error) {
	return m.records, nil
}

func (m *mockImportRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.records)), nil
}

func (m *mockImportRepo) Create(_ context.Context, rec *importrecord.ImportRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockImportRepo) ListRollbackable(_ context.Context, limit int) ([]*importrecord.ImportRecord, error) {
	var out []*importrecord.ImportRecord
	// records are kept newest first in tests
	for _, rec := range m.records {
		if rec.Snapshot != nil {
			out = append(out, rec)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockImportRepo) ClearSnapshot(_ context.Context, id uuid.UUID) error {
	for _, rec := range m.records {
		if rec.ID == id {
			rec.Snapshot = nil
			m.cleared = append(m.cleared, id)
			return nil
		}
	}
	return persistence.ErrImportNotFound
}
