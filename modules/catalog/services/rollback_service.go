package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/wI2L/jsondiff"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/domain/entities/importrecord"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
	"github.com/partsdesk/partsdesk/pkg/serrors"
)

var (
	// ErrRollbackConsumed means the import was already rolled back or
	// its snapshot aged out of the window.
	ErrRollbackConsumed = serrors.NewError("ROLLBACK_CONSUMED", "this import can no longer be rolled back", "")
	// ErrRollbackOutOfOrder means a newer rollbackable import exists.
	// Imports must be undone newest first or later snapshots would
	// restore state the older rollback just removed.
	ErrRollbackOutOfOrder = serrors.NewError("ROLLBACK_OUT_OF_ORDER", "a newer import must be rolled back first", "")
)

type ImportRolledBackEvent struct {
	ImportID string
	Restored int
	Deleted  int
}

// RollbackPreview describes what a rollback would change, as an RFC
// 6902 patch from the current catalog state to the restored one.
type RollbackPreview struct {
	Record *importrecord.ImportRecord
	Patch  jsondiff.Patch
}

type RollbackService struct {
	parts   part.Repository
	records importrecord.Repository
	bus     eventbus.EventBus
	tx      func(context.Context, func(context.Context) error) error
}

func NewRollbackService(parts part.Repository, records importrecord.Repository, bus eventbus.EventBus) *RollbackService {
	return &RollbackService{
		parts:   parts,
		records: records,
		bus:     bus,
		tx:      composables.InTx,
	}
}

// ListAvailable returns the imports that can currently be rolled
// back, newest first. Only the most recent snapshots inside the
// configured window are eligible.
func (s *RollbackService) ListAvailable(ctx context.Context) ([]*importrecord.ImportRecord, error) {
	conf := configuration.Use()
	return s.records.ListRollbackable(ctx, conf.Import.RollbackWindow)
}

// Rollback restores the catalog to its state before the given import.
// Only the newest rollbackable import may be undone. The restore,
// the deletion of rows the import created and the snapshot
// consumption run in one transaction.
func (s *RollbackService) Rollback(ctx context.Context, id uuid.UUID) (*importrecord.ImportRecord, error) {
	var rec *importrecord.ImportRecord
	var snap *importrecord.Snapshot
	err := s.tx(ctx, func(txCtx context.Context) error {
		var err error
		rec, err = s.records.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if rec.Snapshot == nil {
			return ErrRollbackConsumed
		}
		snap = rec.Snapshot

		newest, err := s.records.ListRollbackable(txCtx, 1)
		if err != nil {
			return err
		}
		if len(newest) == 0 || newest[0].ID != rec.ID {
			return ErrRollbackOutOfOrder
		}

		if err := s.parts.DeleteBySKUs(txCtx, snap.NewSKUs); err != nil {
			return errors.Wrap(err, "delete imported parts")
		}
		if err := s.restoreParts(txCtx, snap); err != nil {
			return err
		}
		return s.records.ClearSnapshot(txCtx, rec.ID)
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(&ImportRolledBackEvent{
		ImportID: rec.ID.String(),
		Restored: len(snap.Parts),
		Deleted:  len(snap.NewSKUs),
	})
	return rec, nil
}

// Preview diffs the current state of the affected parts against the
// snapshot without changing anything.
func (s *RollbackService) Preview(ctx context.Context, id uuid.UUID) (*RollbackPreview, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Snapshot == nil {
		return nil, ErrRollbackConsumed
	}

	skus := make([]string, 0, len(rec.Snapshot.Parts)+len(rec.Snapshot.NewSKUs))
	for _, p := range rec.Snapshot.Parts {
		skus = append(skus, p.SKU)
	}
	skus = append(skus, rec.Snapshot.NewSKUs...)

	parts, err := s.parts.GetBySKUs(ctx, skus)
	if err != nil {
		return nil, err
	}

	patch, err := jsondiff.Compare(currentDoc(parts), snapshotDoc(rec.Snapshot))
	if err != nil {
		return nil, errors.Wrap(err, "diff snapshot")
	}
	return &RollbackPreview{Record: rec, Patch: patch}, nil
}

func (s *RollbackService) restoreParts(ctx context.Context, snap *importrecord.Snapshot) error {
	appsBySKU := make(map[string][]*part.VehicleApplication)
	for _, a := range snap.VehicleApplications {
		appsBySKU[a.PartSKU] = append(appsBySKU[a.PartSKU], &part.VehicleApplication{
			Make:     a.Make,
			Model:    a.Model,
			YearFrom: a.YearFrom,
			YearTo:   a.YearTo,
			Engine:   a.Engine,
		})
	}
	refsBySKU := make(map[string][]*part.CrossReference)
	for _, ref := range snap.CrossReferences {
		refsBySKU[ref.PartSKU] = append(refsBySKU[ref.PartSKU], &part.CrossReference{
			CompetitorBrand: ref.CompetitorBrand,
			CompetitorSKU:   ref.CompetitorSKU,
		})
	}

	for _, sp := range snap.Parts {
		p := &part.Part{
			ID:          sp.ID,
			SKU:         sp.SKU,
			Name:        sp.Name,
			Description: sp.Description,
			Category:    sp.Category,
			Brand:       sp.Brand,
			Price:       sp.Price,
			Active:      sp.Active,
			CreatedAt:   sp.CreatedAt,
		}
		if _, err := s.parts.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "restore %s", sp.SKU)
		}
		if err := s.parts.ReplaceApplications(ctx, p.ID, appsBySKU[sp.SKU]); err != nil {
			return errors.Wrapf(err, "restore applications for %s", sp.SKU)
		}
		if err := s.parts.ReplaceCrossReferences(ctx, p.ID, refsBySKU[sp.SKU]); err != nil {
			return errors.Wrapf(err, "restore cross references for %s", sp.SKU)
		}
	}
	return nil
}

type previewPart struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Price       string `json:"price"`
	Active      bool   `json:"active"`
}

// currentDoc and snapshotDoc shape both sides of the diff the same
// way, keyed by SKU, so the patch paths read /BP-1001/price.
func currentDoc(parts []*part.Part) map[string]previewPart {
	doc := make(map[string]previewPart, len(parts))
	for _, p := range parts {
		doc[p.SKU] = previewPart{
			SKU:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Brand:       p.Brand,
			Price:       p.Price.StringFixed(2),
			Active:      p.Active,
		}
	}
	return doc
}

func snapshotDoc(snap *importrecord.Snapshot) map[string]previewPart {
	doc := make(map[string]previewPart, len(snap.Parts))
	for _, sp := range snap.Parts {
		doc[sp.SKU] = previewPart{
			SKU:         sp.SKU,
			Name:        sp.Name,
			Description: sp.Description,
			Category:    sp.Category,
			Brand:       sp.Brand,
			Price:       sp.Price.StringFixed(2),
			Active:      sp.Active,
		}
	}
	return doc
}
