package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/domain/entities/importrecord"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/importfile"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
	"github.com/partsdesk/partsdesk/pkg/serrors"
)

var (
	ErrUnsupportedFormat = serrors.NewError("UNSUPPORTED_FORMAT", "only .csv and .xlsx files are accepted", "")
	ErrTooManyRows       = serrors.NewError("TOO_MANY_ROWS", "the file exceeds the row limit", "")
	ErrEmptyImport       = serrors.NewError("EMPTY_IMPORT", "the file contains no data rows", "")
)

// DuplicateSKUError reports a SKU that appears more than once in the
// same file. Repeated rows would make the pre-import snapshot
// ambiguous, so the whole file is rejected.
type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("duplicate sku %q in import file", e.SKU)
}

type ImportCompletedEvent struct {
	ImportID string
	Created  int
	Updated  int
}

type ImportService struct {
	parts   part.Repository
	records importrecord.Repository
	bus     eventbus.EventBus
	tx      func(context.Context, func(context.Context) error) error
}

func NewImportService(parts part.Repository, records importrecord.Repository, bus eventbus.EventBus) *ImportService {
	return &ImportService{
		parts:   parts,
		records: records,
		bus:     bus,
		tx:      composables.InTx,
	}
}

// Import parses the uploaded file, captures a snapshot of every part
// it is about to touch, then upserts all rows. Everything after
// parsing runs in a single transaction, so a mid-file failure leaves
// the catalog untouched and writes no history row.
func (s *ImportService) Import(ctx context.Context, filename string, data []byte, importedBy *uuid.UUID) (*importrecord.ImportRecord, error) {
	conf := configuration.Use()

	rows, err := parseByExtension(filename, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}
	if len(rows) > conf.Import.MaxRows {
		return nil, ErrTooManyRows
	}

	skus := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if seen[row.SKU] {
			return nil, &DuplicateSKUError{SKU: row.SKU}
		}
		seen[row.SKU] = true
		skus = append(skus, row.SKU)
	}

	sum := sha256.Sum256(data)
	rec := &importrecord.ImportRecord{
		ID:         uuid.New(),
		Filename:   filepath.Base(filename),
		FileSize:   int64(len(data)),
		Checksum:   hex.EncodeToString(sum[:]),
		RowCount:   len(rows),
		ImportedBy: importedBy,
	}

	err = s.tx(ctx, func(txCtx context.Context) error {
		existing, err := s.parts.GetBySKUs(txCtx, skus)
		if err != nil {
			return err
		}
		rec.Snapshot = buildSnapshot(existing, skus)

		for _, row := range rows {
			p := &part.Part{
				ID:          uuid.New(),
				SKU:         row.SKU,
				Name:        row.Name,
				Description: row.Description,
				Category:    row.Category,
				Brand:       row.Brand,
				Price:       row.Price,
				Active:      true,
			}
			created, err := s.parts.Upsert(txCtx, p)
			if err != nil {
				return errors.Wrapf(err, "upsert %s", row.SKU)
			}
			if created {
				rec.CreatedCount++
			} else {
				rec.UpdatedCount++
			}

			if err := s.parts.ReplaceApplications(txCtx, p.ID, toApplications(row.Applications)); err != nil {
				return errors.Wrapf(err, "applications for %s", row.SKU)
			}
			if err := s.parts.ReplaceCrossReferences(txCtx, p.ID, toCrossReferences(row.CrossReferences)); err != nil {
				return errors.Wrapf(err, "cross references for %s", row.SKU)
			}
		}

		return s.records.Create(txCtx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(&ImportCompletedEvent{
		ImportID: rec.ID.String(),
		Created:  rec.CreatedCount,
		Updated:  rec.UpdatedCount,
	})
	return rec, nil
}

func (s *ImportService) History(ctx context.Context, params *importrecord.FindParams) ([]*importrecord.ImportRecord, int64, error) {
	records, err := s.records.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.records.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func parseByExtension(filename string, data []byte) ([]importfile.Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return importfile.ParseCSV(bytes.NewReader(data))
	case ".xlsx":
		return importfile.ParseXLSX(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// buildSnapshot records the pre-import state of every part the file
// touches. SKUs absent from the catalog go into NewSKUs so a rollback
// knows to delete them.
func buildSnapshot(existing []*part.Part, imported []string) *importrecord.Snapshot {
	snap := &importrecord.Snapshot{
		Parts:               []importrecord.SnapshotPart{},
		VehicleApplications: []importrecord.SnapshotApplication{},
		CrossReferences:     []importrecord.SnapshotCrossReference{},
		NewSKUs:             []string{},
	}

	existingSKUs := make(map[string]bool, len(existing))
	for _, p := range existing {
		existingSKUs[p.SKU] = true
		snap.Parts = append(snap.Parts, importrecord.SnapshotPart{
			ID:          p.ID,
			SKU:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Brand:       p.Brand,
			Price:       p.Price,
			Active:      p.Active,
			CreatedAt:   p.CreatedAt,
		})
		for _, a := range p.Applications {
			snap.VehicleApplications = append(snap.VehicleApplications, importrecord.SnapshotApplication{
				PartSKU:  p.SKU,
				Make:     a.Make,
				Model:    a.Model,
				YearFrom: a.YearFrom,
				YearTo:   a.YearTo,
				Engine:   a.Engine,
			})
		}
		for _, ref := range p.CrossReferences {
			snap.CrossReferences = append(snap.CrossReferences, importrecord.SnapshotCrossReference{
				PartSKU:         p.SKU,
				CompetitorBrand: ref.CompetitorBrand,
				CompetitorSKU:   ref.CompetitorSKU,
			})
		}
	}
	for _, sku := range imported {
		if !existingSKUs[sku] {
			snap.NewSKUs = append(snap.NewSKUs, sku)
		}
	}
	return snap
}

func toApplications(specs []importfile.ApplicationSpec) []*part.VehicleApplication {
	apps := make([]*part.VehicleApplication, 0, len(specs))
	for _, spec := range specs {
		apps = append(apps, &part.VehicleApplication{
			Make:     spec.Make,
			Model:    spec.Model,
			YearFrom: spec.YearFrom,
			YearTo:   spec.YearTo,
			Engine:   spec.Engine,
		})
	}
	return apps
}

func toCrossReferences(specs []importfile.CrossReferenceSpec) []*part.CrossReference {
	refs := make([]*part.CrossReference, 0, len(specs))
	for _, spec := range specs {
		refs = append(refs, &part.CrossReference{
			CompetitorBrand: spec.CompetitorBrand,
			CompetitorSKU:   spec.CompetitorSKU,
		})
	}
	return refs
}
