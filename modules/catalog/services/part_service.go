package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
)

type PartCreatedEvent struct {
	SKU string
}

type PartUpdatedEvent struct {
	SKU string
}

type PartDeletedEvent struct {
	SKU string
}

type PartService struct {
	repo part.Repository
	bus  eventbus.EventBus
}

func NewPartService(repo part.Repository, bus eventbus.EventBus) *PartService {
	return &PartService{
		repo: repo,
		bus:  bus,
	}
}

func (s *PartService) GetByID(ctx context.Context, id uuid.UUID) (*part.Part, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PartService) GetBySKU(ctx context.Context, sku string) (*part.Part, error) {
	return s.repo.GetBySKU(ctx, sku)
}

func (s *PartService) List(ctx context.Context, params *part.FindParams) ([]*part.Part, int64, error) {
	parts, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return parts, total, nil
}

// Create writes the part together with its applications and cross
// references in one transaction.
func (s *PartService) Create(ctx context.Context, p *part.Part) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, p); err != nil {
			return err
		}
		if err := s.repo.ReplaceApplications(txCtx, p.ID, p.Applications); err != nil {
			return err
		}
		return s.repo.ReplaceCrossReferences(txCtx, p.ID, p.CrossReferences)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(&PartCreatedEvent{SKU: p.SKU})
	return nil
}

func (s *PartService) Update(ctx context.Context, p *part.Part) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, p); err != nil {
			return err
		}
		if err := s.repo.ReplaceApplications(txCtx, p.ID, p.Applications); err != nil {
			return err
		}
		return s.repo.ReplaceCrossReferences(txCtx, p.ID, p.CrossReferences)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(&PartUpdatedEvent{SKU: p.SKU})
	return nil
}

// SetApplications replaces the part's vehicle applications wholesale.
func (s *PartService) SetApplications(ctx context.Context, sku string, apps []*part.VehicleApplication) (*part.Part, error) {
	var p *part.Part
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		p, err = s.repo.GetBySKU(txCtx, sku)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceApplications(txCtx, p.ID, apps); err != nil {
			return err
		}
		p.Applications = apps
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bus.Publish(&PartUpdatedEvent{SKU: p.SKU})
	return p, nil
}

// SetCrossReferences replaces the part's cross references wholesale.
func (s *PartService) SetCrossReferences(ctx context.Context, sku string, refs []*part.CrossReference) (*part.Part, error) {
	var p *part.Part
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		p, err = s.repo.GetBySKU(txCtx, sku)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceCrossReferences(txCtx, p.ID, refs); err != nil {
			return err
		}
		p.CrossReferences = refs
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bus.Publish(&PartUpdatedEvent{SKU: p.SKU})
	return p, nil
}

func (s *PartService) Delete(ctx context.Context, sku string) error {
	var deleted *part.Part
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.GetBySKU(txCtx, sku)
		if err != nil {
			return err
		}
		deleted = p
		return s.repo.Delete(txCtx, p.ID)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(&PartDeletedEvent{SKU: deleted.SKU})
	return nil
}
