package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
)

// ErrImageNotInPart is returned when an image exists but belongs to a
// different part than the one addressed by the request.
var ErrImageNotInPart = errors.New("image does not belong to part")

type PrimaryImageChangedEvent struct {
	SKU     string
	ImageID string
}

type ImageService struct {
	parts  part.Repository
	images part.ImageRepository
	bus    eventbus.EventBus
}

func NewImageService(parts part.Repository, images part.ImageRepository, bus eventbus.EventBus) *ImageService {
	return &ImageService{
		parts:  parts,
		images: images,
		bus:    bus,
	}
}

func (s *ImageService) ListByPart(ctx context.Context, sku string) ([]*part.Image, error) {
	p, err := s.parts.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return s.images.ListByPart(ctx, p.ID)
}

func (s *ImageService) Add(ctx context.Context, sku string, img *part.Image) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.parts.GetBySKU(txCtx, sku)
		if err != nil {
			return err
		}
		img.PartID = p.ID
		// The first image of a part becomes primary automatically.
		existing, err := s.images.ListByPart(txCtx, p.ID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			img.IsPrimary = true
		}
		return s.images.Create(txCtx, img)
	})
}

func (s *ImageService) Remove(ctx context.Context, sku string, imageID uuid.UUID) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.parts.GetBySKU(txCtx, sku)
		if err != nil {
			return err
		}
		img, err := s.images.GetByID(txCtx, imageID)
		if err != nil {
			return err
		}
		if img.PartID != p.ID {
			return ErrImageNotInPart
		}
		return s.images.Delete(txCtx, imageID)
	})
}

// Reorder changes an image's position within the part's gallery.
func (s *ImageService) Reorder(ctx context.Context, sku string, imageID uuid.UUID, sortOrder int) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.parts.GetBySKU(txCtx, sku)
		if err != nil {
			return err
		}
		img, err := s.images.GetByID(txCtx, imageID)
		if err != nil {
			return err
		}
		if img.PartID != p.ID {
			return ErrImageNotInPart
		}
		return s.images.UpdateSortOrder(txCtx, imageID, sortOrder)
	})
}

// SetPrimary makes the given image the part's primary one. Clearing
// the old flag and setting the new one happen in the same transaction
// so the part never ends up with zero or two primary images.
func (s *ImageService) SetPrimary(ctx context.Context, sku string, imageID uuid.UUID) error {
	var p *part.Part
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		p, err = s.parts.GetBySKU(txCtx, sku)
		if err != nil {
			return err
		}
		img, err := s.images.GetByID(txCtx, imageID)
		if err != nil {
			return err
		}
		if img.PartID != p.ID {
			return ErrImageNotInPart
		}
		if img.IsPrimary {
			return nil
		}
		if err := s.images.UnsetPrimary(txCtx, p.ID); err != nil {
			return err
		}
		return s.images.SetPrimary(txCtx, imageID)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(&PrimaryImageChangedEvent{SKU: p.SKU, ImageID: imageID.String()})
	return nil
}
