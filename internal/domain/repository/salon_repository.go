package repository

import (
	"context"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/pkg/geo"
)

type SalonRepository interface {
	Create(ctx context.Context, s *entity.Salon) error
	GetByID(ctx context.Context, id string) (*entity.Salon, error)
	// ListActive returns active salons sorted by rating desc, then newest first.
	ListActive(ctx context.Context) ([]*entity.Salon, error)
	// FindActiveInBox returns active salons whose location falls inside box.
	FindActiveInBox(ctx context.Context, box geo.Box) ([]*entity.Salon, error)
	Update(ctx context.Context, s *entity.Salon) error
	SetActive(ctx context.Context, id string, active bool) error
}
