package repositories

import (
	"context"

	"github.com/roadlab/stats19/internal/models"
	"github.com/roadlab/stats19/internal/spatial"
)

type AccidentRepository interface {
	BulkCreate(ctx context.Context, accidents []*models.Accident) error
	Create(ctx context.Context, accident *models.Accident) error
	GetAll(ctx context.Context) ([]*models.Accident, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type HotspotRepository interface {
	BulkCreate(ctx context.Context, hotspots []spatial.Hotspot) error
	GetAll(ctx context.Context) ([]spatial.Hotspot, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
