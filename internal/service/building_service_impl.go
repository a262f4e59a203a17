package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
)

type buildingService struct {
	buildings     repository.BuildingRepo
	organizations repository.OrganizationRepo
	observer      UseCaseObserver
}

func NewBuildingService(
	buildings repository.BuildingRepo,
	organizations repository.OrganizationRepo,
	observers ...UseCaseObserver,
) BuildingService {
	return &buildingService{
		buildings:     buildings,
		organizations: organizations,
		observer:      useCaseObserverOrNoop(observers),
	}
}

func (s *buildingService) Create(ctx context.Context, b *domain.Building) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "building.create", startedAt, err, map[string]any{"name": b.Name})
	}()

	b.Name = domain.NormalizeName(b.Name)
	b.Address = domain.NormalizeName(b.Address)
	if err = b.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	return s.buildings.Create(ctx, b)
}

func (s *buildingService) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	return s.buildings.GetByID(ctx, id)
}

func (s *buildingService) GetWithOrganizations(ctx context.Context, id string) (*domain.BuildingWithOrganizations, error) {
	b, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	orgs, err := s.organizations.ListByBuilding(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.BuildingWithOrganizations{Building: *b, Organizations: orgs}, nil
}

func (s *buildingService) List(ctx context.Context, offset, limit int) ([]*domain.Building, error) {
	offset, limit = normalizePage(offset, limit)
	return s.buildings.List(ctx, offset, limit)
}

func (s *buildingService) Update(ctx context.Context, id string, upd domain.BuildingUpdate) (b *domain.Building, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "building.update", startedAt, err, map[string]any{"id": id})
	}()

	b, err = s.buildings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(b)
	if err = b.Validate(); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now().UTC()
	if err = s.buildings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the building together with every organization it houses.
func (s *buildingService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "building.delete", startedAt, err, map[string]any{"id": id})
	}()
	return s.buildings.Delete(ctx, id)
}

func (s *buildingService) ListWithinRadius(ctx context.Context, lat, lon, meters float64) ([]*domain.Building, error) {
	return buildingsWithinRadius(ctx, s.buildings, lat, lon, meters)
}

func (s *buildingService) ListWithinBounds(ctx context.Context, bounds domain.Bounds) ([]*domain.Building, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return s.buildings.ListWithinBounds(ctx, bounds)
}

// buildingsWithinRadius prefilters on the enclosing box in SQL and keeps the
// buildings whose great-circle distance is within meters.
func buildingsWithinRadius(ctx context.Context, repo repository.BuildingRepo, lat, lon, meters float64) ([]*domain.Building, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if math.IsNaN(meters) || meters <= 0 {
		return nil, fmt.Errorf("radius must be positive: %w", domain.ErrInvalidInput)
	}

	var out []*domain.Building
	for _, part := range domain.RadiusBounds(lat, lon, meters).Parts() {
		candidates, err := repo.ListWithinBounds(ctx, part)
		if err != nil {
			return nil, err
		}
		for _, b := range candidates {
			if domain.DistanceMeters(lat, lon, b.Latitude, b.Longitude) <= meters {
				out = append(out, b)
			}
		}
	}
	if out == nil {
		out = []*domain.Building{}
	}
	return out, nil
}

func buildingsForLocation(ctx context.Context, repo repository.BuildingRepo, q domain.LocationQuery) ([]*domain.Building, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.HasRadius() {
		return buildingsWithinRadius(ctx, repo, q.Latitude, q.Longitude, *q.RadiusMeters)
	}
	return repo.ListWithinBounds(ctx, q.Box())
}

// normalizePage clamps pagination input. A non-positive limit means no limit.
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1
	}
	return offset, limit
}

func paginate[T any](items []T, offset, limit int) []T {
	offset, limit = normalizePage(offset, limit)
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
