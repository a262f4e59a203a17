package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/orgdir/internal/db"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
)

type organizationService struct {
	organizations repository.OrganizationRepo
	buildings     repository.BuildingRepo
	associations  repository.AssociationRepo
	activities    ActivityService
	uow           db.UnitOfWork
	observer      UseCaseObserver
}

func NewOrganizationService(
	organizations repository.OrganizationRepo,
	buildings repository.BuildingRepo,
	associations repository.AssociationRepo,
	activities ActivityService,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) OrganizationService {
	return &organizationService{
		organizations: organizations,
		buildings:     buildings,
		associations:  associations,
		activities:    activities,
		uow:           uow,
		observer:      useCaseObserverOrNoop(observers),
	}
}

func (s *organizationService) Create(ctx context.Context, in domain.OrganizationInput) (details *domain.OrganizationDetails, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"name": in.Name, "building_id": in.BuildingID}
	defer func() { observeUseCase(ctx, s.observer, "organization.create", startedAt, err, fields) }()

	if err = in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	o := &domain.Organization{
		Name:       domain.NormalizeName(in.Name),
		BuildingID: in.BuildingID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	activityIDs := domain.UniqueIDs(in.ActivityIDs)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txOrgs := repository.NewSQLiteOrganizationRepo(tx)
		if err := requireBuilding(ctx, repository.NewSQLiteBuildingRepo(tx), in.BuildingID); err != nil {
			return err
		}
		if err := requireActivities(ctx, repository.NewSQLiteActivityRepo(tx), activityIDs); err != nil {
			return err
		}
		if err := txOrgs.Create(ctx, o); err != nil {
			return err
		}
		if err := txOrgs.ReplacePhones(ctx, o.ID, in.Phones); err != nil {
			return err
		}
		return repository.NewSQLiteAssociationRepo(tx).ReplaceActivities(ctx, o.ID, activityIDs)
	})
	if err != nil {
		return nil, err
	}
	fields["id"] = o.ID
	return s.GetByID(ctx, o.ID)
}

func (s *organizationService) GetByID(ctx context.Context, id string) (*domain.OrganizationDetails, error) {
	o, err := s.organizations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.withDetails(ctx, []*domain.Organization{o})
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

func (s *organizationService) List(ctx context.Context, offset, limit int) ([]*domain.OrganizationDetails, error) {
	offset, limit = normalizePage(offset, limit)
	orgs, err := s.organizations.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, orgs)
}

func (s *organizationService) Update(ctx context.Context, id string, upd domain.OrganizationUpdate) (details *domain.OrganizationDetails, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "organization.update", startedAt, err, map[string]any{"id": id})
	}()

	if err = upd.Validate(); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txOrgs := repository.NewSQLiteOrganizationRepo(tx)
		o, err := txOrgs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if upd.Name != nil {
			o.Name = domain.NormalizeName(*upd.Name)
		}
		if upd.BuildingID != nil {
			if err := requireBuilding(ctx, repository.NewSQLiteBuildingRepo(tx), *upd.BuildingID); err != nil {
				return err
			}
			o.BuildingID = *upd.BuildingID
		}
		o.UpdatedAt = time.Now().UTC()
		if err := txOrgs.Update(ctx, o); err != nil {
			return err
		}
		if upd.Phones != nil {
			if err := txOrgs.ReplacePhones(ctx, id, *upd.Phones); err != nil {
				return err
			}
		}
		if upd.ActivityIDs != nil {
			activityIDs := domain.UniqueIDs(*upd.ActivityIDs)
			if err := requireActivities(ctx, repository.NewSQLiteActivityRepo(tx), activityIDs); err != nil {
				return err
			}
			return repository.NewSQLiteAssociationRepo(tx).ReplaceActivities(ctx, id, activityIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *organizationService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "organization.delete", startedAt, err, map[string]any{"id": id})
	}()
	return s.organizations.Delete(ctx, id)
}

func (s *organizationService) ListByBuilding(ctx context.Context, buildingID string) ([]*domain.OrganizationDetails, error) {
	if _, err := s.buildings.GetByID(ctx, buildingID); err != nil {
		return nil, err
	}
	orgs, err := s.organizations.ListByBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, orgs)
}

func (s *organizationService) SearchByName(ctx context.Context, name string) ([]*domain.OrganizationDetails, error) {
	orgs, err := s.organizations.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, orgs)
}

// ListByActivity returns organizations linked to activityID, or with
// includeChildren to any activity in its subtree. Each organization appears
// once.
func (s *organizationService) ListByActivity(ctx context.Context, activityID string, includeChildren bool) (list []*domain.OrganizationDetails, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"activity_id": activityID, "include_children": includeChildren}
	defer func() { observeUseCase(ctx, s.observer, "organization.by-activity", startedAt, err, fields) }()

	activityIDs := []string{activityID}
	if includeChildren {
		activityIDs, err = s.activities.DescendantClosure(ctx, activityID)
		if err != nil {
			return nil, err
		}
	} else if _, err = s.activities.GetByID(ctx, activityID); err != nil {
		return nil, err
	}
	fields["activity_count"] = len(activityIDs)

	orgIDs, err := s.associations.FindOrganizationsByActivityIDs(ctx, activityIDs)
	if err != nil {
		return nil, err
	}
	orgs, err := s.organizations.ListByIDs(ctx, orgIDs)
	if err != nil {
		return nil, err
	}
	fields["result_count"] = len(orgs)
	return s.withDetails(ctx, orgs)
}

// ListByActivityName resolves name case-insensitively. An unknown name
// yields an empty result rather than an error.
func (s *organizationService) ListByActivityName(ctx context.Context, name string, includeChildren bool) ([]*domain.OrganizationDetails, error) {
	a, err := s.activities.ByNameExact(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []*domain.OrganizationDetails{}, nil
		}
		return nil, err
	}
	return s.ListByActivity(ctx, a.ID, includeChildren)
}

func (s *organizationService) ListByLocation(ctx context.Context, q domain.LocationQuery) ([]*domain.OrganizationDetails, error) {
	buildings, err := buildingsForLocation(ctx, s.buildings, q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(buildings))
	for _, b := range buildings {
		ids = append(ids, b.ID)
	}
	orgs, err := s.organizations.ListByBuildings(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, orgs)
}

func (s *organizationService) Search(ctx context.Context, f SearchFilter) ([]*domain.OrganizationDetails, error) {
	var (
		list []*domain.OrganizationDetails
		err  error
	)
	switch {
	case f.Name != "":
		list, err = s.SearchByName(ctx, f.Name)
	case f.BuildingID != "":
		list, err = s.ListByBuilding(ctx, f.BuildingID)
	case f.ActivityID != "":
		list, err = s.ListByActivity(ctx, f.ActivityID, f.IncludeChildActivities)
	case f.ActivityName != "":
		list, err = s.ListByActivityName(ctx, f.ActivityName, f.IncludeChildActivities)
	default:
		return s.List(ctx, f.Offset, f.Limit)
	}
	if err != nil {
		return nil, err
	}
	return paginate(list, f.Offset, f.Limit), nil
}

// withDetails resolves building, phones and activities for each organization.
func (s *organizationService) withDetails(ctx context.Context, orgs []*domain.Organization) ([]*domain.OrganizationDetails, error) {
	out := make([]*domain.OrganizationDetails, 0, len(orgs))
	buildings := make(map[string]*domain.Building)
	for _, o := range orgs {
		b, ok := buildings[o.BuildingID]
		if !ok {
			var err error
			b, err = s.buildings.GetByID(ctx, o.BuildingID)
			if err != nil {
				return nil, fmt.Errorf("building of organization %s: %w", o.ID, err)
			}
			buildings[o.BuildingID] = b
		}
		phones, err := s.organizations.ListPhones(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		activities, err := s.associations.ListActivities(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.OrganizationDetails{
			Organization: *o,
			Building:     b,
			Phones:       phones,
			Activities:   activities,
		})
	}
	return out, nil
}

func requireBuilding(ctx context.Context, repo repository.BuildingRepo, id string) error {
	if _, err := repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("organization building: %w", err)
	}
	return nil
}

func requireActivities(ctx context.Context, repo repository.ActivityRepo, ids []string) error {
	for _, id := range ids {
		if _, err := repo.GetByID(ctx, id); err != nil {
			return fmt.Errorf("organization activity: %w", err)
		}
	}
	return nil
}
