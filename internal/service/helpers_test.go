package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/orgdir/internal/db"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
	"github.com/alexanderramin/orgdir/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testServices struct {
	db            *sql.DB
	uow           db.UnitOfWork
	activities    ActivityService
	buildings     BuildingService
	organizations OrganizationService
	activityRepo  repository.ActivityRepo
	orgRepo       repository.OrganizationRepo
}

func newTestServices(t *testing.T, database *sql.DB, observers ...UseCaseObserver) testServices {
	t.Helper()
	uow := testutil.NewTestUoW(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)
	buildingRepo := repository.NewSQLiteBuildingRepo(database)
	orgRepo := repository.NewSQLiteOrganizationRepo(database)
	assocRepo := repository.NewSQLiteAssociationRepo(database)

	activities := NewActivityService(activityRepo, uow, observers...)
	return testServices{
		db:            database,
		uow:           uow,
		activities:    activities,
		buildings:     NewBuildingService(buildingRepo, orgRepo, observers...),
		organizations: NewOrganizationService(orgRepo, buildingRepo, assocRepo, activities, uow, observers...),
		activityRepo:  activityRepo,
		orgRepo:       orgRepo,
	}
}

func setupServices(t *testing.T, observers ...UseCaseObserver) testServices {
	t.Helper()
	return newTestServices(t, testutil.NewTestDB(t), observers...)
}

// mustCreate creates an activity through the engine and fails the test on error.
func mustCreate(t *testing.T, svc ActivityService, name string, parent *domain.Activity) *domain.Activity {
	t.Helper()
	var parentID *string
	if parent != nil {
		parentID = &parent.ID
	}
	a, err := svc.Create(context.Background(), name, parentID)
	require.NoError(t, err, "creating %q", name)
	return a
}

// foodTree builds Food -> Dairy -> Milk.
func foodTree(t *testing.T, svc ActivityService) (food, dairy, milk *domain.Activity) {
	t.Helper()
	food = mustCreate(t, svc, "Food", nil)
	dairy = mustCreate(t, svc, "Dairy", food)
	milk = mustCreate(t, svc, "Milk", dairy)
	return food, dairy, milk
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) byName(name string) []UseCaseEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []UseCaseEvent
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
