package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/orgdir/internal/db"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/importer"
	"github.com/alexanderramin/orgdir/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) Import(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

// importSchema writes the whole file in one transaction; any failure leaves
// the store untouched.
func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observeUseCase(ctx, s.observer, "import", startedAt, err, fields) }()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	plan, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBuildings := repository.NewSQLiteBuildingRepo(tx)
		txActivities := repository.NewSQLiteActivityRepo(tx)
		txOrgs := repository.NewSQLiteOrganizationRepo(tx)
		txAssoc := repository.NewSQLiteAssociationRepo(tx)

		for _, b := range plan.Buildings {
			if err := txBuildings.Create(ctx, b); err != nil {
				return fmt.Errorf("creating building %q: %w", b.Name, err)
			}
		}

		for _, a := range plan.Activities {
			depth, err := depthOf(ctx, txActivities, a.ParentID)
			if err != nil {
				return fmt.Errorf("placing activity %q: %w", a.Name, err)
			}
			if depth > domain.MaxActivityDepth {
				return fmt.Errorf("creating activity %q: %w", a.Name, domain.ErrDepthExceeded)
			}
			if err := txActivities.Create(ctx, a); err != nil {
				return fmt.Errorf("creating activity %q: %w", a.Name, err)
			}
		}

		for _, planned := range plan.Organizations {
			o := planned.Organization
			if err := txOrgs.Create(ctx, o); err != nil {
				return fmt.Errorf("creating organization %q: %w", o.Name, err)
			}
			if err := txOrgs.ReplacePhones(ctx, o.ID, planned.Phones); err != nil {
				return fmt.Errorf("storing phones of %q: %w", o.Name, err)
			}
			if err := txAssoc.ReplaceActivities(ctx, o.ID, planned.ActivityIDs); err != nil {
				return fmt.Errorf("linking activities of %q: %w", o.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &ImportResult{
		BuildingCount:     len(plan.Buildings),
		ActivityCount:     len(plan.Activities),
		OrganizationCount: len(plan.Organizations),
	}
	fields["buildings"] = result.BuildingCount
	fields["activities"] = result.ActivityCount
	fields["organizations"] = result.OrganizationCount
	return result, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s: %w", msg, domain.ErrInvalidInput)
}
