// Package app wires the repositories and services of the directory over one
// database handle. Both the CLI and the HTTP server start from here.
package app

import (
	"database/sql"

	"github.com/alexanderramin/orgdir/internal/db"
	"github.com/alexanderramin/orgdir/internal/repository"
	"github.com/alexanderramin/orgdir/internal/service"
)

type Directory struct {
	Activities    service.ActivityService
	Buildings     service.BuildingService
	Organizations service.OrganizationService
	Import        service.ImportService
}

func New(database *sql.DB, observers ...service.UseCaseObserver) *Directory {
	return NewWithUnitOfWork(database, db.NewSQLiteUnitOfWork(database), observers...)
}

// NewWithUnitOfWork lets tests substitute a fault-injecting unit of work.
func NewWithUnitOfWork(database *sql.DB, uow db.UnitOfWork, observers ...service.UseCaseObserver) *Directory {
	activityRepo := repository.NewSQLiteActivityRepo(database)
	buildingRepo := repository.NewSQLiteBuildingRepo(database)
	orgRepo := repository.NewSQLiteOrganizationRepo(database)
	assocRepo := repository.NewSQLiteAssociationRepo(database)

	activities := service.NewActivityService(activityRepo, uow, observers...)
	return &Directory{
		Activities:    activities,
		Buildings:     service.NewBuildingService(buildingRepo, orgRepo, observers...),
		Organizations: service.NewOrganizationService(orgRepo, buildingRepo, assocRepo, activities, uow, observers...),
		Import:        service.NewImportService(uow, observers...),
	}
}
