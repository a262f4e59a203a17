package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/service"
	"github.com/gorilla/mux"
)

type BuildingController struct {
	buildings    service.BuildingService
	logger       *slog.Logger
	defaultLimit int
}

func NewBuildingController(buildings service.BuildingService, logger *slog.Logger, defaultLimit int) *BuildingController {
	return &BuildingController{buildings: buildings, logger: logger, defaultLimit: defaultLimit}
}

func (c *BuildingController) Register(r *mux.Router) {
	api := subrouter(r, "/buildings")
	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	api.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *BuildingController) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r, c.defaultLimit)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	list, err := c.buildings.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBuildingResponses(list))
}

func (c *BuildingController) Create(w http.ResponseWriter, r *http.Request) {
	var req createBuildingRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}
	b := &domain.Building{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}
	if err := c.buildings.Create(r.Context(), b); err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBuildingResponse(b))
}

// Get returns the building together with the organizations it houses.
func (c *BuildingController) Get(w http.ResponseWriter, r *http.Request) {
	b, err := c.buildings.GetWithOrganizations(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	out := buildingWithOrganizationsResponse{
		buildingResponse: toBuildingResponse(&b.Building),
		Organizations:    make([]organizationSummary, 0, len(b.Organizations)),
	}
	for _, o := range b.Organizations {
		out.Organizations = append(out.Organizations, organizationSummary{ID: o.ID, Name: o.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *BuildingController) Update(w http.ResponseWriter, r *http.Request) {
	var req updateBuildingRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}
	b, err := c.buildings.Update(r.Context(), mux.Vars(r)["id"], domain.BuildingUpdate{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBuildingResponse(b))
}

func (c *BuildingController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.buildings.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "building deleted"})
}
