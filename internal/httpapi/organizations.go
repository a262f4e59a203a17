package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/service"
	"github.com/gorilla/mux"
)

type OrganizationController struct {
	organizations service.OrganizationService
	logger        *slog.Logger
	defaultLimit  int
}

func NewOrganizationController(organizations service.OrganizationService, logger *slog.Logger, defaultLimit int) *OrganizationController {
	return &OrganizationController{organizations: organizations, logger: logger, defaultLimit: defaultLimit}
}

func (c *OrganizationController) Register(r *mux.Router) {
	api := subrouter(r, "/organizations")
	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/search", c.Search).Methods(http.MethodGet)
	api.HandleFunc("/by-location", c.ByLocation).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	api.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *OrganizationController) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r, c.defaultLimit)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	list, err := c.organizations.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponses(list))
}

func (c *OrganizationController) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}
	o, err := c.organizations.Create(r.Context(), domain.OrganizationInput{
		Name:        req.Name,
		BuildingID:  req.BuildingID,
		Phones:      req.PhoneNumbers,
		ActivityIDs: req.ActivityIDs,
	})
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrganizationResponse(o))
}

// Search applies the first non-empty criterion among name, building_id,
// activity_id and activity_name. With none it lists everything.
func (c *OrganizationController) Search(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r, c.defaultLimit)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	includeChildren, err := boolParam(r, "include_child_activities", true)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	q := r.URL.Query()
	list, err := c.organizations.Search(r.Context(), service.SearchFilter{
		Name:                   strings.TrimSpace(q.Get("name")),
		BuildingID:             strings.TrimSpace(q.Get("building_id")),
		ActivityID:             strings.TrimSpace(q.Get("activity_id")),
		ActivityName:           strings.TrimSpace(q.Get("activity_name")),
		IncludeChildActivities: includeChildren,
		Offset:                 offset,
		Limit:                  limit,
	})
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponses(list))
}

// ByLocation takes either latitude, longitude and radius (meters) or a
// complete min_lat/min_lon/max_lat/max_lon box.
func (c *OrganizationController) ByLocation(w http.ResponseWriter, r *http.Request) {
	var (
		q   domain.LocationQuery
		err error
	)
	params := []struct {
		name string
		dst  **float64
	}{
		{"radius", &q.RadiusMeters},
		{"min_lat", &q.MinLat},
		{"min_lon", &q.MinLon},
		{"max_lat", &q.MaxLat},
		{"max_lon", &q.MaxLon},
	}
	for _, p := range params {
		if *p.dst, err = floatParam(r, p.name); err != nil {
			writeRequestError(w, r, err)
			return
		}
	}
	lat, err := floatParam(r, "latitude")
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	lon, err := floatParam(r, "longitude")
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	if q.HasRadius() && (lat == nil || lon == nil) {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "latitude and longitude are required with radius", nil)
		return
	}
	if lat != nil && lon != nil {
		q.Latitude, q.Longitude = *lat, *lon
	}
	list, err := c.organizations.ListByLocation(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponses(list))
}

func (c *OrganizationController) Get(w http.ResponseWriter, r *http.Request) {
	o, err := c.organizations.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponse(o))
}

func (c *OrganizationController) Update(w http.ResponseWriter, r *http.Request) {
	var req updateOrganizationRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}
	o, err := c.organizations.Update(r.Context(), mux.Vars(r)["id"], domain.OrganizationUpdate{
		Name:        req.Name,
		BuildingID:  req.BuildingID,
		Phones:      req.PhoneNumbers,
		ActivityIDs: req.ActivityIDs,
	})
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponse(o))
}

func (c *OrganizationController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.organizations.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "organization deleted"})
}
