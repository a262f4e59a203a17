package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/alexanderramin/orgdir/internal/repository"
	"github.com/alexanderramin/orgdir/internal/service"
	"github.com/gorilla/mux"
)

type ActivityController struct {
	activities   service.ActivityService
	logger       *slog.Logger
	defaultLimit int
}

func NewActivityController(activities service.ActivityService, logger *slog.Logger, defaultLimit int) *ActivityController {
	return &ActivityController{activities: activities, logger: logger, defaultLimit: defaultLimit}
}

func (c *ActivityController) Register(r *mux.Router) {
	api := subrouter(r, "/activities")
	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/tree", c.Tree).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	api.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/descendants", c.Descendants).Methods(http.MethodGet)
}

func (c *ActivityController) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r, c.defaultLimit)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	list, err := c.activities.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponses(list))
}

func (c *ActivityController) Create(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}
	a, err := c.activities.Create(r.Context(), req.Name, req.ParentID)
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityResponse(a))
}

// Tree returns the whole forest, or the subtree under ?root= when given.
func (c *ActivityController) Tree(w http.ResponseWriter, r *http.Request) {
	if root := r.URL.Query().Get("root"); root != "" {
		node, err := c.activities.GetWithChildren(r.Context(), root)
		if err != nil {
			writeServiceError(w, r, c.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, []activityTreeResponse{toActivityTree(node)})
		return
	}
	forest, err := c.activities.Tree(r.Context())
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	out := make([]activityTreeResponse, 0, len(forest))
	for _, node := range forest {
		out = append(out, toActivityTree(node))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *ActivityController) Get(w http.ResponseWriter, r *http.Request) {
	a, err := c.activities.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(a))
}

func (c *ActivityController) Update(w http.ResponseWriter, r *http.Request) {
	var req updateActivityRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}
	a, err := c.activities.Update(r.Context(), mux.Vars(r)["id"], req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(a))
}

func (c *ActivityController) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := c.activities.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	if !deleted {
		writeServiceError(w, r, c.logger, repository.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "activity deleted"})
}

func (c *ActivityController) Descendants(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ids, err := c.activities.DescendantClosure(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, descendantsResponse{ID: id, Descendants: ids})
}
