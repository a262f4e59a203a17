package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// optionalString tells an absent JSON field apart from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type createActivityRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	ParentID *string `json:"parent_id" validate:"omitempty,min=1"`
}

// updateActivityRequest: "parent_id": null moves the activity to the root.
type updateActivityRequest struct {
	Name     *string        `json:"name" validate:"omitempty,min=1,max=255"`
	ParentID optionalString `json:"parent_id" validate:"-"`
}

func (r updateActivityRequest) toDomain() domain.ActivityUpdate {
	upd := domain.ActivityUpdate{Name: r.Name}
	if r.ParentID.Set {
		if r.ParentID.Value == nil {
			upd.Detach = true
		} else {
			upd.ParentID = r.ParentID.Value
		}
	}
	return upd
}

type createBuildingRequest struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Address   string   `json:"address" validate:"required,max=500"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type updateBuildingRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Address   *string  `json:"address" validate:"omitempty,min=1,max=500"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

type createOrganizationRequest struct {
	Name         string   `json:"name" validate:"required,max=255"`
	BuildingID   string   `json:"building_id" validate:"required"`
	PhoneNumbers []string `json:"phone_numbers" validate:"dive,required,max=50"`
	ActivityIDs  []string `json:"activity_ids" validate:"dive,required"`
}

type updateOrganizationRequest struct {
	Name         *string   `json:"name" validate:"omitempty,min=1,max=255"`
	BuildingID   *string   `json:"building_id" validate:"omitempty,min=1"`
	PhoneNumbers *[]string `json:"phone_numbers" validate:"omitempty,dive,required,max=50"`
	ActivityIDs  *[]string `json:"activity_ids" validate:"omitempty,dive,required"`
}

type activityResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type activityTreeResponse struct {
	activityResponse
	Children []activityTreeResponse `json:"children"`
}

type buildingResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type organizationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type buildingWithOrganizationsResponse struct {
	buildingResponse
	Organizations []organizationSummary `json:"organizations"`
}

type phoneResponse struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

type organizationResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Building     *buildingResponse  `json:"building"`
	PhoneNumbers []phoneResponse    `json:"phone_numbers"`
	Activities   []activityResponse `json:"activities"`
}

type descendantsResponse struct {
	ID          string   `json:"id"`
	Descendants []string `json:"descendants"`
}

func toActivityResponse(a *domain.Activity) activityResponse {
	return activityResponse{
		ID:        a.ID,
		Name:      a.Name,
		ParentID:  a.ParentID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toActivityResponses(list []*domain.Activity) []activityResponse {
	out := make([]activityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toActivityResponse(a))
	}
	return out
}

func toActivityTree(node *domain.ActivityWithChildren) activityTreeResponse {
	out := activityTreeResponse{
		activityResponse: toActivityResponse(&node.Activity),
		Children:         make([]activityTreeResponse, 0, len(node.Children)),
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, toActivityTree(child))
	}
	return out
}

func toBuildingResponse(b *domain.Building) buildingResponse {
	return buildingResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
	}
}

func toBuildingResponses(list []*domain.Building) []buildingResponse {
	out := make([]buildingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBuildingResponse(b))
	}
	return out
}

func toOrganizationResponse(o *domain.OrganizationDetails) organizationResponse {
	out := organizationResponse{
		ID:           o.ID,
		Name:         o.Name,
		PhoneNumbers: make([]phoneResponse, 0, len(o.Phones)),
		Activities:   toActivityResponses(o.Activities),
	}
	if o.Building != nil {
		b := toBuildingResponse(o.Building)
		out.Building = &b
	}
	for _, p := range o.Phones {
		out.PhoneNumbers = append(out.PhoneNumbers, phoneResponse{ID: p.ID, Number: p.Number})
	}
	return out
}

func toOrganizationResponses(list []*domain.OrganizationDetails) []organizationResponse {
	out := make([]organizationResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrganizationResponse(o))
	}
	return out
}

// requestError is a malformed or invalid request body. Meta maps JSON field
// names to the rule they broke.
type requestError struct {
	message string
	meta    map[string]string
}

func (e *requestError) Error() string { return e.message }

// decodeAndValidate reads a JSON body into out, rejecting unknown fields,
// then applies the struct's validate tags.
func decodeAndValidate(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &requestError{message: fmt.Sprintf("invalid json body: %v", err)}
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &requestError{message: err.Error()}
		}
		meta := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			meta[fe.Namespace()[strings.IndexByte(fe.Namespace(), '.')+1:]] = fe.Tag()
		}
		return &requestError{message: "request validation failed", meta: meta}
	}
	return nil
}
