package domain

import (
	"fmt"
	"time"
)

type Organization struct {
	ID         string
	Name       string
	BuildingID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PhoneNumber struct {
	ID             string
	OrganizationID string
	Number         string
}

// OrganizationDetails is an organization with its building, phone numbers
// and linked activities resolved.
type OrganizationDetails struct {
	Organization
	Building   *Building
	Phones     []PhoneNumber
	Activities []*Activity
}

// OrganizationInput carries the fields needed to create an organization.
type OrganizationInput struct {
	Name        string
	BuildingID  string
	Phones      []string
	ActivityIDs []string
}

func (in *OrganizationInput) Validate() error {
	if NormalizeName(in.Name) == "" {
		return fmt.Errorf("organization name is required: %w", ErrInvalidInput)
	}
	if in.BuildingID == "" {
		return fmt.Errorf("organization building is required: %w", ErrInvalidInput)
	}
	return validatePhones(in.Phones)
}

// OrganizationUpdate describes a partial update. Phones and ActivityIDs,
// when non-nil, replace the existing sets.
type OrganizationUpdate struct {
	Name        *string
	BuildingID  *string
	Phones      *[]string
	ActivityIDs *[]string
}

func (u OrganizationUpdate) Validate() error {
	if u.Name != nil && NormalizeName(*u.Name) == "" {
		return fmt.Errorf("organization name cannot be blank: %w", ErrInvalidInput)
	}
	if u.BuildingID != nil && *u.BuildingID == "" {
		return fmt.Errorf("organization building cannot be blank: %w", ErrInvalidInput)
	}
	if u.Phones != nil {
		return validatePhones(*u.Phones)
	}
	return nil
}

func validatePhones(phones []string) error {
	for i, p := range phones {
		if NormalizeName(p) == "" {
			return fmt.Errorf("phone number %d is blank: %w", i+1, ErrInvalidInput)
		}
	}
	return nil
}

// UniqueIDs returns ids with duplicates and blanks removed, order preserved.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
