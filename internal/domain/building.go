package domain

import (
	"fmt"
	"time"
)

type Building struct {
	ID        string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks required fields and coordinate ranges.
func (b *Building) Validate() error {
	if NormalizeName(b.Name) == "" {
		return fmt.Errorf("building name is required: %w", ErrInvalidInput)
	}
	if NormalizeName(b.Address) == "" {
		return fmt.Errorf("building address is required: %w", ErrInvalidInput)
	}
	if err := ValidateCoordinates(b.Latitude, b.Longitude); err != nil {
		return err
	}
	return nil
}

// BuildingUpdate describes a partial building update.
type BuildingUpdate struct {
	Name      *string
	Address   *string
	Latitude  *float64
	Longitude *float64
}

// Apply copies the set fields onto b.
func (u BuildingUpdate) Apply(b *Building) {
	if u.Name != nil {
		b.Name = NormalizeName(*u.Name)
	}
	if u.Address != nil {
		b.Address = NormalizeName(*u.Address)
	}
	if u.Latitude != nil {
		b.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		b.Longitude = *u.Longitude
	}
}

// BuildingWithOrganizations is a building with the organizations it houses.
type BuildingWithOrganizations struct {
	Building
	Organizations []*Organization
}
