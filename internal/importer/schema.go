package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ImportSchema is the top-level structure of a directory seed file. Entries
// reference each other through file-local refs, never through stored ids.
type ImportSchema struct {
	Buildings     []BuildingImport     `yaml:"buildings"`
	Activities    []ActivityImport     `yaml:"activities"`
	Organizations []OrganizationImport `yaml:"organizations"`
}

// BuildingImport defines a building in the import file.
type BuildingImport struct {
	Ref       string  `yaml:"ref"`
	Name      string  `yaml:"name"`
	Address   string  `yaml:"address"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ActivityImport defines an activity. A parent must appear earlier in the
// activities list.
type ActivityImport struct {
	Ref       string  `yaml:"ref"`
	ParentRef *string `yaml:"parent_ref,omitempty"`
	Name      string  `yaml:"name"`
}

// OrganizationImport defines an organization housed in a building.
type OrganizationImport struct {
	Name         string   `yaml:"name"`
	BuildingRef  string   `yaml:"building_ref"`
	Phones       []string `yaml:"phones,omitempty"`
	ActivityRefs []string `yaml:"activity_refs,omitempty"`
}

// LoadImportSchema reads and parses a YAML import file. JSON input also
// parses since JSON is a subset of YAML.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}

func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
