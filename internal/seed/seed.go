// Package seed loads the reference catalog of amenities and safety features.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"property_listing/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type amenityDoc struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Icon     string `yaml:"icon"`
}

type featureDoc struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

type catalogDoc struct {
	Amenities      []amenityDoc `yaml:"amenities"`
	SafetyFeatures []featureDoc `yaml:"safety_features"`
}

type Catalog struct {
	Amenities      []domain.Amenity
	SafetyFeatures []domain.SafetyFeature
}

// Default returns the catalog bundled with the binary.
func Default() (Catalog, error) { return Parse(defaultCatalog) }

// Load reads a catalog file, or the bundled one when path is empty.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	var c Catalog
	seen := map[string]bool{}
	for i, a := range doc.Amenities {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return Catalog{}, fmt.Errorf("amenity %d: name is required", i)
		}
		if seen["a:"+name] {
			return Catalog{}, fmt.Errorf("amenity %q listed twice", name)
		}
		seen["a:"+name] = true
		c.Amenities = append(c.Amenities, domain.Amenity{
			Name:     name,
			Category: domain.ParseAmenityCategory(strings.TrimSpace(a.Category)),
			Icon:     optional(a.Icon),
		})
	}
	for i, f := range doc.SafetyFeatures {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return Catalog{}, fmt.Errorf("safety feature %d: name is required", i)
		}
		if seen["s:"+name] {
			return Catalog{}, fmt.Errorf("safety feature %q listed twice", name)
		}
		seen["s:"+name] = true
		c.SafetyFeatures = append(c.SafetyFeatures, domain.SafetyFeature{
			Name:        name,
			Description: optional(f.Description),
			Icon:        optional(f.Icon),
		})
	}
	return c, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
