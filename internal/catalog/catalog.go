// Package catalog holds the plan table the listing wizard and discovery
// menus are built from. The table ships as a YAML file so prices can be
// adjusted without a rebuild.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a single priced subscription tier.
type Plan struct {
	Name  string `yaml:"name"`
	Price int64  `yaml:"price"`
}

// Subcategory groups the plans of one provider (Spotify, Netflix, ...).
type Subcategory struct {
	Name  string `yaml:"name"`
	Plans []Plan `yaml:"plans"`
}

// Category is a top-level browse bucket (Music, Video, ...).
type Category struct {
	Name          string        `yaml:"name"`
	Subcategories []Subcategory `yaml:"subcategories"`
}

// Catalog is the full plan table.
type Catalog struct {
	Categories []Category `yaml:"categories"`
}

// Parse decodes a catalog from YAML and validates it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse failed: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

func (c *Catalog) validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("catalog: no categories defined")
	}
	seen := make(map[string]bool)
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("catalog: category with empty name")
		}
		if seen[cat.Name] {
			return fmt.Errorf("catalog: duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
		if len(cat.Subcategories) == 0 {
			return fmt.Errorf("catalog: category %q has no subcategories", cat.Name)
		}
		for _, sub := range cat.Subcategories {
			if len(sub.Plans) == 0 {
				return fmt.Errorf("catalog: subcategory %q/%q has no plans", cat.Name, sub.Name)
			}
			for _, p := range sub.Plans {
				if p.Price <= 0 {
					return fmt.Errorf("catalog: plan %q/%q/%q has non-positive price", cat.Name, sub.Name, p.Name)
				}
			}
		}
	}
	return nil
}

// CategoryNames returns all category names in catalog order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// SubcategoryNames returns the subcategory names under the given category.
// The second return is false when the category does not exist.
func (c *Catalog) SubcategoryNames(category string) ([]string, bool) {
	cat, ok := c.category(category)
	if !ok {
		return nil, false
	}
	names := make([]string, 0, len(cat.Subcategories))
	for _, sub := range cat.Subcategories {
		names = append(names, sub.Name)
	}
	return names, true
}

// Plans returns the plans under the given category and subcategory.
func (c *Catalog) Plans(category, subcategory string) ([]Plan, bool) {
	cat, ok := c.category(category)
	if !ok {
		return nil, false
	}
	for _, sub := range cat.Subcategories {
		if sub.Name == subcategory {
			return sub.Plans, true
		}
	}
	return nil, false
}

// FindPlan resolves a plan by exact category, subcategory, and plan name.
func (c *Catalog) FindPlan(category, subcategory, plan string) (Plan, bool) {
	plans, ok := c.Plans(category, subcategory)
	if !ok {
		return Plan{}, false
	}
	for _, p := range plans {
		if p.Name == plan {
			return p, true
		}
	}
	return Plan{}, false
}

func (c *Catalog) category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}
