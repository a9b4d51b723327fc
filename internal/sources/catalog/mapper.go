package catalog

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
)

// Mapper converts a catalog file to a domain.Catalog
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapCatalog validates f and flattens its lead-source tree into taxonomy rows.
func (m *Mapper) MapCatalog(f *File) (*domain.Catalog, error) {
	if f == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	fiscalYears, err := cleanList("fiscal_years", f.FiscalYears)
	if err != nil {
		return nil, err
	}
	quarters, err := cleanList("quarters", f.Quarters)
	if err != nil {
		return nil, err
	}
	geos, err := cleanList("geos", f.Geos)
	if err != nil {
		return nil, err
	}

	var entries []domain.TaxonomyEntry
	for gi, g := range f.LeadSources {
		group := strings.TrimSpace(g.Group)
		if group == "" {
			return nil, fmt.Errorf("lead_sources[%d]: group name is empty", gi)
		}

		for ci, c := range g.Categories {
			category := strings.TrimSpace(c.Name)
			if category == "" {
				return nil, fmt.Errorf("lead_sources[%d].categories[%d]: category name is empty", gi, ci)
			}

			for si, s := range c.Sources {
				source := strings.TrimSpace(s)
				if source == "" {
					return nil, fmt.Errorf("lead_sources[%d].categories[%d].sources[%d]: source is empty", gi, ci, si)
				}
				entries = append(entries, domain.TaxonomyEntry{
					Group:    group,
					Category: category,
					Source:   source,
				})
			}
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no lead sources found in catalog")
	}

	return &domain.Catalog{
		FiscalYears: fiscalYears,
		Quarters:    quarters,
		Geos:        geos,
		Taxonomy:    domain.NewTaxonomy(entries),
	}, nil
}

// cleanList trims values and rejects empty lists or blank values.
func cleanList(field string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: at least one value is required", field)
	}
	out := make([]string, 0, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%s[%d]: value is empty", field, i)
		}
		out = append(out, v)
	}
	return out, nil
}
