package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
)

func TestMapCatalog(t *testing.T) {
	f, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c, err := NewMapper().MapCatalog(f)
	if err != nil {
		t.Fatalf("MapCatalog() error = %v", err)
	}

	want := []domain.TaxonomyEntry{
		{Group: "Marketing", Category: "Events", Source: "Webinar"},
		{Group: "Marketing", Category: "Events", Source: "Workshop"},
		{Group: "Marketing", Category: "Digital", Source: "LinkedIn"},
		{Group: "Sales", Category: "BDR Outbound", Source: "Apollo"},
	}
	if diff := cmp.Diff(want, c.Taxonomy.Entries()); diff != "" {
		t.Errorf("MapCatalog() entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"US", "CEE"}, c.Geos); diff != "" {
		t.Errorf("MapCatalog() geos mismatch (-want +got):\n%s", diff)
	}
}

func TestMapCatalogTrimsValues(t *testing.T) {
	f := &File{
		FiscalYears: []string{" FY25 "},
		Quarters:    []string{"Q1"},
		Geos:        []string{"US"},
		LeadSources: []GroupConfig{{
			Group:      " Product ",
			Categories: []CategoryConfig{{Name: "Education ", Sources: []string{" Academy"}}},
		}},
	}

	c, err := NewMapper().MapCatalog(f)
	if err != nil {
		t.Fatalf("MapCatalog() error = %v", err)
	}
	if !c.ValidSelection("FY25", "Q1", "US", "Product", "Education", "Academy") {
		t.Error("MapCatalog() should trim whitespace around values")
	}
}

func TestMapCatalogErrors(t *testing.T) {
	valid := func() *File {
		return &File{
			FiscalYears: []string{"FY25"},
			Quarters:    []string{"Q1"},
			Geos:        []string{"US"},
			LeadSources: []GroupConfig{{
				Group:      "G",
				Categories: []CategoryConfig{{Name: "C", Sources: []string{"S"}}},
			}},
		}
	}

	tests := []struct {
		name   string
		mutate func(f *File)
	}{
		{"no fiscal years", func(f *File) { f.FiscalYears = nil }},
		{"blank quarter", func(f *File) { f.Quarters = []string{"Q1", " "} }},
		{"no geos", func(f *File) { f.Geos = []string{} }},
		{"blank group", func(f *File) { f.LeadSources[0].Group = "" }},
		{"blank category", func(f *File) { f.LeadSources[0].Categories[0].Name = " " }},
		{"blank source", func(f *File) { f.LeadSources[0].Categories[0].Sources = []string{""} }},
		{"no sources at all", func(f *File) { f.LeadSources[0].Categories[0].Sources = nil }},
		{"no lead sources", func(f *File) { f.LeadSources = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(f)
			if _, err := NewMapper().MapCatalog(f); err == nil {
				t.Error("MapCatalog() should return error")
			}
		})
	}

	if _, err := NewMapper().MapCatalog(nil); err == nil {
		t.Error("MapCatalog(nil) should return error")
	}
}
