package domain

// TaxonomyEntry is one valid lead-source combination.
type TaxonomyEntry struct {
	Group    string `json:"group" yaml:"group"`
	Category string `json:"category" yaml:"category"`
	Source   string `json:"source" yaml:"source"`
}

// Taxonomy is an immutable three-level lookup (group -> category -> source).
//
// Lookups return distinct values in first-appearance order. Callers must not
// rely on that order beyond display purposes.
type Taxonomy struct {
	entries []TaxonomyEntry
}

// NewTaxonomy copies entries into a new table.
func NewTaxonomy(entries []TaxonomyEntry) *Taxonomy {
	cp := make([]TaxonomyEntry, len(entries))
	copy(cp, entries)
	return &Taxonomy{entries: cp}
}

// Entries returns a copy of the table rows.
func (t *Taxonomy) Entries() []TaxonomyEntry {
	cp := make([]TaxonomyEntry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

// Len returns the number of rows.
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

// Groups returns all distinct groups.
func (t *Taxonomy) Groups() []string {
	return t.distinct(func(e TaxonomyEntry) (string, bool) {
		return e.Group, true
	})
}

// Categories returns the distinct categories of group, empty if none match.
func (t *Taxonomy) Categories(group string) []string {
	return t.distinct(func(e TaxonomyEntry) (string, bool) {
		return e.Category, e.Group == group
	})
}

// Sources returns the distinct sources paired with (group, category), empty if none match.
func (t *Taxonomy) Sources(group, category string) []string {
	return t.distinct(func(e TaxonomyEntry) (string, bool) {
		return e.Source, e.Group == group && e.Category == category
	})
}

// Contains reports whether the exact triple is a row of the table.
func (t *Taxonomy) Contains(group, category, source string) bool {
	for _, e := range t.entries {
		if e.Group == group && e.Category == category && e.Source == source {
			return true
		}
	}
	return false
}

func (t *Taxonomy) distinct(pick func(TaxonomyEntry) (string, bool)) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, e := range t.entries {
		v, ok := pick(e)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
