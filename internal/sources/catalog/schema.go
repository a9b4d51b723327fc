package catalog

// File represents the top-level structure of a catalog file (yaml or toml).
type File struct {
	FiscalYears []string      `yaml:"fiscal_years" toml:"fiscal_years"`
	Quarters    []string      `yaml:"quarters" toml:"quarters"`
	Geos        []string      `yaml:"geos" toml:"geos"`
	LeadSources []GroupConfig `yaml:"lead_sources" toml:"lead_sources"`
}

// GroupConfig is one lead-source group and its categories.
type GroupConfig struct {
	Group      string           `yaml:"group" toml:"group"`
	Categories []CategoryConfig `yaml:"categories" toml:"categories"`
}

// CategoryConfig is one category and the sources it offers.
type CategoryConfig struct {
	Name    string   `yaml:"name" toml:"name"`
	Sources []string `yaml:"sources" toml:"sources"`
}
