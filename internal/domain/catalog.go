package domain

import "slices"

// Catalog groups every option list offered by the form.
type Catalog struct {
	FiscalYears []string
	Quarters    []string
	Geos        []string
	Taxonomy    *Taxonomy
}

// Built-in enumerations used when no catalog file is configured.
var (
	DefaultFiscalYears = []string{"FY24", "FY25", "FY26"}
	DefaultQuarters    = []string{"Q1", "Q2", "Q3", "Q4"}
	DefaultGeos        = []string{"US", "UK", "CEE", "RoW"}
)

// DefaultLeadSources is the built-in lead-source taxonomy.
var DefaultLeadSources = []TaxonomyEntry{
	{Group: "Marketing", Category: "Inbound - Product", Source: "PAYG GCP"},
	{Group: "Marketing", Category: "Inbound - Product", Source: "PAYG Azure"},
	{Group: "Marketing", Category: "Inbound - Product", Source: "PAYG AWS"},
	{Group: "Marketing", Category: "Inbound - Product", Source: "Demo Project"},
	{Group: "Marketing", Category: "Inbound - Product", Source: "Feature Request"},
	{Group: "Marketing", Category: "Events", Source: "Empower"},
	{Group: "Marketing", Category: "Events", Source: "Trade Show"},
	{Group: "Marketing", Category: "Events", Source: "Meetup/Community"},
	{Group: "Marketing", Category: "Events", Source: "Partner Event"},
	{Group: "Marketing", Category: "Events", Source: "Webinar"},
	{Group: "Marketing", Category: "Events", Source: "Workshop"},
	{Group: "Marketing", Category: "Events", Source: "CXO"},
	{Group: "Marketing", Category: "Website", Source: "Contact Form"},
	{Group: "Marketing", Category: "Website", Source: "Newsletter"},
	{Group: "Marketing", Category: "Website", Source: "Qualified Website"},
	{Group: "Marketing", Category: "Website", Source: "Integration Request"},
	{Group: "Marketing", Category: "Website", Source: "Gated Content"},
	{Group: "Marketing", Category: "Website", Source: "Expert Program"},
	{Group: "Marketing", Category: "Website", Source: "Webinar on Demand"},
	{Group: "Marketing", Category: "Website", Source: "User Review"},
	{Group: "Marketing", Category: "Website", Source: "Developer Portal"},
	{Group: "Marketing", Category: "Digital", Source: "Typeform"},
	{Group: "Marketing", Category: "Digital", Source: "LinkedIn"},
	{Group: "Marketing", Category: "Digital", Source: "Unbounce"},
	{Group: "Marketing", Category: "Digital", Source: "Trumpet"},
	{Group: "Marketing", Category: "Digital", Source: "Google Ads"},
	{Group: "Marketing", Category: "Digital", Source: "Bing"},
	{Group: "Marketing", Category: "Digital", Source: "Reddit"},
	{Group: "Marketing", Category: "Digital", Source: "Facebook"},
	{Group: "Marketing", Category: "Digital", Source: "Customer.io"},
	{Group: "Partners", Category: "Partner Connect", Source: "Snowflake Partner Connect"},
	{Group: "Partners", Category: "Marketplace", Source: "Azure Marketplace"},
	{Group: "Partners", Category: "Marketplace", Source: "Google Marketplace"},
	{Group: "Partners", Category: "Referral", Source: "Partner Referral"},
	{Group: "Product", Category: "Education", Source: "Academy"},
	{Group: "Sales", Category: "AE Outbound", Source: "Apollo"},
	{Group: "Sales", Category: "AE Outbound", Source: "Cognism"},
	{Group: "Sales", Category: "AE Outbound", Source: "Outreach Calendar"},
	{Group: "Sales", Category: "BDR Outbound", Source: "Direct"},
	{Group: "Sales", Category: "BDR Outbound", Source: "Apollo"},
	{Group: "Sales", Category: "BDR Outbound", Source: "Cognism"},
	{Group: "Sales", Category: "BDR Outbound", Source: "Lusha"},
}

// DefaultCatalog returns a fresh copy of the built-in catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		FiscalYears: slices.Clone(DefaultFiscalYears),
		Quarters:    slices.Clone(DefaultQuarters),
		Geos:        slices.Clone(DefaultGeos),
		Taxonomy:    NewTaxonomy(DefaultLeadSources),
	}
}

// ValidSelection reports whether every value is one of the offered options.
func (c *Catalog) ValidSelection(fiscalYear, quarter, geo, group, category, source string) bool {
	return slices.Contains(c.FiscalYears, fiscalYear) &&
		slices.Contains(c.Quarters, quarter) &&
		slices.Contains(c.Geos, geo) &&
		c.Taxonomy.Contains(group, category, source)
}
