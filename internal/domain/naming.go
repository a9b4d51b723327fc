package domain

import "strings"

// BuildCampaignName joins the naming-convention parts with underscores.
// Spaces in label become underscores; other parts are used as given.
func BuildCampaignName(fiscalYear, quarter, geo, group, category, source, label string) string {
	return strings.Join([]string{
		fiscalYear,
		quarter,
		geo,
		group,
		category,
		source,
		strings.ReplaceAll(label, " ", "_"),
	}, "_")
}
