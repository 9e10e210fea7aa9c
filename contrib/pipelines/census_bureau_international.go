package pipelines

import (
	"go.nownabe.dev/csvetl"
)

var countryCode = []string{"country_code"}

// CensusCountryNamesArea builds a pipeline for census_bureau_international.country_names_area.
// Multiple sources are left-joined on country_code in the given order.
func CensusCountryNamesArea(n csvetl.Notifier) *csvetl.Pipeline {
	return &csvetl.Pipeline{
		Name:        "census_bureau_international.country_names_area",
		Description: "International Data Base country names and areas",
		Schedule:    "@daily",
		JoinKeys:    countryCode,
		Schema:      Schema("census_bureau_international.country_names_area"),
		Notifier:    n,
	}
}

// CensusMidyearPopulationAgeSex builds a pipeline for
// census_bureau_international.midyear_population_age_sex.
func CensusMidyearPopulationAgeSex(n csvetl.Notifier) *csvetl.Pipeline {
	return &csvetl.Pipeline{
		Name:        "census_bureau_international.midyear_population_age_sex",
		Description: "International Data Base midyear population by age and sex",
		Schedule:    "@daily",
		JoinKeys:    countryCode,
		Steps: []csvetl.Step{
			dropIfPresent("country_area"),
			sexNames,
		},
		Schema:   Schema("census_bureau_international.midyear_population_age_sex"),
		Notifier: n,
	}
}

// sexNames names sex codes 2 and 3. Other codes become empty.
var sexNames = csvetl.DeriveColumn("sex", func(r csvetl.Row) (string, error) {
	switch r.Get("sex") {
	case "2":
		return "Male", nil
	case "3":
		return "Female", nil
	default:
		return "", nil
	}
})
