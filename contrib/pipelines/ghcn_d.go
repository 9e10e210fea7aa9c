package pipelines

import (
	"strings"

	"go.nownabe.dev/csvetl"
)

// GHCNDCountries builds a pipeline for ghcn_d.ghcnd_countries.
// The source is a text file whose lines hold a two letter code followed by the country name.
func GHCNDCountries(n csvetl.Notifier) *csvetl.Pipeline {
	const source = "code name"

	return &csvetl.Pipeline{
		Name:          "ghcn_d.ghcnd_countries",
		Description:   "GHCN-Daily country codes from the NOAA FTP server",
		Schedule:      "@hourly",
		Parser:        csvetl.LinesParser(),
		SourceColumns: []string{source},
		Steps: []csvetl.Step{
			csvetl.DeriveColumn("code", func(r csvetl.Row) (string, error) {
				code, _ := splitCountry(r.Get(source))
				return code, nil
			}),
			csvetl.DeriveColumn("name", func(r csvetl.Row) (string, error) {
				_, name := splitCountry(r.Get(source))
				return name, nil
			}),
		},
		Schema:   Schema("ghcn_d.ghcnd_countries"),
		Notifier: n,
	}
}

// splitCountry splits "AC Antigua and Barbuda" into "AC" and "Antigua and Barbuda".
func splitCountry(line string) (code, name string) {
	line = strings.TrimSpace(line)
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}
