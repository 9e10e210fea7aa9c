// Package pipelines provides ready-made pipelines for public datasets.
// Each pipeline is named after its destination table as "<dataset>.<table>".
package pipelines

import (
	"context"
	"embed"
	"strings"

	"cloud.google.com/go/bigquery"

	"go.nownabe.dev/csvetl"
)

//go:embed schemas/*.json
var schemas embed.FS

// Schema returns the embedded warehouse schema of the named table.
func Schema(name string) bigquery.Schema {
	b, err := schemas.ReadFile("schemas/" + name + ".json")
	if err != nil {
		panic(err)
	}
	return csvetl.MustSchemaFromJSON(b)
}

// All returns every pipeline of the catalog with n as their notifier. n may be nil.
func All(n csvetl.Notifier) []*csvetl.Pipeline {
	return []*csvetl.Pipeline{
		GHCNDCountries(n),
		LandsatIndex(n),
		Sentinel2Index(n),
		COVID19Summary(n),
		AustinBikeshareTrips(n),
		AustinWasteAndDiversion(n),
		IowaLiquorSales(n),
		CensusCountryNamesArea(n),
		CensusMidyearPopulationAgeSex(n),
		PoliticalAdsAdvertiserGeoSpend(n),
		PoliticalAdsCreativeStats(n),
		EPAVOCDailySummary(n),
		EPAAnnualSummaries(n),
	}
}

// MustAddPipelines adds all pipelines of the catalog to etl.
func MustAddPipelines(ctx context.Context, etl csvetl.ETL, n csvetl.Notifier) {
	for _, p := range All(n) {
		etl.MustAddPipeline(ctx, p)
	}
}

// lowerRename maps each name to its lower case form, like "SCENE_ID" to "scene_id".
func lowerRename(names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[n] = strings.ToLower(n)
	}
	return m
}

// dropIfPresent drops the columns the frame has.
func dropIfPresent(cols ...string) csvetl.Step {
	return func(_ context.Context, f *csvetl.Frame) error {
		for _, c := range cols {
			if !f.Has(c) {
				continue
			}
			if err := f.Drop(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// addMissing adds the columns the frame lacks with empty values.
func addMissing(cols ...string) csvetl.Step {
	return func(_ context.Context, f *csvetl.Frame) error {
		for _, c := range cols {
			if f.Has(c) {
				continue
			}
			if err := f.Derive(c, func(csvetl.Row) (string, error) { return "", nil }); err != nil {
				return err
			}
		}
		return nil
	}
}
