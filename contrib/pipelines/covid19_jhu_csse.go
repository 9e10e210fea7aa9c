package pipelines

import (
	"context"
	"strings"

	"golang.org/x/xerrors"

	"go.nownabe.dev/csvetl"
)

// COVID19Summary builds a pipeline for covid19_jhu_csse.summary from the daily reports of
// the JHU CSSE repository. Columns missing from older report layouts are left empty.
func COVID19Summary(n csvetl.Notifier) *csvetl.Pipeline {
	return &csvetl.Pipeline{
		Name:        "covid19_jhu_csse.summary",
		Description: "JHU CSSE COVID-19 daily reports",
		Schedule:    "@daily",
		Rename: map[string]string{
			"Province_State": "province_state",
			"Province/State": "province_state",
			"Country_Region": "country_region",
			"Country/Region": "country_region",
			"Last_Update":    "last_update",
			"Last Update":    "last_update",
			"Lat":            "latitude",
			"Latitude":       "latitude",
			"Long":           "longitude",
			"Long_":          "longitude",
			"Longitude":      "longitude",
			"Confirmed":      "confirmed",
			"Deaths":         "deaths",
			"Recovered":      "recovered",
			"Active":         "active",
			"FIPS":           "fips",
			"Admin2":         "admin2",
			"Combined_Key":   "combined_key",
		},
		Steps: []csvetl.Step{
			addMissing(
				"province_state", "latitude", "longitude", "recovered",
				"active", "fips", "admin2", "combined_key",
			),
			csvetl.DeriveColumn("location_geom", locationGeom),
			reportDate,
		},
		Schema:   Schema("covid19_jhu_csse.summary"),
		Notifier: n,
	}
}

// locationGeom renders a WKT point from longitude and latitude.
// Rows without coordinates get an empty value.
func locationGeom(r csvetl.Row) (string, error) {
	lon, ok := r.Lookup("longitude")
	if !ok {
		return "", xerrors.Errorf("longitude: %w", csvetl.ErrColumnNotFound)
	}
	lat, ok := r.Lookup("latitude")
	if !ok {
		return "", xerrors.Errorf("latitude: %w", csvetl.ErrColumnNotFound)
	}

	lon, lat = strings.TrimSpace(lon), strings.TrimSpace(lat)
	if lon == "" && lat == "" {
		return "", nil
	}

	return "POINT(" + lon + " " + lat + ")", nil
}

// reportDate fills date from the date part of last_update when the report has no date column.
var reportDate = csvetl.Step(func(ctx context.Context, f *csvetl.Frame) error {
	if f.Has("date") {
		return nil
	}

	if err := f.Derive("date", func(r csvetl.Row) (string, error) {
		return r.Get("last_update"), nil
	}); err != nil {
		return err
	}

	return csvetl.ConvertTimes(csvetl.LayoutDate, []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"1/2/2006 15:04",
		"1/2/06 15:04",
		"1/2/2006 15:04:05",
	}, "date")(ctx, f)
})
