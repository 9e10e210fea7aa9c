package pipelines

import (
	"regexp"

	"go.nownabe.dev/csvetl"
)

var singleDigitHour = regexp.MustCompile(`^(\d):(\d{2}:\d{2})$`)

// AustinBikeshareTrips builds a pipeline for austin_bikeshare.bikeshare_trips.
func AustinBikeshareTrips(n csvetl.Notifier) *csvetl.Pipeline {
	return &csvetl.Pipeline{
		Name:        "austin_bikeshare.bikeshare_trips",
		Description: "Austin MetroBike trips",
		Schedule:    "@daily",
		Rename: map[string]string{
			"Trip ID":               "trip_id",
			"Membership Type":       "subscriber_type",
			"Bicycle ID":            "bikeid",
			"Checkout Date":         "start_time",
			"Checkout Kiosk ID":     "start_station_id",
			"Checkout Kiosk":        "start_station_name",
			"Return Kiosk ID":       "end_station_id",
			"Return Kiosk":          "end_station_name",
			"Trip Duration Minutes": "duration_minutes",
			"Checkout Time":         "checkout_time",
			"Month":                 "month",
			"Year":                  "year",
		},
		Steps: []csvetl.Step{
			csvetl.DropEmpty("trip_id"),
			csvetl.ReplaceRegexp("checkout_time", singleDigitHour, "0$1:$2"),
			csvetl.DeriveColumn("start_time", checkoutTime),
			csvetl.ConvertDateTimes("start_time"),
		},
		Schema:   Schema("austin_bikeshare.bikeshare_trips"),
		Notifier: n,
	}
}

// checkoutTime appends checkout_time to start_time when start_time holds only a date.
func checkoutTime(r csvetl.Row) (string, error) {
	date := r.Get("start_time")
	t := r.Get("checkout_time")
	if len(date) == len(csvetl.LayoutUSDate) && t != "" {
		return date + " " + t, nil
	}
	return date, nil
}

// AustinWasteAndDiversion builds a pipeline for austin_waste.waste_and_diversion.
func AustinWasteAndDiversion(n csvetl.Notifier) *csvetl.Pipeline {
	return &csvetl.Pipeline{
		Name:        "austin_waste.waste_and_diversion",
		Description: "Austin Resource Recovery waste and diversion records",
		Schedule:    "@daily",
		Rename: map[string]string{
			"Load ID":      "load_id",
			"Report Date":  "report_date",
			"Load Type":    "load_type",
			"Load Time":    "load_time",
			"Load Weight":  "load_weight",
			"Dropoff Site": "dropoff_site",
			"Route Type":   "route_type",
			"Route Number": "route_number",
		},
		Steps: []csvetl.Step{
			csvetl.ConvertTimes(csvetl.LayoutDate, []string{
				csvetl.LayoutUSDate,
				csvetl.LayoutUSDateTime12,
				csvetl.LayoutUSDateTime24PM,
				csvetl.LayoutUSDateTime24,
			}, "report_date"),
			csvetl.ConvertDateTimes("load_time"),
		},
		Schema:   Schema("austin_waste.waste_and_diversion"),
		Notifier: n,
	}
}
