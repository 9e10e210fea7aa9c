package pipelines

import (
	"go.nownabe.dev/csvetl"
)

// IowaLiquorSales builds a pipeline for iowa_liquor_sales.sales.
func IowaLiquorSales(n csvetl.Notifier) *csvetl.Pipeline {
	return &csvetl.Pipeline{
		Name:        "iowa_liquor_sales.sales",
		Description: "Iowa Class E liquor sales",
		Schedule:    "@daily",
		Rename: map[string]string{
			"Invoice/Item Number":   "invoice_and_item_number",
			"Date":                  "date",
			"Store Number":          "store_number",
			"Store Name":            "store_name",
			"Address":               "address",
			"City":                  "city",
			"Zip Code":              "zip_code",
			"Store Location":        "store_location",
			"County Number":         "county_number",
			"County":                "county",
			"Category":              "category",
			"Category Name":         "category_name",
			"Vendor Number":         "vendor_number",
			"Vendor Name":           "vendor_name",
			"Item Number":           "item_number",
			"Item Description":      "item_description",
			"Pack":                  "pack",
			"Bottle Volume (ml)":    "bottle_volume_ml",
			"State Bottle Cost":     "state_bottle_cost",
			"State Bottle Retail":   "state_bottle_retail",
			"Bottles Sold":          "bottles_sold",
			"Sale (Dollars)":        "sale_dollars",
			"Volume Sold (Liters)":  "volume_sold_liters",
			"Volume Sold (Gallons)": "volume_sold_gallons",
		},
		Steps: []csvetl.Step{
			csvetl.ConvertDates("date"),
		},
		Schema:    Schema("iowa_liquor_sales.sales"),
		ChunkSize: 1000000,
		Notifier:  n,
	}
}
