/*

Package csvetl is a small ETL framework for public datasets. A job downloads
source files over HTTP, FTP or from Cloud Storage, transforms them into one CSV
matching a warehouse schema and uploads the CSV to Cloud Storage where an
external loader picks it up.

Getting started

Register pipelines and run a job described by environment variables.

	package main

	import (
		"context"
		"os"

		"go.nownabe.dev/csvetl"
	)

	func main() {
		etl, err := csvetl.New(csvetl.WithLogLevel("debug"))
		if err != nil {
			panic(err)
		}

		etl.MustAddPipeline(context.Background(), &csvetl.Pipeline{
			Name: "iowa_liquor_sales.sales",
			Rename: map[string]string{
				"Invoice/Item Number": "invoice_and_item_number",
				"Date":                "date",
			},
			Steps: []csvetl.Step{
				csvetl.ConvertDates("date"),
			},
			Headers: []string{"invoice_and_item_number", "date"},
		})

		// SOURCE_URL, SOURCE_FILE, TARGET_FILE, TARGET_GCS_BUCKET and so on.
		job, err := csvetl.JobFromEnv(nil)
		if err != nil {
			panic(err)
		}
		job.Pipeline = "iowa_liquor_sales.sales"

		if err := etl.Run(context.Background(), job); err != nil {
			os.Exit(1)
		}
	}

Ready-made pipelines for several public datasets are in go.nownabe.dev/csvetl/contrib/pipelines
and the container entrypoint is go.nownabe.dev/csvetl/cmd/csvetl.

*/
package csvetl
