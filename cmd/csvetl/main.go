// Command csvetl runs pipelines of the catalog and of YAML definitions.
//
// A job is configured by environment variables, see csvetl.JobFromEnv:
//
//	PIPELINE_NAME=ghcn_d.ghcnd_countries \
//	SOURCE_URL=ftp://ftp.ncdc.noaa.gov/pub/data/ghcn/daily/ghcnd-countries.txt \
//	TARGET_GCS_BUCKET=my-bucket TARGET_GCS_PATH=data/ghcn_d/countries.csv \
//	csvetl run
package main

import (
	"context"
	"os"

	"go.nownabe.dev/csvetl"
	"go.nownabe.dev/csvetl/contrib/pipelines"
)

func main() {
	if err := newRootCmd(os.LookupEnv).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newETL registers the catalog and the pipelines of the definitions file, if any.
func newETL(ctx context.Context, definitions string, lookup func(string) (string, bool), opts ...csvetl.Option) (csvetl.ETL, error) {
	etl, err := csvetl.New(opts...)
	if err != nil {
		return nil, err
	}

	n := notifierFromEnv(lookup)
	pipelines.MustAddPipelines(ctx, etl, n)

	if definitions == "" {
		return etl, nil
	}

	f, err := os.Open(definitions)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ps, err := csvetl.LoadDefinitions(f, n)
	if err != nil {
		return nil, err
	}

	for _, p := range ps {
		if err := etl.AddPipeline(ctx, p); err != nil {
			return nil, err
		}
	}

	return etl, nil
}

func notifierFromEnv(lookup func(string) (string, bool)) csvetl.Notifier {
	token, _ := lookup("SLACK_TOKEN")
	channel, _ := lookup("SLACK_CHANNEL")
	if token == "" || channel == "" {
		return nil
	}

	return &csvetl.SlackNotifier{
		Token:     token,
		Channel:   channel,
		Username:  "csvetl",
		IconEmoji: ":truck:",
	}
}
