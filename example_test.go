package csvetl_test

import (
	"context"
	"os"
	"runtime"
	"strings"

	"golang.org/x/text/encoding/japanese"

	"go.nownabe.dev/csvetl"
)

func Example() {
	etl, err := csvetl.New(csvetl.WithLogLevel("debug"), csvetl.WithConcurrency(runtime.NumCPU()))
	if err != nil {
		panic(err)
	}

	etl.MustAddPipeline(context.Background(), &csvetl.Pipeline{
		Name:            "example_bank.statements",
		Schedule:        "0 6 * * *",
		Encoding:        japanese.ShiftJIS,
		SkipLeadingRows: 1,
		SourceColumns:   []string{"date", "description", "amount"},
		Steps: []csvetl.Step{
			csvetl.ConvertTimes(csvetl.LayoutDate, []string{"2006/01/02"}, "date"),
			csvetl.DeriveColumn("amount", func(r csvetl.Row) (string, error) {
				return strings.ReplaceAll(r.Get("amount"), ",", ""), nil
			}),
		},
		Notifier: &csvetl.SlackNotifier{
			Token:   os.Getenv("SLACK_TOKEN"),
			Channel: os.Getenv("SLACK_CHANNEL"),
		},
	})

	job, err := csvetl.JobFromEnv(os.LookupEnv)
	if err != nil {
		panic(err)
	}

	if err := etl.Run(context.Background(), job); err != nil {
		os.Exit(1)
	}
}
