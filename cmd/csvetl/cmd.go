package main

import (
	"fmt"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"go.nownabe.dev/csvetl"
)

var now = time.Now

func newRootCmd(lookup func(string) (string, bool)) *cobra.Command {
	var definitions string

	cmd := &cobra.Command{
		Use:          "csvetl",
		Short:        "Download, transform and upload CSV files for warehouse loads",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&definitions, "definitions", "", "YAML file with additional pipeline definitions")

	cmd.AddCommand(
		runCmd(&definitions, lookup),
		listCmd(&definitions, lookup),
		schemaCmd(&definitions, lookup),
	)

	return cmd
}

func runCmd(definitions *string, lookup func(string) (string, bool)) *cobra.Command {
	var (
		logLevel    string
		pretty      bool
		concurrency int
		noUpload    bool
	)

	cmd := &cobra.Command{
		Use:   "run [PIPELINE]",
		Short: "Run a job configured by environment variables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []csvetl.Option{
				csvetl.WithLogLevel(logLevel),
				csvetl.WithLogWriter(cmd.ErrOrStderr()),
				csvetl.WithConcurrency(concurrency),
			}
			if pretty {
				opts = append(opts, csvetl.WithPrettyLogging())
			}

			etl, err := newETL(cmd.Context(), *definitions, lookup, opts...)
			if err != nil {
				return err
			}

			job, err := csvetl.JobFromEnv(lookup)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				job.Pipeline = args[0]
			}
			if job.Pipeline == "" {
				return xerrors.Errorf("pipeline is required as an argument or %s", csvetl.EnvPipelineName)
			}

			if noUpload {
				job.TargetBucket = ""
			}

			return etl.Run(cmd.Context(), job)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "human friendly logs")
	cmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent downloads")
	cmd.Flags().BoolVar(&noUpload, "no-upload", false, "keep the output locally")

	return cmd
}

func listCmd(definitions *string, lookup func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pipelines with their schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			etl, err := newETL(cmd.Context(), *definitions, lookup)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSCHEDULE\tNEXT RUN")

			from := now()
			for _, p := range etl.Pipelines() {
				next := "-"
				if t, ok := csvetl.NextRun(p.Schedule, from); ok {
					next = t.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Schedule, next)
			}

			return w.Flush()
		},
	}
}

func schemaCmd(definitions *string, lookup func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "schema PIPELINE",
		Short: "Print the warehouse schema of a pipeline as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			etl, err := newETL(cmd.Context(), *definitions, lookup)
			if err != nil {
				return err
			}

			p, ok := etl.Pipeline(args[0])
			if !ok {
				return xerrors.Errorf("%q: %w", args[0], csvetl.ErrUnknownPipeline)
			}
			if len(p.Schema) == 0 {
				return xerrors.Errorf("pipeline %s has no schema", p.Name)
			}

			b, err := csvetl.SchemaJSON(p.Schema)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}
