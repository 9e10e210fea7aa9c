package pipelines

import (
	"go.nownabe.dev/csvetl"
)

// EPAVOCDailySummary builds a pipeline for epa_historical_air_quality.voc_daily_summary.
// Jobs usually fetch one ZIP file per year with csvetl.YearIterator in the source URL.
func EPAVOCDailySummary(n csvetl.Notifier) *csvetl.Pipeline {
	return epaPipeline(
		"epa_historical_air_quality.voc_daily_summary",
		"Daily summaries of volatile organic compounds",
		"30 13 * * *",
		2500000,
		n,
	)
}

// EPAAnnualSummaries builds a pipeline for epa_historical_air_quality.annual_summaries.
func EPAAnnualSummaries(n csvetl.Notifier) *csvetl.Pipeline {
	return epaPipeline(
		"epa_historical_air_quality.annual_summaries",
		"Annual summaries of concentrations by monitor",
		"0 0 * * *",
		750000,
		n,
	)
}

// epaPipeline reads yearly files whose header is replaced by the schema's field names.
func epaPipeline(name, description, schedule string, chunkSize int, n csvetl.Notifier) *csvetl.Pipeline {
	schema := Schema(name)

	return &csvetl.Pipeline{
		Name:            name,
		Description:     description,
		Schedule:        schedule,
		Compression:     csvetl.CompressionZip,
		SkipLeadingRows: 1,
		SourceColumns:   csvetl.SchemaColumns(schema),
		Schema:          schema,
		ChunkSize:       chunkSize,
		Notifier:        n,
	}
}
