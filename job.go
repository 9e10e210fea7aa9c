package csvetl

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// YearIterator is the placeholder in a source URL which is expanded into
// one source per year.
const YearIterator = "YEAR_ITERATOR"

// Job is a single invocation of a pipeline.
// The scheduler usually supplies it through environment variables, see JobFromEnv.
type Job struct {
	// Pipeline is the name of the pipeline to run.
	Pipeline string

	Sources []Source

	// StartYear and EndYear bound the expansion of YearIterator.
	// EndYear defaults to the current year.
	StartYear int
	EndYear   int

	// TargetFile is the local path of the transformed CSV.
	TargetFile string

	// TargetBucket and TargetPath locate the uploaded CSV in Cloud Storage.
	// Upload is skipped when TargetBucket is empty.
	TargetBucket string
	TargetPath   string

	// Overrides of the pipeline definition.
	ArchiveMember  string
	Headers        []string
	RenameMappings map[string]string
	SourceColumns  []string
	ChunkSize      int
	Encoding       string
}

// Source is a remote file and the local path it is downloaded to.
type Source struct {
	URL  string
	File string

	// Optional sources which don't exist are skipped.
	Optional bool
}

// TargetURI returns the Cloud Storage URI of the uploaded CSV.
func (j *Job) TargetURI() string {
	return fmt.Sprintf("gs://%s/%s", j.TargetBucket, j.TargetPath)
}

// resolveSources expands YearIterator placeholders and fills local paths.
func (j *Job) resolveSources(now time.Time) []Source {
	end := j.EndYear
	if end == 0 {
		end = now.Year()
	}
	start := j.StartYear
	if start == 0 {
		start = end
	}

	var resolved []Source
	for i, s := range j.Sources {
		if s.File == "" {
			s.File = defaultSourceFile(s.URL, i)
		}

		if !strings.Contains(s.URL, YearIterator) {
			resolved = append(resolved, s)
			continue
		}

		for y := start; y <= end; y++ {
			year := strconv.Itoa(y)
			resolved = append(resolved, Source{
				URL:      strings.ReplaceAll(s.URL, YearIterator, year),
				File:     suffixed(s.File, year),
				Optional: true,
			})
		}
	}

	return resolved
}

func defaultSourceFile(url string, i int) string {
	name := filepath.Base(url)
	if name == "." || name == "/" || name == "" {
		name = "source"
	}
	return filepath.Join("files", fmt.Sprintf("%d_%s", i, name))
}

// suffixed inserts suffix before the extension: "files/data.csv" -> "files/data_1990.csv".
func suffixed(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}
