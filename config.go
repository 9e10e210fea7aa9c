package csvetl

import (
	"encoding/json"
	"os"
	"path"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Environment variables read by JobFromEnv.
const (
	EnvPipelineName   = "PIPELINE_NAME"
	EnvSourceURL      = "SOURCE_URL"
	EnvSourceFile     = "SOURCE_FILE"
	EnvFTPHost        = "FTP_HOST"
	EnvFTPDir         = "FTP_DIR"
	EnvFTPFilename    = "FTP_FILENAME"
	EnvFileName       = "FILE_NAME"
	EnvStartYear      = "START_YEAR"
	EnvEndYear        = "END_YEAR"
	EnvTargetFile     = "TARGET_FILE"
	EnvTargetBucket   = "TARGET_GCS_BUCKET"
	EnvTargetPath     = "TARGET_GCS_PATH"
	EnvCSVHeaders     = "CSV_HEADERS"
	EnvRenameMappings = "RENAME_MAPPINGS"
	EnvDataNames      = "DATA_NAMES"
	EnvChunkSize      = "CHUNKSIZE"
	EnvSourceEncoding = "SOURCE_ENCODING"
)

const defaultTargetFile = "files/data_output.csv"

// JobFromEnv builds a Job from environment variables looked up by lookup.
// os.LookupEnv is used when lookup is nil.
func JobFromEnv(lookup func(string) (string, bool)) (Job, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	job := Job{
		Pipeline:      get(EnvPipelineName),
		TargetFile:    get(EnvTargetFile),
		TargetBucket:  get(EnvTargetBucket),
		TargetPath:    get(EnvTargetPath),
		ArchiveMember: get(EnvFileName),
		Encoding:      get(EnvSourceEncoding),
	}

	if job.TargetFile == "" {
		job.TargetFile = defaultTargetFile
	}

	if job.TargetBucket != "" && job.TargetPath == "" {
		return Job{}, xerrors.Errorf("%s is required when %s is set", EnvTargetPath, EnvTargetBucket)
	}

	urls, err := stringOrList(get(EnvSourceURL))
	if err != nil {
		return Job{}, xerrors.Errorf("failed to parse %s: %w", EnvSourceURL, err)
	}

	if host := get(EnvFTPHost); host != "" {
		urls = []string{"ftp://" + host + path.Join("/", get(EnvFTPDir), get(EnvFTPFilename))}
	}

	files, err := stringOrList(get(EnvSourceFile))
	if err != nil {
		return Job{}, xerrors.Errorf("failed to parse %s: %w", EnvSourceFile, err)
	}

	job.Sources, err = pairSources(urls, files)
	if err != nil {
		return Job{}, err
	}

	if job.StartYear, err = intEnv(get(EnvStartYear), EnvStartYear); err != nil {
		return Job{}, err
	}
	if job.EndYear, err = intEnv(get(EnvEndYear), EnvEndYear); err != nil {
		return Job{}, err
	}
	if job.ChunkSize, err = intEnv(get(EnvChunkSize), EnvChunkSize); err != nil {
		return Job{}, err
	}
	if job.ChunkSize < 0 {
		return Job{}, xerrors.Errorf("%s must not be negative: %d", EnvChunkSize, job.ChunkSize)
	}

	if v := get(EnvCSVHeaders); v != "" {
		if err := json.Unmarshal([]byte(v), &job.Headers); err != nil {
			return Job{}, xerrors.Errorf("failed to parse %s: %w", EnvCSVHeaders, err)
		}
	}

	if v := get(EnvRenameMappings); v != "" {
		if err := json.Unmarshal([]byte(v), &job.RenameMappings); err != nil {
			return Job{}, xerrors.Errorf("failed to parse %s: %w", EnvRenameMappings, err)
		}
	}

	if v := get(EnvDataNames); v != "" {
		if err := json.Unmarshal([]byte(v), &job.SourceColumns); err != nil {
			return Job{}, xerrors.Errorf("failed to parse %s: %w", EnvDataNames, err)
		}
	}

	return job, nil
}

// stringOrList accepts either a plain string or a JSON array of strings.
func stringOrList(v string) ([]string, error) {
	if v == "" {
		return nil, nil
	}

	if !strings.HasPrefix(v, "[") {
		return []string{v}, nil
	}

	var list []string
	if err := json.Unmarshal([]byte(v), &list); err != nil {
		return nil, err
	}

	return list, nil
}

func pairSources(urls, files []string) ([]Source, error) {
	sources := make([]Source, len(urls))

	switch {
	case len(files) == len(urls):
		for i := range urls {
			sources[i] = Source{URL: urls[i], File: files[i]}
		}
	case len(files) == 1:
		for i := range urls {
			f := files[0]
			if len(urls) > 1 {
				f = suffixed(f, strconv.Itoa(i))
			}
			sources[i] = Source{URL: urls[i], File: f}
		}
	case len(files) == 0:
		for i := range urls {
			sources[i] = Source{URL: urls[i]}
		}
	default:
		return nil, xerrors.Errorf(
			"%s has %d entries but %s has %d", EnvSourceFile, len(files), EnvSourceURL, len(urls))
	}

	return sources, nil
}

func intEnv(v, key string) (int, error) {
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, xerrors.Errorf("failed to parse %s: %w", key, err)
	}

	return n, nil
}
