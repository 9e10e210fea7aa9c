package pipelines

import (
	"go.nownabe.dev/csvetl"
)

// LandsatIndex builds a pipeline for cloud_storage_geo_index.landsat_index
// from gs://gcp-public-data-landsat/index.csv.gz.
func LandsatIndex(n csvetl.Notifier) *csvetl.Pipeline {
	return &csvetl.Pipeline{
		Name:        "cloud_storage_geo_index.landsat_index",
		Description: "Index of Landsat scenes in Cloud Storage",
		Schedule:    "@daily",
		Compression: csvetl.CompressionGzip,
		Rename: lowerRename(
			"SCENE_ID", "PRODUCT_ID", "SPACECRAFT_ID", "SENSOR_ID", "DATE_ACQUIRED",
			"SENSING_TIME", "COLLECTION_NUMBER", "COLLECTION_CATEGORY", "DATA_TYPE",
			"WRS_PATH", "WRS_ROW", "CLOUD_COVER", "NORTH_LAT", "SOUTH_LAT",
			"WEST_LON", "EAST_LON", "TOTAL_SIZE", "BASE_URL",
		),
		Schema:    Schema("cloud_storage_geo_index.landsat_index"),
		ChunkSize: 500000,
		Notifier:  n,
	}
}

// Sentinel2Index builds a pipeline for cloud_storage_geo_index.sentinel_2_index
// from gs://gcp-public-data-sentinel-2/index.csv.gz.
func Sentinel2Index(n csvetl.Notifier) *csvetl.Pipeline {
	return &csvetl.Pipeline{
		Name:        "cloud_storage_geo_index.sentinel_2_index",
		Description: "Index of Sentinel-2 granules in Cloud Storage",
		Schedule:    "@daily",
		Compression: csvetl.CompressionGzip,
		Rename: lowerRename(
			"GRANULE_ID", "PRODUCT_ID", "DATATAKE_IDENTIFIER", "MGRS_TILE", "SENSING_TIME",
			"TOTAL_SIZE", "CLOUD_COVER", "GEOMETRIC_QUALITY_FLAG", "GENERATION_TIME",
			"NORTH_LAT", "SOUTH_LAT", "WEST_LON", "EAST_LON", "BASE_URL",
		),
		Schema:    Schema("cloud_storage_geo_index.sentinel_2_index"),
		ChunkSize: 500000,
		Notifier:  n,
	}
}
