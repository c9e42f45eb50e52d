// Package crba holds version information of the CRBA ETL pipeline.
package crba

var (
	// Version of crba, set during the build.
	Version = "v0.1.0"

	// Build timestamp, set during the build.
	Build = "n/a"
)
