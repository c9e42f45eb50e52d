package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBNotConnectedError
	DBTableExistsCheckError
	DBDropTableError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaTablesExistError

	// Reference data errors
	ReferenceCountriesError
	ReferenceVariantsError
	ReferenceMappingError
	ReferenceFileError

	// Sources errors
	SourcesConfigError
	SourcesNotFoundError

	// Extraction errors
	ExtractUnsupportedFormatError
	ExtractReadError

	// Cleansing errors
	CleanseDuplicateObservationError
	ReconcileCountryKeyError
	ReconcileMissingColumnError

	// Encoding errors
	EncodeSpecError
	EncodeTreatyBodyError

	// Normalization errors
	NormalizeFilterError
	NormalizeInversionFlagError
	NormalizeDuplicateCountryError

	// Aggregation errors
	AggregateEmptyError

	// Run errors
	RunSourceError
	RunCancelledError
	RunAllSourcesFailedError
	RunNoSourcesError

	// Export errors
	ExportFormatError
	ExportCSVError
	ExportSQLiteError
	ExportPostgresError
	ExportReportError
	ExportMetricsError
)
