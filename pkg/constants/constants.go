// Package constants provides shared constants used throughout the panmap codebase.
// This includes classifier conventions, reconciliation markers, retrieval limits,
// file permissions and other values that must stay consistent across packages.
package constants

import "time"

// Classifier conventions
const (
	// AmbiguousLabel is the label the classifier writes when it cannot resolve a read
	AmbiguousLabel = "AMBIGUOUS"

	// DefaultMinConfidence is the lowest per-rank confidence score a read may carry
	DefaultMinConfidence = 0.5

	// AbundanceTolerance bounds the deviation of a profile's sum from 1.0
	AbundanceTolerance = 1e-9
)

// Reconciliation markers
const (
	// DefaultPanPrefix is prepended to every canonical name in a reconciled table
	DefaultPanPrefix = "pan_"

	// StatusPresent marks a taxon found directly in the reference catalog
	StatusPresent = "AA_present"

	// StatusAbsent marks a taxon found in neither the catalog nor the synonym table
	StatusAbsent = "AA_absent"

	// DefaultQueryColumn is the synonym table column holding observed names
	DefaultQueryColumn = "Name in QIIME2"

	// DefaultCanonicalColumn is the synonym table column holding reference names
	DefaultCanonicalColumn = "Name in AGORA2"

	// AuditStatusHeader is the header of the audit table's status column
	AuditStatusHeader = "absent/present/renamed"

	// TotalReadsHeader is the header of the read count column
	TotalReadsHeader = "Total Reads"

	// ManifestAccessionColumn is the required column of an accession manifest
	ManifestAccessionColumn = "accession"
)

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for file-report lookups
	DefaultHTTPTimeout = 30 * time.Second

	// DownloadTimeout bounds a single read-file download attempt
	DownloadTimeout = 2 * time.Hour

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 24 * time.Hour

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxDownloadAttempts is the number of attempts made per read file
	MaxDownloadAttempts = 15

	// DefaultWorkers is the default number of samples aggregated concurrently
	DefaultWorkers = 4

	// ScannerBufferSize is the largest classifier output line accepted
	ScannerBufferSize = 1024 * 1024
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached file-report lookups
	CacheTTL = 15 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// External resource constants
const (
	// ENAFileReportURL is the ENA portal endpoint listing read files for a run
	ENAFileReportURL = "https://www.ebi.ac.uk/ena/portal/api/filereport"

	// ReadFileFields is the file-report field carrying the read file locations
	ReadFileFields = "fastq_ftp"
)
