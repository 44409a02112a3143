package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Status is the reconciliation outcome for one taxon.
type Status int

const (
	// Absent means the taxon matched neither the catalog nor a synonym.
	Absent Status = iota
	// Present means the taxon is in the catalog under its own name.
	Present
	// Renamed means the taxon is a synonym of a catalog name.
	Renamed
)

// String returns the string representation of a status.
func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Renamed:
		return "renamed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Decision records how one input taxon was reconciled.
type Decision struct {
	// Query is the taxon label as it appears in the input table.
	Query string `json:"query" yaml:"query"`
	// Name is the label looked up in the reference. It differs from Query
	// only when underscores are read as spaces.
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`
	// Canonical is the catalog name for Present and Renamed taxa.
	Canonical string `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	// Key is the output row the taxon contributes to.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Found reports whether the taxon contributes to the reconciled table.
func (d Decision) Found() bool {
	return d.Status == Present || d.Status == Renamed
}

// AuditRow is one line of the audit table.
type AuditRow struct {
	Query  string `json:"query" yaml:"query"`
	Status string `json:"status" yaml:"status"`
}

// Collision is a reconciled row fed by more than one input taxon.
type Collision struct {
	Key  string   `json:"key" yaml:"key"`
	Taxa []string `json:"taxa" yaml:"taxa"`
}

// Stats summarizes a reconciliation.
type Stats struct {
	Taxa       int `json:"taxa" yaml:"taxa"`
	Present    int `json:"present" yaml:"present"`
	Renamed    int `json:"renamed" yaml:"renamed"`
	Absent     int `json:"absent" yaml:"absent"`
	Rows       int `json:"rows" yaml:"rows"`
	Collisions int `json:"collisions" yaml:"collisions"`
}

// Result is the outcome of reconciling one combined table.
type Result struct {
	Rank taxa.Rank

	// Table is keyed by marker-prefixed canonical name.
	Table taxa.Table

	// Decisions has one entry per input taxon, sorted by query.
	Decisions []Decision

	// Audit lists absent, then present, then renamed taxa.
	Audit []AuditRow

	Collisions []Collision

	// Found is false when no taxon is present or renamed.
	Found bool

	Stats    Stats
	Metadata ResultMetadata
}

// ResultMetadata describes how a result was produced.
type ResultMetadata struct {
	Strategy  StrategyType
	Prefix    string
	StartTime time.Time
	Duration  time.Duration
}

// AuditHeader returns the audit table header for rank.
func AuditHeader(rank taxa.Rank) []string {
	return []string{fmt.Sprintf("QIIME2 %s name", rank.Title()), constants.AuditStatusHeader}
}

// AuditRecords returns the audit rows as string records.
func (r *Result) AuditRecords() [][]string {
	records := make([][]string, len(r.Audit))
	for i, row := range r.Audit {
		records[i] = []string{row.Query, row.Status}
	}
	return records
}
