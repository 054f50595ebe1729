package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for normalization errors. The typed errors below unwrap
// to these so callers can branch with errors.Is.
var (
	ErrSchema       = errors.New("schema error")
	ErrParse        = errors.New("parse error")
	ErrEmptyDataset = errors.New("empty dataset")
	ErrCRS          = errors.New("crs error")
)

// Dataset names used in errors and drop reports.
const (
	DatasetSpills = "spills"
	DatasetTracks = "tracks"
)

// SchemaError reports required fields absent from an input.
type SchemaError struct {
	Dataset string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required field(s): %s", e.Dataset, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ParseError reports a single dropped record.
type ParseError struct {
	Dataset string
	Record  int
	Field   string
	Value   string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s record %d: field %q value %q: %s", e.Dataset, e.Record, e.Field, e.Value, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// EmptyDatasetError reports that no usable record survived normalization.
type EmptyDatasetError struct {
	Dataset string
	Total   int
	Dropped int
}

func (e *EmptyDatasetError) Error() string {
	if e.Total == 0 {
		return fmt.Sprintf("%s: input contains no records", e.Dataset)
	}
	return fmt.Sprintf("%s: no usable records, %d of %d dropped", e.Dataset, e.Dropped, e.Total)
}

func (e *EmptyDatasetError) Unwrap() error { return ErrEmptyDataset }

// CRSError reports a declared coordinate reference system that cannot be
// brought to WGS84.
type CRSError struct {
	Name string
}

func (e *CRSError) Error() string {
	return fmt.Sprintf("unsupported coordinate reference system %q", e.Name)
}

func (e *CRSError) Unwrap() error { return ErrCRS }

const maxDropSamples = 10

// DropReport counts records dropped during normalization and keeps the
// first few reasons.
type DropReport struct {
	Dataset string
	Total   int
	Dropped int
	Samples []*ParseError
}

// Kept returns the number of surviving records.
func (r DropReport) Kept() int { return r.Total - r.Dropped }

func (r *DropReport) drop(e *ParseError) {
	r.Dropped++
	if len(r.Samples) < maxDropSamples {
		r.Samples = append(r.Samples, e)
	}
}
