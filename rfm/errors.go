package rfm

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the record source yields no rows.
var ErrEmptyInput = errors.New("no performance records supplied")

// MalformedDateError reports a date value that could not be parsed.
type MalformedDateError struct {
	RecordID string
	Value    string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("record %s: unparseable date %q", e.RecordID, e.Value)
}

// SchemaError reports a required column missing from the source table.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source table is missing required column %q", e.Column)
}

// InsufficientDataError reports that there are too few entities to form
// five quintile buckets.
type InsufficientDataError struct {
	Entities int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("quintile scoring needs at least 5 entities, got %d", e.Entities)
}
