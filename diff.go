package dynrec

import (
	"fmt"

	"golang.org/x/text/cases"
)

// Diff compares two records of the same table and returns a new record
// capturing the difference: for every field of a that b also carries with a
// different value, the result holds the value from b. Fields a has and b
// lacks are skipped, fields only in b never surface. Table names are
// compared under Unicode case folding, anything else is an error.
//
// The returned record carries no identity. Callers that need one, such as
// the update path of Commit, assign it afterwards.
func Diff(a, b *Record) (*Record, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: cannot diff nil records", ErrInvalidArgument)
	}

	// Caser values are stateful, so build one per call.
	folder := cases.Fold()
	if folder.String(a.table) != folder.String(b.table) {
		return nil, fmt.Errorf("%w: cannot diff %s against %s", ErrInvalidArgument, a.table, b.table)
	}

	diff := newRecord(a.table)
	for _, name := range a.names {
		other, ok := b.values[name]
		if !ok {
			continue
		}
		if !a.values[name].Equal(other) {
			diff.set(name, other)
		}
	}
	return diff, nil
}
