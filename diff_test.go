package dynrec

import (
	"errors"
	"testing"
)

func snvRecord(sample string, percentage float64) *Record {
	r := newRecord("GHSNV")
	r.SetString("SampleId", sample)
	r.SetString("Gene", "EGFR")
	r.SetFloat64("Percentage", percentage)
	return r
}

func TestDiffIdenticalRecords(t *testing.T) {
	a := snvRecord("SMP-7053", 12.21)
	b := snvRecord("SMP-7053", 12.21)

	diff, err := Diff(a, b)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if diff.Len() != 0 {
		t.Errorf("identical records should yield an empty diff, got %v fields", diff.Len())
	}
	if diff.Table() != "GHSNV" {
		t.Errorf("diff should carry the shared table name, got %v", diff.Table())
	}
}

func TestDiffSingleChangedField(t *testing.T) {
	a := snvRecord("SMP-7053", 12.21)
	b := snvRecord("SMP-7053", 47.5)

	diff, err := Diff(a, b)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if diff.Len() != 1 {
		t.Fatalf("expected exactly one differing field, got %v", diff.FieldNames())
	}
	if got, _ := diff.GetFloat64("Percentage"); got != 47.5 {
		t.Errorf("diff should hold b's value, got %v", got)
	}
}

func TestDiffTableNameFolding(t *testing.T) {
	a := snvRecord("SMP-7053", 12.21)
	b := snvRecord("SMP-7053", 47.5)
	b.table = "ghsnv"

	if _, err := Diff(a, b); err != nil {
		t.Errorf("GHSNV and ghsnv should compare as the same table, got %v", err)
	}

	b.table = "GHCNV"
	if _, err := Diff(a, b); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("different tables: expected ErrInvalidArgument, got %v", err)
	}
}

func TestDiffSkipsFieldsMissingFromB(t *testing.T) {
	a := snvRecord("SMP-7053", 12.21)
	a.SetInt32("Chrom", 7)
	b := snvRecord("SMP-7053", 12.21)

	diff, err := Diff(a, b)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	// Chrom only exists in a and is skipped, not surfaced and not an error.
	if diff.Len() != 0 {
		t.Errorf("expected empty diff, got %v", diff.FieldNames())
	}
}

func TestDiffIgnoresFieldsOnlyInB(t *testing.T) {
	a := snvRecord("SMP-7053", 12.21)
	b := snvRecord("SMP-7053", 12.21)
	b.SetString("RunId", "RUN-9")

	diff, err := Diff(a, b)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if diff.Len() != 0 {
		t.Errorf("fields only in b must never surface, got %v", diff.FieldNames())
	}
}

func TestDiffKindChangeCounts(t *testing.T) {
	a := newRecord("GHSNV")
	a.SetInt32("Position", 55249071)
	b := newRecord("GHSNV")
	b.SetInt64("Position", 55249071)

	diff, err := Diff(a, b)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if diff.Len() != 1 {
		t.Fatalf("same payload under a different kind should differ")
	}
	if kind, _ := diff.Kind("Position"); kind != Int64 {
		t.Errorf("diff should carry b's kind, got %v", kind)
	}
}

func TestDiffNilRecords(t *testing.T) {
	if _, err := Diff(nil, snvRecord("SMP-7053", 1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
