package dynrec

import (
	"fmt"
	"strings"
)

// Record is one in-memory row of a table. Fields keep their insertion order
// and each carries its own Kind, so records need no struct declared per
// table. The table name is fixed at construction.
//
// A fresh Record has no matching table row yet and will be inserted on
// Commit. Records built by Query carry the identity of the row they came
// from and will be diffed and updated instead.
type Record struct {
	table    string
	names    []string
	values   map[string]Value
	id       int64
	fresh    bool
	modified bool
}

func newRecord(table string) *Record {
	return &Record{
		table:    table,
		values:   map[string]Value{},
		fresh:    true,
		modified: true,
	}
}

// Table returns the table name the record belongs to.
func (r *Record) Table() string {
	return r.table
}

// ID returns the identity column value. It is zero for fresh records,
// inserting does not report the generated identity back.
func (r *Record) ID() int64 {
	return r.id
}

// Fresh reports whether the record has no matching table row yet.
func (r *Record) Fresh() bool {
	return r.fresh
}

// Modified reports whether any field has been set since construction.
func (r *Record) Modified() bool {
	return r.modified
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.names)
}

// FieldNames returns the field names in insertion order.
func (r *Record) FieldNames() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// set stores a field without validating the name. Exported setters and the
// row scanner both funnel through here.
func (r *Record) set(name string, value Value) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
	r.modified = true
}

func (r *Record) setField(name string, value Value) error {
	if name == "" {
		return fmt.Errorf("%w: empty field name", ErrInvalidArgument)
	}
	r.set(name, value)
	return nil
}

// SetString stores a Text field, replacing any previous value and kind.
func (r *Record) SetString(name string, value string) error {
	return r.setField(name, TextValue(value))
}

// SetInt32 stores an Int32 field, replacing any previous value and kind.
func (r *Record) SetInt32(name string, value int32) error {
	return r.setField(name, Int32Value(value))
}

// SetInt64 stores an Int64 field, replacing any previous value and kind.
func (r *Record) SetInt64(name string, value int64) error {
	return r.setField(name, Int64Value(value))
}

// SetFloat64 stores a Float64 field, replacing any previous value and kind.
func (r *Record) SetFloat64(name string, value float64) error {
	return r.setField(name, Float64Value(value))
}

// Set stores a field of a kind inferred from the dynamic type of value.
// string, int32, int64, int, float64 and float32 are accepted, int stores
// as Int64 and float32 as Float64.
func (r *Record) Set(name string, value interface{}) error {
	v, ok := newValue(value)
	if !ok {
		return fmt.Errorf("%w: cannot store %T in a record", ErrInvalidArgument, value)
	}
	return r.setField(name, v)
}

// Get returns the named field value.
func (r *Record) Get(name string) (Value, error) {
	v, ok := r.values[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s has no field %s", ErrFieldNotFound, r.table, name)
	}
	return v, nil
}

func (r *Record) get(name string, kind Kind) (Value, error) {
	v, err := r.Get(name)
	if err != nil {
		return Value{}, err
	}
	if v.kind != kind {
		return Value{}, fmt.Errorf("%w: field %s holds %s, not %s", ErrTypeMismatch, name, v.kind, kind)
	}
	return v, nil
}

// GetString returns the value of a Text field.
func (r *Record) GetString(name string) (string, error) {
	v, err := r.get(name, Text)
	return v.Text(), err
}

// GetInt32 returns the value of an Int32 field.
func (r *Record) GetInt32(name string) (int32, error) {
	v, err := r.get(name, Int32)
	return v.Int32(), err
}

// GetInt64 returns the value of an Int64 field.
func (r *Record) GetInt64(name string) (int64, error) {
	v, err := r.get(name, Int64)
	return v.Int64(), err
}

// GetFloat64 returns the value of a Float64 field.
func (r *Record) GetFloat64(name string) (float64, error) {
	v, err := r.get(name, Float64)
	return v.Float64(), err
}

// Kind returns the kind of the named field.
func (r *Record) Kind(name string) (Kind, error) {
	v, err := r.Get(name)
	return v.Kind(), err
}

// String renders the record one field per line.
func (r *Record) String() string {
	var sb strings.Builder
	for idx, name := range r.names {
		if idx > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(name)
		sb.WriteByte(' ')
		sb.WriteString(r.values[name].String())
	}
	return sb.String()
}
