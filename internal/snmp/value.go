package snmp

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrNoSuchObject is reported by Value for a column the device did not
// return for that row.
var ErrNoSuchObject = errors.New("no such object")

// Value is one typed cell of an SNMP table, already rendered to text.
type Value struct {
	raw string
	err error
}

// NewValue returns a valid Value holding s.
func NewValue(s string) Value {
	return Value{raw: s}
}

// ErrorValue returns a Value whose accessors report err.
func ErrorValue(err error) Value {
	return Value{err: err}
}

// SafeValue returns the rendered value, or "" when the cell is missing or
// could not be decoded.
func (v Value) SafeValue() string {
	if v.err != nil {
		return ""
	}
	return v.raw
}

// Value returns the rendered value or the reason it is unavailable.
func (v Value) Value() (string, error) {
	return v.raw, v.err
}

// Valid reports whether the cell holds a decoded value.
func (v Value) Valid() bool {
	return v.err == nil
}

// Int parses the value as a decimal integer.
func (v Value) Int() (int, error) {
	if v.err != nil {
		return 0, v.err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.raw))
	if err != nil {
		return 0, fmt.Errorf("parse %q as integer: %w", v.raw, err)
	}
	return n, nil
}

func (v Value) String() string {
	return v.SafeValue()
}

// Row maps column names to values for one table index.
type Row map[string]Value

// Get returns the named column, or an ErrNoSuchObject value.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return ErrorValue(fmt.Errorf("%s: %w", column, ErrNoSuchObject))
}

// Safe is shorthand for r.Get(column).SafeValue().
func (r Row) Safe(column string) string {
	return r.Get(column).SafeValue()
}

// Table holds rows keyed by their OID index suffix (e.g. "12" or "1.4.10.0.0.1").
type Table struct {
	rows map[string]Row
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{rows: make(map[string]Row)}
}

// Set stores value under index and column, creating the row if needed.
func (t *Table) Set(index, column string, value Value) {
	row, ok := t.rows[index]
	if !ok {
		row = make(Row)
		t.rows[index] = row
	}
	row[column] = value
}

// Row returns the row stored under index.
func (t *Table) Row(index string) (Row, bool) {
	row, ok := t.rows[index]
	return row, ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Indexes returns row indexes ordered by their numeric sub-identifiers.
func (t *Table) Indexes() []string {
	out := make([]string, 0, len(t.rows))
	for idx := range t.rows {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool {
		return compareOIDs(out[i], out[j]) < 0
	})
	return out
}
