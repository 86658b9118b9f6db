// Package encoder converts categorical survey answers into the integer
// codes the classifier consumes. Code tables are fixed at training time and
// persisted with the model: re-deriving them from a differently ordered
// dataset would silently corrupt inference.
package encoder

import (
	"fmt"
	"sort"
)

// CodeTable maps each category value observed during training to a dense
// non-negative integer code.
type CodeTable map[string]int

// UnknownCategoryError reports a value absent from a field's code table.
// It is never downgraded to a default code: a coerced code would produce a
// confidently wrong prediction indistinguishable from a valid one.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for field %q", e.Value, e.Field)
}

// MissingFieldError reports a required input field that was not supplied.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Fit builds a code table over the distinct values of a training column.
// Codes are assigned in sorted value order, so the same vocabulary always
// yields the same table regardless of row order.
func Fit(column []string) CodeTable {
	seen := make(map[string]bool, len(column))
	for _, v := range column {
		seen[v] = true
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)

	table := make(CodeTable, len(values))
	for code, v := range values {
		table[v] = code
	}
	return table
}

// Encode returns the stored code for value in the given field's table.
func Encode(field, value string, table CodeTable) (int, error) {
	code, ok := table[value]
	if !ok {
		return 0, &UnknownCategoryError{Field: field, Value: value}
	}
	return code, nil
}

// Vectorize builds a feature vector from raw inputs: one code per field,
// concatenated in the given order. Every field in order must be present in
// inputs and encodable by its table.
func Vectorize(inputs map[string]string, tables map[string]CodeTable, order []string) ([]float64, error) {
	vector := make([]float64, 0, len(order))
	for _, field := range order {
		value, ok := inputs[field]
		if !ok || value == "" {
			return nil, &MissingFieldError{Field: field}
		}

		table, ok := tables[field]
		if !ok {
			return nil, fmt.Errorf("no code table for field %q", field)
		}

		code, err := Encode(field, value, table)
		if err != nil {
			return nil, err
		}
		vector = append(vector, float64(code))
	}
	return vector, nil
}

// Values returns a table's vocabulary ordered by code.
func (t CodeTable) Values() []string {
	values := make([]string, len(t))
	for v, code := range t {
		values[code] = v
	}
	return values
}
