package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// InsertModel builds a single-row insert from the db-tagged fields of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	return InsertModels(table, []any{model}, suffix)
}

// InsertModels builds a multi-row insert. Every model must expose the same
// db columns in the same order.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert models: %w", errNoRows)
	}

	builder := InsertInto(table).Suffix(suffix)
	var columns []string
	for i, model := range models {
		fields, err := dbFields(model)
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		names := make([]string, len(fields))
		values := make([]any, len(fields))
		for j, f := range fields {
			names[j], values[j] = f.column, f.value
		}

		if i == 0 {
			columns = names
			builder.Columns(names...)
		} else if !slices.Equal(columns, names) {
			return "", nil, fmt.Errorf("model %d columns differ from first model", i)
		}
		builder.Values(values...)
	}

	return builder.ToSQL()
}

type dbField struct {
	column string
	value  any
}

// dbFields reads exported struct fields carrying a db tag, in declaration
// order. Pointers are followed; a nil model is an error.
func dbFields(model any) ([]dbField, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, fmt.Errorf("model cannot be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	out := make([]dbField, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		out = append(out, dbField{column: column, value: v.Field(i).Interface()})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	return out, nil
}
