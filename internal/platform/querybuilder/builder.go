// Package querybuilder renders the small set of postgres statements the
// repositories need, numbering placeholders as $1..$n in render order.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errNoTable   = errors.New("table is required")
	errNoColumns = errors.New("columns are required")
	errNoRows    = errors.New("values are required")
)

// sqlWriter accumulates statement text and its bound arguments.
type sqlWriter struct {
	sb   strings.Builder
	args []any
}

func (w *sqlWriter) write(parts ...string) {
	for _, p := range parts {
		w.sb.WriteString(p)
	}
}

// bind appends v and returns its placeholder.
func (w *sqlWriter) bind(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *sqlWriter) result() (string, []any) {
	return w.sb.String(), w.args
}

// Condition renders one predicate of a WHERE clause.
type Condition func(w *sqlWriter)

func compare(column, op string, value any) Condition {
	return func(w *sqlWriter) {
		w.write(column, " ", op, " ", w.bind(value))
	}
}

func Eq(column string, value any) Condition  { return compare(column, "=", value) }
func Gte(column string, value any) Condition { return compare(column, ">=", value) }
func Lt(column string, value any) Condition  { return compare(column, "<", value) }

// Within matches the half-open range [from, to).
func Within(column string, from, to any) Condition {
	return func(w *sqlWriter) {
		Gte(column, from)(w)
		w.write(" AND ")
		Lt(column, to)(w)
	}
}

// Any matches column against a postgres array value such as pq.Array(ids).
func Any(column string, array any) Condition {
	return func(w *sqlWriter) {
		w.write(column, " = ANY(", w.bind(array), ")")
	}
}

// In expands values into a literal list; an empty list matches nothing.
func In(column string, values []any) Condition {
	return func(w *sqlWriter) {
		if len(values) == 0 {
			w.write("1=0")
			return
		}
		w.write(column, " IN (")
		for i, v := range values {
			if i > 0 {
				w.write(", ")
			}
			w.write(w.bind(v))
		}
		w.write(")")
	}
}

func writeWhere(w *sqlWriter, conditions []Condition) {
	for i, cond := range conditions {
		if i == 0 {
			w.write(" WHERE ")
		} else {
			w.write(" AND ")
		}
		cond(w)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = strings.TrimSpace(table)
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(columns ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, columns...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errors.New("select: " + errNoColumns.Error())
	}
	if b.table == "" {
		return "", nil, errors.New("select: " + errNoTable.Error())
	}

	var w sqlWriter
	w.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	writeWhere(&w, b.where)
	if len(b.orderBy) > 0 {
		w.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.write(" LIMIT ", strconv.Itoa(b.limit))
	}

	query, args := w.result()
	return query, args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: strings.TrimSpace(table)}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values adds one row; call it once per row for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL such as an ON CONFLICT clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.table == "":
		return "", nil, errors.New("insert: " + errNoTable.Error())
	case len(b.columns) == 0:
		return "", nil, errors.New("insert: " + errNoColumns.Error())
	case len(b.rows) == 0:
		return "", nil, errors.New("insert: " + errNoRows.Error())
	}

	var w sqlWriter
	w.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, errors.New("insert: row " + strconv.Itoa(i) + " has " + strconv.Itoa(len(row)) +
				" values, expected " + strconv.Itoa(len(b.columns)))
		}
		if i > 0 {
			w.write(", ")
		}
		w.write("(")
		for j, v := range row {
			if j > 0 {
				w.write(", ")
			}
			w.write(w.bind(v))
		}
		w.write(")")
	}
	if b.suffix != "" {
		w.write(" ", b.suffix)
	}

	query, args := w.result()
	return query, args, nil
}
