package preprocessing

import (
	"strings"

	"github.com/shopspring/decimal"

	"tsunamieval/internal/data"
)

// Schema is the ordered list of feature columns a Table carries.
type Schema []string

func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Schema) Contains(name string) bool {
	for _, col := range s {
		if col == name {
			return true
		}
	}
	return false
}

// Table is a numeric feature table. An invalid NullDecimal marks a missing
// value.
type Table struct {
	Schema Schema
	Rows   [][]decimal.NullDecimal
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) Width() int {
	return len(t.Schema)
}

// Subset returns the rows at indices, in that order. Row slices are shared.
func (t Table) Subset(indices []int) Table {
	rows := make([][]decimal.NullDecimal, len(indices))
	for i, idx := range indices {
		rows[i] = t.Rows[idx]
	}
	return Table{Schema: t.Schema, Rows: rows}
}

// Coerce parses every feature value of ds as a number. Empty or
// non-numeric cells become missing values.
func Coerce(ds *data.Dataset) Table {
	rows := make([][]decimal.NullDecimal, len(ds.X))
	for i, record := range ds.X {
		rows[i] = make([]decimal.NullDecimal, len(record))
		for j, raw := range record {
			rows[i][j] = parseNumeric(raw)
		}
	}

	return Table{
		Schema: append(Schema(nil), ds.Features...),
		Rows:   rows,
	}
}

func parseNumeric(raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	val, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(val)
}

// DropMissingColumns returns a new table without the columns that hold no
// value at all, together with the names that were removed. The input table
// is left untouched.
func DropMissingColumns(t Table) (Table, []string) {
	keep := make([]int, 0, t.Width())
	var dropped []string

	for j, name := range t.Schema {
		present := false
		for _, row := range t.Rows {
			if row[j].Valid {
				present = true
				break
			}
		}
		if present {
			keep = append(keep, j)
		} else {
			dropped = append(dropped, name)
		}
	}

	schema := make(Schema, len(keep))
	for k, j := range keep {
		schema[k] = t.Schema[j]
	}

	rows := make([][]decimal.NullDecimal, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]decimal.NullDecimal, len(keep))
		for k, j := range keep {
			rows[i][k] = row[j]
		}
	}

	return Table{Schema: schema, Rows: rows}, dropped
}

// MissingCounts returns the number of missing values per column.
func MissingCounts(t Table) []int {
	counts := make([]int, t.Width())
	for _, row := range t.Rows {
		for j, v := range row {
			if !v.Valid {
				counts[j]++
			}
		}
	}
	return counts
}
