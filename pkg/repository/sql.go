package repository

import (
	"fmt"
	"sort"
	"strings"
)

// Values holds column/value pairs for insert and update statements.
type Values map[string]interface{}

// columns returns the value map's column names in lexical order so the
// generated SQL is deterministic.
func (v Values) columns() ([]string, error) {
	cols := make([]string, 0, len(v))
	for col := range v {
		if !validIdent(col) {
			return nil, fmt.Errorf("invalid column %q", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols, nil
}

func buildSelect(table string, cols []string, opts Options) (string, []interface{}, error) {
	projection := "*"
	if len(cols) > 0 {
		for _, c := range cols {
			if !validIdent(c) {
				return "", nil, fmt.Errorf("invalid select column %q", c)
			}
		}
		projection = strings.Join(cols, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, table)

	where, args, argIndex, err := compileFilters(opts.Filters, 1)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if opts.Sort != nil {
		if !validIdent(opts.Sort.Column) {
			return "", nil, fmt.Errorf("invalid sort column %q", opts.Sort.Column)
		}
		direction := "ASC"
		if opts.Sort.Desc {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", opts.Sort.Column, direction)
	}

	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT $%d", argIndex)
		args = append(args, opts.Limit)
		argIndex++
	}
	if opts.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET $%d", argIndex)
		args = append(args, opts.Offset)
	}

	return sb.String(), args, nil
}

func buildCount(table string, filters []Filter) (string, []interface{}, error) {
	where, args, _, err := compileFilters(filters, 1)
	if err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		query += " WHERE " + where
	}
	return query, args, nil
}

func buildInsert(table string, values Values, returning []string) (string, []interface{}, error) {
	cols, err := values.columns()
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("insert into %s with no values", table)
	}

	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[col]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(returning, ", "),
	)
	return query, args, nil
}

// buildInsertMany builds a single multi-row insert. Every item must carry
// exactly the same columns as the first.
func buildInsertMany(table string, items []Values, returning []string) (string, []interface{}, error) {
	if len(items) == 0 {
		return "", nil, fmt.Errorf("insert into %s with no rows", table)
	}

	cols, err := items[0].columns()
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("insert into %s with no values", table)
	}

	var args []interface{}
	rows := make([]string, len(items))
	argIndex := 1
	for i, item := range items {
		if len(item) != len(cols) {
			return "", nil, fmt.Errorf("row %d has mismatched columns", i)
		}
		placeholders := make([]string, len(cols))
		for j, col := range cols {
			value, ok := item[col]
			if !ok {
				return "", nil, fmt.Errorf("row %d is missing column %q", i, col)
			}
			placeholders[j] = fmt.Sprintf("$%d", argIndex)
			args = append(args, value)
			argIndex++
		}
		rows[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s RETURNING %s",
		table, strings.Join(cols, ", "), strings.Join(rows, ", "), strings.Join(returning, ", "),
	)
	return query, args, nil
}

func buildUpdate(table string, values Values, filterColumn string, filterValue interface{}, returning []string) (string, []interface{}, error) {
	cols, err := values.columns()
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("update %s with no values", table)
	}
	if !validIdent(filterColumn) {
		return "", nil, fmt.Errorf("invalid filter column %q", filterColumn)
	}

	sets := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, values[col])
	}
	args = append(args, filterValue)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		table, strings.Join(sets, ", "), filterColumn, len(cols)+1, strings.Join(returning, ", "),
	)
	return query, args, nil
}

// buildUpsert builds an INSERT ... ON CONFLICT statement. With updateColumns
// set, only those columns are rewritten on conflict; otherwise every
// non-conflict column is. Update columns must be part of the inserted values
// so EXCLUDED can reference them.
func buildUpsert(table string, values Values, conflictColumn string, updateColumns, returning []string) (string, []interface{}, error) {
	cols, err := values.columns()
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("upsert into %s with no values", table)
	}
	if !validIdent(conflictColumn) {
		return "", nil, fmt.Errorf("invalid conflict column %q", conflictColumn)
	}

	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[col]
	}

	var updates []string
	if len(updateColumns) > 0 {
		for _, col := range updateColumns {
			if _, ok := values[col]; !ok {
				return "", nil, fmt.Errorf("update column %q not in upsert values", col)
			}
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	} else {
		for _, col := range cols {
			if col != conflictColumn {
				updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
			}
		}
	}

	action := "DO NOTHING"
	if len(updates) > 0 {
		action = "DO UPDATE SET " + strings.Join(updates, ", ")
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s RETURNING %s",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
		conflictColumn, action, strings.Join(returning, ", "),
	)
	return query, args, nil
}

func buildDelete(table, filterColumn string) (string, error) {
	if !validIdent(filterColumn) {
		return "", fmt.Errorf("invalid filter column %q", filterColumn)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, filterColumn), nil
}
