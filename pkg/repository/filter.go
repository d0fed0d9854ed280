package repository

import (
	"fmt"
	"regexp"
	"strings"
)

// Op is a filter operator applied to a single column.
type Op string

const (
	OpEq     Op = "eq"
	OpNeq    Op = "neq"
	OpGt     Op = "gt"
	OpGte    Op = "gte"
	OpLt     Op = "lt"
	OpLte    Op = "lte"
	OpLike   Op = "like"
	OpILike  Op = "ilike"
	OpIn     Op = "in"
	OpIsNull Op = "is_null"
	OpNotNull Op = "not_null"
)

// Filter is one predicate over a column. Filters in a list combine with AND;
// each narrows the query independently of the others.
type Filter struct {
	Column string
	Op     Op
	Value  interface{}
}

// Eq matches rows where column equals value.
func Eq(column string, value interface{}) Filter { return Filter{column, OpEq, value} }

// Neq matches rows where column does not equal value.
func Neq(column string, value interface{}) Filter { return Filter{column, OpNeq, value} }

// Gt matches rows where column is greater than value.
func Gt(column string, value interface{}) Filter { return Filter{column, OpGt, value} }

// Gte matches rows where column is greater than or equal to value.
func Gte(column string, value interface{}) Filter { return Filter{column, OpGte, value} }

// Lt matches rows where column is less than value.
func Lt(column string, value interface{}) Filter { return Filter{column, OpLt, value} }

// Lte matches rows where column is less than or equal to value.
func Lte(column string, value interface{}) Filter { return Filter{column, OpLte, value} }

// Like matches rows where column matches the SQL pattern, case-sensitive.
func Like(column, pattern string) Filter { return Filter{column, OpLike, pattern} }

// ILike matches rows where column matches the SQL pattern, case-insensitive.
func ILike(column, pattern string) Filter { return Filter{column, OpILike, pattern} }

// In matches rows where column is any of values.
func In(column string, values ...interface{}) Filter { return Filter{column, OpIn, values} }

// IsNull matches rows where column is NULL.
func IsNull(column string) Filter { return Filter{column, OpIsNull, nil} }

// NotNull matches rows where column is not NULL.
func NotNull(column string) Filter { return Filter{column, OpNotNull, nil} }

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validIdent reports whether s is a plain SQL identifier. Column names come
// from code, not users, but malformed ones must never reach the database.
func validIdent(s string) bool {
	return identPattern.MatchString(s)
}

// compileFilters folds a filter list into a WHERE fragment with positional
// placeholders starting at $argIndex. Returns the fragment (without the WHERE
// keyword), the argument list, and the next free placeholder index.
func compileFilters(filters []Filter, argIndex int) (string, []interface{}, int, error) {
	if len(filters) == 0 {
		return "", nil, argIndex, nil
	}

	clauses := make([]string, 0, len(filters))
	args := make([]interface{}, 0, len(filters))

	for _, f := range filters {
		if !validIdent(f.Column) {
			return "", nil, 0, fmt.Errorf("invalid filter column %q", f.Column)
		}

		switch f.Op {
		case OpEq:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", f.Column, argIndex))
			args = append(args, f.Value)
			argIndex++
		case OpNeq:
			clauses = append(clauses, fmt.Sprintf("%s <> $%d", f.Column, argIndex))
			args = append(args, f.Value)
			argIndex++
		case OpGt:
			clauses = append(clauses, fmt.Sprintf("%s > $%d", f.Column, argIndex))
			args = append(args, f.Value)
			argIndex++
		case OpGte:
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", f.Column, argIndex))
			args = append(args, f.Value)
			argIndex++
		case OpLt:
			clauses = append(clauses, fmt.Sprintf("%s < $%d", f.Column, argIndex))
			args = append(args, f.Value)
			argIndex++
		case OpLte:
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", f.Column, argIndex))
			args = append(args, f.Value)
			argIndex++
		case OpLike:
			clauses = append(clauses, fmt.Sprintf("%s LIKE $%d", f.Column, argIndex))
			args = append(args, f.Value)
			argIndex++
		case OpILike:
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", f.Column, argIndex))
			args = append(args, f.Value)
			argIndex++
		case OpIn:
			values, ok := f.Value.([]interface{})
			if !ok {
				return "", nil, 0, fmt.Errorf("in filter on %q requires a slice value", f.Column)
			}
			if len(values) == 0 {
				// IN over the empty set matches nothing.
				clauses = append(clauses, "FALSE")
				continue
			}
			placeholders := make([]string, len(values))
			for i, v := range values {
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				args = append(args, v)
				argIndex++
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", f.Column, strings.Join(placeholders, ", ")))
		case OpIsNull:
			clauses = append(clauses, fmt.Sprintf("%s IS NULL", f.Column))
		case OpNotNull:
			clauses = append(clauses, fmt.Sprintf("%s IS NOT NULL", f.Column))
		default:
			return "", nil, 0, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}

	return strings.Join(clauses, " AND "), args, argIndex, nil
}
