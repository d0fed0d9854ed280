package repository

// Sort orders results by a single column.
type Sort struct {
	Column string
	Desc   bool
}

// Asc sorts ascending by column.
func Asc(column string) *Sort { return &Sort{Column: column} }

// Desc sorts descending by column.
func Desc(column string) *Sort { return &Sort{Column: column, Desc: true} }

// Options shapes a query: projection, predicates, sort and window.
// The zero value selects the repository's default projection with no
// filters, no sort and no limit.
type Options struct {
	// Select overrides the default projection. Plain column names only;
	// joined read models belong to the entity repositories.
	Select []string
	// Filters narrow the result set, combined with AND in list order.
	Filters []Filter
	// Sort applies a single-column sort when non-nil.
	Sort *Sort
	// Limit caps the number of rows when > 0.
	Limit int
	// Offset skips rows when > 0.
	Offset int
	// WithCount requests the exact total matching-row count alongside
	// the page of data. Costs one extra COUNT query.
	WithCount bool
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// totalPages is ceil(count / pageSize).
func totalPages(count int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}
