package persistence

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/webstudio/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// search adds a case-insensitive LIKE over the given columns. LOWER+LIKE
// runs on both postgres and the sqlite test database.
func search(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", c)
		args[i] = pattern
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// sortable lists the columns a table may be ordered by. Client input never
// reaches ORDER BY unless it matches an entry exactly.
type sortable []string

var (
	userSort    = sortable{"id", "created_at", "updated_at", "email", "name", "role", "last_login_at"}
	leadSort    = sortable{"id", "created_at", "updated_at", "name", "status", "source"}
	invoiceSort = sortable{"id", "created_at", "updated_at", "number", "issue_date", "due_date", "client_name", "status"}
	// services, pricing packages and portfolio items
	contentSort = sortable{"id", "created_at", "updated_at", "sort_order", "slug"}
	postSort    = sortable{"id", "created_at", "updated_at", "published_at", "scheduled_at", "title"}
	auditSort   = sortable{"id", "created_at", "updated_at", "domain", "overall_score", "grade", "status"}
)

func (s sortable) column(field, fallback string) string {
	field = strings.TrimSpace(field)
	if slices.Contains(s, field) {
		return field
	}
	return fallback
}

// direction is ASC only when asked for explicitly
func direction(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// order applies a whitelisted ORDER BY with id as tie breaker
func order(q *gorm.DB, filter shared.Filter, cols sortable, fallback string) *gorm.DB {
	return q.Order(cols.column(filter.OrderBy, fallback) + " " + direction(filter.OrderDir)).Order("id ASC")
}

// paginate applies LIMIT/OFFSET when a page size is set
func paginate(q *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return q
	}
	return q.Limit(filter.PageSize).Offset(filter.Offset())
}

// filterValue returns the value stored under key when it is present and not empty
func filterValue(filter shared.Filter, key string) (any, bool) {
	if filter.Filters == nil {
		return nil, false
	}
	v, ok := filter.Filters[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && s == "" {
		return nil, false
	}
	return v, true
}

// notFound maps gorm's not-found error to the domain error
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
