package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

// where accumulates numbered placeholder conditions
type where struct {
	conditions []string
	args       []interface{}
}

// arg appends a bind value and returns its placeholder
func (w *where) arg(v interface{}) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) and(format string, vals ...interface{}) {
	placeholders := make([]interface{}, len(vals))
	for i, v := range vals {
		placeholders[i] = w.arg(v)
	}
	w.conditions = append(w.conditions, fmt.Sprintf(format, placeholders...))
}

// likeEscaper makes LIKE wildcards in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// search matches the term as a substring of any of the given text columns
func (w *where) search(term string, columns ...string) {
	if term == "" || len(columns) == 0 {
		return
	}
	p := w.arg("%" + likeEscaper.Replace(term) + "%")
	ors := make([]string, len(columns))
	for i, c := range columns {
		ors[i] = fmt.Sprintf(`LOWER(COALESCE(%s, '')) LIKE LOWER(%s) ESCAPE '\'`, c, p)
	}
	w.conditions = append(w.conditions, "("+strings.Join(ors, " OR ")+")")
}

func (w *where) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// filterWhere applies the shared list filter. assignedColumn is empty for
// tables without an assignee.
func filterWhere(f store.Filter, assignedColumn string, searchColumns ...string) *where {
	w := &where{}
	if f.CustomerID != "" {
		w.and("customer_id = %s", f.CustomerID)
	}
	if f.AssignedTo != "" && assignedColumn != "" {
		w.and(assignedColumn+" = %s", f.AssignedTo)
	}
	if f.BookingID != "" {
		w.and("booking_id = %s", f.BookingID)
	}
	if len(f.Statuses) > 0 {
		w.and("status = ANY(%s)", f.Statuses)
	}
	if f.DateFrom != nil {
		w.and("created_at >= %s", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.and("created_at <= %s", *f.DateTo)
	}
	w.search(f.Search, searchColumns...)
	return w
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
}

func orderBy(f store.Filter) string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
}

// listPage runs the count and the paged select for one table
func listPage[T any](ctx context.Context, db *Database, table, columns string, w *where, f store.Filter, scan func(scanner) (T, error)) ([]T, int, error) {
	var total int
	countQuery := "SELECT COUNT(*) FROM " + table + w.clause()
	if err := db.Pool.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	query := "SELECT " + columns + " FROM " + table + w.clause() + orderBy(f)
	args := w.args
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating %s: %w", table, err)
	}
	return items, total, nil
}
