package db

import (
	"testing"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestFilterWhere(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f := store.Filter{
		CustomerID: "cust-1",
		AssignedTo: "staff-1",
		Statuses:   []string{"pending", "processing"},
		DateFrom:   &from,
		Search:     "cold",
	}
	w := filterWhere(f, "assigned_to", "preferred_location", "storage_type")

	assert.Equal(t,
		" WHERE customer_id = $1 AND assigned_to = $2 AND status = ANY($3) AND created_at >= $4"+
			` AND (LOWER(COALESCE(preferred_location, '')) LIKE LOWER($5) ESCAPE '\' OR LOWER(COALESCE(storage_type, '')) LIKE LOWER($5) ESCAPE '\')`,
		w.clause())
	assert.Equal(t, []interface{}{"cust-1", "staff-1", []string{"pending", "processing"}, from, "%cold%"}, w.args)
}

func TestSearchEscapesWildcards(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"100%", `%100\%%`},
		{"cold_room", `%cold\_room%`},
		{`C:\dock`, `%C:\\dock%`},
		{"plain", "%plain%"},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			w := &where{}
			w.search(tt.term, "name")
			assert.Equal(t, []interface{}{tt.want}, w.args)
			assert.Equal(t, ` WHERE (LOWER(COALESCE(name, '')) LIKE LOWER($1) ESCAPE '\')`, w.clause())
		})
	}
}

func TestFilterWhere_IgnoresAssigneeWithoutColumn(t *testing.T) {
	w := filterWhere(store.Filter{AssignedTo: "staff-1"}, "")
	assert.Equal(t, "", w.clause())
	assert.Empty(t, w.args)
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name string
		f    store.Filter
		want string
	}{
		{"default", store.Filter{}, " ORDER BY created_at DESC, id DESC"},
		{"ascending status", store.Filter{SortBy: "status", SortOrder: "asc"}, " ORDER BY status ASC, id ASC"},
		{"unknown column", store.Filter{SortBy: "amount; DROP TABLE invoices"}, " ORDER BY created_at DESC, id DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderBy(tt.f))
		})
	}
}
