package postgres

import "testing"

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
		off                int
	}{
		{0, 0, 1, defaultPageSize, 0},
		{3, 10, 3, 10, 20},
		{2, 500, 2, maxPageSize, maxPageSize},
		{-4, -1, 1, defaultPageSize, 0},
	}

	for _, tt := range tests {
		page, size, off := normalizePage(tt.page, tt.size)
		if page != tt.wantPage || size != tt.wantSize || off != tt.off {
			t.Errorf("normalizePage(%d, %d) = %d, %d, %d", tt.page, tt.size, page, size, off)
		}
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sortBy, order, want string
	}{
		{"", "", `"created_at" DESC`},
		{"title", "asc", `"title" ASC`},
		{"title", "ASC", `"title" ASC`},
		{"page_count", "desc", `"page_count" DESC`},
		{"title; DROP TABLE books", "asc", `"created_at" ASC`},
	}

	for _, tt := range tests {
		if got := orderClause(tt.sortBy, tt.order, "created_at", bookSortColumns); got != tt.want {
			t.Errorf("orderClause(%q, %q) = %s, want %s", tt.sortBy, tt.order, got, tt.want)
		}
	}
}
