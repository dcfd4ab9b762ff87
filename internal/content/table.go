package content

// Presentation hints applied to tables that do not carry their own.
const (
	DefaultItemsPerPage = 5
	DefaultColumnCount  = 3
)

// Cell is one table cell.
type Cell struct {
	Text string `json:"text"`
}

// Table holds header and body rows. ItemsPerPage and ColumnCount only
// steer paginated display; the rows may have any shape.
type Table struct {
	Header       [][]Cell `json:"header"`
	Rows         [][]Cell `json:"rows"`
	ItemsPerPage *int     `json:"itemsPerPage,omitempty" validate:"omitempty,min=1"`
	ColumnCount  *int     `json:"columnCount,omitempty" validate:"omitempty,min=1"`
}

// EnsureDefaults fills absent hints and never overwrites present ones.
func (t *Table) EnsureDefaults() {
	if t.ItemsPerPage == nil {
		n := DefaultItemsPerPage
		t.ItemsPerPage = &n
	}
	if t.ColumnCount == nil {
		n := DefaultColumnCount
		t.ColumnCount = &n
	}
}

// PageCount is the number of display pages for the body rows.
func (t *Table) PageCount() int {
	per := DefaultItemsPerPage
	if t.ItemsPerPage != nil && *t.ItemsPerPage > 0 {
		per = *t.ItemsPerPage
	}
	if len(t.Rows) == 0 {
		return 1
	}
	return (len(t.Rows) + per - 1) / per
}

// RowsPage returns the body rows shown on display page n (zero based).
func (t *Table) RowsPage(n int) [][]Cell {
	per := DefaultItemsPerPage
	if t.ItemsPerPage != nil && *t.ItemsPerPage > 0 {
		per = *t.ItemsPerPage
	}
	start := n * per
	if n < 0 || start >= len(t.Rows) {
		return nil
	}
	end := start + per
	if end > len(t.Rows) {
		end = len(t.Rows)
	}
	return t.Rows[start:end]
}
