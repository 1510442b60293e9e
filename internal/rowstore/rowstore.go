// Package rowstore wraps a spreadsheet-like tabular store: ordered rows,
// named sheets, 1-based row indices, header row at row 1.
package rowstore

// Store gives access to the named sheets of one spreadsheet.
type Store interface {
	// Sheet returns the named sheet, or nil if it does not exist.
	// Absence is a normal state (e.g. the booking sheet before the
	// first booking), not an error.
	Sheet(name string) (Sheet, error)

	// CreateSheet creates a new sheet with the given header written
	// to row 1 and returns it.
	CreateSheet(name string, header []string) (Sheet, error)
}

// Sheet is one table inside a Store. Row indices are 1-based and row 1
// is the header row, so the first data row is row 2. Deleting a row
// shifts every subsequent row up by one.
type Sheet interface {
	Name() string

	// ReadAll returns every row including the header.
	ReadAll() ([][]string, error)

	// ReadRow returns the cells of a single row, or nil if the row is
	// beyond the last row with content.
	ReadRow(rowIndex int) ([]string, error)

	// RowCount returns the index of the last row with content.
	RowCount() (int, error)

	// AppendRow appends cells after the last row and returns the
	// 1-based index of the new row.
	AppendRow(cells []string) (int, error)

	// WriteRow overwrites the cells of an existing row in place.
	WriteRow(rowIndex int, cells []string) error

	// DeleteRow physically removes a row. All later rows shift up.
	DeleteRow(rowIndex int) error
}
