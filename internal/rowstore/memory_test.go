package rowstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSheetAbsent(t *testing.T) {
	m := NewMemoryStore()
	sh, err := m.Sheet("missing")
	require.NoError(t, err)
	assert.Nil(t, sh)
}

func TestMemoryStoreCreateSheet(t *testing.T) {
	m := NewMemoryStore()
	sh, err := m.CreateSheet("Tempahan Jersi", []string{"Timestamp", "Nombor Jersi"})
	require.NoError(t, err)

	rows, err := sh.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Timestamp", "Nombor Jersi"}, rows[0])

	again, err := m.Sheet("Tempahan Jersi")
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestMemorySheetAppendAndRead(t *testing.T) {
	m := NewMemoryStore()
	sh, err := m.CreateSheet("s", []string{"h"})
	require.NoError(t, err)

	idx, err := sh.AppendRow([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	idx, err = sh.AppendRow([]string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	row, err := sh.ReadRow(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, row)

	row, err = sh.ReadRow(99)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestMemorySheetDeleteShiftsRows(t *testing.T) {
	m := NewMemoryStore()
	sh := m.Seed("s", [][]string{{"h"}, {"r2"}, {"r3"}, {"r4"}})

	require.NoError(t, sh.DeleteRow(2))

	// Row 2 now holds what was row 3.
	row, err := sh.ReadRow(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"r3"}, row)

	n, err := sh.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMemorySheetWriteRow(t *testing.T) {
	m := NewMemoryStore()
	sh := m.Seed("s", [][]string{{"h"}, {"old"}})

	require.NoError(t, sh.WriteRow(2, []string{"new", "extra"}))
	row, err := sh.ReadRow(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "extra"}, row)
}

func TestParseRangeRow(t *testing.T) {
	assert.Equal(t, 7, parseRangeRow("Tempahan Jersi!A7:J7"))
	assert.Equal(t, 123, parseRangeRow("Sheet1!A123:M123"))
	assert.Equal(t, 0, parseRangeRow("Sheet1!A:Z"))
}
