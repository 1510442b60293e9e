package receipts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btb-portal/internal/rowstore"
)

var ledgerHeader = []string{"No", "Tarikh", "Pembayar", "Tujuan", "Pemain", "Jumlah", "No Resit", "Link"}

type stubSaver struct {
	saved []string
}

func (s *stubSaver) SaveFile(subfolder, name, mimeType string, data []byte) (string, error) {
	s.saved = append(s.saved, name)
	return "https://drive/" + name, nil
}

func TestNextReceiptNumber(t *testing.T) {
	rows := [][]string{
		{"1", "", "", "", "", "", "BTB-0003"},
		{"2", "", "", "", "", "", ""},
		{"3", "", "", "", "", "", "BTB-0010"},
		{"4", "", "", "", "", "", "OTHER-0099"},
		{"5", "", "", "", "", "", "BTB-bad"},
	}
	assert.Equal(t, 11, NextReceiptNumber(rows, "BTB"))
	assert.Equal(t, 100, NextReceiptNumber(rows, "OTHER"))
	assert.Equal(t, 1, NextReceiptNumber(nil, "BTB"))
}

func TestFormatReceiptNumber(t *testing.T) {
	assert.Equal(t, "BTB-0001", FormatReceiptNumber("BTB", 1))
	assert.Equal(t, "BTB-0042", FormatReceiptNumber("BTB", 42))
	assert.Equal(t, "BTB-12345", FormatReceiptNumber("BTB", 12345))
}

func TestRunAssignsNumbersAndLinks(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed("Cashflow", [][]string{
		ledgerHeader,
		{"1", "2025-01-05", "Ali", "Yuran", "Ali", "50", "BTB-0002", ""},
		{"2", "2025-01-06", "Abu", "Jersi", "Abu", "80", "", ""},
	})
	saver := &stubSaver{}
	gen := New(store, "Cashflow", saver, "BTB", false, nil)

	n, err := gen.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sh, _ := store.Sheet("Cashflow")
	row2, _ := sh.ReadRow(2)
	assert.Equal(t, "BTB-0002", row2[colReceiptNo], "existing number reused")
	assert.Equal(t, "https://drive/Receipt_BTB-0002.xlsx", row2[colLink])

	row3, _ := sh.ReadRow(3)
	assert.Equal(t, "BTB-0003", row3[colReceiptNo], "sequence continues after highest existing")
	assert.NotEmpty(t, row3[colLink])

	assert.Equal(t, []string{"Receipt_BTB-0002.xlsx", "Receipt_BTB-0003.xlsx"}, saver.saved)
}

func TestRunSkipsRowsWithLinks(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed("Cashflow", [][]string{
		ledgerHeader,
		{"1", "", "Ali", "", "", "50", "BTB-0001", "https://drive/done"},
	})
	saver := &stubSaver{}
	gen := New(store, "Cashflow", saver, "BTB", false, nil)

	n, err := gen.Run()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, saver.saved)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed("Cashflow", [][]string{
		ledgerHeader,
		{"1", "", "Ali", "", "", "50", "", ""},
	})
	saver := &stubSaver{}
	gen := New(store, "Cashflow", saver, "BTB", true, nil)

	n, err := gen.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, saver.saved)

	sh, _ := store.Sheet("Cashflow")
	row, _ := sh.ReadRow(2)
	assert.Equal(t, "", row[colReceiptNo])
}

func TestRunMissingSheet(t *testing.T) {
	gen := New(rowstore.NewMemoryStore(), "Cashflow", nil, "BTB", false, nil)
	_, err := gen.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cashflow")
}

func TestRenderReceiptProducesWorkbook(t *testing.T) {
	doc, err := renderReceipt(entry{
		No: "1", Date: "05-01-2025", Payer: "Ali", Purpose: "Yuran",
		Player: "Ali", Amount: "50", ReceiptNo: "BTB-0001",
	})
	require.NoError(t, err)
	// xlsx files are zip archives
	require.Greater(t, len(doc), 4)
	assert.Equal(t, "PK", string(doc[:2]))
}

func TestFormatLedgerDate(t *testing.T) {
	assert.Equal(t, "05-01-2025", formatLedgerDate("2025-01-05"))
	assert.Equal(t, "N/A", formatLedgerDate("  "))
	assert.Equal(t, "entah", formatLedgerDate("entah"))
}

func TestEntryFromRowDefaults(t *testing.T) {
	e := entryFromRow([]string{"", "", "", "", "", ""}, "BTB-0001")
	assert.Equal(t, "N/A", e.Payer)
	assert.Equal(t, "N/A", e.Amount)
	assert.Equal(t, "BTB-0001", e.ReceiptNo)
}
