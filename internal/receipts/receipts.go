// Package receipts implements the batch receipt job: it walks the
// ledger sheet, assigns sequential receipt numbers continuing from the
// highest existing one, renders a receipt workbook per row, stores it
// in Drive and writes the number and document link back to the ledger.
package receipts

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"btb-portal/internal/rowstore"
	"btb-portal/internal/upload"
	"btb-portal/internal/util"
)

// DefaultPrefix is the historical receipt series.
const DefaultPrefix = "BTB"

// Ledger column positions.
const (
	colNo = iota
	colDate
	colPayer
	colPurpose
	colPlayer
	colAmount
	colReceiptNo
	colLink
)

const receiptsSubfolder = "Resit"

type Generator struct {
	store     rowstore.Store
	sheetName string
	files     upload.FileSaver
	prefix    string
	dryRun    bool
	log       *slog.Logger
}

func New(store rowstore.Store, sheetName string, files upload.FileSaver, prefix string, dryRun bool, log *slog.Logger) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		store:     store,
		sheetName: sheetName,
		files:     files,
		prefix:    prefix,
		dryRun:    dryRun,
		log:       log,
	}
}

// Run processes every ledger row that has no document link yet and
// returns how many receipts were generated.
func (g *Generator) Run() (int, error) {
	if g.store == nil {
		return 0, fmt.Errorf("ledger store not configured")
	}
	sh, err := g.store.Sheet(g.sheetName)
	if err != nil {
		return 0, err
	}
	if sh == nil {
		return 0, fmt.Errorf("ledger sheet %q not found", g.sheetName)
	}
	rows, err := sh.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(rows) < 2 {
		return 0, nil
	}

	next := NextReceiptNumber(rows[1:], g.prefix)
	generated := 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if cell(row, colLink) != "" {
			continue
		}
		receiptNo := cell(row, colReceiptNo)
		if receiptNo == "" {
			receiptNo = FormatReceiptNumber(g.prefix, next)
			next++
		}
		entry := entryFromRow(row, receiptNo)

		g.log.Info("generating receipt", "row", i+1, "receipt", receiptNo)
		if g.dryRun {
			generated++
			continue
		}

		doc, err := renderReceipt(entry)
		if err != nil {
			return generated, fmt.Errorf("render %s: %w", receiptNo, err)
		}
		link := ""
		if g.files != nil {
			link, err = g.files.SaveFile(receiptsSubfolder,
				"Receipt_"+receiptNo+".xlsx",
				"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				doc)
			if err != nil {
				return generated, fmt.Errorf("store %s: %w", receiptNo, err)
			}
		}

		updated := padRow(row, colLink+1)
		updated[colReceiptNo] = receiptNo
		updated[colLink] = link
		if err := sh.WriteRow(i+1, updated); err != nil {
			return generated, fmt.Errorf("write back %s: %w", receiptNo, err)
		}
		generated++
	}
	return generated, nil
}

type entry struct {
	No        string
	Date      string
	Payer     string
	Purpose   string
	Player    string
	Amount    string
	ReceiptNo string
}

func entryFromRow(row []string, receiptNo string) entry {
	return entry{
		No:        orNA(cell(row, colNo)),
		Date:      formatLedgerDate(cell(row, colDate)),
		Payer:     orNA(cell(row, colPayer)),
		Purpose:   orNA(cell(row, colPurpose)),
		Player:    orNA(cell(row, colPlayer)),
		Amount:    orNA(cell(row, colAmount)),
		ReceiptNo: receiptNo,
	}
}

// NextReceiptNumber continues the sequence after the highest existing
// PREFIX-dddd value in the receipt-number column.
func NextReceiptNumber(dataRows [][]string, prefix string) int {
	max := 0
	for _, row := range dataRows {
		no := cell(row, colReceiptNo)
		if !strings.HasPrefix(no, prefix+"-") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(no, prefix+"-"))
		if err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// FormatReceiptNumber renders e.g. BTB-0007.
func FormatReceiptNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}

// renderReceipt builds the receipt workbook for one ledger entry.
func renderReceipt(e entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", "RESIT RASMI BTB PUTRAJAYA")
	f.SetCellStyle(sheet, "A1", "A1", title)

	lines := []struct{ label, value string }{
		{"No Resit", e.ReceiptNo},
		{"No", e.No},
		{"Tarikh", e.Date},
		{"Pembayar", e.Payer},
		{"Tujuan", e.Purpose},
		{"Pemain", e.Player},
		{"Jumlah (RM)", e.Amount},
	}
	for i, ln := range lines {
		rowNum := i + 3
		labelCell := fmt.Sprintf("A%d", rowNum)
		f.SetCellValue(sheet, labelCell, ln.label)
		f.SetCellStyle(sheet, labelCell, labelCell, label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), ln.value)
	}
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "B", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatLedgerDate renders dd-mm-yyyy, passing unparseable values
// through so hand-typed dates survive.
func formatLedgerDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "N/A"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "1/2/2006", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return util.FormatDate(t)
		}
	}
	return raw
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func padRow(row []string, width int) []string {
	out := append([]string(nil), row...)
	for len(out) < width {
		out = append(out, "")
	}
	return out
}
