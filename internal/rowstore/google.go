package rowstore

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// GoogleStore is the Store implementation backed by the Google Sheets
// API. All writes use the RAW value input option and are committed by
// the API before the call returns.
type GoogleStore struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

// OpenGoogle opens a spreadsheet by id using a service account key file.
func OpenGoogle(serviceAccountJSONPath, spreadsheetID string) (*GoogleStore, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	ctx := context.Background()
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return &GoogleStore{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleStore) SpreadsheetID() string { return g.spreadsheetID }

// sheetID resolves the numeric sheet id needed by structural requests
// (delete row, add sheet). Returns -1 when the sheet does not exist.
func (g *GoogleStore) sheetID(name string) (int64, error) {
	meta, err := g.srv.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties.sheetId", "sheets.properties.title").
		Do()
	if err != nil {
		return -1, err
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			return sh.Properties.SheetId, nil
		}
	}
	return -1, nil
}

func (g *GoogleStore) Sheet(name string) (Sheet, error) {
	id, err := g.sheetID(name)
	if err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, nil
	}
	return &googleSheet{store: g, name: name, id: id}, nil
}

func (g *GoogleStore) CreateSheet(name string, header []string) (Sheet, error) {
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: name},
			},
		}},
	}
	resp, err := g.srv.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Do()
	if err != nil {
		return nil, err
	}
	sh := &googleSheet{
		store: g,
		name:  name,
		id:    resp.Replies[0].AddSheet.Properties.SheetId,
	}
	if len(header) > 0 {
		if err := sh.WriteRow(1, header); err != nil {
			return nil, err
		}
	}
	return sh, nil
}

type googleSheet struct {
	store *GoogleStore
	name  string
	id    int64
}

func (s *googleSheet) Name() string { return s.name }

func (s *googleSheet) ReadAll() ([][]string, error) {
	resp, err := s.store.srv.Spreadsheets.Values.Get(s.store.spreadsheetID, s.name+"!A:Z").Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		rows = append(rows, toCells(raw))
	}
	return rows, nil
}

func (s *googleSheet) ReadRow(rowIndex int) ([]string, error) {
	rng := fmt.Sprintf("%s!A%d:Z%d", s.name, rowIndex, rowIndex)
	resp, err := s.store.srv.Spreadsheets.Values.Get(s.store.spreadsheetID, rng).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toCells(resp.Values[0]), nil
}

func (s *googleSheet) RowCount() (int, error) {
	rows, err := s.ReadAll()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *googleSheet) AppendRow(cells []string) (int, error) {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{toRaw(cells)}}
	resp, err := s.store.srv.Spreadsheets.Values.Append(s.store.spreadsheetID, s.name+"!A:Z", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return 0, err
	}
	// UpdatedRange looks like "Sheet1!A7:M7"; fall back to a full read
	// if the API gave us nothing to parse.
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		if idx := parseRangeRow(resp.Updates.UpdatedRange); idx > 0 {
			return idx, nil
		}
	}
	return s.RowCount()
}

func (s *googleSheet) WriteRow(rowIndex int, cells []string) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{toRaw(cells)}}
	rng := fmt.Sprintf("%s!A%d", s.name, rowIndex)
	_, err := s.store.srv.Spreadsheets.Values.Update(s.store.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Do()
	return err
}

func (s *googleSheet) DeleteRow(rowIndex int) error {
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			DeleteDimension: &sheetsv4.DeleteDimensionRequest{
				Range: &sheetsv4.DimensionRange{
					SheetId:    s.id,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex - 1), // API range is 0-based, half-open
					EndIndex:   int64(rowIndex),
				},
			},
		}},
	}
	_, err := s.store.srv.Spreadsheets.BatchUpdate(s.store.spreadsheetID, req).Do()
	return err
}

func toCells(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toRaw(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// parseRangeRow extracts the trailing row number from an A1 range such
// as "Tempahan Jersi!A7:J7".
func parseRangeRow(a1 string) int {
	start := len(a1)
	for start > 0 && a1[start-1] >= '0' && a1[start-1] <= '9' {
		start--
	}
	n := 0
	for _, c := range a1[start:] {
		n = n*10 + int(c-'0')
	}
	return n
}
