// Package players implements the data-access operations over the
// registration sheet: list, search, point read, add, update, delete.
package players

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"btb-portal/internal/models"
	"btb-portal/internal/rowstore"
	"btb-portal/internal/util"
)

// Error messages surfaced verbatim to the UI.
var (
	ErrInvalidRowIndex = errors.New("Invalid row index")
	ErrNotConfigured   = errors.New("Configuration error: registration spreadsheet missing")
	ErrSheetNotFound   = errors.New("Sheet not found")
	ErrRowNotFound     = errors.New("Row not found")
	ErrEmailRequired   = errors.New("Email diperlukan untuk pengesahan")
	ErrEmailMismatch   = errors.New("Email tidak sepadan. Padaman dibatalkan.")
	ErrDataRequired    = errors.New("Data pemain diperlukan")
)

type Service struct {
	store     rowstore.Store // nil when the spreadsheet is not configured
	sheetName string
	now       func() time.Time
	log       *slog.Logger
}

func New(store rowstore.Store, sheetName string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, sheetName: sheetName, now: time.Now, log: log}
}

// sheet resolves the registration sheet, returning nil for every
// not-there condition so read paths can treat them all as "no data".
func (s *Service) sheet() rowstore.Sheet {
	if s.store == nil {
		s.log.Warn("registration store not configured")
		return nil
	}
	sh, err := s.store.Sheet(s.sheetName)
	if err != nil {
		s.log.Error("open registration sheet", "sheet", s.sheetName, "err", err)
		return nil
	}
	return sh
}

// List returns every registered player. Missing configuration, a
// missing sheet or a read failure all yield an empty slice, never an
// error.
func (s *Service) List() []models.Player {
	sh := s.sheet()
	if sh == nil {
		return []models.Player{}
	}
	rows, err := sh.ReadAll()
	if err != nil {
		s.log.Error("read registration sheet", "err", err)
		return []models.Player{}
	}
	if len(rows) < 2 {
		return []models.Player{}
	}
	out := make([]models.Player, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		out = append(out, models.DecodePlayer(rows[i], i+1))
	}
	return out
}

// SearchByEmail matches players by trimmed, case-insensitive email
// equality. Empty input returns an empty slice.
func (s *Service) SearchByEmail(email string) []models.Player {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return []models.Player{}
	}
	out := []models.Player{}
	for _, p := range s.List() {
		if strings.ToLower(strings.TrimSpace(p.Email)) == email {
			out = append(out, p)
		}
	}
	return out
}

// GetByID reads a single player by direct row addressing. Row indices
// below 2 are invalid (row 1 is the header); invalid or absent rows
// return nil.
func (s *Service) GetByID(rowIndex int) *models.Player {
	if rowIndex < 2 {
		s.log.Warn("getById: invalid rowIndex", "rowIndex", rowIndex)
		return nil
	}
	sh := s.sheet()
	if sh == nil {
		return nil
	}
	row, err := sh.ReadRow(rowIndex)
	if err != nil {
		s.log.Error("read player row", "rowIndex", rowIndex, "err", err)
		return nil
	}
	if len(row) == 0 {
		return nil
	}
	p := models.DecodePlayer(row, rowIndex)
	return &p
}

// Add appends a new player row with a fresh timestamp and an empty
// image URL, returning the 1-based index of the appended row.
func (s *Service) Add(in models.PlayerInput) (int, error) {
	if in == (models.PlayerInput{}) {
		return 0, ErrDataRequired
	}
	if s.store == nil {
		return 0, ErrNotConfigured
	}
	sh, err := s.store.Sheet(s.sheetName)
	if err != nil {
		return 0, err
	}
	if sh == nil {
		return 0, ErrSheetNotFound
	}
	rowIndex, err := sh.AppendRow(models.NewPlayerRow(util.NowISO(s.now()), in))
	if err != nil {
		return 0, err
	}
	s.log.Info("player added", "rowIndex", rowIndex)
	return rowIndex, nil
}

// Update overwrites a player row in place, preserving the stored
// timestamp and image URL and keeping the stored email when the patch
// omits one.
func (s *Service) Update(rowIndex int, in models.PlayerInput) error {
	if rowIndex < 2 {
		return ErrInvalidRowIndex
	}
	if s.store == nil {
		return ErrNotConfigured
	}
	sh, err := s.store.Sheet(s.sheetName)
	if err != nil {
		return err
	}
	if sh == nil {
		return ErrSheetNotFound
	}
	last, err := sh.RowCount()
	if err != nil {
		return err
	}
	if rowIndex > last {
		return ErrRowNotFound
	}
	existing, err := sh.ReadRow(rowIndex)
	if err != nil {
		return err
	}
	if err := sh.WriteRow(rowIndex, models.EncodePlayerRow(existing, in)); err != nil {
		return err
	}
	s.log.Info("player updated", "rowIndex", rowIndex)
	return nil
}

// Delete removes a player row after confirming the caller knows the
// stored email (trimmed, case-insensitive). On mismatch nothing is
// modified. Deleting shifts every later row index down by one.
func (s *Service) Delete(rowIndex int, confirmEmail string) error {
	if rowIndex < 2 {
		return ErrInvalidRowIndex
	}
	if strings.TrimSpace(confirmEmail) == "" {
		return ErrEmailRequired
	}
	if s.store == nil {
		return ErrNotConfigured
	}
	sh, err := s.store.Sheet(s.sheetName)
	if err != nil {
		return err
	}
	if sh == nil {
		return ErrSheetNotFound
	}
	last, err := sh.RowCount()
	if err != nil {
		return err
	}
	if rowIndex > last {
		return ErrRowNotFound
	}
	row, err := sh.ReadRow(rowIndex)
	if err != nil {
		return err
	}
	stored := ""
	if len(row) > 1 {
		stored = row[1]
	}
	if strings.ToLower(strings.TrimSpace(stored)) != strings.ToLower(strings.TrimSpace(confirmEmail)) {
		return ErrEmailMismatch
	}
	if err := sh.DeleteRow(rowIndex); err != nil {
		return err
	}
	s.log.Info("player deleted", "rowIndex", rowIndex)
	return nil
}
