// Package jersey implements the jersey booking flow: the taken-numbers
// scan and the validated submit into the booking sheet.
package jersey

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"btb-portal/internal/models"
	"btb-portal/internal/rowstore"
	"btb-portal/internal/util"
)

// Jersey numbers must fall in this range.
const (
	MinNumber = 30
	MaxNumber = 999
)

// Header row written when the booking sheet is created on first submit.
// The taken-numbers scan locates the number column by this header text,
// falling back to its fixed position when the header is missing.
var BookingHeader = []string{
	"Timestamp",
	"Nama Pemain",
	"Email",
	"Nama Ibu Bapa Penjaga",
	"Alamat",
	"No. IC Pemain",
	"Saiz Baju",
	"Nama di Jersi",
	"Nombor Jersi",
	"Resit Bayaran (URL)",
}

const (
	numberHeader      = "Nombor Jersi"
	fallbackNumberCol = 8 // 0-based position of the number column
)

// BookingInput is the submitJerseyBooking payload. JerseyNumber is
// flexible because form relays send it as text and JSON clients as a
// number.
type BookingInput struct {
	PlayerName   string            `json:"playerName"`
	Email        string            `json:"email"`
	ParentName   string            `json:"parentName"`
	Address      string            `json:"address"`
	ICNumber     string            `json:"icNumber"`
	JerseySize   string            `json:"jerseySize"`
	JerseyName   string            `json:"jerseyName"`
	JerseyNumber models.FlexString `json:"jerseyNumber"`
	ReceiptURL   string            `json:"receiptUrl"`
}

// SubmitResult is returned on a successful booking. TakenNumbers
// already includes the newly booked number so clients can refresh
// without a second read.
type SubmitResult struct {
	Message      string
	TakenNumbers []int
}

// ValidationError is a user-facing rejection. TakenNumbers is set only
// for the duplicate-number case, again to let the client refresh its
// picker.
type ValidationError struct {
	Message      string
	TakenNumbers []int
}

func (e *ValidationError) Error() string { return e.Message }

type Service struct {
	store     rowstore.Store
	sheetName string
	now       func() time.Time
	log       *slog.Logger

	// Serializes the check-then-append sequence so two submissions in
	// this process cannot both observe a number as free.
	mu sync.Mutex
}

func New(store rowstore.Store, sheetName string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, sheetName: sheetName, now: time.Now, log: log}
}

// TakenNumbers scans the booking sheet's number column and returns the
// values that parse as integers inside [30,999]. A missing sheet is the
// normal state before the first booking and yields an empty slice.
func (s *Service) TakenNumbers() []int {
	if s.store == nil {
		return []int{}
	}
	sh, err := s.store.Sheet(s.sheetName)
	if err != nil {
		s.log.Error("open booking sheet", "err", err)
		return []int{}
	}
	if sh == nil {
		return []int{}
	}
	rows, err := sh.ReadAll()
	if err != nil {
		s.log.Error("read booking sheet", "err", err)
		return []int{}
	}
	if len(rows) < 2 {
		return []int{}
	}
	col := fallbackNumberCol
	for i, h := range rows[0] {
		if h == numberHeader {
			col = i
			break
		}
	}
	taken := []int{}
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[col]))
		if err != nil || n < MinNumber || n > MaxNumber {
			continue
		}
		taken = append(taken, n)
	}
	return taken
}

// Submit validates a booking and appends it to the booking sheet,
// creating the sheet with its header row on first use. Validation is
// first-failure-wins: required fields, then the number range, then
// uniqueness against the current taken set.
func (s *Service) Submit(in BookingInput) (*SubmitResult, error) {
	playerName := strings.TrimSpace(in.PlayerName)
	email := strings.TrimSpace(in.Email)
	parentName := strings.TrimSpace(in.ParentName)
	address := strings.TrimSpace(in.Address)
	icNumber := strings.TrimSpace(in.ICNumber)
	jerseySize := strings.TrimSpace(in.JerseySize)
	jerseyName := strings.TrimSpace(in.JerseyName)
	rawNumber := strings.TrimSpace(in.JerseyNumber.String())
	receiptURL := strings.TrimSpace(in.ReceiptURL)

	if playerName == "" || email == "" || parentName == "" || address == "" ||
		icNumber == "" || jerseySize == "" || jerseyName == "" || rawNumber == "" {
		return nil, &ValidationError{Message: "Sila isi semua medan yang wajib."}
	}

	number, err := strconv.Atoi(rawNumber)
	if err != nil || number < MinNumber || number > MaxNumber {
		return nil, &ValidationError{Message: "Nombor jersi mesti antara 30 hingga 999."}
	}

	if s.store == nil {
		return nil, &ValidationError{Message: "Configuration error: registration spreadsheet missing."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := s.TakenNumbers()
	for _, t := range taken {
		if t == number {
			return nil, &ValidationError{
				Message:      fmt.Sprintf("Nombor jersi %d sudah dipesan. Sila pilih nombor lain.", number),
				TakenNumbers: taken,
			}
		}
	}

	sh, err := s.store.Sheet(s.sheetName)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		sh, err = s.store.CreateSheet(s.sheetName, BookingHeader)
		if err != nil {
			return nil, err
		}
	}

	row := []string{
		util.NowISO(s.now()),
		playerName,
		email,
		parentName,
		address,
		icNumber,
		jerseySize,
		jerseyName,
		strconv.Itoa(number),
		receiptURL,
	}
	if _, err := sh.AppendRow(row); err != nil {
		return nil, err
	}
	s.log.Info("jersey booking saved", "number", number)

	return &SubmitResult{
		Message:      fmt.Sprintf("Tempahan baju berjaya disimpan! Nombor jersi %d telah dipesan.", number),
		TakenNumbers: append(taken, number),
	}, nil
}
