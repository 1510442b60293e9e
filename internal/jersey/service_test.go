package jersey

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btb-portal/internal/models"
	"btb-portal/internal/rowstore"
)

const sheetName = "Tempahan Jersi"

func validInput(number string) BookingInput {
	return BookingInput{
		PlayerName:   "Ali",
		Email:        "a@b.com",
		ParentName:   "Abu",
		Address:      "Putrajaya",
		ICNumber:     "010203040506",
		JerseySize:   "M",
		JerseyName:   "ALI",
		JerseyNumber: models.FlexString(number),
		ReceiptURL:   "http://resit",
	}
}

func bookingRow(number string) []string {
	return []string{"ts", "Ali", "a@b.com", "Abu", "Putrajaya", "010203",
		"M", "ALI", number, ""}
}

func TestTakenNumbersMissingSheet(t *testing.T) {
	s := New(rowstore.NewMemoryStore(), sheetName, nil)
	assert.Empty(t, s.TakenNumbers())
}

func TestTakenNumbersUnconfigured(t *testing.T) {
	s := New(nil, sheetName, nil)
	assert.Empty(t, s.TakenNumbers())
}

func TestTakenNumbersFiltersGarbage(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed(sheetName, [][]string{
		BookingHeader,
		bookingRow("45"),
		bookingRow("abc"),  // non-numeric
		bookingRow("12"),   // below range
		bookingRow("1000"), // above range
		bookingRow(" 99 "), // whitespace tolerated
		bookingRow(""),
	})
	s := New(store, sheetName, nil)
	assert.Equal(t, []int{45, 99}, s.TakenNumbers())
}

func TestTakenNumbersHeaderFallback(t *testing.T) {
	// No "Nombor Jersi" header: the fixed column position is used.
	store := rowstore.NewMemoryStore()
	store.Seed(sheetName, [][]string{
		{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
		bookingRow("77"),
	})
	s := New(store, sheetName, nil)
	assert.Equal(t, []int{77}, s.TakenNumbers())
}

func TestTakenNumbersHeaderRelocated(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed(sheetName, [][]string{
		{"Nombor Jersi", "x"},
		{"88", ""},
	})
	s := New(store, sheetName, nil)
	assert.Equal(t, []int{88}, s.TakenNumbers())
}

func TestSubmitRequiredFieldsFirst(t *testing.T) {
	s := New(rowstore.NewMemoryStore(), sheetName, nil)

	in := validInput("45")
	in.Email = "   "
	_, err := s.Submit(in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Sila isi semua medan yang wajib.", verr.Message)

	// Missing number is a required-field failure, not a range failure.
	in = validInput("")
	_, err = s.Submit(in)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Sila isi semua medan yang wajib.", verr.Message)
}

func TestSubmitRangeValidation(t *testing.T) {
	s := New(rowstore.NewMemoryStore(), sheetName, nil)
	var verr *ValidationError
	for _, n := range []string{"29", "1000", "abc", "-5"} {
		_, err := s.Submit(validInput(n))
		require.ErrorAs(t, err, &verr, "number %q", n)
		assert.Equal(t, "Nombor jersi mesti antara 30 hingga 999.", verr.Message)
	}
}

func TestSubmitCreatesSheetOnFirstBooking(t *testing.T) {
	store := rowstore.NewMemoryStore()
	s := New(store, sheetName, nil)

	res, err := s.Submit(validInput("45"))
	require.NoError(t, err)
	assert.Contains(t, res.Message, "45")
	assert.Equal(t, []int{45}, res.TakenNumbers)

	sh, err := store.Sheet(sheetName)
	require.NoError(t, err)
	require.NotNil(t, sh)
	rows, err := sh.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, BookingHeader, rows[0])
	assert.Equal(t, "45", rows[1][8])
	assert.Equal(t, "http://resit", rows[1][9])
}

func TestSubmitDuplicateNeverAppends(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed(sheetName, [][]string{BookingHeader, bookingRow("45")})
	s := New(store, sheetName, nil)

	_, err := s.Submit(validInput("45"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "45")
	assert.Equal(t, []int{45}, verr.TakenNumbers, "taken set returned for UI refresh")

	sh, _ := store.Sheet(sheetName)
	n, _ := sh.RowCount()
	assert.Equal(t, 2, n, "row count unchanged")
}

func TestSubmitSuccessIncludesNewNumber(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed(sheetName, [][]string{BookingHeader, bookingRow("45")})
	s := New(store, sheetName, nil)

	res, err := s.Submit(validInput("46"))
	require.NoError(t, err)
	assert.Equal(t, []int{45, 46}, res.TakenNumbers)
	assert.Equal(t, fmt.Sprintf("Tempahan baju berjaya disimpan! Nombor jersi %d telah dipesan.", 46), res.Message)
}

func TestSubmitBoundaryNumbers(t *testing.T) {
	store := rowstore.NewMemoryStore()
	s := New(store, sheetName, nil)

	_, err := s.Submit(validInput("30"))
	require.NoError(t, err)
	_, err = s.Submit(validInput("999"))
	require.NoError(t, err)
}
