package players

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btb-portal/internal/models"
	"btb-portal/internal/rowstore"
)

const sheetName = "Form Responses 1"

var header = []string{
	"Timestamp", "Email", "Nama", "Umur", "Nama Penjaga", "Telefon",
	"Alamat", "Sekolah", "Tahap", "Pencapaian", "Kebenaran", "Gambar", "No IC",
}

func newService(t *testing.T) (*Service, *rowstore.MemoryStore) {
	t.Helper()
	store := rowstore.NewMemoryStore()
	store.Seed(sheetName, [][]string{header})
	return New(store, sheetName, nil), store
}

func seedPlayer(t *testing.T, s *Service, email, name string) int {
	t.Helper()
	idx, err := s.Add(models.PlayerInput{Email: email, Name: name})
	require.NoError(t, err)
	return idx
}

func TestListUnconfiguredStore(t *testing.T) {
	s := New(nil, sheetName, nil)
	assert.Empty(t, s.List())
}

func TestListMissingSheet(t *testing.T) {
	s := New(rowstore.NewMemoryStore(), sheetName, nil)
	assert.Empty(t, s.List())
}

func TestAddThenGetRoundTrip(t *testing.T) {
	s, _ := newService(t)
	in := models.PlayerInput{
		Email:      "a@b.com",
		Name:       "Ali",
		Age:        "12",
		ParentName: "Abu",
		School:     "SK Presint 9",
		ICNumber:   "010203040506",
	}
	idx, err := s.Add(in)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	p := s.GetByID(idx)
	require.NotNil(t, p)
	assert.Equal(t, in.Email, p.Email)
	assert.Equal(t, in.Name, p.Name)
	assert.Equal(t, in.Age, p.Age)
	assert.Equal(t, in.ParentName, p.ParentName)
	assert.Equal(t, in.School, p.School)
	assert.Equal(t, in.ICNumber, p.ICNumber)
	assert.Equal(t, "", p.ImageURL)
	assert.NotEmpty(t, p.Timestamp)
}

func TestAddRequiresData(t *testing.T) {
	s, _ := newService(t)
	_, err := s.Add(models.PlayerInput{})
	assert.ErrorIs(t, err, ErrDataRequired)
}

func TestSequentialAddsHaveNoGaps(t *testing.T) {
	s, _ := newService(t)
	first := seedPlayer(t, s, "a@b.com", "A")
	second := seedPlayer(t, s, "c@d.com", "B")
	assert.Equal(t, first+1, second)
}

func TestGetByIDInvalidIndex(t *testing.T) {
	s, _ := newService(t)
	assert.Nil(t, s.GetByID(1))
	assert.Nil(t, s.GetByID(0))
	assert.Nil(t, s.GetByID(-3))
}

func TestSearchByEmailTrimsAndIgnoresCase(t *testing.T) {
	s, _ := newService(t)
	seedPlayer(t, s, "foo@bar.com", "Foo")
	seedPlayer(t, s, "other@x.com", "Other")

	got := s.SearchByEmail("Foo@Bar.com ")
	require.Len(t, got, 1)
	assert.Equal(t, "Foo", got[0].Name)

	assert.Empty(t, s.SearchByEmail(""))
	assert.Empty(t, s.SearchByEmail("nobody@x.com"))
}

func TestUpdatePreservesTimestampAndImage(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed(sheetName, [][]string{
		header,
		{"orig-ts", "a@b.com", "Ali", "12", "", "", "", "", "", "", "", "http://img/raw", "000"},
	})
	s := New(store, sheetName, nil)

	require.NoError(t, s.Update(2, models.PlayerInput{Name: "Ali Baru", Age: "13"}))

	sh, err := store.Sheet(sheetName)
	require.NoError(t, err)
	row, err := sh.ReadRow(2)
	require.NoError(t, err)
	assert.Equal(t, "orig-ts", row[0])
	assert.Equal(t, "a@b.com", row[1], "email preserved when patch omits it")
	assert.Equal(t, "Ali Baru", row[2])
	assert.Equal(t, "13", row[3])
	assert.Equal(t, "http://img/raw", row[11])
}

func TestUpdateRejectsBadIndexes(t *testing.T) {
	s, _ := newService(t)
	assert.ErrorIs(t, s.Update(1, models.PlayerInput{}), ErrInvalidRowIndex)
	assert.ErrorIs(t, s.Update(99, models.PlayerInput{}), ErrRowNotFound)
}

func TestDeleteEmailMismatchIsNoOp(t *testing.T) {
	s, store := newService(t)
	idx := seedPlayer(t, s, "a@b.com", "Ali")

	err := s.Delete(idx, "wrong@b.com")
	assert.ErrorIs(t, err, ErrEmailMismatch)

	sh, _ := store.Sheet(sheetName)
	n, _ := sh.RowCount()
	assert.Equal(t, 2, n, "store unchanged on mismatch")
}

func TestDeleteMatchIgnoresCaseAndWhitespace(t *testing.T) {
	s, store := newService(t)
	idx := seedPlayer(t, s, "foo@bar.com", "Foo")

	require.NoError(t, s.Delete(idx, " Foo@Bar.COM "))

	sh, _ := store.Sheet(sheetName)
	n, _ := sh.RowCount()
	assert.Equal(t, 1, n)
}

func TestDeleteShiftsLaterIndexes(t *testing.T) {
	s, _ := newService(t)
	seedPlayer(t, s, "a@b.com", "A") // row 2
	seedPlayer(t, s, "b@b.com", "B") // row 3
	seedPlayer(t, s, "c@b.com", "C") // row 4

	require.NoError(t, s.Delete(3, "b@b.com"))

	// Row 3 now holds what was row 4.
	p := s.GetByID(3)
	require.NotNil(t, p)
	assert.Equal(t, "C", p.Name)
}

func TestDeleteRequiresEmail(t *testing.T) {
	s, _ := newService(t)
	seedPlayer(t, s, "a@b.com", "A")
	assert.ErrorIs(t, s.Delete(2, "  "), ErrEmailRequired)
}
