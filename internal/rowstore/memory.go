package rowstore

import "sync"

// MemoryStore is an in-memory Store with the same semantics as the
// Google Sheets implementation, including the index shift on delete.
// Used by tests and for running the server without credentials.
type MemoryStore struct {
	mu     sync.Mutex
	sheets map[string]*memorySheet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: map[string]*memorySheet{}}
}

func (m *MemoryStore) Sheet(name string) (Sheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh, ok := m.sheets[name]
	if !ok {
		return nil, nil
	}
	return sh, nil
}

func (m *MemoryStore) CreateSheet(name string, header []string) (Sheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh := &memorySheet{mu: &m.mu, name: name}
	if len(header) > 0 {
		sh.rows = append(sh.rows, append([]string(nil), header...))
	}
	m.sheets[name] = sh
	return sh, nil
}

// Seed creates a sheet pre-filled with rows (header included). Test helper.
func (m *MemoryStore) Seed(name string, rows [][]string) Sheet {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh := &memorySheet{mu: &m.mu, name: name}
	for _, r := range rows {
		sh.rows = append(sh.rows, append([]string(nil), r...))
	}
	m.sheets[name] = sh
	return sh
}

type memorySheet struct {
	mu   *sync.Mutex
	name string
	rows [][]string
}

func (s *memorySheet) Name() string { return s.name }

func (s *memorySheet) ReadAll() ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (s *memorySheet) ReadRow(rowIndex int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rowIndex < 1 || rowIndex > len(s.rows) {
		return nil, nil
	}
	return append([]string(nil), s.rows[rowIndex-1]...), nil
}

func (s *memorySheet) RowCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows), nil
}

func (s *memorySheet) AppendRow(cells []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, append([]string(nil), cells...))
	return len(s.rows), nil
}

func (s *memorySheet) WriteRow(rowIndex int, cells []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.rows) < rowIndex {
		s.rows = append(s.rows, nil)
	}
	s.rows[rowIndex-1] = append([]string(nil), cells...)
	return nil
}

func (s *memorySheet) DeleteRow(rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rowIndex < 1 || rowIndex > len(s.rows) {
		return nil
	}
	s.rows = append(s.rows[:rowIndex-1], s.rows[rowIndex:]...)
	return nil
}
