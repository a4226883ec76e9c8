package entity

import (
	"context"
	"sort"
	"sync"
)

// MemStore is the in-memory Store implementation.  It is the reference
// interpreter for Cond semantics and the storage fake used throughout the
// test suites; access-control behavior verified against it holds for the
// SQL store by contract.
type MemStore struct {
	mu     sync.Mutex
	table  Table
	rows   map[int64]Row
	nextID int64
	unique [][]string
}

// NewMemStore builds an empty store for the table.  unique lists column
// groups that must stay unique across rows, mirroring the schema's
// constraints (e.g. login, email, schedule name).
func NewMemStore(table Table, unique ...[]string) *MemStore {
	return &MemStore{table: table, rows: make(map[int64]Row), nextID: 0, unique: unique}
}

// Table returns the descriptor this store serves.
func (m *MemStore) Table() Table { return m.table }

// SelectWhere filters rows by conditions and projects the requested fields.
func (m *MemStore) SelectWhere(_ context.Context, fields []string, conds []Cond) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Row
	for _, id := range m.sortedIDs() {
		row := m.rows[id]
		if matchesAll(row, conds) {
			out = append(out, project(row, m.projection(fields)))
		}
	}
	return out, nil
}

// Insert stores values under a fresh id after checking unique constraints.
func (m *MemStore) Insert(_ context.Context, values Row, returnFields []string) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	values = m.keepKnown(values)
	stampTimes(m.table, values, true)
	if m.violatesUnique(values, -1) {
		return nil, ErrDuplicate
	}
	m.nextID++
	values["id"] = m.nextID
	m.rows[m.nextID] = values
	return project(values, m.projection(returnFields)), nil
}

// Update mutates the row matching id AND conds.
func (m *MemStore) Update(_ context.Context, id int64, values Row, conds []Cond, returnFields []string) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok || !matchesAll(row, conds) {
		return nil, ErrNoRows
	}
	values = m.keepKnown(values)
	delete(values, "id")
	stampTimes(m.table, values, false)

	merged := make(Row, len(row)+len(values))
	for k, v := range row {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	if m.violatesUnique(merged, id) {
		return nil, ErrDuplicate
	}
	m.rows[id] = merged
	return project(merged, m.projection(returnFields)), nil
}

// DeleteByID removes the row; 0 affected when absent.
func (m *MemStore) DeleteByID(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *MemStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *MemStore) projection(fields []string) []string {
	if len(fields) == 0 {
		return m.table.FieldNames()
	}
	out := make([]string, 0, len(fields)+1)
	seen := map[string]bool{}
	for _, f := range append([]string{"id"}, fields...) {
		if seen[f] || !m.table.HasColumn(f) {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func (m *MemStore) keepKnown(values Row) Row {
	out := make(Row, len(values))
	for k, v := range values {
		if m.table.HasColumn(k) {
			out[k] = v
		}
	}
	return out
}

// violatesUnique checks candidate against every other row for each unique
// column group.  Empty values do not collide.
func (m *MemStore) violatesUnique(candidate Row, selfID int64) bool {
	for _, group := range m.unique {
		for id, row := range m.rows {
			if id == selfID {
				continue
			}
			same := true
			for _, col := range group {
				cv, ok := candidate[col]
				if !ok || cv == nil || cv == "" || !equalValues(row[col], cv) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func matchesAll(row Row, conds []Cond) bool {
	for _, c := range conds {
		if !c.Matches(row) {
			return false
		}
	}
	return true
}

func project(row Row, fields []string) Row {
	out := make(Row, len(fields))
	for _, f := range fields {
		out[f] = row[f]
	}
	return out
}
