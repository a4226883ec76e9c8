package entity

import (
	"context"
	"errors"
	"time"
)

// Row is a loosely-typed projection of one entity record.  Values are
// normalized to int64, float64, string or bool regardless of backend.
type Row map[string]any

// ErrDuplicate is returned by Insert when a uniqueness constraint is
// violated (duplicate login, email, phone or schedule name).
var ErrDuplicate = errors.New("record already exists")

// ErrNoRows is returned by Update when the scoped conditions match no row.
// An ownership violation and a vanished row are indistinguishable here;
// the model layer reports both as a generic execute error.
var ErrNoRows = errors.New("no rows matched")

// Store is the persistence contract consumed by the business models.  One
// Store instance serves one table.  Implementations must honor Cond
// semantics exactly as Cond.Matches defines them.
type Store interface {
	// SelectWhere executes a projected select.  An empty fields list selects
	// every registered column.  Rows come back ordered by ascending id.
	SelectWhere(ctx context.Context, fields []string, conds []Cond) ([]Row, error)
	// Insert persists values and returns the new row projected onto
	// returnFields (id is always included).  ErrDuplicate on unique
	// violation.
	Insert(ctx context.Context, values Row, returnFields []string) (Row, error)
	// Update applies values to the row matching id AND conds, returning the
	// updated row projected onto returnFields.  ErrNoRows when nothing
	// matches.
	Update(ctx context.Context, id int64, values Row, conds []Cond, returnFields []string) (Row, error)
	// DeleteByID removes the row by primary key and reports how many rows
	// were affected.  Scoping is the caller's job (existence check first).
	DeleteByID(ctx context.Context, id int64) (int64, error)
	// Table exposes the descriptor this store serves.
	Table() Table
}

// stampTimes fills created_at/updated_at (unix seconds) on tables that carry
// them.  Insert stamps both, update only updated_at.  Supplied values win.
func stampTimes(t Table, values Row, insert bool) {
	now := time.Now().Unix()
	if insert && t.HasColumn("created_at") {
		if _, ok := values["created_at"]; !ok {
			values["created_at"] = now
		}
	}
	if t.HasColumn("updated_at") {
		if _, ok := values["updated_at"]; !ok {
			values["updated_at"] = now
		}
	}
}
