package entity

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// SQLStore implements Store over a *sql.DB handle (MySQL).  One instance
// serves one table; the shared pool lives in the handle.
type SQLStore struct {
	db    *sql.DB
	table Table
	log   zerolog.Logger
}

// NewSQLStore constructs a store for the given table descriptor.
func NewSQLStore(db *sql.DB, table Table, log zerolog.Logger) *SQLStore {
	return &SQLStore{db: db, table: table, log: log.With().Str("table", table.Name).Logger()}
}

// Table returns the descriptor this store serves.
func (s *SQLStore) Table() Table { return s.table }

// SelectWhere executes a projected select ordered by id.
func (s *SQLStore) SelectWhere(ctx context.Context, fields []string, conds []Cond) ([]Row, error) {
	cols := s.projection(fields)
	where, args := s.compile(conds)
	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id", strings.Join(quoteAll(cols), ","), s.table.Name, where)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.log.Error().Err(err).Msg("select failed")
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := s.scanRow(rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert persists values and reads the new row back.  MySQL has no
// RETURNING, so this is an exec followed by a select on LastInsertId.
func (s *SQLStore) Insert(ctx context.Context, values Row, returnFields []string) (Row, error) {
	values = s.keepKnown(values)
	stampTimes(s.table, values, true)

	names := sortedKeys(values)
	args := make([]any, 0, len(names))
	marks := make([]string, 0, len(names))
	for _, n := range names {
		args = append(args, values[n])
		marks = append(marks, "?")
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table.Name, strings.Join(quoteAll(names), ","), strings.Join(marks, ","))

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		// 1062 = ER_DUP_ENTRY
		if strings.Contains(err.Error(), "1062") {
			return nil, ErrDuplicate
		}
		s.log.Error().Err(err).Msg("insert failed")
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.selectOne(ctx, returnFields, []Cond{Eq("id", id)})
}

// Update applies values to the row matching id AND conds.  A miss (out of
// scope or vanished) reports ErrNoRows without confirming which.
func (s *SQLStore) Update(ctx context.Context, id int64, values Row, conds []Cond, returnFields []string) (Row, error) {
	values = s.keepKnown(values)
	delete(values, "id")
	stampTimes(s.table, values, false)
	if len(values) == 0 {
		return nil, ErrNoRows
	}

	scoped := append(append([]Cond{}, conds...), Eq("id", id))
	where, whereArgs := s.compile(scoped)

	names := sortedKeys(values)
	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+len(whereArgs))
	for _, n := range names {
		sets = append(sets, quote(n)+"=?")
		args = append(args, values[n])
	}
	args = append(args, whereArgs...)

	q := fmt.Sprintf("UPDATE %s SET %s%s", s.table.Name, strings.Join(sets, ","), where)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return nil, ErrDuplicate
		}
		s.log.Error().Err(err).Msg("update failed")
		return nil, err
	}
	// Read back under the same scope: zero rows means the update matched
	// nothing the caller may see.
	return s.selectOne(ctx, returnFields, scoped)
}

// DeleteByID removes one row by primary key.
func (s *SQLStore) DeleteByID(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id=?", s.table.Name), id)
	if err != nil {
		s.log.Error().Err(err).Msg("delete failed")
		return 0, err
	}
	return res.RowsAffected()
}

// selectOne runs a scoped select expecting exactly one row.
func (s *SQLStore) selectOne(ctx context.Context, fields []string, conds []Cond) (Row, error) {
	rows, err := s.SelectWhere(ctx, fields, conds)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// projection resolves the requested field list, always including id, and
// drops unregistered names (the model layer validates them beforehand).
func (s *SQLStore) projection(fields []string) []string {
	if len(fields) == 0 {
		return s.table.FieldNames()
	}
	out := make([]string, 0, len(fields)+1)
	seen := map[string]bool{}
	for _, f := range append([]string{"id"}, fields...) {
		if seen[f] || !s.table.HasColumn(f) {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// compile turns conditions into a WHERE clause with placeholder args.
func (s *SQLStore) compile(conds []Cond) (string, []any) {
	if len(conds) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(conds))
	var args []any
	for _, c := range conds {
		switch c.Op {
		case OpEq:
			parts = append(parts, quote(c.Field)+"=?")
			args = append(args, c.Value)
		case OpIn:
			ids, _ := c.Value.([]int64)
			if len(ids) == 0 {
				// empty membership matches nothing
				parts = append(parts, "1=0")
				continue
			}
			marks := make([]string, len(ids))
			for i, id := range ids {
				marks[i] = "?"
				args = append(args, id)
			}
			parts = append(parts, fmt.Sprintf("%s IN (%s)", quote(c.Field), strings.Join(marks, ",")))
		case OpContains:
			parts = append(parts, quote(c.Field)+" LIKE ?")
			args = append(args, "%"+fmt.Sprint(c.Value)+"%")
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// scanRow scans the current result row into a Row keyed by column name.
func (s *SQLStore) scanRow(rows *sql.Rows, cols []string) (Row, error) {
	targets := make([]any, len(cols))
	for i, name := range cols {
		c, _ := s.table.Column(name)
		switch c.Kind {
		case KindInt:
			targets[i] = new(sql.NullInt64)
		case KindFloat:
			targets[i] = new(sql.NullFloat64)
		case KindBool:
			targets[i] = new(sql.NullBool)
		default:
			targets[i] = new(sql.NullString)
		}
	}
	if err := rows.Scan(targets...); err != nil {
		return nil, err
	}
	r := make(Row, len(cols))
	for i, name := range cols {
		switch v := targets[i].(type) {
		case *sql.NullInt64:
			if v.Valid {
				r[name] = v.Int64
			} else {
				r[name] = nil
			}
		case *sql.NullFloat64:
			if v.Valid {
				r[name] = v.Float64
			} else {
				r[name] = nil
			}
		case *sql.NullBool:
			if v.Valid {
				r[name] = v.Bool
			} else {
				r[name] = nil
			}
		case *sql.NullString:
			if v.Valid {
				r[name] = v.String
			} else {
				r[name] = nil
			}
		}
	}
	return r, nil
}

// keepKnown copies values, dropping keys without a registered column.
func (s *SQLStore) keepKnown(values Row) Row {
	out := make(Row, len(values))
	for k, v := range values {
		if s.table.HasColumn(k) {
			out[k] = v
		}
	}
	return out
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quote(name string) string { return "`" + name + "`" }

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quote(n)
	}
	return out
}
