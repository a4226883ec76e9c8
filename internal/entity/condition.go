// Package entity contains the storage layer shared by every business model.
// It defines the table registry, a small tagged-predicate condition type and
// two Store implementations: one over database/sql (MySQL) and an in-memory
// one used by tests.  Conditions are deliberately storage-agnostic so that
// the access-control logic in internal/model never needs to know which
// backend interprets them.
package entity

import "strings"

// Op enumerates the comparison operators a Cond may carry.
type Op uint8

const (
	// OpEq matches rows whose field equals the condition value.
	OpEq Op = iota
	// OpIn matches rows whose field is a member of the condition's id list.
	// An empty list matches nothing.
	OpIn
	// OpContains matches rows whose string field contains the condition
	// value as a substring (case-insensitive).
	OpContains
)

// Cond is a single boolean predicate over an entity field.  Queries AND
// together a list of Conds.  Both the SQL store and the memory store
// interpret the same values, which keeps model-level authorization rules
// testable without a database.
//
// Fields:
//  Field – column name the predicate applies to.
//  Op    – comparison operator.
//  Value – int64 for OpEq on ids/flags, string for OpEq/OpContains on text,
//          bool for OpEq on boolean columns, []int64 for OpIn.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality condition.
func Eq(field string, value any) Cond { return Cond{Field: field, Op: OpEq, Value: value} }

// In builds an id-membership condition.  The slice is copied so later
// mutation of the caller's set cannot change an already-built query.
func In(field string, ids []int64) Cond {
	cp := make([]int64, len(ids))
	copy(cp, ids)
	return Cond{Field: field, Op: OpIn, Value: cp}
}

// Contains builds a case-insensitive substring condition for text columns.
func Contains(field, value string) Cond {
	return Cond{Field: field, Op: OpContains, Value: value}
}

// Matches reports whether a row satisfies the condition.  This is the
// reference interpretation of Cond semantics; the SQL store compiles the
// same rules into WHERE clauses.
func (c Cond) Matches(row Row) bool {
	v, ok := row[c.Field]
	if !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		return equalValues(v, c.Value)
	case OpIn:
		ids, ok := c.Value.([]int64)
		if !ok {
			return false
		}
		n, ok := asInt64(v)
		if !ok {
			return false
		}
		for _, id := range ids {
			if id == n {
				return true
			}
		}
		return false
	case OpContains:
		s, ok := v.(string)
		if !ok {
			return false
		}
		sub, ok := c.Value.(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	return false
}

// equalValues compares two loosely-typed values.  Numeric values are
// normalized to int64 first so an id decoded from JSON (float64) still
// equals the stored int64.
func equalValues(a, b any) bool {
	if an, ok := asInt64(a); ok {
		bn, ok := asInt64(b)
		return ok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	}
	return a == b
}

// AsInt64 normalizes the integer representations that appear in rows and
// payloads (database scans, JSON decoding, literals).
func AsInt64(v any) (int64, bool) { return asInt64(v) }

// asInt64 normalizes the integer representations that appear in rows and
// conditions (database scans, JSON decoding, literals).
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
