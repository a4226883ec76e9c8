// Package model implements the business models over the entity stores: one
// model per entity family, layered on a shared base that applies field
// projection, ownership-scoped conditions and the four CRUD operations with
// uniform error semantics.  Operations return (results, errors) pairs; a
// storage failure never crosses this boundary as a raw error.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/metrics"
	"github.com/qtc-soft/schedule-api/internal/validation"
)

// Error reasons shared by every model.
const (
	ReasonNotFound     = "Not found"
	ReasonAccessDenied = "Access denied"
	ReasonNoValidData  = "No valid data"
	ReasonExecuteError = "Error on execute query"
	ReasonExists       = "Record already exists"
	ReasonNoSchedule   = "Access denied: you have no such schedule"
)

// ErrIncorrectParams marks request parameters rejected before any query
// executes (unknown select fields).  Handlers translate it into HTTP 400.
var ErrIncorrectParams = errors.New("incorrect params")

// ErrorItem is one error entry in a (results, errors) response pair.
type ErrorItem struct {
	Selector string `json:"selector"`
	Reason   string `json:"reason"`
	Value    any    `json:"value,omitempty"`
}

// base is the shared CRUD implementation.  Specializations fix the store,
// the selectable field set, the validation schemas and the base conditions
// that encode their ownership rule.
type base struct {
	store        entity.Store
	name         string
	allFields    map[string]bool
	selectFields []string
	baseConds    []entity.Cond
	createSchema validation.Schema
	updateSchema validation.Schema
	// conflictField tags duplicate errors with the payload's identifying
	// field (schedule name, account login).
	conflictField string
}

// newBase validates the caller-requested projection against the table's
// field set.  Unknown names are rejected here, before any query runs.
func newBase(store entity.Store, selectFields []string, baseConds []entity.Cond,
	create, update validation.Schema, conflictField string) (base, error) {

	all := store.Table().FieldNames()
	allSet := make(map[string]bool, len(all))
	for _, f := range all {
		allSet[f] = true
	}
	for _, f := range selectFields {
		if !allSet[f] {
			return base{}, fmt.Errorf("%w: unknown field %q", ErrIncorrectParams, f)
		}
	}
	if len(selectFields) == 0 {
		selectFields = all
	}
	return base{
		store:         store,
		name:          store.Table().Name,
		allFields:     allSet,
		selectFields:  selectFields,
		baseConds:     baseConds,
		createSchema:  create,
		updateSchema:  update,
		conflictField: conflictField,
	}, nil
}

// conditions returns a fresh slice on every call.  Base conditions are the
// ownership scope; handing out the backing array would let one request's
// appended selectors leak into the next.
func (b *base) conditions() []entity.Cond {
	out := make([]entity.Cond, len(b.baseConds))
	copy(out, b.baseConds)
	return out
}

// errItem builds one error entry and bumps the per-entity error counter.
func (b *base) errItem(selector, reason string, value any) ErrorItem {
	metrics.EntityErrors.WithLabelValues(b.name, reason).Inc()
	return ErrorItem{Selector: selector, Reason: reason, Value: value}
}

// GetEntities selects rows under the base conditions, optionally narrowed
// to an id set and extra filters.  When ids were requested, every id that
// did not come back yields a Not found item: an ownership-filtered row and a
// genuinely absent one are deliberately indistinguishable.
func (b *base) GetEntities(ctx context.Context, ids []int64, extra ...entity.Cond) ([]entity.Row, []ErrorItem) {
	conds := append(b.conditions(), extra...)
	if len(ids) > 0 {
		conds = append(conds, entity.In("id", ids))
	}

	rows, err := b.store.SelectWhere(ctx, b.selectFields, conds)
	if err != nil {
		return nil, []ErrorItem{b.errItem("ids", ReasonExecuteError, nil)}
	}
	return rows, b.reconcileIDs(ids, rows)
}

// reconcileIDs reports a Not found item for each requested id missing from
// the result set.
func (b *base) reconcileIDs(ids []int64, rows []entity.Row) []ErrorItem {
	if len(ids) == 0 {
		return nil
	}
	got := make(map[int64]bool, len(rows))
	for _, r := range rows {
		if id, ok := r["id"].(int64); ok {
			got[id] = true
		}
	}
	var errs []ErrorItem
	for _, id := range ids {
		if !got[id] {
			errs = append(errs, b.errItem("id", ReasonNotFound, id))
		}
	}
	return errs
}

// CreateEntity validates data against the create schema (unless the caller
// pre-validated) and inserts it, returning the new row projected onto the
// selected fields.
func (b *base) CreateEntity(ctx context.Context, data entity.Row, doValidate bool) (entity.Row, []ErrorItem) {
	values := data
	if doValidate {
		clean, ferrs := b.createSchema.Load(data)
		if len(ferrs) > 0 {
			return nil, []ErrorItem{b.errItem("data", ReasonNoValidData, fieldErrSummary(ferrs))}
		}
		values = clean
	}

	row, err := b.store.Insert(ctx, values, b.selectFields)
	if err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, []ErrorItem{b.errItem(b.conflictField, ReasonExists, data[b.conflictField])}
		}
		return nil, []ErrorItem{b.errItem("Operation create", ReasonExecuteError, nil)}
	}
	return row, nil
}

// UpdateEntity validates data against the update schema (id required) and
// applies it under the base conditions.  A row outside the caller's scope
// matches nothing and is reported as an execute error, the same as a row
// that vanished.
func (b *base) UpdateEntity(ctx context.Context, data entity.Row, doValidate bool) (entity.Row, []ErrorItem) {
	values := data
	if doValidate {
		clean, ferrs := b.updateSchema.Load(data)
		if len(ferrs) > 0 {
			return nil, []ErrorItem{b.errItem("data", ReasonNoValidData, fieldErrSummary(ferrs))}
		}
		values = clean
	}
	id, ok := entity.AsInt64(values["id"])
	if !ok || id <= 0 {
		return nil, []ErrorItem{b.errItem("id", ReasonNoValidData, nil)}
	}
	delete(values, "id")

	row, err := b.store.Update(ctx, id, values, b.conditions(), b.selectFields)
	if err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, []ErrorItem{b.errItem(b.conflictField, ReasonExists, data[b.conflictField])}
		}
		return nil, []ErrorItem{b.errItem("id", ReasonExecuteError, id)}
	}
	return row, nil
}

// DeleteEntity verifies existence under the caller's scope before deleting.
// Absent within scope -> Not found.  Present but zero rows deleted (a
// concurrent delete won the race) -> Access denied.
func (b *base) DeleteEntity(ctx context.Context, id int64) ([]int64, []ErrorItem) {
	if id <= 0 {
		return nil, []ErrorItem{b.errItem("id", ReasonNoValidData, nil)}
	}

	conds := append(b.conditions(), entity.Eq("id", id))
	rows, err := b.store.SelectWhere(ctx, []string{"id"}, conds)
	if err != nil {
		return nil, []ErrorItem{b.errItem("id", ReasonExecuteError, id)}
	}
	if len(rows) == 0 {
		return nil, []ErrorItem{b.errItem("id", ReasonNotFound, id)}
	}

	affected, err := b.store.DeleteByID(ctx, id)
	if err != nil || affected == 0 {
		return nil, []ErrorItem{b.errItem("id", ReasonAccessDenied, id)}
	}
	return []int64{id}, nil
}

// SelectFields exposes the projection this model was built with.
func (b *base) SelectFields() []string {
	out := make([]string, len(b.selectFields))
	copy(out, b.selectFields)
	return out
}

// fieldErrSummary flattens schema errors into the value slot of a single
// "No valid data" item.
func fieldErrSummary(ferrs []validation.FieldError) map[string]string {
	out := make(map[string]string, len(ferrs))
	for _, fe := range ferrs {
		out[fe.Field] = fe.Reason
	}
	return out
}
