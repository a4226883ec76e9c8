package model

import (
	"context"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/validation"
)

// ReferenceModel serves the simple lookup tables (countries, cities).
// There is no ownership: everyone reads them, only administrators mutate
// them (enforced at the handler layer).
type ReferenceModel struct {
	base
}

// NewReferenceModel builds a lookup model for the given reference table.
func NewReferenceModel(store entity.Store, selectFields []string) (*ReferenceModel, error) {
	b, err := newBase(store, selectFields, nil,
		validation.ReferenceCreate, validation.ReferenceUpdate, "label")
	if err != nil {
		return nil, err
	}
	return &ReferenceModel{base: b}, nil
}

// GetEntities selects lookup rows, optionally narrowed by ids and a label
// substring.
func (m *ReferenceModel) GetEntities(ctx context.Context, ids []int64, filterLabel string) ([]entity.Row, []ErrorItem) {
	var extra []entity.Cond
	if filterLabel != "" {
		extra = append(extra, entity.Contains("label", filterLabel))
	}
	return m.base.GetEntities(ctx, ids, extra...)
}

// CreateEntity inserts a lookup row.
func (m *ReferenceModel) CreateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	return m.base.CreateEntity(ctx, data, true)
}

// UpdateEntity updates a lookup row.
func (m *ReferenceModel) UpdateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	return m.base.UpdateEntity(ctx, data, true)
}

// DeleteEntity removes a lookup row.
func (m *ReferenceModel) DeleteEntity(ctx context.Context, id int64) ([]int64, []ErrorItem) {
	return m.base.DeleteEntity(ctx, id)
}
