package model

import (
	"context"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/session"
	"github.com/qtc-soft/schedule-api/internal/validation"
)

// ScheduleACL adapts the schedule store to the session package's ACLSource:
// the owned-schedule set of a principal is exactly the ids where creater_id
// matches.
type ScheduleACL struct {
	store entity.Store
}

// NewScheduleACL wraps a schedule store for session ACL lookups.
func NewScheduleACL(store entity.Store) *ScheduleACL { return &ScheduleACL{store: store} }

// OwnedScheduleIDs returns the ids of every schedule created by the
// principal.
func (a *ScheduleACL) OwnedScheduleIDs(ctx context.Context, principalID int64) ([]int64, error) {
	rows, err := a.store.SelectWhere(ctx, []string{"id"}, []entity.Cond{entity.Eq("creater_id", principalID)})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		if id, ok := r["id"].(int64); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ScheduleModel is the owner-facing schedule CRUD.  Its base condition pins
// every query to creater_id == caller, so rows belonging to another owner
// are unobservable regardless of the ids requested.  Every mutation
// refreshes the caller's session ACL so ownership checks made via the cache
// stay current.
type ScheduleModel struct {
	base
	createrID int64
	sessions  *session.Store
}

// NewScheduleModel builds a schedule model scoped to one creating user.
func NewScheduleModel(store entity.Store, sessions *session.Store, createrID int64, selectFields []string) (*ScheduleModel, error) {
	b, err := newBase(store, selectFields,
		[]entity.Cond{entity.Eq("creater_id", createrID)},
		validation.ScheduleCreate, validation.ScheduleUpdate, "name")
	if err != nil {
		return nil, err
	}
	return &ScheduleModel{base: b, createrID: createrID, sessions: sessions}, nil
}

// GetEntities selects the caller's schedules, optionally narrowed by id set
// and a name substring filter.
func (m *ScheduleModel) GetEntities(ctx context.Context, ids []int64, filterName string) ([]entity.Row, []ErrorItem) {
	var extra []entity.Cond
	if filterName != "" {
		extra = append(extra, entity.Contains("name", filterName))
	}
	return m.base.GetEntities(ctx, ids, extra...)
}

// CreateEntity inserts a schedule.  The creater_id is forced to the caller,
// overriding anything the client supplied.
func (m *ScheduleModel) CreateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	data["creater_id"] = m.createrID
	row, errs := m.base.CreateEntity(ctx, data, true)
	if row != nil {
		m.refreshACL(ctx)
	}
	return row, errs
}

// UpdateEntity updates a schedule under the ownership scope, again forcing
// creater_id to the caller.
func (m *ScheduleModel) UpdateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	data["creater_id"] = m.createrID
	row, errs := m.base.UpdateEntity(ctx, data, true)
	if row != nil {
		m.refreshACL(ctx)
	}
	return row, errs
}

// DeleteEntity removes a schedule under the ownership scope.
func (m *ScheduleModel) DeleteEntity(ctx context.Context, id int64) ([]int64, []ErrorItem) {
	res, errs := m.base.DeleteEntity(ctx, id)
	if len(res) > 0 {
		m.refreshACL(ctx)
	}
	return res, errs
}

func (m *ScheduleModel) refreshACL(ctx context.Context) {
	if m.sessions != nil {
		_ = m.sessions.RefreshACL(ctx, m.createrID)
	}
}

// ScheduleOnlineModel is the public, customer-facing read model.  There is
// no ownership scope, only an activation filter; mutation is not exposed.
type ScheduleOnlineModel struct {
	base
}

// NewScheduleOnlineModel builds the public schedule reader.
func NewScheduleOnlineModel(store entity.Store, selectFields []string) (*ScheduleOnlineModel, error) {
	b, err := newBase(store, selectFields,
		[]entity.Cond{entity.Eq("activate", true)},
		validation.Schema{}, validation.Schema{}, "name")
	if err != nil {
		return nil, err
	}
	return &ScheduleOnlineModel{base: b}, nil
}

// GetEntities selects active schedules, optionally narrowed by ids, a name
// substring and the creating users.
func (m *ScheduleOnlineModel) GetEntities(ctx context.Context, ids []int64, filterName string, createrIDs []int64) ([]entity.Row, []ErrorItem) {
	var extra []entity.Cond
	if filterName != "" {
		extra = append(extra, entity.Contains("name", filterName))
	}
	if len(createrIDs) > 0 {
		extra = append(extra, entity.In("creater_id", createrIDs))
	}
	return m.base.GetEntities(ctx, ids, extra...)
}
