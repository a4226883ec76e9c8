package model

import (
	"context"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/validation"
)

// ScheduleDetailModel manages the bookable time slots of the caller's
// schedules.  The base condition restricts reads to schedule_id within the
// session's allowed set; writes additionally verify the payload's
// schedule_id against that set before any statement is issued, because a
// read-time filter alone cannot stop an insert carrying a foreign
// schedule_id.
type ScheduleDetailModel struct {
	base
	allowedScheduleIDs []int64
}

// NewScheduleDetailModel builds a detail model scoped by the session's
// cached allowed-schedule ids.
func NewScheduleDetailModel(store entity.Store, allowedScheduleIDs []int64, selectFields []string) (*ScheduleDetailModel, error) {
	b, err := newBase(store, selectFields,
		[]entity.Cond{entity.In("schedule_id", allowedScheduleIDs)},
		validation.ScheduleDetailCreate, validation.ScheduleDetailUpdate, "time")
	if err != nil {
		return nil, err
	}
	return &ScheduleDetailModel{base: b, allowedScheduleIDs: allowedScheduleIDs}, nil
}

// GetEntities selects slots, optionally narrowed to an id set and a
// schedule subset.  A requested schedule outside the allowed set simply
// intersects to nothing.
func (m *ScheduleDetailModel) GetEntities(ctx context.Context, ids []int64, scheduleIDs []int64) ([]entity.Row, []ErrorItem) {
	var extra []entity.Cond
	if len(scheduleIDs) > 0 {
		// AND-ing a second membership test yields the intersection with the
		// allowed set from the base condition.
		extra = append(extra, entity.In("schedule_id", scheduleIDs))
	}
	return m.base.GetEntities(ctx, ids, extra...)
}

// CreateEntity inserts a slot after verifying the target schedule is within
// the caller's allowed set.  On violation no insert statement is issued.
func (m *ScheduleDetailModel) CreateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	if !m.allowsSchedule(data["schedule_id"]) {
		return nil, []ErrorItem{m.errItem("id", ReasonNoSchedule, data["schedule_id"])}
	}
	return m.base.CreateEntity(ctx, data, true)
}

// UpdateEntity updates a slot with the same write-time schedule check.
func (m *ScheduleDetailModel) UpdateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	if !m.allowsSchedule(data["schedule_id"]) {
		return nil, []ErrorItem{m.errItem("id", ReasonNoSchedule, data["schedule_id"])}
	}
	return m.base.UpdateEntity(ctx, data, true)
}

func (m *ScheduleDetailModel) allowsSchedule(v any) bool {
	id, ok := entity.AsInt64(v)
	if !ok {
		return false
	}
	for _, allowed := range m.allowedScheduleIDs {
		if allowed == id {
			return true
		}
	}
	return false
}
