package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/middleware"
	"github.com/qtc-soft/schedule-api/internal/model"
)

// UserHandler serves account self-service.  The account model itself is
// unscoped, so the handler pins non-admin callers to their own id on every
// operation; only admins can address other accounts.
type UserHandler struct {
	store      entity.Store
	bcryptCost int
}

func NewUserHandler(store entity.Store, bcryptCost int) *UserHandler {
	return &UserHandler{store: store, bcryptCost: bcryptCost}
}

func (h *UserHandler) newModel(c echo.Context) (*model.AccountModel, error) {
	return model.NewUserModel(h.store, parseFields(c), h.bcryptCost)
}

func (h *UserHandler) Get(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	ids, ok := parseIDs(c)
	if !ok {
		return badRequest(c, "ids", model.ReasonNoValidData)
	}
	s := middleware.CurrentSession(c)
	if !s.IsAdmin() {
		ids = []int64{s.ID}
	}
	rows, errs := m.GetEntities(c.Request().Context(), ids)
	for _, row := range rows {
		delete(row, "password")
		delete(row, "email_confirm_key")
	}
	return respond(c, rows, errs)
}

func (h *UserHandler) Update(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	items, err := decodeItems(c)
	if err != nil {
		return badRequest(c, "body", model.ReasonNoValidData)
	}
	s := middleware.CurrentSession(c)
	results, errs := applyBatch(c, items, func(item entity.Row) (entity.Row, []model.ErrorItem) {
		if !s.IsAdmin() {
			item["id"] = s.ID
		}
		row, itemErrs := m.UpdateEntity(c.Request().Context(), item)
		if itemErrs == nil {
			delete(row, "password")
			delete(row, "email_confirm_key")
		}
		return row, itemErrs
	})
	return respond(c, results, errs)
}

func (h *UserHandler) Delete(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	ids, ok := parseIDs(c)
	if !ok || len(ids) == 0 {
		return badRequest(c, "ids", model.ReasonNoValidData)
	}
	s := middleware.CurrentSession(c)
	if !s.IsAdmin() {
		ids = []int64{s.ID}
	}
	deleted, errs := deleteEach(ids, func(id int64) ([]int64, []model.ErrorItem) {
		return m.DeleteEntity(c.Request().Context(), id)
	})
	return respond(c, deleted, errs)
}
