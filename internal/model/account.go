package model

import (
	"context"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/utils"
	"github.com/qtc-soft/schedule-api/internal/validation"
)

// AccountModel is the unscoped CRUD over principal tables (Users and
// Customers).  It layers two things on the base: duplicate login/email/
// phone rejection with field-tagged errors before any insert, and password
// hashing in place prior to persistence.
type AccountModel struct {
	base
	bcryptCost int
}

// NewUserModel builds the account model over the Users table.
func NewUserModel(store entity.Store, selectFields []string, bcryptCost int) (*AccountModel, error) {
	b, err := newBase(store, selectFields, nil,
		validation.UserCreate, validation.UserUpdate, "login")
	if err != nil {
		return nil, err
	}
	return &AccountModel{base: b, bcryptCost: bcryptCost}, nil
}

// NewCustomerAccountModel builds the account model over the Customers
// table; it backs customer self-registration.
func NewCustomerAccountModel(store entity.Store, selectFields []string, bcryptCost int) (*AccountModel, error) {
	b, err := newBase(store, selectFields, nil,
		validation.CustomerCreate, validation.CustomerUpdate, "login")
	if err != nil {
		return nil, err
	}
	return &AccountModel{base: b, bcryptCost: bcryptCost}, nil
}

// GetEntities selects accounts by id set.
func (m *AccountModel) GetEntities(ctx context.Context, ids []int64) ([]entity.Row, []ErrorItem) {
	return m.base.GetEntities(ctx, ids)
}

// CreateEntity validates, rejects duplicates field by field, hashes the
// password and inserts.  The login check short-circuits the email and phone
// checks: a taken login makes the remaining lookups pointless and their
// messages confusing.  System fields are merged after schema validation, so
// they land in the same insert but can never arrive from a client payload.
func (m *AccountModel) CreateEntity(ctx context.Context, data, system entity.Row) (entity.Row, []ErrorItem) {
	clean, ferrs := m.createSchema.Load(data)
	if len(ferrs) > 0 {
		return nil, []ErrorItem{m.errItem("data", ReasonNoValidData, fieldErrSummary(ferrs))}
	}

	if errs := m.checkTaken(ctx, clean); errs != nil {
		return nil, errs
	}

	if pw, ok := clean["password"].(string); ok && pw != "" {
		hash, err := utils.HashPassword(pw, m.bcryptCost)
		if err != nil {
			return nil, []ErrorItem{m.errItem("password", ReasonExecuteError, nil)}
		}
		clean["password"] = hash
	}
	for k, v := range system {
		clean[k] = v
	}
	return m.base.CreateEntity(ctx, clean, false)
}

// UpdateEntity validates and applies an account update, hashing the
// password in place when one is supplied.
func (m *AccountModel) UpdateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	clean, ferrs := m.updateSchema.Load(data)
	if len(ferrs) > 0 {
		return nil, []ErrorItem{m.errItem("data", ReasonNoValidData, fieldErrSummary(ferrs))}
	}
	if pw, ok := clean["password"].(string); ok && pw != "" {
		hash, err := utils.HashPassword(pw, m.bcryptCost)
		if err != nil {
			return nil, []ErrorItem{m.errItem("password", ReasonExecuteError, nil)}
		}
		clean["password"] = hash
	}
	return m.base.UpdateEntity(ctx, clean, false)
}

// checkTaken runs the three independent existence queries.  First match
// wins and stops the rest.
func (m *AccountModel) checkTaken(ctx context.Context, data entity.Row) []ErrorItem {
	checks := []struct {
		field  string
		reason string
	}{
		{"login", "Account with such login is exists"},
		{"email", "Account with such email is exists"},
		{"phone", "Account with such phone is exists"},
	}
	for _, ch := range checks {
		val, ok := data[ch.field].(string)
		if !ok || val == "" {
			continue
		}
		rows, err := m.store.SelectWhere(ctx, []string{"id"}, []entity.Cond{entity.Eq(ch.field, val)})
		if err != nil {
			return []ErrorItem{m.errItem(ch.field, ReasonExecuteError, nil)}
		}
		if len(rows) > 0 {
			return []ErrorItem{m.errItem(ch.field, ch.reason, val)}
		}
	}
	return nil
}
