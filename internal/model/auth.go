package model

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/session"
	"github.com/qtc-soft/schedule-api/internal/utils"
)

// AuthModel orchestrates login, registration, logout and email confirmation
// for one principal table.  It composes the session store with the account
// model; the same type serves users and customers.
type AuthModel struct {
	accounts *AccountModel
	sessions *session.Store
	log      zerolog.Logger
	// requireConfirm gates login on a confirmed contact and suppresses the
	// auto-session after registration.
	requireConfirm bool
}

// NewAuthModel builds an auth orchestrator over the given account model.
func NewAuthModel(accounts *AccountModel, sessions *session.Store, requireConfirm bool, log zerolog.Logger) *AuthModel {
	return &AuthModel{
		accounts:       accounts,
		sessions:       sessions,
		log:            log.With().Str("component", "auth").Logger(),
		requireConfirm: requireConfirm,
	}
}

// sessionFields is the projection loaded for a principal at login.  The
// password leaves this model only as a comparison input, never in results.
var sessionFields = []string{"id", "login", "name", "email", "phone", "description", "flags",
	"password", "email_confirm", "phone_confirm"}

// Login verifies credentials and opens a session.  The returned session
// carries only the public-safe projection plus the token.  An unconfirmed
// principal is refused before any session exists.
func (a *AuthModel) Login(ctx context.Context, login, password string) (*session.Session, []ErrorItem) {
	rows, err := a.accounts.store.SelectWhere(ctx, sessionFields, []entity.Cond{entity.Eq("login", login)})
	if err != nil {
		return nil, []ErrorItem{a.accounts.errItem("login", ReasonExecuteError, nil)}
	}
	if len(rows) == 0 {
		return nil, []ErrorItem{a.accounts.errItem("login", ReasonAccessDenied, nil)}
	}
	principal := rows[0]

	hash, _ := principal["password"].(string)
	if !utils.VerifyPassword(hash, password) {
		return nil, []ErrorItem{a.accounts.errItem("login", ReasonAccessDenied, nil)}
	}
	if a.requireConfirm && !confirmed(principal) {
		return nil, []ErrorItem{a.accounts.errItem("email", "Email is not confirmed", nil)}
	}

	delete(principal, "password")
	s, err := a.sessions.Create(ctx, principal)
	if err != nil {
		a.log.Error().Err(err).Str("login", login).Msg("session create failed")
		return nil, []ErrorItem{a.accounts.errItem("login", ReasonExecuteError, nil)}
	}
	return s, nil
}

// Registration creates a new principal.  Client-supplied confirmation
// fields are stripped, and a fresh confirmation key rides along in the
// same insert as the account row, so a created principal always holds a
// usable key.  Duplicate pre-checks plus password hashing happen inside
// the account model.  On success a public-safe projection comes back;
// when confirmation is not required a session is issued right away with
// its token in the "sid" field.
func (a *AuthModel) Registration(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	delete(data, "email_confirm")
	delete(data, "phone_confirm")
	delete(data, "email_confirm_key")

	row, errs := a.accounts.CreateEntity(ctx, data, entity.Row{
		"email_confirm_key": uuid.NewString(),
		"email_confirm":     false,
		"phone_confirm":     false,
	})
	if errs != nil {
		return nil, errs
	}

	result := safeProjection(row)
	if !a.requireConfirm {
		if s, err := a.sessions.Create(ctx, row); err == nil {
			result["sid"] = s.SID
		}
	}
	return result, nil
}

// Logout destroys the session.  An unknown or already-destroyed token is
// still a success; logout is idempotent by contract.
func (a *AuthModel) Logout(sid string) bool {
	a.sessions.Destroy(sid)
	return true
}

// ConfirmEmail resolves a confirmation key, marks the principal confirmed
// and clears the key (empty-string sentinel, not null).  An unknown key is
// reported as Not found.
func (a *AuthModel) ConfirmEmail(ctx context.Context, key string) (entity.Row, []ErrorItem) {
	if key == "" {
		return nil, []ErrorItem{a.accounts.errItem("key", ReasonNoValidData, nil)}
	}
	rows, err := a.accounts.store.SelectWhere(ctx, []string{"id", "login", "email"},
		[]entity.Cond{entity.Eq("email_confirm_key", key)})
	if err != nil {
		return nil, []ErrorItem{a.accounts.errItem("key", ReasonExecuteError, nil)}
	}
	if len(rows) == 0 {
		return nil, []ErrorItem{a.accounts.errItem("key", ReasonNotFound, nil)}
	}
	id, _ := rows[0]["id"].(int64)

	if _, err := a.accounts.store.Update(ctx, id,
		entity.Row{"email_confirm": true, "email_confirm_key": ""},
		nil, []string{"id"}); err != nil {
		return nil, []ErrorItem{a.accounts.errItem("key", ReasonExecuteError, nil)}
	}
	return entity.Row{"id": id, "email": rows[0]["email"]}, nil
}

// IsAuth resolves a token to its public-safe session projection.
func (a *AuthModel) IsAuth(sid string) *session.Session {
	return a.sessions.GetByToken(sid)
}

// confirmed reports whether at least one contact channel was verified.
func confirmed(principal entity.Row) bool {
	if v, ok := principal["email_confirm"].(bool); ok && v {
		return true
	}
	if v, ok := principal["phone_confirm"].(bool); ok && v {
		return true
	}
	return false
}

// safeProjection narrows a principal row to the fields safe to echo.
func safeProjection(row entity.Row) entity.Row {
	out := entity.Row{}
	for _, f := range []string{"id", "name", "login", "email", "phone"} {
		if v, ok := row[f]; ok {
			out[f] = v
		}
	}
	return out
}
