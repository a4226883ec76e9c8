package model

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/session"
)

const testBcryptCost = 4 // minimum cost keeps the suite fast

func authFixture(t *testing.T, requireConfirm bool) (*AuthModel, *entity.MemStore, *session.Store) {
	t.Helper()
	users := entity.NewMemStore(entity.Users, []string{"login"}, []string{"email"}, []string{"phone"})
	accounts, err := NewUserModel(users, nil, testBcryptCost)
	require.NoError(t, err)
	sessions := session.NewStore(session.NoACL{}, zerolog.Nop())
	return NewAuthModel(accounts, sessions, requireConfirm, zerolog.Nop()), users, sessions
}

func registration() entity.Row {
	return entity.Row{
		"login":    "anna42",
		"password": "s3cret",
		"email":    "anna@example.com",
		"phone":    "+4740000000",
		"name":     "Anna",
	}
}

func TestRegistrationReturnsSafeProjection(t *testing.T) {
	auth, users, _ := authFixture(t, true)

	row, errs := auth.Registration(context.Background(), registration())
	require.Empty(t, errs)
	assert.Equal(t, "anna42", row["login"])
	assert.NotContains(t, row, "password")
	assert.NotContains(t, row, "email_confirm_key")
	assert.NotContains(t, row, "sid", "no session while confirmation is pending")

	// the stored password is a hash, never the plaintext
	stored, err := users.SelectWhere(context.Background(), []string{"password", "email_confirm_key"}, nil)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEqual(t, "s3cret", stored[0]["password"])
	assert.NotEmpty(t, stored[0]["email_confirm_key"])
}

func TestRegistrationStripsClientConfirmFields(t *testing.T) {
	auth, users, _ := authFixture(t, true)

	data := registration()
	data["email_confirm"] = true
	data["email_confirm_key"] = "attacker-chosen"
	_, errs := auth.Registration(context.Background(), data)
	require.Empty(t, errs)

	stored, err := users.SelectWhere(context.Background(), []string{"email_confirm", "email_confirm_key"}, nil)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, false, stored[0]["email_confirm"])
	assert.NotEqual(t, "attacker-chosen", stored[0]["email_confirm_key"])
}

func TestRegistrationDuplicateLoginShortCircuits(t *testing.T) {
	auth, _, _ := authFixture(t, true)
	ctx := context.Background()

	_, errs := auth.Registration(ctx, registration())
	require.Empty(t, errs)

	// same login AND same email: only the login error is reported
	dup := registration()
	_, errs = auth.Registration(ctx, dup)
	require.Len(t, errs, 1)
	assert.Equal(t, "login", errs[0].Selector)
	assert.Equal(t, "Account with such login is exists", errs[0].Reason)
}

func TestRegistrationDuplicateEmail(t *testing.T) {
	auth, _, _ := authFixture(t, true)
	ctx := context.Background()

	_, errs := auth.Registration(ctx, registration())
	require.Empty(t, errs)

	dup := registration()
	dup["login"] = "other1"
	dup["phone"] = "+4741111111"
	_, errs = auth.Registration(ctx, dup)
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Selector)
}

func TestRegistrationAutoSessionWhenConfirmOff(t *testing.T) {
	auth, _, sessions := authFixture(t, false)

	row, errs := auth.Registration(context.Background(), registration())
	require.Empty(t, errs)
	sid, ok := row["sid"].(string)
	require.True(t, ok, "registration must open a session when confirmation is off")
	assert.NotNil(t, sessions.GetByToken(sid))
}

func TestLoginUnconfirmedGate(t *testing.T) {
	auth, _, _ := authFixture(t, true)
	ctx := context.Background()

	_, errs := auth.Registration(ctx, registration())
	require.Empty(t, errs)

	s, errs := auth.Login(ctx, "anna42", "s3cret")
	assert.Nil(t, s)
	require.Len(t, errs, 1)
	assert.Equal(t, "Email is not confirmed", errs[0].Reason)
}

func TestConfirmThenLogin(t *testing.T) {
	auth, users, _ := authFixture(t, true)
	ctx := context.Background()

	_, errs := auth.Registration(ctx, registration())
	require.Empty(t, errs)

	stored, err := users.SelectWhere(ctx, []string{"email_confirm_key"}, nil)
	require.NoError(t, err)
	key := stored[0]["email_confirm_key"].(string)

	row, errs := auth.ConfirmEmail(ctx, key)
	require.Empty(t, errs)
	assert.Equal(t, "anna@example.com", row["email"])

	// the key is cleared to the empty-string sentinel, not left behind
	stored, err = users.SelectWhere(ctx, []string{"email_confirm", "email_confirm_key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, stored[0]["email_confirm"])
	assert.Equal(t, "", stored[0]["email_confirm_key"])

	s, errs := auth.Login(ctx, "anna42", "s3cret")
	require.Empty(t, errs)
	require.NotNil(t, s)
	assert.Equal(t, "anna42", s.Login)
	assert.Len(t, s.SID, 32)
}

func TestConfirmUnknownKey(t *testing.T) {
	auth, _, _ := authFixture(t, true)

	_, errs := auth.ConfirmEmail(context.Background(), "nope")
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonNotFound, errs[0].Reason)

	// the empty sentinel must never confirm anyone
	_, errs = auth.ConfirmEmail(context.Background(), "")
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonNoValidData, errs[0].Reason)
}

func TestLoginWrongPassword(t *testing.T) {
	auth, _, _ := authFixture(t, false)
	ctx := context.Background()

	_, errs := auth.Registration(ctx, registration())
	require.Empty(t, errs)

	s, errs := auth.Login(ctx, "anna42", "wrong")
	assert.Nil(t, s)
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonAccessDenied, errs[0].Reason)

	// unknown login fails with the same reason as a wrong password
	_, errs2 := auth.Login(ctx, "ghost", "s3cret")
	require.Len(t, errs2, 1)
	assert.Equal(t, errs[0].Reason, errs2[0].Reason)
}

func TestLogoutIdempotent(t *testing.T) {
	auth, _, sessions := authFixture(t, false)
	ctx := context.Background()

	_, errs := auth.Registration(ctx, registration())
	require.Empty(t, errs)
	s, errs := auth.Login(ctx, "anna42", "s3cret")
	require.Empty(t, errs)

	assert.True(t, auth.Logout(s.SID))
	assert.Nil(t, sessions.GetByToken(s.SID))
	assert.True(t, auth.Logout(s.SID), "second logout still succeeds")
	assert.True(t, auth.Logout("never-existed"))
}

func TestIsAuth(t *testing.T) {
	auth, _, _ := authFixture(t, false)
	ctx := context.Background()

	_, errs := auth.Registration(ctx, registration())
	require.Empty(t, errs)
	s, errs := auth.Login(ctx, "anna42", "s3cret")
	require.Empty(t, errs)

	assert.NotNil(t, auth.IsAuth(s.SID))
	assert.Nil(t, auth.IsAuth("bogus"))
}

// updateCounter wraps a store and counts Update calls.
type updateCounter struct {
	entity.Store
	updates int
}

func (u *updateCounter) Update(ctx context.Context, id int64, values entity.Row, conds []entity.Cond, fields []string) (entity.Row, error) {
	u.updates++
	return u.Store.Update(ctx, id, values, conds, fields)
}

func TestRegistrationWritesConfirmKeyInInsert(t *testing.T) {
	users := entity.NewMemStore(entity.Users, []string{"login"})
	counted := &updateCounter{Store: users}
	accounts, err := NewUserModel(counted, nil, testBcryptCost)
	require.NoError(t, err)
	auth := NewAuthModel(accounts, session.NewStore(session.NoACL{}, zerolog.Nop()), true, zerolog.Nop())

	_, errs := auth.Registration(context.Background(), registration())
	require.Empty(t, errs)

	// the key rides in the insert itself: no follow-up write that could
	// fail and strand an unconfirmable account
	assert.Zero(t, counted.updates)

	stored, err := users.SelectWhere(context.Background(), []string{"email_confirm", "email_confirm_key"}, nil)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0]["email_confirm_key"])
	assert.Equal(t, false, stored[0]["email_confirm"])
}
