package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/middleware"
	"github.com/qtc-soft/schedule-api/internal/model"
)

// AuthHandler exposes login, registration, logout, the token probe and the
// email confirmation hook for one principal kind.  The server mounts two
// instances: one over the users table and one over customers.
type AuthHandler struct {
	auth   *model.AuthModel
	header string
}

func NewAuthHandler(auth *model.AuthModel, header string) *AuthHandler {
	return &AuthHandler{auth: auth, header: header}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login verifies credentials and answers with the session projection, token
// included.  Failures come back 403 with the usual error envelope; which of
// login and password was wrong is not disclosed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "body", model.ReasonNoValidData)
	}
	if req.Login == "" || req.Password == "" {
		return badRequest(c, "login", model.ReasonNoValidData)
	}
	s, errs := h.auth.Login(c.Request().Context(), req.Login, req.Password)
	if errs != nil {
		return c.JSON(http.StatusForbidden, envelope{Result: []entity.Row{}, Errors: errs})
	}
	return respond(c, []any{s}, nil)
}

// Registration creates a principal from the request body.  Batch arrays are
// accepted; each item succeeds or fails on its own.
func (h *AuthHandler) Registration(c echo.Context) error {
	items, err := decodeItems(c)
	if err != nil {
		return badRequest(c, "body", model.ReasonNoValidData)
	}
	var results []entity.Row
	var errs []model.ErrorItem
	for _, item := range items {
		row, itemErrs := h.auth.Registration(c.Request().Context(), item)
		if itemErrs != nil {
			errs = append(errs, itemErrs...)
			continue
		}
		results = append(results, row)
	}
	return respond(c, results, errs)
}

// Logout destroys the caller's session.  Succeeds even when the token is
// unknown or already destroyed.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := c.Request().Header.Get(h.header)
	if token == "" {
		token = c.QueryParam("access_token")
	}
	h.auth.Logout(token)
	return respond(c, []any{true}, nil)
}

// IsAuth answers with the session projection when the token is live, and an
// Access denied item otherwise.
func (h *AuthHandler) IsAuth(c echo.Context) error {
	if s := middleware.CurrentSession(c); s != nil {
		return respond(c, []any{s}, nil)
	}
	token := c.Request().Header.Get(h.header)
	if s := h.auth.IsAuth(token); s != nil {
		return respond(c, []any{s}, nil)
	}
	return c.JSON(http.StatusForbidden, envelope{
		Result: []entity.Row{},
		Errors: []model.ErrorItem{{Selector: "sid", Reason: model.ReasonAccessDenied}},
	})
}

// ConfirmEmail redeems a confirmation key from the path.
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	row, errs := h.auth.ConfirmEmail(c.Request().Context(), c.Param("key"))
	if errs != nil {
		return respond(c, nil, errs)
	}
	return respond(c, []entity.Row{row}, nil)
}
