// Package handler defines the HTTP handlers.  Every data endpoint answers
// with the same envelope: {"result": [...], "errors": [...]}.  Batch POST and
// PUT bodies are processed per item, so a mixed batch returns both accepted
// rows and error entries in the same response.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/model"
)

// allIDs is the path keyword selecting every visible row.
const allIDs = "all"

type envelope struct {
	Result any               `json:"result"`
	Errors []model.ErrorItem `json:"errors"`
}

// respond writes the standard envelope.  nil result/errors render as empty
// arrays, never null.
func respond(c echo.Context, result any, errs []model.ErrorItem) error {
	if result == nil {
		result = []entity.Row{}
	}
	if errs == nil {
		errs = []model.ErrorItem{}
	}
	return c.JSON(http.StatusOK, envelope{Result: result, Errors: errs})
}

// respondModelErr maps construction failures: bad select fields are the
// client's fault, everything else is a 500.
func respondModelErr(c echo.Context, err error) error {
	if errors.Is(err, model.ErrIncorrectParams) {
		return c.JSON(http.StatusBadRequest, envelope{
			Result: []entity.Row{},
			Errors: []model.ErrorItem{{Selector: "fields", Reason: err.Error()}},
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// badRequest reports a malformed request body or path.
func badRequest(c echo.Context, selector, reason string) error {
	return c.JSON(http.StatusBadRequest, envelope{
		Result: []entity.Row{},
		Errors: []model.ErrorItem{{Selector: selector, Reason: reason}},
	})
}

// parseIDs interprets the :ids path segment: "all" means no id filter
// (nil, true), otherwise a comma-separated integer list.  ok is false when
// any piece fails to parse.
func parseIDs(c echo.Context) (ids []int64, ok bool) {
	raw := strings.TrimSpace(c.Param("ids"))
	if raw == "" || raw == allIDs {
		return nil, true
	}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, false
		}
		ids = append(ids, n)
	}
	return ids, true
}

// parseFields reads the fields query parameter as a projection list.  Empty
// means all fields.
func parseFields(c echo.Context) []string {
	raw := strings.TrimSpace(c.QueryParam("fields"))
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// queryIDList parses a comma-separated id list from a query parameter.
func queryIDList(c echo.Context, name string) []int64 {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	var out []int64
	for _, p := range strings.Split(raw, ",") {
		if n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// applyBatch runs one model operation per body item.  Items fail
// independently: a rejected item contributes error entries, an accepted one
// contributes a result row.
func applyBatch(c echo.Context, items []entity.Row,
	op func(entity.Row) (entity.Row, []model.ErrorItem)) ([]entity.Row, []model.ErrorItem) {

	results := []entity.Row{}
	var errs []model.ErrorItem
	for _, item := range items {
		row, itemErrs := op(item)
		if itemErrs != nil {
			errs = append(errs, itemErrs...)
			continue
		}
		results = append(results, row)
	}
	return results, errs
}

// deleteEach deletes per id, collecting deleted ids and per-id errors.
func deleteEach(ids []int64, op func(int64) ([]int64, []model.ErrorItem)) ([]int64, []model.ErrorItem) {
	deleted := []int64{}
	var errs []model.ErrorItem
	for _, id := range ids {
		done, itemErrs := op(id)
		if itemErrs != nil {
			errs = append(errs, itemErrs...)
			continue
		}
		deleted = append(deleted, done...)
	}
	return deleted, errs
}

// decodeItems reads the body as either a single JSON object or an array of
// objects, so clients can create one record or a batch with the same route.
func decodeItems(c echo.Context) ([]entity.Row, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, errors.New("empty body")
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []entity.Row
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var one entity.Row
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, err
	}
	return []entity.Row{one}, nil
}
