package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/pagination"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func invalidQuery(err error, key string) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key).WithDetails(map[string]any{"field": key})
}

// QueryLimit reads the page size from ?limit, defaulting and capping it the
// way every list endpoint does.
func QueryLimit(r *http.Request) (int, error) {
	raw := queryValue(r, "limit")
	if raw == "" {
		return pagination.DefaultLimit, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidQuery(err, "limit")
	}
	if value < 1 || value > pagination.MaxLimit {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "limit out of range").
			WithDetails(map[string]any{"field": "limit", "min": 1, "max": pagination.MaxLimit})
	}
	return value, nil
}

// QueryCursor returns the opaque cursor from the previous page, if any.
func QueryCursor(r *http.Request) string {
	return queryValue(r, "cursor")
}

func QueryBool(r *http.Request, key string) (bool, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidQuery(err, key)
	}
	return value, nil
}

// QueryUUID parses an optional UUID filter.
func QueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidQuery(err, key)
	}
	return &id, nil
}

// QueryEnum parses an optional status or source filter with parse.
func QueryEnum[T any](r *http.Request, key string, parse func(string) (T, error)) (*T, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := parse(raw)
	if err != nil {
		return nil, invalidQuery(err, key)
	}
	return &value, nil
}
