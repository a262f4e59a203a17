package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// pageParams reads skip and limit. A missing limit falls back to
// defaultLimit so list endpoints are bounded unless the caller asks otherwise.
func pageParams(r *http.Request, defaultLimit int) (offset, limit int, err error) {
	q := r.URL.Query()
	limit = defaultLimit
	if raw := q.Get("skip"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("skip must be a non-negative integer")
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
	}
	return offset, limit, nil
}

func boolParam(r *http.Request, name string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return v, nil
}

// floatParam returns nil when the parameter is absent.
func floatParam(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}
