package api

import (
	"net/url"
	"strconv"
)

// getQueryInt returns nil when the parameter is absent or malformed,
// letting the task manager apply its configured default.
func getQueryInt(query url.Values, name string) *int {
	raw := query.Get(name)
	if raw == "" {
		return nil
	}

	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil
	}

	intValue := int(value)

	return &intValue
}
