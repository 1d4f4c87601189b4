// Package request provides functions to extract parameters from the request.
package request

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Path returns the value of the named path parameter, trimmed of leading and trailing whitespace.
func Path(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}

// Query returns the value of the named query parameter, trimmed of leading and trailing whitespace.
func Query(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryDefault returns the value of the named query parameter, or defaultValue if it is missing.
func QueryDefault(r *http.Request, name string, defaultValue string) string {
	if !r.URL.Query().Has(name) {
		return defaultValue
	}

	return Query(r, name)
}

// BodyJson decodes the JSON request body into target. Unknown fields are rejected.
// The body reader is closed after reading.
func BodyJson(r *http.Request, target any) error {
	defer func() {
		_ = r.Body.Close()
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}
