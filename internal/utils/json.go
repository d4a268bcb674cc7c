package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxRequestBody = 4 << 20

// DecodeJSONRequest decodes the body into dst, rejecting unknown fields.
// An empty body leaves dst untouched.
func DecodeJSONRequest(r *http.Request, dst interface{}) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
