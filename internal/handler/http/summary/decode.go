package summary

import (
	"encoding/json"
	"errors"
	"net/http"

	"smart-summarizer/internal/domain/entity"
)

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return maxErr
		}
		return &entity.ValidationError{Field: "body", Message: "invalid JSON body"}
	}
	return nil
}

// pointsOrDefault returns the requested point count, or entity.DefaultPoints
// when the field was omitted. Out-of-range values are clamped downstream.
func pointsOrDefault(p *int) int {
	if p == nil {
		return entity.DefaultPoints
	}
	return *p
}
