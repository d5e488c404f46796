package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"wanderlust/pkg/config"
	apperrors "wanderlust/pkg/errors"
)

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected so that typos in payloads fail loudly.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is empty")
		case errors.As(err, &maxErr):
			return apperrors.New(apperrors.CodeBadRequest, "Request body too large", http.StatusRequestEntityTooLarge)
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			return apperrors.InvalidInput(strings.TrimPrefix(err.Error(), "json: "))
		default:
			return apperrors.InvalidInput("Invalid request body")
		}
	}
	if dec.More() {
		return apperrors.InvalidInput("Request body must contain a single JSON object")
	}
	return nil
}

func ExtractLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return config.NormalizeSearchLimit(0), nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid limit parameter: %s", s))
	}
	return config.NormalizeSearchLimit(v), nil
}
