// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/reel/internal/platform/apperr"
	"github.com/taibuivan/reel/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Index retrieves a named URL parameter and parses it as a 0-based position.

Returns:
  - int: The parsed index
  - error: apperr.ValidationError if the segment is not an integer
*/
func Index(request *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(request, name))
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validate.RequiredError(name, "Must be an integer")
	}
	return index, nil
}

/*
LimitBody caps the request body at maxBytes and parses it as multipart form data.

Returns:
  - error: apperr.PayloadTooLarge when the limit is exceeded,
    apperr.ValidationError when the body is not multipart
*/
func LimitBody(writer http.ResponseWriter, request *http.Request, maxBytes int64, memory int64) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)

	if err := request.ParseMultipartForm(memory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge(maxBytes >> 20)
		}
		return apperr.ValidationError("Expected a multipart/form-data body")
	}
	return nil
}
