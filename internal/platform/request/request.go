// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns (JSON and multipart), ensuring consistent error
handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/animeab/internal/platform/apperr"
	"github.com/taibuivan/animeab/internal/platform/constants"
	"github.com/taibuivan/animeab/internal/platform/ctxutil"
	"github.com/taibuivan/animeab/internal/platform/sec"
	"github.com/taibuivan/animeab/internal/platform/staging"
	"github.com/taibuivan/animeab/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
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
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// # Multipart Forms

/*
ParseMultipart caps the body at maxBytes and parses it as a multipart form.

The caller must defer [CloseMultipart] to release spilled temporary files.
*/
func ParseMultipart(writer http.ResponseWriter, request *http.Request, maxBytes int64) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)

	if err := request.ParseMultipartForm(constants.MultipartMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.BadRequest("Upload exceeds the maximum size of " + strconv.FormatInt(maxBytes, 10) + " bytes")
		}
		return apperr.BadRequest("Invalid multipart form")
	}
	return nil
}

// CloseMultipart removes any temporary files created while parsing the form.
func CloseMultipart(request *http.Request) {
	if request.MultipartForm != nil {
		_ = request.MultipartForm.RemoveAll()
	}
}

/*
FormUpload returns the file posted under field.

A missing file is not an error: it returns (nil, nil). The returned upload owns
the open part; the caller closes it.
*/
func FormUpload(request *http.Request, field string) (*staging.Upload, error) {
	file, header, err := request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.BadRequest("Invalid upload in field " + field)
	}

	return &staging.Upload{
		Name:    header.Filename,
		Size:    header.Size,
		Content: file,
	}, nil
}

// # Form Values

// FormString returns the trimmed value of a form field.
func FormString(request *http.Request, field string) string {
	return strings.TrimSpace(request.FormValue(field))
}

/*
FormInt parses an integer form field. An empty value yields zero.

Returns:
  - error: a field-level failure the caller can collect
*/
func FormInt(request *http.Request, field string) (int, *apperr.FieldError) {
	raw := FormString(request, field)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &apperr.FieldError{Field: field, Message: "Must be a whole number"}
	}
	return value, nil
}
