// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/animeab/internal/platform/apperr"
)

/*
TestFlatten folds field errors into a single message without mutating the original.
*/
func TestFlatten(t *testing.T) {
	original := apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "title", Message: "This field is required"},
		apperr.FieldError{Field: "episode", Message: "Must not be negative"},
	)

	flat := original.Flatten()

	assert.False(t, flat.HasDetails())
	assert.Equal(t, "Validation failed: title: This field is required; episode: Must not be negative", flat.Message)
	assert.Equal(t, http.StatusBadRequest, flat.HTTPStatus)
	assert.True(t, original.HasDetails())
}

/*
TestFlatten_NoDetails leaves a message-only error as it is.
*/
func TestFlatten_NoDetails(t *testing.T) {
	flat := apperr.BadRequest("must supply an image upload or image URL").Flatten()
	assert.Equal(t, "must supply an image upload or image URL", flat.Message)
}

/*
TestStaging uses the I/O error text as the client message and keeps the cause.
*/
func TestStaging(t *testing.T) {
	cause := errors.New("open /wwwroot/image/x.png: permission denied")

	err := apperr.Staging(cause)

	assert.Equal(t, cause.Error(), err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

/*
TestAs extracts the AppError from a wrapped chain.
*/
func TestAs(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), apperr.NotFound("Anime"))

	ae := apperr.As(wrapped)

	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.CodeNotFound, ae.Code)
	}
	assert.Nil(t, apperr.As(errors.New("plain")))
}
