// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/animeab/internal/platform/dberr"
)

func TestClassification(t *testing.T) {
	unique := fmt.Errorf("insert anime: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "anime_pkey"})
	foreign := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}

	assert.True(t, dberr.IsUniqueViolation(unique))
	assert.Equal(t, "anime_pkey", dberr.Constraint(unique))
	assert.False(t, dberr.IsUniqueViolation(foreign))
	assert.True(t, dberr.IsForeignKeyViolation(foreign))

	assert.True(t, dberr.IsNotFound(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, dberr.IsNotFound(errors.New("timeout")))
	assert.Empty(t, dberr.Constraint(errors.New("timeout")))
}
