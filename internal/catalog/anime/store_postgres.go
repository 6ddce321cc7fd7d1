// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/animeab/internal/platform/apperr"
	"github.com/taibuivan/animeab/internal/platform/ctxutil"
	"github.com/taibuivan/animeab/internal/platform/database/schema"
	"github.com/taibuivan/animeab/internal/platform/dberr"
)

// errUnreadableImage marks a stream that failed while being read inside a transaction.
var errUnreadableImage = errors.New("anime: unreadable image stream")

// PostgresGateway is the [Gateway] backed by the catalog schema.
type PostgresGateway struct {
	db           *pgxpool.Pool
	imageBaseURL string
}

// NewPostgresGateway creates a gateway whose image URLs start with imageBaseURL.
func NewPostgresGateway(db *pgxpool.Pool, imageBaseURL string) *PostgresGateway {
	return &PostgresGateway{db: db, imageBaseURL: imageBaseURL}
}

// # Queries

var (
	animeColumns = strings.Join(schema.CatalogAnime.Columns(), ", ")

	selectAnimes = fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		animeColumns, schema.CatalogAnime.Table, schema.CatalogAnime.CreatedAt, schema.CatalogAnime.Key,
	)

	lockAnime = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		animeColumns, schema.CatalogAnime.Table, schema.CatalogAnime.Key,
	)

	insertAnime = fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING %s`,
		schema.CatalogAnime.Table,
		schema.CatalogAnime.Key, schema.CatalogAnime.Title, schema.CatalogAnime.TitleVie,
		schema.CatalogAnime.Description, schema.CatalogAnime.Trainer, schema.CatalogAnime.Episode,
		schema.CatalogAnime.MovieDuration, schema.CatalogAnime.CollectionID, schema.CatalogAnime.CategoryKey,
		schema.CatalogAnime.Type, schema.CatalogAnime.DateRelease, schema.CatalogAnime.Status,
		schema.CatalogAnime.FacebookURL, schema.CatalogAnime.Image, schema.CatalogAnime.FileName,
		schema.CatalogAnime.CreatedAt, schema.CatalogAnime.UpdatedAt,
		animeColumns,
	)

	updateAnime = fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9,
		    %s = $10, %s = $11, %s = $12, %s = $13, %s = $14, %s = $15, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.CatalogAnime.Table,
		schema.CatalogAnime.Title, schema.CatalogAnime.TitleVie, schema.CatalogAnime.Description,
		schema.CatalogAnime.Trainer, schema.CatalogAnime.Episode, schema.CatalogAnime.MovieDuration,
		schema.CatalogAnime.CollectionID, schema.CatalogAnime.CategoryKey, schema.CatalogAnime.Type,
		schema.CatalogAnime.DateRelease, schema.CatalogAnime.Status, schema.CatalogAnime.FacebookURL,
		schema.CatalogAnime.Image, schema.CatalogAnime.FileName, schema.CatalogAnime.UpdatedAt,
		schema.CatalogAnime.Key,
		animeColumns,
	)

	setBanner = fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 RETURNING %s`,
		schema.CatalogAnime.Table, schema.CatalogAnime.Banner, schema.CatalogAnime.UpdatedAt,
		schema.CatalogAnime.Key, animeColumns,
	)

	deleteAnime = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CatalogAnime.Table, schema.CatalogAnime.Key,
	)

	deleteImageSlot = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CatalogImage.Table, schema.CatalogImage.AnimeKey, schema.CatalogImage.Slot,
	)

	insertImage = fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.CatalogImage.Table,
		schema.CatalogImage.Name, schema.CatalogImage.AnimeKey, schema.CatalogImage.Slot,
		schema.CatalogImage.Content, schema.CatalogImage.ContentType, schema.CatalogImage.SizeBytes,
		schema.CatalogImage.SHA256, schema.CatalogImage.CreatedAt,
	)

	selectImage = fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CatalogImage.Name, schema.CatalogImage.AnimeKey, schema.CatalogImage.Slot,
		schema.CatalogImage.Content, schema.CatalogImage.ContentType, schema.CatalogImage.SizeBytes,
		schema.CatalogImage.SHA256, schema.CatalogImage.CreatedAt,
		schema.CatalogImage.Table, schema.CatalogImage.Name,
	)

	selectCollections = fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		strings.Join(schema.CatalogCollection.Columns(), ", "), schema.CatalogCollection.Table,
		schema.CatalogCollection.SortOrder, schema.CatalogCollection.Title,
	)

	selectCategories = fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		strings.Join(schema.CatalogCategory.Columns(), ", "), schema.CatalogCategory.Table,
		schema.CatalogCategory.SortOrder, schema.CatalogCategory.Title,
	)
)

// # Reads

func (gateway *PostgresGateway) ListAnimes(ctx context.Context) ([]*Anime, error) {
	rows, err := gateway.db.Query(ctx, selectAnimes)
	if err != nil {
		return nil, fmt.Errorf("anime: list animes: %w", err)
	}
	defer rows.Close()

	animes := []*Anime{}
	for rows.Next() {
		record, err := scanAnime(rows)
		if err != nil {
			return nil, fmt.Errorf("anime: scan anime: %w", err)
		}
		animes = append(animes, record)
	}

	return animes, rows.Err()
}

func (gateway *PostgresGateway) ListCollections(ctx context.Context) ([]*Collection, error) {
	rows, err := gateway.db.Query(ctx, selectCollections)
	if err != nil {
		return nil, fmt.Errorf("anime: list collections: %w", err)
	}
	defer rows.Close()

	collections := []*Collection{}
	for rows.Next() {
		c := &Collection{}
		if err := rows.Scan(&c.ID, &c.Title, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("anime: scan collection: %w", err)
		}
		collections = append(collections, c)
	}

	return collections, rows.Err()
}

func (gateway *PostgresGateway) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := gateway.db.Query(ctx, selectCategories)
	if err != nil {
		return nil, fmt.Errorf("anime: list categories: %w", err)
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.Key, &c.Title, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("anime: scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// OpenImage implements [ImageReader].
func (gateway *PostgresGateway) OpenImage(ctx context.Context, name string) (*Image, error) {
	image := &Image{}
	var slot string

	err := gateway.db.QueryRow(ctx, selectImage, name).Scan(
		&image.Name, &image.AnimeKey, &slot, &image.Content,
		&image.ContentType, &image.SizeBytes, &image.SHA256, &image.CreatedAt,
	)
	if dberr.IsNotFound(err) {
		return nil, apperr.NotFound("Image")
	}
	if err != nil {
		return nil, fmt.Errorf("anime: open image %s: %w", name, err)
	}

	image.Slot = Slot(slot)
	return image, nil
}

// # Writes

func (gateway *PostgresGateway) CreateAnime(ctx context.Context, record *Anime, stream io.Reader) Result[*Anime] {
	var created *Anime

	err := pgx.BeginFunc(ctx, gateway.db, func(tx pgx.Tx) error {
		var image *Image
		if stream != nil {
			var err error
			if image, err = readImage(record.Key, SlotImage, fileNameOf(record), stream); err != nil {
				return errors.Join(errUnreadableImage, err)
			}
			record.Image = gateway.imageBaseURL + image.Name
		}

		row := tx.QueryRow(ctx, insertAnime,
			record.Key, record.Title, record.TitleVie, record.Description, record.Trainer,
			record.Episode, record.MovieDuration, record.CollectionID, record.CategoryKey,
			record.Type, nullableDate(record.DateRelease), int(record.Status),
			record.FacebookURL, record.Image, record.FileName,
		)

		var err error
		if created, err = scanAnime(row); err != nil {
			return err
		}

		if image == nil {
			return nil
		}
		return storeImage(ctx, tx, image)
	})

	if err != nil {
		return failure[*Anime](ctx, "create_anime", err)
	}
	return Ok(created)
}

func (gateway *PostgresGateway) UpdateAnime(ctx context.Context, record *Anime, stream io.Reader) Result[*Anime] {
	var updated *Anime

	err := pgx.BeginFunc(ctx, gateway.db, func(tx pgx.Tx) error {
		current, err := scanAnime(tx.QueryRow(ctx, lockAnime, record.Key))
		if err != nil {
			return err
		}

		var image *Image
		dropBlob := false
		if stream != nil {
			if image, err = readImage(record.Key, SlotImage, fileNameOf(record), stream); err != nil {
				return errors.Join(errUnreadableImage, err)
			}
			record.Image = gateway.imageBaseURL + image.Name
		} else {
			dropBlob = mergeImage(current, record)
		}

		row := tx.QueryRow(ctx, updateAnime,
			record.Key, record.Title, record.TitleVie, record.Description, record.Trainer,
			record.Episode, record.MovieDuration, record.CollectionID, record.CategoryKey,
			record.Type, nullableDate(record.DateRelease), int(record.Status),
			record.FacebookURL, record.Image, record.FileName,
		)
		if updated, err = scanAnime(row); err != nil {
			return err
		}

		switch {
		case image != nil:
			return storeImage(ctx, tx, image)
		case dropBlob:
			_, err = tx.Exec(ctx, deleteImageSlot, record.Key, string(SlotImage))
			return err
		}
		return nil
	})

	if err != nil {
		return failure[*Anime](ctx, "update_anime", err)
	}
	return Ok(updated)
}

func (gateway *PostgresGateway) DeleteAnime(ctx context.Context, key string) Result[struct{}] {
	// Blobs go with the record through ON DELETE CASCADE.
	tag, err := gateway.db.Exec(ctx, deleteAnime, key)
	if err != nil {
		return failure[struct{}](ctx, "delete_anime", err)
	}
	if tag.RowsAffected() == 0 {
		return Fail[struct{}](MsgNotFound)
	}
	return Ok(struct{}{})
}

func (gateway *PostgresGateway) UpdateBanner(ctx context.Context, key, fileName string, stream io.Reader) Result[*Anime] {
	var updated *Anime

	err := pgx.BeginFunc(ctx, gateway.db, func(tx pgx.Tx) error {
		image, err := readImage(key, SlotBanner, fileName, stream)
		if err != nil {
			return errors.Join(errUnreadableImage, err)
		}

		banner := gateway.imageBaseURL + image.Name
		if updated, err = scanAnime(tx.QueryRow(ctx, setBanner, key, banner)); err != nil {
			return err
		}
		return storeImage(ctx, tx, image)
	})

	if err != nil {
		return failure[*Anime](ctx, "update_banner", err)
	}
	return Ok(updated)
}

func (gateway *PostgresGateway) DestroyBanner(ctx context.Context, key string) Result[struct{}] {
	err := pgx.BeginFunc(ctx, gateway.db, func(tx pgx.Tx) error {
		if _, err := scanAnime(tx.QueryRow(ctx, setBanner, key, nil)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, deleteImageSlot, key, string(SlotBanner))
		return err
	})

	if err != nil {
		return failure[struct{}](ctx, "destroy_banner", err)
	}
	return Ok(struct{}{})
}

// # Helpers

// storeImage makes image the only blob of its record slot.
func storeImage(ctx context.Context, tx pgx.Tx, image *Image) error {
	if _, err := tx.Exec(ctx, deleteImageSlot, image.AnimeKey, string(image.Slot)); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, insertImage,
		image.Name, image.AnimeKey, string(image.Slot), image.Content,
		image.ContentType, image.SizeBytes, image.SHA256, image.CreatedAt,
	)
	return err
}

// scanAnime reads one anime row in [schema.CatalogAnimeTable.Columns] order.
func scanAnime(row pgx.Row) (*Anime, error) {
	record := &Anime{}
	var (
		dateRelease *time.Time
		status      int16
	)

	err := row.Scan(
		&record.Key, &record.Title, &record.TitleVie, &record.Description, &record.Trainer,
		&record.Episode, &record.MovieDuration, &record.CollectionID, &record.CategoryKey,
		&record.Type, &dateRelease, &status, &record.FacebookURL, &record.Image,
		&record.FileName, &record.Banner, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dateRelease != nil {
		record.DateRelease = *dateRelease
	}
	record.Status = Status(status)
	return record, nil
}

// nullableDate stores the zero time as NULL.
func nullableDate(date time.Time) *time.Time {
	if date.IsZero() {
		return nil
	}
	return &date
}

// failure maps a storage error to a client-safe [Result]. Unexpected errors are logged.
func failure[T any](ctx context.Context, operation string, err error) Result[T] {
	switch {
	case dberr.IsNotFound(err):
		return Fail[T](MsgNotFound)
	case dberr.IsUniqueViolation(err) && dberr.Constraint(err) == "anime_pkey":
		return Fail[T](MsgKeyExists)
	case errors.Is(err, errUnreadableImage):
		return Fail[T](MsgImageUnreadable)
	}

	ctxutil.GetLogger(ctx).ErrorContext(ctx, "anime_storage_failed",
		slog.String("operation", operation),
		slog.Any("error", err),
	)
	return Fail[T](MsgStorageFailed)
}
