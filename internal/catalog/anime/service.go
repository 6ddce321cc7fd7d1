// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/animeab/internal/platform/apperr"
	"github.com/taibuivan/animeab/internal/platform/constants"
	"github.com/taibuivan/animeab/internal/platform/ctxutil"
	"github.com/taibuivan/animeab/internal/platform/staging"
	"github.com/taibuivan/animeab/internal/platform/validate"
)

// Client-facing messages of the upload workflow.
const (
	MsgImageSourceMissing = "Must supply an image upload or image URL"
	MsgImageSourceBoth    = "Supply either an image upload or an image URL, not both"
	MsgEmptyUpload        = "Uploaded file is empty"
	MsgBannerMissing      = "A banner file is required"
)

// EventPublisher receives catalogue change notifications. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any)
}

type discardEvents struct{}

func (discardEvents) Publish(context.Context, string, any) {}

// # Request

// Request carries the fields of a create or update form.
type Request struct {
	Key           string
	Image         string // plain image URL, the alternative to Upload on create
	Title         string
	TitleVie      string
	Description   string
	Trainer       string
	Episode       int
	MovieDuration int
	CollectionID  string
	CategoryKey   string
	Type          string
	DateRelease   time.Time
	Status        Status
	Upload        *staging.Upload

	// formErrors holds values that could not be parsed from the form.
	formErrors []apperr.FieldError
}

// validate runs the field-shape rules shared by create and update.
func (req *Request) validate() error {
	validator := &validate.Validator{}

	for _, formError := range req.formErrors {
		validator.Custom(formError.Field, true, formError.Message)
	}

	validator.
		Required(FieldKey, req.Key).Key(FieldKey, req.Key).MaxLen(FieldKey, req.Key, 100).
		Required(FieldTitle, req.Title).MaxLen(FieldTitle, req.Title, 255).
		MaxLen(FieldTitleVie, req.TitleVie, 255).
		MaxLen(FieldDescription, req.Description, 5000).
		MaxLen(FieldTrainer, req.Trainer, 255).
		NonNegative(FieldEpisode, req.Episode).
		NonNegative(FieldMovieDuration, req.MovieDuration).
		MaxLen(FieldCollectionID, req.CollectionID, 100).
		Required(FieldCategoryKey, req.CategoryKey).MaxLen(FieldCategoryKey, req.CategoryKey, 100).
		MaxLen(FieldType, req.Type, 50).
		URL(FieldImage, req.Image).
		Custom(FieldStatus, !req.Status.IsValid(), "Must be 1 (ongoing), 2 (completed) or 3 (unknown)")

	return validator.Err()
}

// toAnime maps the form onto the persisted shape.
func (req *Request) toAnime() *Anime {
	return &Anime{
		Key:           req.Key,
		Title:         req.Title,
		TitleVie:      req.TitleVie,
		Description:   req.Description,
		Trainer:       req.Trainer,
		Episode:       req.Episode,
		MovieDuration: req.MovieDuration,
		CollectionID:  req.CollectionID,
		CategoryKey:   req.CategoryKey,
		Type:          req.Type,
		DateRelease:   req.DateRelease,
		Status:        req.Status,
		Image:         strings.TrimSpace(req.Image),
	}
}

// # Service

// Service runs the admin catalogue operations.
type Service struct {
	gateway     Gateway
	staging     *staging.Area
	events      EventPublisher
	linkBaseURL string
	logger      *slog.Logger
}

// NewService wires the catalogue service. events may be nil.
func NewService(gateway Gateway, area *staging.Area, events EventPublisher, linkBaseURL string, logger *slog.Logger) *Service {
	if events == nil {
		events = discardEvents{}
	}
	return &Service{
		gateway:     gateway,
		staging:     area,
		events:      events,
		linkBaseURL: linkBaseURL,
		logger:      logger,
	}
}

// Index loads the collections and categories the admin filters are built from.
func (service *Service) Index(ctx context.Context) (*IndexView, error) {
	view := &IndexView{}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		collections, err := service.gateway.ListCollections(groupCtx)
		view.Collections = collections
		return err
	})
	group.Go(func() error {
		categories, err := service.gateway.ListCategories(groupCtx)
		view.Categories = categories
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, apperr.Internal(err)
	}
	return view, nil
}

// List returns every record that passes filter, in the order it requests.
func (service *Service) List(ctx context.Context, filter Filter) ([]*Anime, error) {
	animes, err := service.gateway.ListAnimes(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return filter.Apply(animes), nil
}

// Create validates and stores a new record.
//
// Validation failures come back as a single flattened message. Exactly one image
// source is required; a zero-length upload counts as no upload.
func (service *Service) Create(ctx context.Context, req *Request) error {
	if err := req.validate(); err != nil {
		return apperr.As(err).Flatten()
	}

	upload := req.Upload
	if upload != nil && upload.IsEmpty() {
		upload = nil
	}

	hasURL := strings.TrimSpace(req.Image) != ""
	switch {
	case upload == nil && !hasURL:
		return apperr.BadRequest(MsgImageSourceMissing)
	case upload != nil && hasURL:
		return apperr.BadRequest(MsgImageSourceBoth)
	}

	record := req.toAnime()
	record.FacebookURL = service.linkBaseURL + record.Key

	result, err := withStagedUpload(ctx, service.staging, upload, func(stream io.Reader, fileName string) Result[*Anime] {
		if stream != nil {
			record.FileName = &fileName
		}
		return service.gateway.CreateAnime(ctx, record, stream)
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return apperr.Gateway(result.Message)
	}

	service.logger.InfoContext(ctx, "anime_created", slog.String("key", record.Key), slog.Bool("uploaded", upload != nil))
	service.events.Publish(ctx, constants.SubjectAnimeCreated, result.Data)
	return nil
}

// Edit overwrites the record stored under key.
//
// Validation failures keep their per-field details. A new upload must not be
// empty; without one the stored image is kept unless a new URL is given.
func (service *Service) Edit(ctx context.Context, key string, req *Request) (*Anime, error) {
	req.Key = key
	if err := req.validate(); err != nil {
		return nil, err
	}

	if req.Upload != nil && req.Upload.IsEmpty() {
		return nil, apperr.BadRequest(MsgEmptyUpload)
	}

	record := req.toAnime()
	record.FacebookURL = service.linkBaseURL + record.Key

	result, err := withStagedUpload(ctx, service.staging, req.Upload, func(stream io.Reader, fileName string) Result[*Anime] {
		if stream != nil {
			record.FileName = &fileName
		}
		return service.gateway.UpdateAnime(ctx, record, stream)
	})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, apperr.Gateway(result.Message)
	}

	service.logger.InfoContext(ctx, "anime_updated", slog.String("key", key), slog.Bool("uploaded", req.Upload != nil))
	service.events.Publish(ctx, constants.SubjectAnimeUpdated, result.Data)
	return result.Data, nil
}

// Delete removes the record stored under key. Any storage failure reads as not found.
func (service *Service) Delete(ctx context.Context, key string) error {
	result := service.gateway.DeleteAnime(ctx, key)
	if !result.Success {
		return apperr.NotFound("Anime")
	}

	service.logger.WarnContext(ctx, "anime_deleted", slog.String("key", key))
	service.events.Publish(ctx, constants.SubjectAnimeDeleted, map[string]string{FieldKey: key})
	return nil
}

// UpdateBanner replaces the banner of the record stored under key.
func (service *Service) UpdateBanner(ctx context.Context, key string, upload *staging.Upload) (*Anime, error) {
	if upload == nil || upload.IsEmpty() {
		return nil, apperr.BadRequest(MsgBannerMissing)
	}

	result, err := withStagedUpload(ctx, service.staging, upload, func(stream io.Reader, fileName string) Result[*Anime] {
		return service.gateway.UpdateBanner(ctx, key, fileName, stream)
	})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, apperr.Gateway(result.Message)
	}

	service.logger.InfoContext(ctx, "anime_banner_updated", slog.String("key", key))
	service.events.Publish(ctx, constants.SubjectAnimeBannerUpdated, result.Data)
	return result.Data, nil
}

// DestroyBanner clears the banner of the record stored under key.
func (service *Service) DestroyBanner(ctx context.Context, key string) error {
	result := service.gateway.DestroyBanner(ctx, key)
	if !result.Success {
		return apperr.Gateway(result.Message)
	}

	service.logger.InfoContext(ctx, "anime_banner_destroyed", slog.String("key", key))
	service.events.Publish(ctx, constants.SubjectAnimeBannerDestroyed, map[string]string{FieldKey: key})
	return nil
}

// # Staged Uploads

// withStagedUpload runs call with a read stream over the staged upload.
//
// Without an upload, call receives a nil stream and an empty name. Otherwise the
// upload moves through Staged, Opened and Persisted; the staged file is removed
// on every path once it exists. Staging I/O failures become 400 errors.
func withStagedUpload[T any](ctx context.Context, area *staging.Area, upload *staging.Upload, call func(stream io.Reader, fileName string) Result[T]) (Result[T], error) {
	if upload == nil {
		return call(nil, ""), nil
	}

	staged, err := area.Stage(upload)
	if err != nil {
		return Result[T]{}, apperr.Staging(err)
	}
	defer func() {
		if err := staged.Cleanup(); err != nil {
			ctxutil.GetLogger(ctx).ErrorContext(ctx, "staging_cleanup_failed",
				slog.String("path", staged.Path()),
				slog.Any("error", err),
			)
		}
	}()

	stream, err := staged.Open()
	if err != nil {
		return Result[T]{}, apperr.Staging(err)
	}
	defer stream.Close()

	return call(stream, staged.Name()), nil
}
