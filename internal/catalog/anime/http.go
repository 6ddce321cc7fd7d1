// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/animeab/internal/platform/apperr"
	"github.com/taibuivan/animeab/internal/platform/middleware"
	requestutil "github.com/taibuivan/animeab/internal/platform/request"
	"github.com/taibuivan/animeab/internal/platform/respond"
	"github.com/taibuivan/animeab/internal/platform/sec"
	"github.com/taibuivan/animeab/internal/platform/staging"
)

const paramKey = "key"

// Handler serves the /anime/movies admin routes.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler creates a Handler that rejects multipart bodies above maxUploadBytes.
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes mounts the catalogue routes. Every route requires an admin session.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Get("/", handler.index)
	router.Post("/all", handler.list)
	router.Post("/", handler.create)
	router.Put("/{key}", handler.edit)
	router.Delete("/{key}", handler.delete)
	router.Post("/{key}/banner", handler.updateBanner)
	router.Get("/{key}/banner", handler.destroyBanner)
}

func (handler *Handler) index(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Index(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	var filter Filter
	if err := requestutil.DecodeJSON(request, &filter); err != nil {
		respond.Error(writer, request, err)
		return
	}

	animes, err := handler.service.List(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, animes)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	form, err := handler.decodeForm(writer, request)
	defer requestutil.CloseMultipart(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer form.Upload.Close()

	if err := handler.service.Create(request.Context(), form); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) edit(writer http.ResponseWriter, request *http.Request) {
	form, err := handler.decodeForm(writer, request)
	defer requestutil.CloseMultipart(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer form.Upload.Close()

	record, err := handler.service.Edit(request.Context(), requestutil.Param(request, paramKey), form)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, paramKey)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) updateBanner(writer http.ResponseWriter, request *http.Request) {
	err := requestutil.ParseMultipart(writer, request, handler.maxUploadBytes)
	defer requestutil.CloseMultipart(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	upload, err := requestutil.FormUpload(request, FieldBannerFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer upload.Close()

	record, err := handler.service.UpdateBanner(request.Context(), requestutil.Param(request, paramKey), upload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) destroyBanner(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DestroyBanner(request.Context(), requestutil.Param(request, paramKey)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// decodeForm reads the multipart create/update form.
// Unparseable values are kept on the request and reported by validation.
func (handler *Handler) decodeForm(writer http.ResponseWriter, request *http.Request) (*Request, error) {
	if err := requestutil.ParseMultipart(writer, request, handler.maxUploadBytes); err != nil {
		return nil, err
	}

	upload, err := requestutil.FormUpload(request, FieldFileUpload)
	if err != nil {
		return nil, err
	}

	form := &Request{
		Key:          requestutil.FormString(request, FieldKey),
		Image:        requestutil.FormString(request, FieldImage),
		Title:        requestutil.FormString(request, FieldTitle),
		TitleVie:     requestutil.FormString(request, FieldTitleVie),
		Description:  requestutil.FormString(request, FieldDescription),
		Trainer:      requestutil.FormString(request, FieldTrainer),
		CollectionID: requestutil.FormString(request, FieldCollectionID),
		CategoryKey:  requestutil.FormString(request, FieldCategoryKey),
		Type:         requestutil.FormString(request, FieldType),
		Status:       StatusUnknown,
		Upload:       upload,
	}

	var fieldError *apperr.FieldError
	if form.Episode, fieldError = requestutil.FormInt(request, FieldEpisode); fieldError != nil {
		form.formErrors = append(form.formErrors, *fieldError)
	}
	if form.MovieDuration, fieldError = requestutil.FormInt(request, FieldMovieDuration); fieldError != nil {
		form.formErrors = append(form.formErrors, *fieldError)
	}

	status, fieldError := requestutil.FormInt(request, FieldStatus)
	if fieldError != nil {
		form.formErrors = append(form.formErrors, *fieldError)
	} else if status != 0 {
		form.Status = Status(status)
	}

	if raw := requestutil.FormString(request, FieldDateRelease); raw != "" {
		date, err := time.Parse(DateLayout, raw)
		if err != nil {
			form.formErrors = append(form.formErrors, apperr.FieldError{Field: FieldDateRelease, Message: "Must be a date in YYYY-MM-DD format"})
		}
		form.DateRelease = date
	}

	return form, nil
}

// # Images

// ImageHandler serves stored pictures publicly under /images.
type ImageHandler struct {
	images ImageReader
}

// NewImageHandler creates an ImageHandler over the given reader.
func NewImageHandler(images ImageReader) *ImageHandler {
	return &ImageHandler{images: images}
}

// RegisterRoutes mounts GET /{key}/{slot}/{name}, the layout of [BlobName].
func (handler *ImageHandler) RegisterRoutes(router chi.Router) {
	router.Get("/{key}/{slot}/{name}", handler.serve)
}

func (handler *ImageHandler) serve(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, paramKey)
	slot := Slot(requestutil.Param(request, "slot"))
	name := requestutil.Param(request, "name")

	// Only canonical names can exist in storage.
	if key == "" || !slot.IsValid() || name == "" || staging.SafeName(name) != name {
		respond.Error(writer, request, apperr.NotFound("Image"))
		return
	}

	image, err := handler.images.OpenImage(request.Context(), BlobName(key, slot, name))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	header := writer.Header()
	header.Set("Content-Type", image.ContentType)
	header.Set("ETag", `"`+image.SHA256+`"`)
	header.Set("Cache-Control", "public, max-age=86400")

	http.ServeContent(writer, request, image.Name, image.CreatedAt, bytes.NewReader(image.Content))
}
