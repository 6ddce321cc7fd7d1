// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/taibuivan/animeab/internal/platform/apperr"
)

// MemoryGateway is a [Gateway] held in process memory.
//
// It is an in-process test double that mirrors [PostgresGateway] semantics for
// unit and end-to-end tests. The server always runs on Postgres. Records are
// returned as copies.
type MemoryGateway struct {
	mu           sync.RWMutex
	imageBaseURL string
	animes       map[string]*Anime
	order        []string
	images       map[string]*Image
	collections  []*Collection
	categories   []*Category
}

// NewMemoryGateway creates an empty gateway whose image URLs start with imageBaseURL.
func NewMemoryGateway(imageBaseURL string) *MemoryGateway {
	return &MemoryGateway{
		imageBaseURL: imageBaseURL,
		animes:       make(map[string]*Anime),
		images:       make(map[string]*Image),
	}
}

// SeedTaxonomy replaces the collections and categories offered by the index view.
func (gateway *MemoryGateway) SeedTaxonomy(collections []*Collection, categories []*Category) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	gateway.collections = slices.Clone(collections)
	gateway.categories = slices.Clone(categories)
}

func (gateway *MemoryGateway) ListAnimes(_ context.Context) ([]*Anime, error) {
	gateway.mu.RLock()
	defer gateway.mu.RUnlock()

	return lo.Map(gateway.order, func(key string, _ int) *Anime {
		return gateway.animes[key].Clone()
	}), nil
}

func (gateway *MemoryGateway) CreateAnime(_ context.Context, record *Anime, stream io.Reader) Result[*Anime] {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	if _, exists := gateway.animes[record.Key]; exists {
		return Fail[*Anime](MsgKeyExists)
	}

	stored := record.Clone()
	if stream != nil {
		image, err := readImage(stored.Key, SlotImage, fileNameOf(stored), stream)
		if err != nil {
			return Fail[*Anime](MsgImageUnreadable)
		}
		gateway.replaceSlot(image)
		stored.Image = gateway.imageBaseURL + image.Name
	}

	now := time.Now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now

	gateway.animes[stored.Key] = stored
	gateway.order = append(gateway.order, stored.Key)
	return Ok(stored.Clone())
}

func (gateway *MemoryGateway) UpdateAnime(_ context.Context, record *Anime, stream io.Reader) Result[*Anime] {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	existing, found := gateway.animes[record.Key]
	if !found {
		return Fail[*Anime](MsgNotFound)
	}

	stored := record.Clone()
	stored.Banner = existing.Banner
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()

	if stream != nil {
		image, err := readImage(stored.Key, SlotImage, fileNameOf(stored), stream)
		if err != nil {
			return Fail[*Anime](MsgImageUnreadable)
		}
		gateway.replaceSlot(image)
		stored.Image = gateway.imageBaseURL + image.Name
	} else if mergeImage(existing, stored) {
		gateway.dropSlot(stored.Key, SlotImage)
	}

	gateway.animes[stored.Key] = stored
	return Ok(stored.Clone())
}

func (gateway *MemoryGateway) DeleteAnime(_ context.Context, key string) Result[struct{}] {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	if _, found := gateway.animes[key]; !found {
		return Fail[struct{}](MsgNotFound)
	}

	delete(gateway.animes, key)
	gateway.order = slices.DeleteFunc(gateway.order, func(k string) bool { return k == key })
	gateway.dropSlot(key, SlotImage)
	gateway.dropSlot(key, SlotBanner)
	return Ok(struct{}{})
}

func (gateway *MemoryGateway) UpdateBanner(_ context.Context, key, fileName string, stream io.Reader) Result[*Anime] {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	existing, found := gateway.animes[key]
	if !found {
		return Fail[*Anime](MsgNotFound)
	}

	image, err := readImage(key, SlotBanner, fileName, stream)
	if err != nil {
		return Fail[*Anime](MsgImageUnreadable)
	}
	gateway.replaceSlot(image)

	banner := gateway.imageBaseURL + image.Name
	existing.Banner = &banner
	existing.UpdatedAt = time.Now().UTC()
	return Ok(existing.Clone())
}

func (gateway *MemoryGateway) DestroyBanner(_ context.Context, key string) Result[struct{}] {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	existing, found := gateway.animes[key]
	if !found {
		return Fail[struct{}](MsgNotFound)
	}

	gateway.dropSlot(key, SlotBanner)
	existing.Banner = nil
	existing.UpdatedAt = time.Now().UTC()
	return Ok(struct{}{})
}

func (gateway *MemoryGateway) ListCollections(_ context.Context) ([]*Collection, error) {
	gateway.mu.RLock()
	defer gateway.mu.RUnlock()
	return slices.Clone(gateway.collections), nil
}

func (gateway *MemoryGateway) ListCategories(_ context.Context) ([]*Category, error) {
	gateway.mu.RLock()
	defer gateway.mu.RUnlock()
	return slices.Clone(gateway.categories), nil
}

// OpenImage implements [ImageReader].
func (gateway *MemoryGateway) OpenImage(_ context.Context, name string) (*Image, error) {
	gateway.mu.RLock()
	defer gateway.mu.RUnlock()

	image, found := gateway.images[name]
	if !found {
		return nil, apperr.NotFound("Image")
	}
	clone := *image
	return &clone, nil
}

// replaceSlot stores image as the only blob of its record slot. Callers hold the lock.
func (gateway *MemoryGateway) replaceSlot(image *Image) {
	gateway.dropSlot(image.AnimeKey, image.Slot)
	gateway.images[image.Name] = image
}

// dropSlot removes the blob of a record slot, if any. Callers hold the lock.
func (gateway *MemoryGateway) dropSlot(key string, slot Slot) {
	for name, image := range gateway.images {
		if image.AnimeKey == key && image.Slot == slot {
			delete(gateway.images, name)
		}
	}
}

// fileNameOf returns the uploaded file name recorded on the entity.
func fileNameOf(record *Anime) string {
	if record.FileName == nil {
		return "upload"
	}
	return *record.FileName
}
