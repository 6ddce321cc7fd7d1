// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/taibuivan/animeab/internal/platform/staging"
)

// Slot names which picture of an anime a blob holds.
type Slot string

const (
	SlotImage  Slot = "image"
	SlotBanner Slot = "banner"
)

// Image is a stored picture blob with its metadata.
type Image struct {
	Name        string
	AnimeKey    string
	Slot        Slot
	Content     []byte
	ContentType string
	SizeBytes   int64
	SHA256      string
	CreatedAt   time.Time
}

// ImageReader serves stored blobs by name.
type ImageReader interface {
	OpenImage(ctx context.Context, name string) (*Image, error)
}

// IsValid reports whether the slot is one a record owns.
func (s Slot) IsValid() bool {
	return s == SlotImage || s == SlotBanner
}

// BlobName derives the stored name of an uploaded picture as "<key>/<slot>/<file>".
//
// Keys and sanitised file names never contain "/", so the three segments are
// unambiguous and two records can not map to the same blob.
func BlobName(key string, slot Slot, fileName string) string {
	return key + "/" + string(slot) + "/" + staging.SafeName(fileName)
}

// readImage consumes stream into an [Image] for the given record slot.
func readImage(key string, slot Slot, fileName string, stream io.Reader) (*Image, error) {
	content, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("anime: failed to read %s stream: %w", slot, err)
	}

	digest := sha256.Sum256(content)
	return &Image{
		Name:        BlobName(key, slot, fileName),
		AnimeKey:    key,
		Slot:        slot,
		Content:     content,
		ContentType: http.DetectContentType(content),
		SizeBytes:   int64(len(content)),
		SHA256:      hex.EncodeToString(digest[:]),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// mergeImage applies the image rules of an update that carries no new upload.
//
// An empty or unchanged URL keeps the stored picture and file name. Any other
// URL replaces the picture, so the uploaded blob of the image slot must be dropped.
func mergeImage(current, next *Anime) (dropBlob bool) {
	if next.Image == "" || next.Image == current.Image {
		next.Image = current.Image
		next.FileName = current.FileName
		return false
	}
	next.FileName = nil
	return true
}
