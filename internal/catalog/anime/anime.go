// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package anime implements the admin catalogue: anime records, their filtering,
and the staged image and banner upload workflow.

Layers:

  - Entity: [Anime], [Collection], [Category] and the [Result] envelope.
  - Storage: the [Gateway] contract with Postgres and in-memory implementations.
  - Service: validation, staging and response shaping.
  - HTTP: the admin-only /anime/movies route group and public image serving.
*/
package anime

import (
	"time"
)

// # Status

// Status is the airing state of an anime.
type Status int

const (
	StatusOngoing   Status = 1
	StatusCompleted Status = 2
	StatusUnknown   Status = 3
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s >= StatusOngoing && s <= StatusUnknown
}

// # Entity

// Anime is a catalogue entry. Key is the stable, human-readable identifier.
type Anime struct {
	Key           string    `json:"key"`
	Title         string    `json:"title"`
	TitleVie      string    `json:"title_vie"`
	Description   string    `json:"description"`
	Trainer       string    `json:"trainer"`
	Episode       int       `json:"episode"`
	MovieDuration int       `json:"movie_duration"`
	CollectionID  string    `json:"collection_id"` // empty means no collection
	CategoryKey   string    `json:"category_key"`
	Type          string    `json:"type"`
	DateRelease   time.Time `json:"date_release"`
	Status        Status    `json:"status"`
	FacebookURL   string    `json:"facebook_url"`
	Image         string    `json:"image"`
	FileName      *string   `json:"file_name"`
	Banner        *string   `json:"banner"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Clone returns a deep copy so stored records never alias caller memory.
func (a *Anime) Clone() *Anime {
	clone := *a
	if a.FileName != nil {
		fileName := *a.FileName
		clone.FileName = &fileName
	}
	if a.Banner != nil {
		banner := *a.Banner
		clone.Banner = &banner
	}
	return &clone
}

// Collection groups anime into series, movies or OVAs.
type Collection struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SortOrder int    `json:"sort_order"`
}

// Category is a genre an anime belongs to.
type Category struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	SortOrder int    `json:"sort_order"`
}

// IndexView is the data the admin landing page needs to build its filters.
type IndexView struct {
	Collections []*Collection `json:"collections"`
	Categories  []*Category   `json:"categories"`
}

// # Operation Result

// Result is the envelope every storage write returns.
// Message is only set when Success is false.
type Result[T any] struct {
	Success bool
	Message string
	Data    T
}

// Ok builds a successful [Result].
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail builds a failed [Result] carrying a client-safe message.
func Fail[T any](message string) Result[T] {
	return Result[T]{Message: message}
}

// Storage failure messages, passed through to clients verbatim.
const (
	MsgKeyExists       = "Anime key already exists"
	MsgNotFound        = "Anime not found"
	MsgStorageFailed   = "Storage operation failed"
	MsgImageUnreadable = "Uploaded image could not be read"
)

// # Form Fields

const (
	FieldKey           = "key"
	FieldImage         = "image"
	FieldFileUpload    = "fileUpload"
	FieldTitle         = "title"
	FieldTitleVie      = "titleVie"
	FieldDescription   = "description"
	FieldTrainer       = "trainer"
	FieldEpisode       = "episode"
	FieldMovieDuration = "movieDuration"
	FieldCollectionID  = "collectionId"
	FieldCategoryKey   = "categoryKey"
	FieldType          = "type"
	FieldDateRelease   = "dateRelease"
	FieldStatus        = "status"
	FieldBannerFile    = "file"
)

// DateLayout is the wire format of release dates.
const DateLayout = time.DateOnly
