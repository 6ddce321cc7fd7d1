// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"context"
	"io"
)

// Gateway persists anime records and their image blobs.
//
// Writes report expected failures (duplicate key, unknown key) through
// [Result] rather than an error. A nil stream on CreateAnime or UpdateAnime
// means no new image: the record keeps whatever Image URL it carries.
type Gateway interface {
	ListAnimes(ctx context.Context) ([]*Anime, error)
	CreateAnime(ctx context.Context, record *Anime, stream io.Reader) Result[*Anime]
	UpdateAnime(ctx context.Context, record *Anime, stream io.Reader) Result[*Anime]
	DeleteAnime(ctx context.Context, key string) Result[struct{}]
	UpdateBanner(ctx context.Context, key, fileName string, stream io.Reader) Result[*Anime]
	DestroyBanner(ctx context.Context, key string) Result[struct{}]
	ListCollections(ctx context.Context) ([]*Collection, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}

// Store is a [Gateway] that can also serve the blobs it stores.
type Store interface {
	Gateway
	ImageReader
}
