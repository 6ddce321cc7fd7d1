// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogAnimeTable represents the 'catalog.anime' table
type CatalogAnimeTable struct {
	Table         string
	Key           string
	Title         string
	TitleVie      string
	Description   string
	Trainer       string
	Episode       string
	MovieDuration string
	CollectionID  string
	CategoryKey   string
	Type          string
	DateRelease   string
	Status        string
	FacebookURL   string
	Image         string
	FileName      string
	Banner        string
	CreatedAt     string
	UpdatedAt     string
}

// CatalogAnime is the schema definition for catalog.anime
var CatalogAnime = CatalogAnimeTable{
	Table:         "catalog.anime",
	Key:           "key",
	Title:         "title",
	TitleVie:      "titlevie",
	Description:   "description",
	Trainer:       "trainer",
	Episode:       "episode",
	MovieDuration: "movieduration",
	CollectionID:  "collectionid",
	CategoryKey:   "categorykey",
	Type:          "type",
	DateRelease:   "daterelease",
	Status:        "status",
	FacebookURL:   "facebookurl",
	Image:         "image",
	FileName:      "filename",
	Banner:        "banner",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// Columns returns every column in scan order.
func (t CatalogAnimeTable) Columns() []string {
	return []string{
		t.Key, t.Title, t.TitleVie, t.Description, t.Trainer, t.Episode, t.MovieDuration,
		t.CollectionID, t.CategoryKey, t.Type, t.DateRelease, t.Status, t.FacebookURL,
		t.Image, t.FileName, t.Banner, t.CreatedAt, t.UpdatedAt,
	}
}
