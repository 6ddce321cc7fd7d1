// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogImageTable represents the 'catalog.image' table.
// Blobs are addressed by their unique stored name and owned by one anime slot.
type CatalogImageTable struct {
	Table       string
	Name        string
	AnimeKey    string
	Slot        string
	Content     string
	ContentType string
	SizeBytes   string
	SHA256      string
	CreatedAt   string
}

// CatalogImage is the schema definition for catalog.image
var CatalogImage = CatalogImageTable{
	Table:       "catalog.image",
	Name:        "name",
	AnimeKey:    "animekey",
	Slot:        "slot",
	Content:     "content",
	ContentType: "contenttype",
	SizeBytes:   "sizebytes",
	SHA256:      "sha256",
	CreatedAt:   "createdat",
}

// MetadataColumns excludes the blob itself.
func (t CatalogImageTable) MetadataColumns() []string {
	return []string{t.Name, t.AnimeKey, t.Slot, t.ContentType, t.SizeBytes, t.SHA256, t.CreatedAt}
}
