// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogCollectionTable represents the 'catalog.collection' table
type CatalogCollectionTable struct {
	Table     string
	ID        string
	Title     string
	SortOrder string
}

// CatalogCollection is the schema definition for catalog.collection
var CatalogCollection = CatalogCollectionTable{
	Table:     "catalog.collection",
	ID:        "id",
	Title:     "title",
	SortOrder: "sortorder",
}

func (t CatalogCollectionTable) Columns() []string {
	return []string{t.ID, t.Title, t.SortOrder}
}
