// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogCategoryTable represents the 'catalog.category' table
type CatalogCategoryTable struct {
	Table     string
	Key       string
	Title     string
	SortOrder string
}

// CatalogCategory is the schema definition for catalog.category
var CatalogCategory = CatalogCategoryTable{
	Table:     "catalog.category",
	Key:       "key",
	Title:     "title",
	SortOrder: "sortorder",
}

func (t CatalogCategoryTable) Columns() []string {
	return []string{t.Key, t.Title, t.SortOrder}
}
