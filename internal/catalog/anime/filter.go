// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// SortOrder is the release-date ordering requested by a [Filter].
type SortOrder int

const (
	SortNone       SortOrder = 0
	SortAscending  SortOrder = 1
	SortDescending SortOrder = 2
)

// sentinelAll is the legacy wire value meaning "no filter".
const sentinelAll = "all"

// Filter narrows and orders an anime list. Absent options apply no filter.
type Filter struct {
	Category   mo.Option[string]
	Collection mo.Option[string]
	Status     mo.Option[Status]
	Sort       SortOrder
}

// filterWire is the JSON body sent by the admin frontend.
type filterWire struct {
	Category   string `json:"category"`
	Collection string `json:"collection"`
	Status     int    `json:"status"`
	Time       int    `json:"time"`
}

// UnmarshalJSON decodes the wire body and turns sentinels into absent options:
// "" and "all" clear category and collection, a status of 0 or less clears status.
// A time of 1 sorts ascending, 2 or more descending, anything else leaves order untouched.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var wire filterWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*f = Filter{
		Category:   optionalKey(wire.Category),
		Collection: optionalKey(wire.Collection),
		Status:     mo.None[Status](),
		Sort:       SortNone,
	}

	if wire.Status > 0 {
		f.Status = mo.Some(Status(wire.Status))
	}

	switch {
	case wire.Time == 1:
		f.Sort = SortAscending
	case wire.Time >= 2:
		f.Sort = SortDescending
	}

	return nil
}

func optionalKey(value string) mo.Option[string] {
	value = strings.TrimSpace(value)
	if value == "" || value == sentinelAll {
		return mo.None[string]()
	}
	return mo.Some(value)
}

// Apply filters records by category, collection and status, then sorts by release date.
//
// Each pass is independent, so their order does not change the resulting set.
// Sorting is stable: records sharing a release date keep their input order.
// The input slice is never modified.
//
// The list is filtered in memory on every call. A category or collection index
// in storage is the place to start if the catalogue outgrows that.
func (f Filter) Apply(records []*Anime) []*Anime {
	result := slices.Clone(records)

	if category, ok := f.Category.Get(); ok {
		result = lo.Filter(result, func(record *Anime, _ int) bool { return record.CategoryKey == category })
	}

	if collection, ok := f.Collection.Get(); ok {
		result = lo.Filter(result, func(record *Anime, _ int) bool { return record.CollectionID == collection })
	}

	if status, ok := f.Status.Get(); ok {
		result = lo.Filter(result, func(record *Anime, _ int) bool { return record.Status == status })
	}

	// Values past SortDescending are treated as descending, matching the wire decoding.
	switch {
	case f.Sort == SortAscending:
		slices.SortStableFunc(result, func(a, b *Anime) int { return a.DateRelease.Compare(b.DateRelease) })
	case f.Sort >= SortDescending:
		slices.SortStableFunc(result, func(a, b *Anime) int { return b.DateRelease.Compare(a.DateRelease) })
	}

	if result == nil {
		return []*Anime{}
	}
	return result
}
