// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// filter.go defines the catalog query filter and options types shared by
// AppStore and the genre resolver. A Filter is a field→condition map in
// the style of a document query: plain values match by equality, In values
// match by ID membership, and the special never filter matches nothing.
package store

import (
	"github.com/google/uuid"
)

// Filter selects a subset of catalog apps. Keys name queryable fields
// ("id", "name", "slug", "author_id", "approved", "category"); values are
// matched by equality unless they are an In membership list.
type Filter map[string]any

// In is an ID-membership condition. An empty In matches nothing — it is
// an empty membership filter, not the absence of a restriction.
type In []uuid.UUID

// neverField marks a filter that can never match. It is not a queryable
// field name, so it cannot collide with caller-supplied keys.
const neverField = "~never"

// Never returns the null filter: it matches no app. Used for unknown genre
// names so they resolve to an empty result set instead of an unrestricted
// scan.
func Never() Filter {
	return Filter{neverField: true}
}

// IsNever reports whether the filter is the null filter.
func (f Filter) IsNever() bool {
	_, ok := f[neverField]
	return ok
}

// Clone returns a shallow copy of the filter. A nil filter clones to an
// empty, writable one.
func (f Filter) Clone() Filter {
	out := make(Filter, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge shallow-merges over onto base: fields from over replace base
// fields sharing the same key. Nested conditions are replaced wholesale,
// not combined. Neither input is modified.
func Merge(base, over Filter) Filter {
	out := base.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

// SortField is one ordering term for a catalog query.
type SortField struct {
	Field string
	Desc  bool
}

// FindOptions controls ordering and pagination of a catalog query.
type FindOptions struct {
	Sort   []SortField
	Limit  int
	Offset int
}

// MergeOptions overlays over onto base field by field: any field set on
// over replaces the corresponding base field. Genre options take
// precedence over caller options this way.
func MergeOptions(base, over FindOptions) FindOptions {
	out := base
	if over.Sort != nil {
		out.Sort = over.Sort
	}
	if over.Limit != 0 {
		out.Limit = over.Limit
	}
	if over.Offset != 0 {
		out.Offset = over.Offset
	}
	return out
}
