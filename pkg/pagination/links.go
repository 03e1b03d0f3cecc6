// Package pagination computes offset/limit navigation for list endpoints.
package pagination

import (
	"fmt"
	"strings"
)

// Links holds the next/previous page URLs. Empty means absent.
type Links struct {
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// Meta describes the page in page-number terms.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// BuildLinks returns navigation links for the page starting at offset.
// Next exists iff offset+limit < total. Previous exists iff offset > 0 and
// points at max(0, offset-limit). A non-positive limit yields no links.
func BuildLinks(baseURL string, offset, limit, total int) Links {
	var l Links
	if limit <= 0 {
		return l
	}
	if offset < 0 {
		offset = 0
	}
	base, _, _ := strings.Cut(baseURL, "?")

	if offset+limit < total {
		l.Next = pageURL(base, offset+limit, limit)
	}
	if offset > 0 {
		l.Previous = pageURL(base, max(0, offset-limit), limit)
	}
	return l
}

// NewMeta converts offset/limit/total into page numbers starting at 1.
func NewMeta(offset, limit, total int) Meta {
	m := Meta{PerPage: limit, TotalItems: total}
	if limit <= 0 {
		m.Page = 1
		return m
	}
	m.Page = offset/limit + 1
	m.TotalPages = (total + limit - 1) / limit
	return m
}

func pageURL(base string, skip, limit int) string {
	return fmt.Sprintf("%s?skip=%d&limit=%d", base, skip, limit)
}
