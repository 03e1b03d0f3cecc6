package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const base = "http://api.test/users/"

func TestBuildLinks(t *testing.T) {
	tests := []struct {
		name                   string
		offset, limit, total   int
		wantNext, wantPrevious string
	}{
		{"first page", 0, 10, 50, base + "?skip=10&limit=10", ""},
		{"last full page", 40, 10, 50, "", base + "?skip=30&limit=10"},
		{"partial tail", 45, 10, 50, "", base + "?skip=35&limit=10"},
		{"previous floored at zero", 5, 10, 50, base + "?skip=15&limit=10", base + "?skip=0&limit=10"},
		{"single page", 0, 10, 7, "", ""},
		{"empty collection", 0, 10, 0, "", ""},
		{"exact boundary", 10, 10, 20, "", base + "?skip=0&limit=10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildLinks(base, tt.offset, tt.limit, tt.total)
			assert.Equal(t, tt.wantNext, got.Next)
			assert.Equal(t, tt.wantPrevious, got.Previous)
		})
	}
}

func TestBuildLinks_NonPositiveLimit(t *testing.T) {
	assert.Equal(t, Links{}, BuildLinks(base, 10, 0, 50))
	assert.Equal(t, Links{}, BuildLinks(base, 10, -5, 50))
}

func TestBuildLinks_StripsExistingQuery(t *testing.T) {
	got := BuildLinks(base+"?skip=0&limit=10", 0, 10, 50)
	assert.Equal(t, base+"?skip=10&limit=10", got.Next)
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, Meta{Page: 1, PerPage: 10, TotalItems: 50, TotalPages: 5}, NewMeta(0, 10, 50))
	assert.Equal(t, Meta{Page: 5, PerPage: 10, TotalItems: 45, TotalPages: 5}, NewMeta(45, 10, 45))
	assert.Equal(t, Meta{Page: 1, PerPage: 10, TotalItems: 0, TotalPages: 0}, NewMeta(0, 10, 0))
}
