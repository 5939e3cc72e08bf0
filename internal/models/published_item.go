package models

import (
	"slices"
	"time"
)

// PublishedItem is an approved newsletter visible to end users.
type PublishedItem struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      []string  `json:"description"` // one entry per line
	ShortDescription string    `json:"short_description"`
	Pricing          string    `json:"pricing"`
	Frequency        string    `json:"frequency"`
	Categories       []string  `json:"categories"` // lowercase
	URL              string    `json:"url"`
	Image            string    `json:"image"`
	Slug             string    `json:"slug"`
	Related          []int64   `json:"related"`
	Version          int64     `json:"version"` // bumped on every related list write
	CreatedAt        time.Time `json:"created_at"`
}

// IsRelatedTo reports whether id is already in the item's backlink list.
func (p *PublishedItem) IsRelatedTo(id int64) bool {
	return slices.Contains(p.Related, id)
}
