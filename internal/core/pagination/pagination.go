// Package pagination holds the page-window math shared by the list
// services: a page is a deterministic slice of an already sorted full
// result set.
package pagination

import (
	internal "github.com/wedflix/command-center/internal"
)

// PageConfig selects one window of a sorted sequence. PageNumber is
// 1-based; the previous-page boundary clamps at 1.
type PageConfig struct {
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
}

func (c PageConfig) Validate() error {
	if c.PageSize <= 0 {
		return internal.NewValidationError("pageSize must be greater than zero", internal.ErrCodeInvalidPage)
	}
	if c.PageNumber < 1 {
		return internal.NewValidationError("pageNumber must be at least 1", internal.ErrCodeInvalidPage)
	}
	return nil
}

// Prev returns the config for the previous page, clamped at page 1.
func (c PageConfig) Prev() PageConfig {
	if c.PageNumber > 1 {
		c.PageNumber--
	}
	return c
}

// Next returns the config for the following page.
func (c PageConfig) Next() PageConfig {
	c.PageNumber++
	return c
}

// Slice returns items[(n-1)*size : n*size], clamped to the sequence
// bounds.
func Slice[T any](items []T, c PageConfig) []T {
	start := (c.PageNumber - 1) * c.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + c.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages returns the number of pages needed for totalCount items.
func (c PageConfig) TotalPages(totalCount int) int {
	if c.PageSize <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + c.PageSize - 1) / c.PageSize
}
