package movie

import (
	"context"
	"fmt"
	"strings"

	"filmdex/movie/pkg/model"
)

// Search runs a paged, sorted query against the search index. Unknown sort
// fields fall back to rating and negative pages to page zero; the returned
// result echoes the effective values so clients can detect applied defaults.
// Results are eventually consistent with the primary store.
func (c *Controller) Search(ctx context.Context, text string, page int64, sortField model.SortField, ascending bool) (*model.PagedResult, error) {
	if page < 0 {
		page = 0
	}
	if !sortField.Valid() {
		sortField = model.DefaultSortField
	}
	text = strings.TrimSpace(text)

	entries, totalPages, err := c.index.Query(ctx, text, page, sortField, ascending)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", ErrPersistence, err)
	}
	return &model.PagedResult{
		Entries:    entries,
		Page:       page,
		TotalPages: totalPages,
		SortField:  sortField,
		Ascending:  ascending,
	}, nil
}
