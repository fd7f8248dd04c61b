// Package meili implements the movie search index on Meilisearch. Text
// queries use the "all" matching strategy so every term must match, with
// Meilisearch's built-in typo tolerance providing the bounded edit-distance
// fuzziness; listings without text fall back to pure sorted pagination.
package meili

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"filmdex/movie/pkg/model"
)

const pageSize = 10

// Index wraps a single Meilisearch index holding movie documents.
type Index struct {
	client meilisearch.ServiceManager
	index  meilisearch.IndexManager
	uid    string
}

// New connects to Meilisearch and binds the movie index.
func New(host, apiKey, uid string) *Index {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	return &Index{
		client: client,
		index:  client.Index(uid),
		uid:    uid,
	}
}

// EnsureIndex creates the index and applies searchable/sortable attribute
// settings. Safe to call on every startup; existing indexes are left alone
// apart from the settings update.
func (i *Index) EnsureIndex(ctx context.Context) error {
	if _, err := i.client.CreateIndex(&meilisearch.IndexConfig{Uid: i.uid, PrimaryKey: "id"}); err != nil {
		return fmt.Errorf("create index %s: %w", i.uid, err)
	}
	settings := meilisearch.Settings{
		SearchableAttributes: []string{"title", "description"},
		SortableAttributes:   []string{string(model.SortRating), string(model.SortReleaseYear), string(model.SortTotalLikes)},
	}
	if _, err := i.index.UpdateSettings(&settings); err != nil {
		return fmt.Errorf("update settings for index %s: %w", i.uid, err)
	}
	return nil
}

// Upsert adds or replaces a movie document.
func (i *Index) Upsert(ctx context.Context, doc *model.IndexDocument) error {
	if _, err := i.index.AddDocuments([]*model.IndexDocument{doc}, nil); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteByID removes a movie document. Deleting an absent document succeeds.
func (i *Index) DeleteByID(ctx context.Context, id string) error {
	if _, err := i.index.DeleteDocument(id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Query runs a paged, sorted search. Page numbers are zero-based; an empty
// text lists all documents in sort order.
func (i *Index) Query(ctx context.Context, text string, page int64, sortField model.SortField, ascending bool) ([]model.IndexDocument, int64, error) {
	direction := "desc"
	if ascending {
		direction = "asc"
	}
	req := &meilisearch.SearchRequest{
		Page:             page + 1, // Meilisearch pages are one-based
		HitsPerPage:      pageSize,
		Sort:             []string{fmt.Sprintf("%s:%s", sortField, direction)},
		MatchingStrategy: meilisearch.All,
	}
	resp, err := i.index.Search(text, req)
	if err != nil {
		return nil, 0, fmt.Errorf("search %q: %w", text, err)
	}

	entries := make([]model.IndexDocument, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			return nil, 0, fmt.Errorf("encode hit: %w", err)
		}
		var doc model.IndexDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, 0, fmt.Errorf("decode hit: %w", err)
		}
		entries = append(entries, doc)
	}
	return entries, resp.TotalPages, nil
}
