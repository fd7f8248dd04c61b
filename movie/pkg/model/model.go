package model

import "time"

// SortField selects the ordering of search results.
type SortField string

const (
	SortRating      = SortField("rating")
	SortReleaseYear = SortField("releaseYear")
	SortTotalLikes  = SortField("totalLikes")
)

// DefaultSortField is applied when a request carries an unknown sort field.
const DefaultSortField = SortRating

// Valid reports whether the sort field is one of the supported orderings.
func (f SortField) Valid() bool {
	switch f {
	case SortRating, SortReleaseYear, SortTotalLikes:
		return true
	}
	return false
}

// MovieRecord is the source-of-truth movie document. Revision is an opaque
// fencing token regenerated on every successful write; Dirty marks the record
// as not yet reflected in the search index. PendingLikes and PendingUnlikes
// accumulate per-user like mutations between reconciliation sweeps.
type MovieRecord struct {
	ID             string
	Revision       string
	Title          string
	Description    string
	Rating         float64
	ReleaseYear    int
	Creator        string
	Deleted        bool
	Dirty          bool
	PendingLikes   []string
	PendingUnlikes []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MarkLike records a pending like for the user. A user never appears in both
// pending sets: marking a like removes any pending unlike for the same user.
func (r *MovieRecord) MarkLike(userID string) {
	r.PendingUnlikes = removeString(r.PendingUnlikes, userID)
	r.PendingLikes = appendUnique(r.PendingLikes, userID)
}

// MarkUnlike records a pending unlike for the user, dropping any pending like.
func (r *MovieRecord) MarkUnlike(userID string) {
	r.PendingLikes = removeString(r.PendingLikes, userID)
	r.PendingUnlikes = appendUnique(r.PendingUnlikes, userID)
}

// ClearPending empties both pending sets. Called by the reconciler once the
// sets have been drained into the like store.
func (r *MovieRecord) ClearPending() {
	r.PendingLikes = nil
	r.PendingUnlikes = nil
}

func appendUnique(s []string, v string) []string {
	for _, e := range s {
		if e == v {
			return s
		}
	}
	return append(s, v)
}

func removeString(s []string, v string) []string {
	var out []string
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

// Movie is the external view of a movie record.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Rating      float64   `json:"rating"`
	ReleaseYear int       `json:"releaseYear"`
	Creator     string    `json:"creator"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View maps the record to its external shape.
func (r *MovieRecord) View() *Movie {
	return &Movie{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Rating:      r.Rating,
		ReleaseYear: r.ReleaseYear,
		Creator:     r.Creator,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Like is one row per (movie, user) pair that currently likes a movie. It is
// the durable source of truth for a movie's total like count.
type Like struct {
	ID        string
	MovieID   string
	UserID    string
	CreatedAt time.Time
}

// LikeID builds the composite key for a like row.
func LikeID(movieID, userID string) string {
	return movieID + "-" + userID
}

// IndexDocument is the denormalized search-index projection of a movie. It is
// never authoritative: every field is recomputable from the MovieRecord and
// the like store.
type IndexDocument struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	ReleaseYear int     `json:"releaseYear"`
	Creator     string  `json:"creator"`
	TotalLikes  int64   `json:"totalLikes"`
}

// NewIndexDocument projects a record plus a recomputed like count into the
// index shape.
func NewIndexDocument(r *MovieRecord, totalLikes int64) *IndexDocument {
	return &IndexDocument{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Rating:      r.Rating,
		ReleaseYear: r.ReleaseYear,
		Creator:     r.Creator,
		TotalLikes:  totalLikes,
	}
}

// PagedResult is one page of search results. SortField, Ascending and Page
// carry the effective values after fallback correction, not the raw request.
type PagedResult struct {
	Entries    []IndexDocument `json:"entries"`
	Page       int64           `json:"page"`
	TotalPages int64           `json:"totalPages"`
	SortField  SortField       `json:"sortField"`
	Ascending  bool            `json:"ascending"`
}
