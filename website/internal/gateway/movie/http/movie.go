// Package http provides an HTTP gateway for the movie service.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"filmdex/internal/httputil"
	"filmdex/movie/pkg/model"
	"filmdex/pkg/discovery"
)

// ErrNotFound is returned when the movie service reports a missing movie.
var ErrNotFound = fmt.Errorf("movie not found")

// Gateway defines an HTTP gateway for the movie service.
type Gateway struct {
	registry discovery.Registry
	client   *http.Client
}

// New creates a new HTTP gateway for the movie service.
func New(registry discovery.Registry) *Gateway {
	return &Gateway{registry: registry, client: http.DefaultClient}
}

// Get returns a movie by id.
func (g *Gateway) Get(ctx context.Context, id string) (*model.Movie, error) {
	base, err := httputil.ServiceURL(ctx, "movie", g.registry)
	if err != nil {
		return nil, err
	}
	var m model.Movie
	if err := g.do(ctx, http.MethodGet, base+"/movies/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Search runs a paged movie search.
func (g *Gateway) Search(ctx context.Context, text string, page int64, sortField string, ascending bool) (*model.PagedResult, error) {
	base, err := httputil.ServiceURL(ctx, "movie", g.registry)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("query", text)
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("sortField", sortField)
	q.Set("ascending", fmt.Sprintf("%t", ascending))
	var res model.PagedResult
	if err := g.do(ctx, http.MethodGet, base+"/movies?"+q.Encode(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Like records a like for the user.
func (g *Gateway) Like(ctx context.Context, movieID, userID string) error {
	base, err := httputil.ServiceURL(ctx, "movie", g.registry)
	if err != nil {
		return err
	}
	return g.do(ctx, http.MethodPut, fmt.Sprintf("%s/movies/%s/likes/%s", base, url.PathEscape(movieID), url.PathEscape(userID)), nil, nil)
}

// Unlike removes the user's like.
func (g *Gateway) Unlike(ctx context.Context, movieID, userID string) error {
	base, err := httputil.ServiceURL(ctx, "movie", g.registry)
	if err != nil {
		return err
	}
	return g.do(ctx, http.MethodDelete, fmt.Sprintf("%s/movies/%s/likes/%s", base, url.PathEscape(movieID), url.PathEscape(userID)), nil, nil)
}

func (g *Gateway) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, &reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("movie service: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
