package etsy

import (
	"context"
	"strconv"
)

// Page is one raw page of a paginated resource: the provider's total count
// plus the results it returned for this offset.
type Page struct {
	Count   int
	Results []Result
	Raw     Result
}

// Pager produces a lazy, finite, single-pass sequence of pages. The first
// fetch is unparameterized; each subsequent fetch passes an offset equal to
// the running sum of result lengths seen so far. An offset is never
// refetched, and the sequence terminates when the running sum reaches the
// provider's count or when the provider returns an empty results list
// before that. The empty-page guard is explicit so a provider that
// under-delivers can never loop the sync forever.
type Pager struct {
	client  *Client
	path    string
	query   map[string]string
	fetched int
	started bool
	done    bool
}

// Pages returns a pager over a paginated resource path. The sequence is not
// restartable; create a new pager to read again.
func (c *Client) Pages(path string, query map[string]string) *Pager {
	return &Pager{client: c, path: path, query: query}
}

// Next fetches the next page. It returns ok=false once the sequence is
// exhausted. A fetch error ends the sequence; pages already consumed stay
// consumed.
func (p *Pager) Next(ctx context.Context) (*Page, bool, error) {
	if p.done {
		return nil, false, nil
	}

	query := make(map[string]string, len(p.query)+1)
	for k, v := range p.query {
		query[k] = v
	}
	if p.started {
		query["offset"] = strconv.Itoa(p.fetched)
	}

	result, err := p.client.Get(ctx, p.path, query)
	if err != nil {
		p.done = true
		return nil, false, err
	}

	page := pageFromResult(result)
	p.started = true
	p.fetched += len(page.Results)
	if len(page.Results) == 0 || p.fetched >= page.Count {
		p.done = true
	}
	return page, true, nil
}

// pageFromResult pulls the count/results shape out of a raw response body.
func pageFromResult(result Result) *Page {
	page := &Page{Raw: result}

	if n, ok := result["count"].(float64); ok {
		page.Count = int(n)
	}
	if items, ok := result["results"].([]any); ok {
		page.Results = make([]Result, 0, len(items))
		for _, item := range items {
			if entity, ok := item.(map[string]any); ok {
				page.Results = append(page.Results, entity)
			}
		}
	}
	return page
}
