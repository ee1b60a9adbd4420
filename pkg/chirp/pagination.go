package chirp

import (
	"context"
	"fmt"
	"strconv"
)

// Cursor constants for cursored collection endpoints.
const (
	// FirstCursor starts a traversal.
	FirstCursor = "-1"

	// LastCursor is returned by the final page.
	LastCursor = "0"
)

// CursorPage is one page of a cursored collection: the items found under
// the collection key plus the cursors linking to the neighboring pages.
type CursorPage struct {
	Items          []any
	NextCursor     string
	PreviousCursor string
	Raw            map[string]any
}

// CursorPager walks a cursored collection endpoint through any Requester,
// following next_cursor until the API reports the traversal is complete.
type CursorPager struct {
	requester Requester
	method    string
	path      string
	args      Args
	itemsKey  string
	cursor    string
	started   bool
	fetched   int
	maxPages  int
}

// NewCursorPager creates a pager for the collection at path whose items
// live under itemsKey (e.g. "users", "ids", "lists"). The args bag is
// reused for every page; the pager owns the cursor argument.
func NewCursorPager(requester Requester, path, itemsKey string, args Args) *CursorPager {
	return &CursorPager{
		requester: requester,
		method:    "GET",
		path:      path,
		args:      args.Clone(),
		itemsKey:  itemsKey,
		cursor:    FirstCursor,
		maxPages:  50,
	}
}

// WithMaxPages bounds a traversal; zero removes the bound.
func (p *CursorPager) WithMaxPages(maxPages int) *CursorPager {
	p.maxPages = maxPages

	return p
}

// HasNext reports whether another page is available.
func (p *CursorPager) HasNext() bool {
	if p.maxPages > 0 && p.fetched >= p.maxPages {
		return false
	}

	return !p.started || (p.cursor != LastCursor && p.cursor != "")
}

// NextPage fetches the next page.
func (p *CursorPager) NextPage(ctx context.Context) (*CursorPage, error) {
	if !p.HasNext() {
		return nil, ErrNoMoreItems
	}

	args := p.args.Clone()
	args["cursor"] = p.cursor

	result, _, err := p.requester.Request(ctx, p.method, p.path, args)
	if err != nil {
		return nil, err
	}

	body, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: cursored response is not an object", ErrRequestBuild)
	}

	page := &CursorPage{
		NextCursor:     cursorField(body, "next_cursor"),
		PreviousCursor: cursorField(body, "previous_cursor"),
		Raw:            body,
	}

	if items, ok := body[p.itemsKey].([]any); ok {
		page.Items = items
	}

	p.started = true
	p.fetched++
	p.cursor = page.NextCursor

	return page, nil
}

// All collects every remaining item, honoring the page bound.
func (p *CursorPager) All(ctx context.Context) ([]any, error) {
	var items []any

	for p.HasNext() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return items, err
		}

		items = append(items, page.Items...)
	}

	return items, nil
}

// cursorField reads a cursor, preferring the string form the API provides
// to sidestep float precision on large values.
func cursorField(body map[string]any, name string) string {
	if s, ok := body[name+"_str"].(string); ok {
		return s
	}

	switch v := body[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return LastCursor
	}
}
