package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Pagination holds the page-size defaults every listing shares.
type Pagination struct {
	Page     int
	Limit    int
	MaxLimit int
}

// DefaultPagination is used when configuration does not override it.
var DefaultPagination = Pagination{Page: 1, Limit: 12, MaxLimit: 100}

// Window is a resolved page request.
type Window struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip for w. It saturates at
// math.MaxInt instead of wrapping.
func (w Window) Offset() int {
	if w.Page < 2 || w.Limit < 1 {
		return 0
	}
	if w.Page-1 > math.MaxInt/w.Limit {
		return math.MaxInt
	}
	return (w.Page - 1) * w.Limit
}

// ParsePositive parses s as a base-10 integer >= 1. It returns def and false
// when s is empty, not a number, or below 1.
func ParsePositive(s string, def int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def, false
	}
	return n, true
}

// PageFromParams returns the page parameter, falling back to def.
func PageFromParams(params url.Values, def int) int {
	n, _ := ParsePositive(params.Get(ParamPage), max(def, 1))
	return n
}

// LimitFromParams returns the limit parameter, falling back to def and capped
// at maxLimit when maxLimit > 0.
func LimitFromParams(params url.Values, def, maxLimit int) int {
	n, _ := ParsePositive(params.Get(ParamLimit), max(def, 1))
	if maxLimit > 0 && n > maxLimit {
		n = maxLimit
	}
	return n
}

// Resolve reads page and limit from params using p's defaults. Page is
// capped so that Offset stays representable.
func Resolve(params url.Values, p Pagination) Window {
	limit := LimitFromParams(params, p.Limit, p.MaxLimit)
	return Window{
		Page:  min(PageFromParams(params, p.Page), math.MaxInt/limit),
		Limit: limit,
	}
}

// NewPageParams returns a copy of prev with page and limit overwritten. All
// other parameters, including q and filters, are preserved.
func NewPageParams(page, limit int, prev url.Values) url.Values {
	out := cloneValues(prev)
	out.Set(ParamPage, strconv.Itoa(page))
	out.Set(ParamLimit, strconv.Itoa(limit))
	return out
}

// TotalPages returns the number of pages needed for total rows, never less than 1.
func TotalPages(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// Pager is the navigation state rendered under a listing.
type Pager struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	HasPrev    bool   `json:"-"`
	HasNext    bool   `json:"-"`
	SelfURL    string `json:"-"`
	PrevURL    string `json:"-"`
	NextURL    string `json:"-"`
}

// NewPager builds prev/next links for path from the current params.
func NewPager(path string, params url.Values, w Window, total int) Pager {
	p := Pager{
		Page:       w.Page,
		Limit:      w.Limit,
		Total:      total,
		TotalPages: TotalPages(total, w.Limit),
		SelfURL:    Href(path, NewPageParams(w.Page, w.Limit, params)),
	}
	if w.Page > 1 {
		p.HasPrev = true
		prev := min(w.Page-1, p.TotalPages)
		p.PrevURL = Href(path, NewPageParams(prev, w.Limit, params))
	}
	if w.Page < p.TotalPages {
		p.HasNext = true
		p.NextURL = Href(path, NewPageParams(w.Page+1, w.Limit, params))
	}
	return p
}

// Href joins path and the encoded params.
func Href(path string, params url.Values) string {
	qs := params.Encode()
	if qs == "" {
		return path
	}
	return path + "?" + qs
}
