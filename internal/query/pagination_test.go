package query_test

import (
	"math"
	"net/url"
	"testing"

	"github.com/joestump/joe-events/internal/query"
)

func TestPageFromParams(t *testing.T) {
	tests := []struct {
		raw  string
		def  int
		want int
	}{
		{"", 1, 1},
		{"3", 1, 3},
		{"abc", 1, 1},
		{"0", 1, 1},
		{"-2", 1, 1},
		{" 7 ", 1, 7},
		{"2.5", 1, 1},
		{"", 0, 1},
	}
	for _, tt := range tests {
		params := url.Values{}
		if tt.raw != "" {
			params.Set("page", tt.raw)
		}
		if got := query.PageFromParams(params, tt.def); got != tt.want {
			t.Errorf("PageFromParams(%q, %d) = %d, want %d", tt.raw, tt.def, got, tt.want)
		}
	}
}

func TestLimitFromParams(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 12},
		{"6", 6},
		{"nope", 12},
		{"0", 12},
		{"500", 100},
	}
	for _, tt := range tests {
		params := url.Values{"limit": {tt.raw}}
		if got := query.LimitFromParams(params, 12, 100); got != tt.want {
			t.Errorf("LimitFromParams(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParsePositive_ReportsFallback(t *testing.T) {
	if n, ok := query.ParsePositive("abc", 5); n != 5 || ok {
		t.Errorf("ParsePositive(abc) = (%d, %v), want (5, false)", n, ok)
	}
	if n, ok := query.ParsePositive("9", 5); n != 9 || !ok {
		t.Errorf("ParsePositive(9) = (%d, %v), want (9, true)", n, ok)
	}
}

func TestResolve(t *testing.T) {
	params := url.Values{"page": {"3"}, "limit": {"10"}}
	w := query.Resolve(params, query.DefaultPagination)
	if w.Page != 3 || w.Limit != 10 {
		t.Fatalf("Resolve = %+v, want page 3 limit 10", w)
	}
	if w.Offset() != 20 {
		t.Errorf("Offset = %d, want 20", w.Offset())
	}

	def := query.Resolve(url.Values{}, query.DefaultPagination)
	if def.Page != 1 || def.Limit != query.DefaultPagination.Limit || def.Offset() != 0 {
		t.Errorf("Resolve(empty) = %+v", def)
	}
}

func TestResolve_HugePageKeepsOffsetPositive(t *testing.T) {
	params := url.Values{"page": {"9223372036854775807"}, "limit": {"10"}}
	w := query.Resolve(params, query.DefaultPagination)
	if w.Page != math.MaxInt/10 {
		t.Errorf("Page = %d, want %d", w.Page, math.MaxInt/10)
	}
	if off := w.Offset(); off <= 0 || off != (w.Page-1)*10 {
		t.Errorf("Offset = %d, want positive %d", off, (w.Page-1)*10)
	}
}

func TestWindowOffset_Saturates(t *testing.T) {
	tests := []struct {
		w    query.Window
		want int
	}{
		{query.Window{Page: 1, Limit: 10}, 0},
		{query.Window{Page: 0, Limit: 10}, 0},
		{query.Window{Page: 4, Limit: 0}, 0},
		{query.Window{Page: math.MaxInt, Limit: 2}, math.MaxInt},
		{query.Window{Page: math.MaxInt/2 + 2, Limit: 2}, math.MaxInt},
	}
	for _, tt := range tests {
		if got := tt.w.Offset(); got != tt.want {
			t.Errorf("%+v.Offset() = %d, want %d", tt.w, got, tt.want)
		}
	}
}

func TestNewPageParams_PreservesOtherParams(t *testing.T) {
	params, err := url.ParseQuery("q=music&filters=%7B%22categories%22%3A%5B%22Tech%22%5D%7D&page=1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	next := query.NewPageParams(2, 10, params)

	if next.Get("q") != "music" {
		t.Errorf("q = %q, want music", next.Get("q"))
	}
	if next.Get("filters") != `{"categories":["Tech"]}` {
		t.Errorf("filters = %q", next.Get("filters"))
	}
	if next.Get("page") != "2" || next.Get("limit") != "10" {
		t.Errorf("page/limit = %q/%q, want 2/10", next.Get("page"), next.Get("limit"))
	}
	if params.Get("page") != "1" {
		t.Error("input params mutated")
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, limit, want int }{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 6, 5},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := query.TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestNewPager(t *testing.T) {
	params := url.Values{"q": {"music"}}

	p := query.NewPager("/events", params, query.Window{Page: 2, Limit: 10}, 25)

	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	if !p.HasPrev || p.PrevURL != "/events?limit=10&page=1&q=music" {
		t.Errorf("prev = %v %q", p.HasPrev, p.PrevURL)
	}
	if !p.HasNext || p.NextURL != "/events?limit=10&page=3&q=music" {
		t.Errorf("next = %v %q", p.HasNext, p.NextURL)
	}
	if p.SelfURL != "/events?limit=10&page=2&q=music" {
		t.Errorf("self = %q", p.SelfURL)
	}
}

func TestNewPager_FirstAndLast(t *testing.T) {
	p := query.NewPager("/events", url.Values{}, query.Window{Page: 1, Limit: 10}, 5)
	if p.HasPrev || p.HasNext {
		t.Errorf("single page pager = %+v, want no prev/next", p)
	}
}

func TestHref(t *testing.T) {
	if got := query.Href("/events", url.Values{}); got != "/events" {
		t.Errorf("Href(empty) = %q", got)
	}
}
