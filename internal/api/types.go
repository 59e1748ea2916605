package api

import (
	"time"

	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/store"
)

// CategoryResponse is a category attached to an event.
type CategoryResponse struct {
	Name string `json:"name" example:"Live Music"`
	Slug string `json:"slug" example:"live-music"`
}

// EventResponse is the JSON representation of a published event.
type EventResponse struct {
	ID          string             `json:"id"`
	Slug        string             `json:"slug" example:"jazz-night"`
	Title       string             `json:"title" example:"Jazz Night"`
	Description string             `json:"description"`
	Venue       string             `json:"venue"`
	StartsAt    time.Time          `json:"starts_at"`
	PriceCents  int                `json:"price_cents" example:"1500"`
	Capacity    int                `json:"capacity" example:"120"`
	Remaining   int                `json:"remaining" example:"37"`
	Categories  []CategoryResponse `json:"categories"`
}

// PageMeta describes the returned page of a listing.
type PageMeta struct {
	Page       int `json:"page" example:"2"`
	Limit      int `json:"limit" example:"12"`
	Total      int `json:"total" example:"40"`
	TotalPages int `json:"total_pages" example:"4"`
}

// PageLinks are ready-to-follow URLs for the current, previous and next
// pages. They keep the request's q and filters.
type PageLinks struct {
	Self string  `json:"self" example:"/api/v1/events?limit=12&page=2"`
	Prev *string `json:"prev"`
	Next *string `json:"next"`
}

// EventListResponse is the paginated response for GET /events.
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Meta   PageMeta        `json:"meta"`
	Links  PageLinks       `json:"links"`
}

// CategoryCountResponse is a category facet with its published event count.
type CategoryCountResponse struct {
	Name  string `json:"name" example:"Live Music"`
	Slug  string `json:"slug" example:"live-music"`
	Count int    `json:"count" example:"7"`
}

// CategoryListResponse is the response for GET /categories.
type CategoryListResponse struct {
	Categories []CategoryCountResponse `json:"categories"`
}

func toEventResponse(s store.EventSummary) EventResponse {
	resp := EventResponse{
		ID:          s.ID,
		Slug:        s.Slug,
		Title:       s.Title,
		Description: s.Description,
		Venue:       s.Venue,
		StartsAt:    s.StartsAt.UTC(),
		PriceCents:  s.PriceCents,
		Capacity:    s.Capacity,
		Remaining:   s.Remaining(),
		Categories:  make([]CategoryResponse, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		resp.Categories = append(resp.Categories, CategoryResponse{Name: c.Name, Slug: c.Slug})
	}
	return resp
}

func pageMeta(p query.Pager) PageMeta {
	return PageMeta{Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
}

func pageLinks(p query.Pager) PageLinks {
	l := PageLinks{Self: p.SelfURL}
	if p.HasPrev {
		prev := p.PrevURL
		l.Prev = &prev
	}
	if p.HasNext {
		next := p.NextURL
		l.Next = &next
	}
	return l
}
