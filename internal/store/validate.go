package store

import (
	"errors"
	"net/mail"
	"strings"
)

const maxTicketsPerOrder = 10

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrStartsAtRequired = errors.New("start time is required")
	ErrInvalidStatus    = errors.New("status must be one of: draft, published")
	ErrInvalidCapacity  = errors.New("capacity must be zero or more")
	ErrInvalidPrice     = errors.New("price must be zero or more")
	ErrBuyerRequired    = errors.New("name and a valid email are required")
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 10")
)

// ValidateStatus checks that v is one of the allowed event statuses.
func ValidateStatus(v string) error {
	switch v {
	case StatusDraft, StatusPublished:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// ValidateEvent checks the fields an organizer submits. It does NOT check
// slug uniqueness; that is handled by the unique index on events.slug.
func ValidateEvent(in EventInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.StartsAt.IsZero() {
		return ErrStartsAtRequired
	}
	if in.Capacity < 0 {
		return ErrInvalidCapacity
	}
	if in.PriceCents < 0 {
		return ErrInvalidPrice
	}
	return ValidateStatus(in.Status)
}

// ValidateCheckout checks buyer details and ticket quantity.
func ValidateCheckout(name, email string, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return ErrBuyerRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrBuyerRequired
	}
	if quantity < 1 || quantity > maxTicketsPerOrder {
		return ErrInvalidQuantity
	}
	return nil
}
