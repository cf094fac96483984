// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL, the click
// records collected when it is resolved, and the error kinds shared by the
// registry, the click ledger and the lifecycle use case.
package entity

import (
	"errors"
	"time"
)

const (
	// MinValidityMinutes is the shortest validity window a URL can be created with.
	MinValidityMinutes = 1
	// MaxValidityMinutes is the longest validity window a URL can be created with (one year).
	MaxValidityMinutes = 525600
	// DefaultValidityMinutes is used when the caller does not provide a validity window.
	DefaultValidityMinutes = 30

	// DirectReferrer is recorded when a click arrives without a Referer header.
	DirectReferrer = "Direct"
)

var (
	// ErrInvalidURL is returned when the original URL is not an absolute http or https URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidValidity is returned when the validity window is outside the allowed bounds.
	ErrInvalidValidity = errors.New("invalid validity")
	// ErrInvalidShortCodeFormat is returned when a custom short code is not 3-20 alphanumeric characters.
	ErrInvalidShortCodeFormat = errors.New("invalid short code format")
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when a URL with the specified short code is unknown or expired.
	ErrURLNotFound = errors.New("url not found")
	// ErrMaxRetriesExceeded is returned when no free short code could be generated.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	// ErrInvariantViolation is returned when the registry and the click ledger disagree.
	// It always indicates a bug and must never be reported to clients as a validation error.
	ErrInvariantViolation = errors.New("internal invariant violation")
)

// URL represents a shortened URL.
type URL struct {
	ShortCode   string    // ShortCode is the code used to shorten the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
	ExpiresAt   time.Time // ExpiresAt is the timestamp from which the short code no longer resolves.
}

// IsActiveAt reports whether the URL still resolves at the given moment.
// Activity is always derived from ExpiresAt and never stored.
func (u *URL) IsActiveAt(now time.Time) bool {
	return now.Before(u.ExpiresAt)
}

// Location is the approximate origin of a click, as reported by a geo-IP lookup.
type Location struct {
	Country  string
	Region   string
	City     string
	Timezone string
}

// ClickContext carries the request metadata a click record is built from.
type ClickContext struct {
	Referrer   string
	UserAgent  string
	RemoteAddr string
}

// Click is one observed redirect of a short code.
type Click struct {
	Timestamp time.Time // Timestamp is the moment the short code was resolved.
	Referrer  string    // Referrer is the Referer header, or DirectReferrer when absent.
	Location  *Location // Location is nil when the client address could not be located.
	UserAgent string    // UserAgent may be empty.
}

// ClickLedgerEntry aggregates the clicks recorded for one short code.
type ClickLedgerEntry struct {
	TotalClicks int64   // TotalClicks is the number of recorded clicks; it never decreases.
	Clicks      []Click // Clicks holds every click in arrival order.
}

// URLStats is the joined view of a URL and its click ledger entry.
type URLStats struct {
	URL
	ClickLedgerEntry
	IsActive bool // IsActive is computed at read time.
}
