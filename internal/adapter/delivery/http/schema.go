package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

const shortCodeRules = "alphanum,min=3,max=20"

type createShortURLRequest struct {
	URL       string `json:"url" validate:"required,http_url"`
	Validity  *int   `json:"validity" validate:"omitempty,min=1,max=525600"` // minutes
	ShortCode string `json:"shortcode" validate:"omitempty,alphanum,min=3,max=20"`
}

type shortURLResponse struct {
	ShortLink   string    `json:"short_link"`
	ShortCode   string    `json:"shortcode"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
	Expiry      time.Time `json:"expiry"`
}

func toShortURLResponse(r *http.Request, url *entity.URL) shortURLResponse {
	return shortURLResponse{
		ShortLink:   shortLink(r, url.ShortCode),
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		CreatedAt:   url.CreatedAt,
		Expiry:      url.ExpiresAt,
	}
}

// shortLink builds the public redirect link from the request the URL was created with.
func shortLink(r *http.Request, shortCode string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return fmt.Sprintf("%s://%s/%s", scheme, r.Host, shortCode)
}

type locationResponse struct {
	Country  string `json:"country"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

type clickResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Referrer  string            `json:"referrer"`
	Location  *locationResponse `json:"location"`
	UserAgent string            `json:"user_agent,omitempty"`
}

type statsResponse struct {
	ShortCode   string          `json:"shortcode"`
	OriginalURL string          `json:"original_url"`
	CreatedAt   time.Time       `json:"created_at"`
	Expiry      time.Time       `json:"expiry"`
	IsActive    bool            `json:"is_active"`
	TotalClicks int64           `json:"total_clicks"`
	Clicks      []clickResponse `json:"clicks"`
}

func toStatsResponse(stats *entity.URLStats) statsResponse {
	clicks := make([]clickResponse, 0, len(stats.Clicks))
	for _, c := range stats.Clicks {
		click := clickResponse{
			Timestamp: c.Timestamp,
			Referrer:  c.Referrer,
			UserAgent: c.UserAgent,
		}

		if c.Location != nil {
			click.Location = &locationResponse{
				Country:  c.Location.Country,
				Region:   c.Location.Region,
				City:     c.Location.City,
				Timezone: c.Location.Timezone,
			}
		}

		clicks = append(clicks, click)
	}

	return statsResponse{
		ShortCode:   stats.ShortCode,
		OriginalURL: stats.OriginalURL,
		CreatedAt:   stats.CreatedAt,
		Expiry:      stats.ExpiresAt,
		IsActive:    stats.IsActive,
		TotalClicks: stats.TotalClicks,
		Clicks:      clicks,
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}
