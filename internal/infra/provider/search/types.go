package search

import (
	"encoding/json"
	"strings"

	"newsletter-analytics/internal/domain"
)

// Response is the publication directory search payload.
type Response struct {
	Publications []PublicationItem `json:"publications"`
	More         bool              `json:"more"`
}

// PublicationItem is one directory entry.
type PublicationItem struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Subdomain       string      `json:"subdomain"`
	URL             string      `json:"url"`
	CustomDomain    string      `json:"custom_domain"`
	SubscriberCount json.Number `json:"subscriber_count"`
}

// Matches reports whether the entry plausibly is the referenced publication:
// same subdomain, or the name appearing in the entry's name, URL or custom
// domain, or the base URL appearing in the entry's URL.
func (p PublicationItem) Matches(ref domain.PublicationRef) bool {
	name := strings.ToLower(ref.Name)
	if name == "" {
		return false
	}

	if strings.EqualFold(p.Subdomain, name) {
		return true
	}

	for _, field := range []string{p.Name, p.URL, p.CustomDomain} {
		if strings.Contains(strings.ToLower(field), name) {
			return true
		}
	}

	return ref.BaseURL != "" && strings.Contains(strings.ToLower(p.URL), strings.ToLower(ref.BaseURL))
}

// Subscribers returns the positive subscriber count, if any.
func (p PublicationItem) Subscribers() (int, bool) {
	if p.SubscriberCount == "" {
		return 0, false
	}

	n, err := p.SubscriberCount.Int64()
	if err != nil || n <= 0 {
		return 0, false
	}

	return int(n), true
}
