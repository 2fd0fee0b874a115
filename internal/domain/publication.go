package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultHostSuffix is appended to bare publication names.
const DefaultHostSuffix = ".substack.com"

// PublicationRef identifies a publication to analyze. Name is the display
// slug; Key is unique per host and keys storage, locks and reports.
type PublicationRef struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
}

// FeedURL returns the syndication feed location.
func (r PublicationRef) FeedURL() string {
	return r.BaseURL + "/feed"
}

// Publication describes the analyzed publication. Key comes from
// PublicationRef; Name is the display title.
type Publication struct {
	Key             string    `json:"key"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	Description     string    `json:"description,omitempty"`
	SubscriberCount Metric    `json:"subscriber_count"`
	LastUpdated     time.Time `json:"last_updated"`
}

// ParsePublicationInput normalizes a user-supplied identifier.
//
//	"platformer"                           → https://platformer.substack.com (key "platformer")
//	"www.example.com"                      → https://www.example.com (key "example.com")
//	"https://platformer.substack.com/feed" → https://platformer.substack.com (key "platformer")
//
// The name is always the first label of the host.
func ParsePublicationInput(input string) (PublicationRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return PublicationRef{}, fmt.Errorf("%w: empty input", ErrInvalidPublication)
	}

	raw := input
	switch {
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
	case strings.Contains(input, ".") || strings.Contains(input, "/"):
		raw = "https://" + input
	default:
		if !isLabel(input) {
			return PublicationRef{}, fmt.Errorf("%w: %q", ErrInvalidPublication, input)
		}
		raw = "https://" + strings.ToLower(input) + DefaultHostSuffix
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return PublicationRef{}, fmt.Errorf("%w: %q", ErrInvalidPublication, input)
	}

	path := strings.TrimRight(u.Path, "/")
	path = strings.TrimSuffix(path, "/feed")
	path = strings.TrimRight(path, "/")

	host := strings.ToLower(u.Host)
	name, _, _ := strings.Cut(u.Hostname(), ".")
	if name == "" {
		return PublicationRef{}, fmt.Errorf("%w: %q", ErrInvalidPublication, input)
	}

	return PublicationRef{
		Key:     publicationKey(u.Hostname()),
		Name:    strings.ToLower(name),
		BaseURL: u.Scheme + "://" + host + path,
	}, nil
}

// publicationKey is the subdomain for hosted publications and the host
// without a leading "www." otherwise.
func publicationKey(hostname string) string {
	host := strings.TrimSuffix(strings.ToLower(hostname), ".")
	if sub, ok := strings.CutSuffix(host, DefaultHostSuffix); ok && sub != "" && !strings.Contains(sub, ".") {
		return sub
	}

	return strings.TrimPrefix(host, "www.")
}

func isLabel(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}

	return true
}
