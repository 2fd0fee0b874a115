package domain

import (
	"errors"
	"testing"
)

func TestParsePublicationInput(t *testing.T) {
	tests := []struct {
		input   string
		key     string
		name    string
		baseURL string
	}{
		{"platformer", "platformer", "platformer", "https://platformer.substack.com"},
		{"  Platformer ", "platformer", "platformer", "https://platformer.substack.com"},
		{"https://platformer.substack.com", "platformer", "platformer", "https://platformer.substack.com"},
		{"https://platformer.substack.com/", "platformer", "platformer", "https://platformer.substack.com"},
		{"https://platformer.substack.com/feed", "platformer", "platformer", "https://platformer.substack.com"},
		{"https://platformer.substack.com/feed/", "platformer", "platformer", "https://platformer.substack.com"},
		{"platformer.substack.com", "platformer", "platformer", "https://platformer.substack.com"},
		{"http://newsletter.example.org", "newsletter.example.org", "newsletter", "http://newsletter.example.org"},
		{"www.lennysnewsletter.com/feed", "lennysnewsletter.com", "www", "https://www.lennysnewsletter.com"},
		{"https://example.com", "example.com", "example", "https://example.com"},
		{"http://127.0.0.1:8090", "127.0.0.1", "127", "http://127.0.0.1:8090"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := ParsePublicationInput(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.Key != tt.key {
				t.Errorf("key = %q, want %q", ref.Key, tt.key)
			}
			if ref.Name != tt.name {
				t.Errorf("name = %q, want %q", ref.Name, tt.name)
			}
			if ref.BaseURL != tt.baseURL {
				t.Errorf("base URL = %q, want %q", ref.BaseURL, tt.baseURL)
			}
			if ref.FeedURL() != tt.baseURL+"/feed" {
				t.Errorf("feed URL = %q", ref.FeedURL())
			}
		})
	}
}

func TestParsePublicationInput_KeysAreDistinct(t *testing.T) {
	inputs := []string{"www.foo.com", "www.bar.com", "https://example.com", "example"}
	seen := make(map[string]string, len(inputs))
	for _, input := range inputs {
		ref, err := ParsePublicationInput(input)
		if err != nil {
			t.Fatalf("ParsePublicationInput(%q): %v", input, err)
		}
		if other, ok := seen[ref.Key]; ok {
			t.Errorf("%q and %q share key %q", other, input, ref.Key)
		}
		seen[ref.Key] = input
	}

	www, _ := ParsePublicationInput("www.foo.com")
	bare, _ := ParsePublicationInput("foo.com")
	if www.Key != bare.Key {
		t.Errorf("www.foo.com key %q, foo.com key %q", www.Key, bare.Key)
	}
}

func TestParsePublicationInput_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a name", "https://"} {
		_, err := ParsePublicationInput(input)
		if !errors.Is(err, ErrInvalidPublication) {
			t.Errorf("ParsePublicationInput(%q) error = %v, want ErrInvalidPublication", input, err)
		}
	}
}
