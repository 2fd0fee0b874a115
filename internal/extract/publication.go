package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"newsletter-analytics/internal/domain"
)

// PublicationInfo is what a publication home page says about itself.
type PublicationInfo struct {
	Name        string
	Description string
	Subscribers domain.Metric
}

// PublicationInfo reads the display name, a short description and the
// subscriber count from a publication home page. The name falls back to the
// identifier's name when the page has no title.
func (e *Extractor) PublicationInfo(page string, ref domain.PublicationRef) PublicationInfo {
	info := PublicationInfo{Name: ref.Name, Subscribers: domain.Unknown}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return info
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		info.Name = title
	}
	info.Description = describe(page, doc, ref.BaseURL)
	info.Subscribers = e.Extract(doc, domain.CategorySubscribers)

	return info
}

// describe prefers the readability excerpt and falls back to the
// description meta tags.
func describe(page string, doc *goquery.Document, baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil {
		parser := readability.NewParser()
		if article, err := parser.Parse(strings.NewReader(page), u); err == nil {
			if excerpt := strings.TrimSpace(article.Excerpt); excerpt != "" {
				return excerpt
			}
		}
	}

	for _, selector := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
	}

	return ""
}
