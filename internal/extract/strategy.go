package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsletter-analytics/internal/domain"
)

// Outcome is the result kind of a single strategy probe.
type Outcome int

const (
	NotFound Outcome = iota
	Found
	Failed
)

// Result is what a strategy reports for one category.
type Result struct {
	Outcome Outcome
	Value   int
	Err     error
}

func found(n int) Result { return Result{Outcome: Found, Value: n} }
func notFound() Result { return Result{Outcome: NotFound} }
func failed(err error) Result { return Result{Outcome: Failed, Err: err} }

// Strategy is one step of the extraction cascade. Implementations must
// validate every candidate against the category ceiling before reporting it.
type Strategy interface {
	Name() string
	Probe(doc *goquery.Document, c domain.MetricCategory) Result
}

// DefaultStrategies returns the cascade in precedence order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		AttributeProbe{},
		ClassHeuristic{},
		ScriptScan{},
		MetaProbe{},
		StructuredDataProbe{},
		FreeText{},
	}
}

// AttributeProbe reads data attributes named for the category, then counts
// rendered on elements labeled for it. Only interactive elements are
// considered unless the vocabulary widens the selection.
type AttributeProbe struct{}

func (AttributeProbe) Name() string { return "attribute" }

func (AttributeProbe) Probe(doc *goquery.Document, c domain.MetricCategory) Result {
	vocab, ok := vocabularyFor(c)
	if !ok {
		return notFound()
	}

	for _, attr := range vocab.attributes {
		var value int
		hit := false
		doc.Find("[" + attr + "]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			raw, _ := s.Attr(attr)
			if n, ok := parseCount(raw); ok && acceptable(c, n) {
				value, hit = n, true
				return false
			}

			return true
		})
		if hit {
			return found(value)
		}
	}

	var value int
	hit := false
	doc.Find(vocab.labeled).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label, ok := labelFor(s, vocab.stems)
		if !ok {
			return true
		}

		n, ok := parseCount(renderedText(s))
		if !ok {
			n, ok = parseCount(label)
		}
		if ok && acceptable(c, n) {
			value, hit = n, true
			return false
		}

		return true
	})
	if hit {
		return found(value)
	}

	return notFound()
}

// labelFor returns the first identifying attribute that names one of stems.
func labelFor(s *goquery.Selection, stems []string) (string, bool) {
	for _, attr := range []string{"data-testid", "aria-label", "title"} {
		v, ok := s.Attr(attr)
		if !ok {
			continue
		}
		lower := strings.ToLower(v)
		for _, stem := range stems {
			if strings.Contains(lower, stem) {
				return v, true
			}
		}
	}

	return "", false
}

// ClassHeuristic looks for elements whose class names carry a category
// variant and reads the first number of their text.
type ClassHeuristic struct{}

func (ClassHeuristic) Name() string { return "class" }

func (ClassHeuristic) Probe(doc *goquery.Document, c domain.MetricCategory) Result {
	vocab, ok := vocabularyFor(c)
	if !ok {
		return notFound()
	}

	variants := make([]string, len(vocab.classes))
	for i, v := range vocab.classes {
		variants[i] = strings.ToLower(v)
	}

	var value int
	hit := false
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !classMatches(class, variants) {
			return true
		}

		if n, ok := parseCount(renderedText(s)); ok && acceptable(c, n) {
			value, hit = n, true
			return false
		}

		return true
	})
	if hit {
		return found(value)
	}

	return notFound()
}

func classMatches(class string, variants []string) bool {
	for _, token := range strings.Fields(strings.ToLower(class)) {
		for _, v := range variants {
			if strings.Contains(token, v) {
				return true
			}
		}
	}

	return false
}

// ScriptScan searches inline script payloads for key/value assignments.
// JSON-LD blocks are left to StructuredDataProbe.
type ScriptScan struct{}

func (ScriptScan) Name() string { return "script" }

func (ScriptScan) Probe(doc *goquery.Document, c domain.MetricCategory) Result {
	vocab, ok := vocabularyFor(c)
	if !ok {
		return notFound()
	}

	var payloads []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		if t, _ := s.Attr("type"); strings.EqualFold(strings.TrimSpace(t), "application/ld+json") {
			return
		}
		if text := s.Text(); strings.TrimSpace(text) != "" {
			payloads = append(payloads, text)
		}
	})

	for _, pattern := range vocab.scriptKeys {
		for _, payload := range payloads {
			for _, m := range pattern.FindAllStringSubmatch(payload, -1) {
				if n, ok := atoi(m[1]); ok && acceptable(c, n) {
					return found(n)
				}
			}
		}
	}

	return notFound()
}

// MetaProbe reads meta tags whose name or property mentions the category.
type MetaProbe struct{}

func (MetaProbe) Name() string { return "meta" }

func (MetaProbe) Probe(doc *goquery.Document, c domain.MetricCategory) Result {
	vocab, ok := vocabularyFor(c)
	if !ok {
		return notFound()
	}

	var value int
	hit := false
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		key := strings.ToLower(name + " " + property)

		matches := false
		for _, stem := range vocab.stems {
			if strings.Contains(key, stem) {
				matches = true
				break
			}
		}
		if !matches {
			return true
		}

		content, _ := s.Attr("content")
		if n, ok := parseCount(content); ok && acceptable(c, n) {
			value, hit = n, true
			return false
		}

		return true
	})
	if hit {
		return found(value)
	}

	return notFound()
}

// StructuredDataProbe decodes JSON-LD blocks and looks up category keys and
// schema.org interaction counters.
type StructuredDataProbe struct{}

func (StructuredDataProbe) Name() string { return "structured-data" }

func (StructuredDataProbe) Probe(doc *goquery.Document, c domain.MetricCategory) Result {
	vocab, ok := vocabularyFor(c)
	if !ok {
		return notFound()
	}

	var errs []error
	result := notFound()
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		data, err := decodeJSON(s.Text())
		if err != nil {
			errs = append(errs, fmt.Errorf("json-ld block %d: %w", i, err))
			return true
		}

		if n, ok := searchStructured(data, vocab, c); ok {
			result = found(n)
			return false
		}

		return true
	})

	if result.Outcome == NotFound && len(errs) > 0 {
		return failed(errors.Join(errs...))
	}

	return result
}

func decodeJSON(payload string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}

	return v, nil
}

// searchStructured walks a decoded JSON-LD value depth first. Object keys are
// visited in sorted order so the result does not depend on map iteration.
func searchStructured(v any, vocab vocabulary, c domain.MetricCategory) (int, bool) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if n, ok := searchStructured(item, vocab, c); ok {
				return n, true
			}
		}
	case map[string]any:
		for _, key := range vocab.jsonKeys {
			if raw, ok := node[key]; ok {
				if n, ok := jsonCount(raw); ok && acceptable(c, n) {
					return n, true
				}
			}
		}

		if n, ok := interactionCount(node["interactionStatistic"], vocab, c); ok {
			return n, true
		}

		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if n, ok := searchStructured(node[k], vocab, c); ok {
				return n, true
			}
		}
	}

	return 0, false
}

// interactionCount reads schema.org InteractionCounter entries such as
// {"interactionType": "https://schema.org/LikeAction", "userInteractionCount": 12}.
func interactionCount(v any, vocab vocabulary, c domain.MetricCategory) (int, bool) {
	if len(vocab.interactionTypes) == 0 || v == nil {
		return 0, false
	}

	counters, ok := v.([]any)
	if !ok {
		counters = []any{v}
	}

	for _, item := range counters {
		counter, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if !interactionTypeMatches(counter["interactionType"], vocab.interactionTypes) {
			continue
		}
		if n, ok := jsonCount(counter["userInteractionCount"]); ok && acceptable(c, n) {
			return n, true
		}
	}

	return 0, false
}

func interactionTypeMatches(v any, types []string) bool {
	var name string
	switch t := v.(type) {
	case string:
		name = t
	case map[string]any:
		name, _ = t["@type"].(string)
	}

	for _, want := range types {
		if strings.HasSuffix(name, want) {
			return true
		}
	}

	return false
}

func jsonCount(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
			return 0, false
		}

		return int(f), true
	case string:
		return atoi(strings.TrimSpace(n))
	default:
		return 0, false
	}
}

// FreeText runs the numeric signal matcher over the rendered page text.
type FreeText struct{}

func (FreeText) Name() string { return "text" }

func (FreeText) Probe(doc *goquery.Document, c domain.MetricCategory) Result {
	if v, ok := Match(documentText(doc), c).Value(); ok {
		return found(v)
	}

	return notFound()
}
