// Package extract pulls engagement counts out of rendered publication pages.
//
// Extraction is heuristic. An ordered cascade of strategies probes a parsed
// document from the most structured evidence (data attributes) down to the
// least structured (free text), and the first plausible number wins.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"newsletter-analytics/internal/domain"
)

// numberExpr matches an integer with optional thousands separators.
const numberExpr = `\d{1,3}(?:,\d{3})+|\d+`

var numberPattern = regexp.MustCompile(numberExpr)

// vocabulary is the set of names under which a category shows up in markup.
type vocabulary struct {
	// stems appear in data-testid, aria-label and meta names.
	stems []string
	// labeled selects the elements whose labels are matched against stems.
	// Empty means interactive elements only.
	labeled string
	// textPatterns are tried in order by the free-text matcher.
	textPatterns []*regexp.Regexp
	attributes   []string
	classes      []string
	scriptKeys   []*regexp.Regexp
	jsonKeys     []string
	// interactionTypes are schema.org action types counted by InteractionCounter.
	interactionTypes []string
}

var vocabularies = map[domain.MetricCategory]vocabulary{
	domain.CategoryLikes: {
		stems:            []string{"like", "heart", "reaction"},
		textPatterns:     countPatterns(`likes?`, `hearts?`, `favou?rites?`),
		attributes:       []string{"data-like-count", "data-likes", "data-likes-count", "data-reaction-count"},
		classes:          []string{"like-count", "like_count", "likeCount", "likes", "like-button", "reaction-count"},
		scriptKeys:       scriptPatterns("reaction_count", "reactionCount", "like_count", "likeCount", "likes"),
		jsonKeys:         []string{"likeCount", "like_count", "likes", "reactionCount", "reaction_count"},
		interactionTypes: []string{"LikeAction"},
	},
	domain.CategoryComments: {
		stems:            []string{"comment", "repl"},
		textPatterns:     countPatterns(`comments?`, `(?:replies|reply)`),
		attributes:       []string{"data-comment-count", "data-comments", "data-comments-count"},
		classes:          []string{"comment-count", "comment_count", "commentCount", "comments", "comment-button"},
		scriptKeys:       scriptPatterns("comment_count", "commentCount", "comments_count", "comments"),
		jsonKeys:         []string{"commentCount", "comment_count", "comments"},
		interactionTypes: []string{"CommentAction"},
	},
	domain.CategoryShares: {
		stems:            []string{"share", "retweet"},
		textPatterns:     countPatterns(`shares?`, `retweets?`),
		attributes:       []string{"data-share-count", "data-shares", "data-shares-count"},
		classes:          []string{"share-count", "share_count", "shareCount", "shares", "share-button"},
		scriptKeys:       scriptPatterns("share_count", "shareCount", "shares"),
		jsonKeys:         []string{"shareCount", "share_count", "shares"},
		interactionTypes: []string{"ShareAction"},
	},
	domain.CategoryRestacks: {
		stems:        []string{"restack", "repost"},
		textPatterns: countPatterns(`restacks?`, `reposts?`, `re-shares?`),
		attributes:   []string{"data-restack-count", "data-restacks", "data-restacks-count", "data-repost-count"},
		classes:      []string{"restack-count", "restack_count", "restackCount", "restacks", "restack-button", "repost"},
		scriptKeys:   scriptPatterns("restacks", "restack_count", "restackCount", "repost_count"),
		jsonKeys:     []string{"restacks", "restackCount", "restack_count"},
	},
	domain.CategorySubscribers: {
		stems:   []string{"subscriber", "reader", "member"},
		labeled: interactiveSelector + ", [data-testid]",
		textPatterns: countPatterns(
			`subscribers?`, `readers?`, `members?`, `people\s+subscribed`, `subscribed`,
		),
		attributes:       []string{"data-subscriber-count", "data-subscribers", "data-subscribers-count"},
		classes: []string{
			"subscriber-count", "subscriber_count", "subscriberCount", "subscribers",
			"reader-count", "readerCount", "readers", "member-count", "memberCount", "members",
		},
		scriptKeys: scriptPatterns(
			"subscriberCount", "subscriber_count", "subscribers", "total_subscribers", "memberCount", "readerCount",
		),
		jsonKeys:         []string{"subscriberCount", "subscribers", "total_subscribers", "memberCount", "readers", "subscriber_count"},
		interactionTypes: []string{"SubscribeAction"},
	},
}

const interactiveSelector = "button, a, [role=button]"

func vocabularyFor(c domain.MetricCategory) (vocabulary, bool) {
	v, ok := vocabularies[c]
	if ok && v.labeled == "" {
		v.labeled = interactiveSelector
	}

	return v, ok
}

// countPatterns builds "<N> word" patterns, e.g. "12 likes" or "1,024 readers".
func countPatterns(words ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.MustCompile(fmt.Sprintf(`(?i)\b(%s)\s*%s\b`, numberExpr, w)))
	}

	return patterns
}

// scriptPatterns builds `"key": N`, `key: N` and `key = N` patterns.
func scriptPatterns(keys ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keys))
	for _, k := range keys {
		expr := fmt.Sprintf(`(?i)["']?\b%s\b["']?\s*[:=]\s*["']?(\d+)`, regexp.QuoteMeta(k))
		patterns = append(patterns, regexp.MustCompile(expr))
	}

	return patterns
}

// parseCount reads the first integer in s. Thousands separators are allowed.
func parseCount(s string) (int, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}

	return atoi(m)
}

func atoi(s string) (int, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || len(s) > 12 {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return n, true
}

// acceptable validates a structurally extracted count. Zero is a legitimate
// rendered count for post signals but never for subscribers.
func acceptable(c domain.MetricCategory, n int) bool {
	if !c.Plausible(n) {
		return false
	}
	if c == domain.CategorySubscribers && n == 0 {
		return false
	}

	return true
}
