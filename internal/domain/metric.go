// Package domain contains the core entities and pure analytics logic.
// This package has no external dependencies (only stdlib).
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MetricCategory names one kind of engagement signal.
type MetricCategory string

const (
	CategoryLikes       MetricCategory = "likes"
	CategoryComments    MetricCategory = "comments"
	CategoryShares      MetricCategory = "shares"
	CategoryRestacks    MetricCategory = "restacks"
	CategorySubscribers MetricCategory = "subscribers"
)

// Plausibility ceilings. A value above the ceiling is treated as a false
// positive (a view count, a year, an ID) rather than as an engagement signal.
const (
	LikesCeiling       = 1000
	CommentsCeiling    = 100
	SharesCeiling      = 1000
	RestacksCeiling    = 1000
	SubscribersCeiling = 999_999
)

// PostCategories returns the per-post categories in report order.
func PostCategories() []MetricCategory {
	return []MetricCategory{CategoryLikes, CategoryComments, CategoryShares, CategoryRestacks}
}

// Ceiling returns the maximum plausible value for the category.
func (c MetricCategory) Ceiling() int {
	switch c {
	case CategoryLikes:
		return LikesCeiling
	case CategoryComments:
		return CommentsCeiling
	case CategoryShares:
		return SharesCeiling
	case CategoryRestacks:
		return RestacksCeiling
	case CategorySubscribers:
		return SubscribersCeiling
	default:
		return 0
	}
}

// Plausible reports whether n is within [0, ceiling].
func (c MetricCategory) Plausible(n int) bool {
	return n >= 0 && n <= c.Ceiling()
}

// IsValid returns true for known categories.
func (c MetricCategory) IsValid() bool {
	return c.Ceiling() > 0
}

// Metric is an extracted count that is either known or unknown.
// The zero value is Unknown.
type Metric struct {
	value int
	known bool
}

// Unknown is the metric for a signal that could not be found.
var Unknown = Metric{}

// Known returns a found metric. Negative counts are not representable and
// yield Unknown.
func Known(n int) Metric {
	if n < 0 {
		return Unknown
	}

	return Metric{value: n, known: true}
}

// FromPointer converts a nullable count (as stored) into a Metric.
func FromPointer(p *int) Metric {
	if p == nil {
		return Unknown
	}

	return Known(*p)
}

// Value returns the count and whether it is known.
func (m Metric) Value() (int, bool) {
	return m.value, m.known
}

// IsKnown returns true when the signal was found.
func (m Metric) IsKnown() bool {
	return m.known
}

// OrZero returns the count, or 0 when unknown.
func (m Metric) OrZero() int {
	if !m.known {
		return 0
	}

	return m.value
}

// Pointer returns the count as a nullable value.
func (m Metric) Pointer() *int {
	if !m.known {
		return nil
	}
	v := m.value

	return &v
}

// String renders unknown metrics as "-".
func (m Metric) String() string {
	if !m.known {
		return "-"
	}

	return strconv.Itoa(m.value)
}

// MarshalJSON encodes unknown as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.known {
		return []byte("null"), nil
	}

	return []byte(strconv.Itoa(m.value)), nil
}

// UnmarshalJSON accepts a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Unknown
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = Known(n)

	return nil
}

// MarshalYAML encodes unknown as null.
func (m Metric) MarshalYAML() (any, error) {
	if !m.known {
		return nil, nil
	}

	return m.value, nil
}
