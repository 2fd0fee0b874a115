package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words    int
		expected int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{150, 1},
		{199, 1},
		{200, 1},
		{399, 1},
		{400, 2},
		{450, 2},
		{1000, 5},
	}

	for _, tt := range tests {
		if got := ReadingTime(tt.words); got != tt.expected {
			t.Errorf("ReadingTime(%d) = %d, want %d", tt.words, got, tt.expected)
		}
	}
}

func TestNewPostMetrics_TotalEngagement(t *testing.T) {
	post := NewPost("Hello", "https://x.substack.com/p/hello", "", "", "")

	m := NewPostMetrics(post, Known(10), Unknown, Known(3), Known(0), 450)

	// 10 + 0 (unknown) + 3 + 0
	if m.TotalEngagement != 13 {
		t.Errorf("expected total engagement 13, got %d", m.TotalEngagement)
	}
	if m.ReadingTimeMinutes != 2 {
		t.Errorf("expected reading time 2, got %d", m.ReadingTimeMinutes)
	}
	if m.Comments.IsKnown() {
		t.Error("expected comments to stay unknown")
	}
	if !m.Restacks.IsKnown() {
		t.Error("expected known zero restacks to stay known")
	}
}

func TestDegradedPostMetrics(t *testing.T) {
	post := NewPost("Broken", "https://x.substack.com/p/broken", "", "", "")

	m := DegradedPostMetrics(post)

	for _, c := range PostCategories() {
		if m.Metric(c).IsKnown() {
			t.Errorf("expected %s to be unknown", c)
		}
	}
	if m.WordCount != 0 || m.ReadingTimeMinutes != 0 || m.TotalEngagement != 0 {
		t.Errorf("expected zero counts, got %+v", m)
	}
	if m.Link != post.Link {
		t.Errorf("expected link %q, got %q", post.Link, m.Link)
	}
}

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *time.Time
	}{
		{"rfc1123 gmt", "Mon, 15 Jan 2024 10:00:00 GMT", ptrTime(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))},
		{"rfc1123z", "Mon, 15 Jan 2024 10:00:00 +0000", ptrTime(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))},
		{"empty", "", nil},
		{"iso date", "2024-01-15", nil},
		{"garbage", "yesterday", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePubDate(tt.raw)
			switch {
			case tt.expected == nil && got != nil:
				t.Errorf("expected nil, got %v", got)
			case tt.expected != nil && got == nil:
				t.Errorf("expected %v, got nil", tt.expected)
			case tt.expected != nil && !got.Equal(*tt.expected):
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMetric(t *testing.T) {
	if Unknown.IsKnown() {
		t.Error("zero metric must be unknown")
	}
	if Known(-1).IsKnown() {
		t.Error("negative metric must be unknown")
	}
	if got := Unknown.String(); got != "-" {
		t.Errorf("expected \"-\", got %q", got)
	}
	if got := Known(42).String(); got != "42" {
		t.Errorf("expected \"42\", got %q", got)
	}
	if Unknown.Pointer() != nil {
		t.Error("expected nil pointer for unknown")
	}
	if p := Known(7).Pointer(); p == nil || *p != 7 {
		t.Errorf("expected pointer to 7, got %v", p)
	}
	if FromPointer(nil).IsKnown() {
		t.Error("expected nil pointer to be unknown")
	}
}

func TestMetric_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}{Known(3), Unknown})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":3,"b":null}` {
		t.Errorf("unexpected JSON %s", data)
	}

	var decoded struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := decoded.A.Value(); !ok || v != 3 {
		t.Errorf("expected known 3, got %v", decoded.A)
	}
	if decoded.B.IsKnown() {
		t.Error("expected null to decode as unknown")
	}
}

func TestMetricCategory_Ceiling(t *testing.T) {
	tests := []struct {
		category MetricCategory
		expected int
	}{
		{CategoryLikes, 1000},
		{CategoryComments, 100},
		{CategoryShares, 1000},
		{CategoryRestacks, 1000},
		{CategorySubscribers, 999_999},
		{MetricCategory("views"), 0},
	}

	for _, tt := range tests {
		if got := tt.category.Ceiling(); got != tt.expected {
			t.Errorf("%s ceiling = %d, want %d", tt.category, got, tt.expected)
		}
	}

	if !CategoryComments.Plausible(100) || CategoryComments.Plausible(101) {
		t.Error("comments ceiling must be inclusive at 100")
	}
	if CategoryLikes.Plausible(-1) {
		t.Error("negative counts are never plausible")
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
