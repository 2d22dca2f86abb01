package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the verdict the classification engine assigns to a message or text
type Category string

const (
	CategorySafe       Category = "Safe"
	CategorySuspicious Category = "Suspicious"
	CategoryFraudulent Category = "Fraudulent"
)

// Categories lists the closed set of categories in display order
var Categories = []Category{CategorySafe, CategorySuspicious, CategoryFraudulent}

// Known reports whether the category belongs to the closed set
func (c Category) Known() bool {
	switch c {
	case CategorySafe, CategorySuspicious, CategoryFraudulent:
		return true
	}
	return false
}

// Display returns the category used for styling; anything unrecognised shows as Safe
func (c Category) Display() Category {
	if c.Known() {
		return c
	}
	return CategorySafe
}

// Urgency is passed through from the backend unmodified. The engine has sent it both as
// a label ("High") and as a number, so the raw JSON text is kept.
type Urgency struct {
	raw string
	// numeric is set when the backend sent a bare JSON number
	numeric bool
}

// NewUrgency wraps a label
func NewUrgency(s string) Urgency {
	return Urgency{raw: s}
}

func (u Urgency) String() string {
	return u.raw
}

// UnmarshalJSON accepts a string, a number or null
func (u *Urgency) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = Urgency{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = Urgency{raw: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("urgency must be a string or number, got %s", data)
	}
	*u = Urgency{raw: n.String(), numeric: true}
	return nil
}

// MarshalJSON writes the value back in the form it was received
func (u Urgency) MarshalJSON() ([]byte, error) {
	if u.numeric {
		return []byte(u.raw), nil
	}
	return json.Marshal(u.raw)
}

// AnalysisResult represents the classification outcome for one message or one ad-hoc text
type AnalysisResult struct {
	Category               Category `json:"category"`
	Confidence             float64  `json:"confidence"`
	RiskScore              float64  `json:"risk_score"`
	MLProbability          float64  `json:"ml_probability"`
	URLCount               int      `json:"url_count"`
	WordCount              int      `json:"word_count"`
	SuspiciousKeywordCount int      `json:"suspicious_keyword_count"`
	UrgencyLevel           Urgency  `json:"urgency_level"`
}

// MessageSummary is one row in the triage list
type MessageSummary struct {
	ID       string         `json:"id"`
	ThreadID string         `json:"thread_id"`
	Subject  string         `json:"subject"`
	From     string         `json:"from"`
	Date     string         `json:"date"`
	Snippet  string         `json:"snippet"`
	Analysis AnalysisResult `json:"analysis"`
}

// EmailContent is the full message as returned by the detail endpoint
type EmailContent struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	To       string `json:"to"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
	Body     string `json:"body"`
}

// MessageDetail is the on-demand record for a single message. Its analysis is the
// authoritative one once loaded.
type MessageDetail struct {
	Email    EmailContent   `json:"email"`
	Analysis AnalysisResult `json:"analysis"`
}

// Filter selects which categories of the triage list are shown
type Filter string

const (
	FilterAll        Filter = "All"
	FilterSafe       Filter = Filter(CategorySafe)
	FilterSuspicious Filter = Filter(CategorySuspicious)
	FilterFraudulent Filter = Filter(CategoryFraudulent)
)

// Matches reports whether a summary passes the filter
func (f Filter) Matches(m MessageSummary) bool {
	if f == FilterAll {
		return true
	}
	return Category(f) == m.Analysis.Category
}

// ParseFilter turns user input such as "fraudulent" or "ALL" into a Filter
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterAll, nil
	}
	f := Filter(cases.Title(language.English).String(strings.ToLower(s)))
	switch f {
	case FilterAll, FilterSafe, FilterSuspicious, FilterFraudulent:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// CategoryCount is one bucket of the category histogram
type CategoryCount struct {
	Category Category
	Count    int
}

// RiskPoint is one entry of the risk series, in list order
type RiskPoint struct {
	Position  int
	Label     string
	RiskScore float64
}

// AggregateStats is derived from the current triage list and never stored
type AggregateStats struct {
	Total        int
	Histogram    []CategoryCount
	RiskSeries   []RiskPoint
	MeanURLCount float64
}

// Count returns the histogram count for a category, 0 for unknown ones
func (s AggregateStats) Count(c Category) int {
	for _, b := range s.Histogram {
		if b.Category == c {
			return b.Count
		}
	}
	return 0
}

// ManualClassification is a snapshot of the ad-hoc classification slot
type ManualClassification struct {
	Input   string
	Result  *AnalysisResult
	Pending bool
	Err     error
}
