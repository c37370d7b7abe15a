package textgrid

import (
	"math"
	"strings"
)

// Tolerance absorbs float drift between independent save/reload cycles.
const Tolerance = 1e-6

// Well-known tier names.
const (
	TierPhones     = "phones"
	TierWords      = "words"
	TierTurns      = "turns"
	TierUtterances = "utterances"
	TierFPs        = "FPs"
	TierCondition  = "condition"
)

type Interval struct {
	Start float64 // sec
	End   float64 // sec
	Label string
}

// Duration returns End-Start in seconds.
func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// Within reports whether iv lies fully inside outer (inclusive bounds).
func (iv Interval) Within(outer Interval) bool {
	return iv.Start >= outer.Start && iv.End <= outer.End
}

// SameTime reports whether a and b are equal within Tolerance.
func SameTime(a, b float64) bool { return math.Abs(a-b) < Tolerance }

// Tier is a named, start-ordered run of intervals. Sparse tiers store only
// labelled spans; dense tiers also carry empty-label filler intervals.
type Tier struct {
	Name    string
	Entries []Interval
}

// NewTier validates ordering and returns a tier owning a copy of entries.
func NewTier(name string, entries []Interval) (*Tier, error) {
	for i, iv := range entries {
		if iv.Start > iv.End {
			return nil, &MalformedTierError{Tier: name, Index: i, Reason: "start after end"}
		}
		if i > 0 && iv.Start < entries[i-1].Start {
			return nil, &MalformedTierError{Tier: name, Index: i, Reason: "start times out of order"}
		}
	}
	cp := make([]Interval, len(entries))
	copy(cp, entries)
	return &Tier{Name: name, Entries: cp}, nil
}

// EmptyTier is a placeholder tier with no intervals.
func EmptyTier(name string) *Tier { return &Tier{Name: name} }

func (t *Tier) Len() int { return len(t.Entries) }

// Labelled returns only the entries whose label is not blank.
func (t *Tier) Labelled() []Interval {
	out := make([]Interval, 0, len(t.Entries))
	for _, iv := range t.Entries {
		if !isBlank(iv.Label) {
			out = append(out, iv)
		}
	}
	return out
}

// Contained returns the entries of t that lie fully inside span.
func (t *Tier) Contained(span Interval) []Interval {
	var out []Interval
	for _, iv := range t.Entries {
		if iv.Within(span) {
			out = append(out, iv)
		}
	}
	return out
}

// Trimmed returns a copy of t with surrounding whitespace stripped from
// every label. Label logic runs on trimmed labels only.
func (t *Tier) Trimmed() *Tier {
	return &Tier{Name: t.Name, Entries: TrimLabels(t.Entries)}
}

// TrimLabels copies entries with surrounding whitespace stripped from
// every label.
func TrimLabels(entries []Interval) []Interval {
	out := make([]Interval, len(entries))
	for i, iv := range entries {
		iv.Label = strings.TrimSpace(iv.Label)
		out[i] = iv
	}
	return out
}

func (t *Tier) clone() *Tier {
	cp := make([]Interval, len(t.Entries))
	copy(cp, t.Entries)
	return &Tier{Name: t.Name, Entries: cp}
}
