// Package validate lints the manually annotated turns tier. It never fails
// on findings; everything is collected into a Report.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/turn-features/textgrid"
)

const (
	FirstItem    = 1
	LastItem     = 50
	MaxFollowUps = 4
)

type Duplicate struct {
	Label string
	Count int
}

type PairIssueKind string

const (
	InvalidPrefix PairIssueKind = "invalid"
	CodeMismatch  PairIssueKind = "mismatch"
)

// PairIssue is a (Q,R) slot at positions Index, Index+1 that is malformed.
type PairIssue struct {
	Kind   PairIssueKind
	Index  int
	Q, R   string
	QStart float64
	RStart float64
}

type MissingPair struct {
	Q, R           string
	QFound, RFound bool
}

type Report struct {
	Duplicates []Duplicate
	PairIssues []PairIssue
	Missing    []MissingPair
	// Unpaired is the trailing entry of an odd-length tier, which the
	// pairing walk does not inspect.
	Unpaired *textgrid.Interval
}

func (r Report) Clean() bool {
	return len(r.Duplicates) == 0 && len(r.PairIssues) == 0 && len(r.Missing) == 0 && r.Unpaired == nil
}

// CheckSet runs CheckTurns on the turns tier of set.
func CheckSet(set *textgrid.TierSet) (Report, error) {
	turns, err := set.Tier(textgrid.TierTurns)
	if err != nil {
		return Report{}, err
	}
	return CheckTurns(turns.Labelled()), nil
}

// CheckTurns reports on labelled turn entries. Labels are compared with
// surrounding whitespace removed.
func CheckTurns(entries []textgrid.Interval) Report {
	entries = textgrid.TrimLabels(entries)
	var r Report
	r.Duplicates = duplicates(entries)
	r.PairIssues = pairIssues(entries)
	r.Missing = missing(entries)
	if len(entries)%2 == 1 {
		last := entries[len(entries)-1]
		r.Unpaired = &last
	}
	return r
}

func duplicates(entries []textgrid.Interval) []Duplicate {
	counts := map[string]int{}
	var order []string
	for _, e := range entries {
		if counts[e.Label] == 0 {
			order = append(order, e.Label)
		}
		counts[e.Label]++
	}
	var out []Duplicate
	for _, l := range order {
		if counts[l] > 1 {
			out = append(out, Duplicate{Label: l, Count: counts[l]})
		}
	}
	return out
}

func pairIssues(entries []textgrid.Interval) []PairIssue {
	var out []PairIssue
	for i := 0; i+1 < len(entries); i += 2 {
		q, r := entries[i], entries[i+1]
		issue := PairIssue{Index: i, Q: q.Label, R: r.Label, QStart: q.Start, RStart: r.Start}
		switch {
		case !strings.HasPrefix(q.Label, "Q") || !strings.HasPrefix(r.Label, "R"):
			issue.Kind = InvalidPrefix
		case q.Label[1:] != r.Label[1:]:
			issue.Kind = CodeMismatch
		default:
			continue
		}
		out = append(out, issue)
	}
	return out
}

// ExpectedPairs lists every (Q,R) label pair of the item universe: a main
// question x0 and follow-ups x1..x4 for items 01..50.
func ExpectedPairs() [][2]string {
	out := make([][2]string, 0, (LastItem-FirstItem+1)*(MaxFollowUps+1))
	for i := FirstItem; i <= LastItem; i++ {
		for j := 0; j <= MaxFollowUps; j++ {
			code := fmt.Sprintf("%02d%d", i, j)
			out = append(out, [2]string{"Q" + code, "R" + code})
		}
	}
	return out
}

func missing(entries []textgrid.Interval) []MissingPair {
	have := make(map[string]bool, len(entries))
	for _, e := range entries {
		have[e.Label] = true
	}
	var out []MissingPair
	for _, p := range ExpectedPairs() {
		if have[p[0]] && have[p[1]] {
			continue
		}
		out = append(out, MissingPair{Q: p[0], R: p[1], QFound: have[p[0]], RFound: have[p[1]]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Q < out[j].Q })
	return out
}

// Log renders the report the way annotators read it on the console.
func (r Report) Log(log logrus.FieldLogger) {
	for _, d := range r.Duplicates {
		log.Warnf("Label '%s' occurs %d times", d.Label, d.Count)
	}
	if len(r.Duplicates) == 0 {
		log.Info("No duplicate labels found.")
	}

	for _, p := range r.PairIssues {
		switch p.Kind {
		case InvalidPrefix:
			log.Warnf("Invalid labels at positions %v and %v: %s, %s", p.QStart, p.RStart, p.Q, p.R)
		case CodeMismatch:
			log.Warnf("Mismatch: %s vs %s at positions %v and %v", p.Q, p.R, p.QStart, p.RStart)
		}
	}
	if len(r.PairIssues) == 0 {
		log.Info("All existing Q/R pairs are valid.")
	}
	if r.Unpaired != nil {
		log.Warnf("Unpaired trailing label %s at position %v", r.Unpaired.Label, r.Unpaired.Start)
	}

	if len(r.Missing) == 0 {
		log.Info("All expected Q/R pairs found.")
		return
	}
	log.Warnf("%d missing pairs in total", len(r.Missing))
	for _, m := range r.Missing {
		log.Warnf("%s %s, %s %s", m.Q, found(m.QFound), m.R, found(m.RFound))
	}
}

func found(ok bool) string {
	if ok {
		return "found"
	}
	return "not found"
}
