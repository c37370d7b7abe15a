// Package segment collapses word-level forced-alignment output into
// utterance spans and lays out the tiers used for manual annotation.
package segment

import (
	"strings"

	"github.com/maastricht-university/turn-features/textgrid"
)

// DefaultPauseThreshold is the pause length (s) accepted by FromPauses.
const DefaultPauseThreshold = 0.2

type Options struct {
	PauseThreshold float64
	// GateOnThreshold bridges blank gaps shorter than PauseThreshold. When
	// false any blank interval ends an utterance, whatever its length.
	GateOnThreshold bool
}

func DefaultOptions() Options {
	return Options{PauseThreshold: DefaultPauseThreshold}
}

// FromPauses merges consecutive labelled intervals of a dense word tier.
// A span closes at a blank interval or at the end of input; blanks with no
// open span are skipped. Labels are trimmed and joined without separator.
func FromPauses(words []textgrid.Interval, opts Options) []textgrid.Interval {
	var (
		out   []textgrid.Interval
		cur   *textgrid.Interval
		parts []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Label = strings.Join(parts, "")
		out = append(out, *cur)
		cur, parts = nil, nil
	}

	for i, iv := range words {
		label := strings.TrimSpace(iv.Label)
		if label == "" {
			if cur != nil && opts.GateOnThreshold && iv.Duration() < opts.PauseThreshold && hasLabelAfter(words, i) {
				continue
			}
			flush()
			continue
		}
		if cur == nil {
			cur = &textgrid.Interval{Start: iv.Start}
		}
		cur.End = iv.End
		parts = append(parts, label)
	}
	flush()
	return out
}

func hasLabelAfter(words []textgrid.Interval, i int) bool {
	return i+1 < len(words) && strings.TrimSpace(words[i+1].Label) != ""
}

// Rebuild derives the annotation layout from aligner output: phones and
// words are dropped, and turns (empty), utterances and FPs (empty) are
// installed. The input set is left untouched.
func Rebuild(in *textgrid.TierSet, opts Options) (*textgrid.TierSet, error) {
	words, err := in.Tier(textgrid.TierWords)
	if err != nil {
		return nil, err
	}
	utts, err := textgrid.NewTier(textgrid.TierUtterances, FromPauses(words.Entries, opts))
	if err != nil {
		return nil, err
	}

	out := in.Clone()
	out.Remove(textgrid.TierPhones)
	out.Remove(textgrid.TierWords)
	out.Put(textgrid.EmptyTier(textgrid.TierTurns))
	out.Put(utts)
	out.Put(textgrid.EmptyTier(textgrid.TierFPs))
	return out, nil
}
