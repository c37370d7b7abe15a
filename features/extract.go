// Package features computes turn-level measures from an aligned tier set:
// response latency, speaking rate, filler-particle rate and filler form.
package features

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/maastricht-university/turn-features/textgrid"
)

// view bundles the tiers every extractor needs with a start-time index
// over the condition tier.
type view struct {
	in    Input
	turns []textgrid.Interval
	cond  *textgrid.StartIndex
}

func newView(set *textgrid.TierSet, in Input) (*view, error) {
	turns, err := set.Tier(textgrid.TierTurns)
	if err != nil {
		return nil, err
	}
	cond, err := set.Tier(textgrid.TierCondition)
	if err != nil {
		return nil, err
	}
	return &view{in: in, turns: turns.Trimmed().Entries, cond: textgrid.NewStartIndex(cond.Trimmed())}, nil
}

func (v *view) condition(start float64, qnum string) (string, error) {
	if c, ok := v.cond.Find(start); ok {
		return c.Label, nil
	}
	return "", &ConditionNotFoundError{ParticipantID: v.in.ParticipantID, ListNum: v.in.ListNum, QuestionNum: qnum}
}

func trimmedTier(set *textgrid.TierSet, name string) (*textgrid.Tier, error) {
	t, err := set.Tier(name)
	if err != nil {
		return nil, err
	}
	return t.Trimmed(), nil
}

// responses yields the R turns in tier order.
func (v *view) responses() []textgrid.Interval {
	var out []textgrid.Interval
	for _, t := range v.turns {
		if strings.HasPrefix(t.Label, "R") {
			out = append(out, t)
		}
	}
	return out
}

// ResponseLatency walks turns as (Q,R) pairs and reports R.start-Q.end in
// milliseconds. Pairs without the Q/R prefixes are skipped; pairing itself
// is the validator's job.
func ResponseLatency(set *textgrid.TierSet, in Input) ([]Latency, error) {
	v, err := newView(set, in)
	if err != nil {
		return nil, err
	}
	var out []Latency
	for i := 0; i+1 < len(v.turns); i += 2 {
		q, r := v.turns[i], v.turns[i+1]
		if !strings.HasPrefix(q.Label, "Q") || !strings.HasPrefix(r.Label, "R") {
			continue
		}
		qnum := q.Label[1:]
		cond, err := v.condition(r.Start, qnum)
		if err != nil {
			return nil, err
		}
		out = append(out, Latency{
			ParticipantID: in.ParticipantID,
			ListNum:       in.ListNum,
			QuestionNum:   qnum,
			ResponseCond:  cond,
			RLMilSec:      round3((r.Start - q.End) * 1000),
		})
	}
	return out, nil
}

// SpeakingRates reports characters per second for every response, counting
// the characters of the utterances that lie fully inside the turn.
func SpeakingRates(set *textgrid.TierSet, in Input) ([]SpeakingRate, error) {
	v, err := newView(set, in)
	if err != nil {
		return nil, err
	}
	utts, err := trimmedTier(set, textgrid.TierUtterances)
	if err != nil {
		return nil, err
	}
	var out []SpeakingRate
	for _, r := range v.responses() {
		dur := round3(r.Duration())
		chars := 0
		for _, u := range utts.Contained(r) {
			chars += utf8.RuneCountInString(u.Label)
		}
		cond, err := v.condition(r.Start, r.Label[1:])
		if err != nil {
			return nil, err
		}
		out = append(out, SpeakingRate{
			ParticipantID: in.ParticipantID,
			ListNum:       in.ListNum,
			QuestionNum:   r.Label[1:],
			ResponseCond:  cond,
			DurationSec:   dur,
			SyllNum:       chars,
			SR:            rate(float64(chars), dur),
		})
	}
	return out, nil
}

type tally struct {
	fp       int
	duration float64 // sec
}

// orderedTally keeps keys in first-seen order so output rows are stable.
type orderedTally[K comparable] struct {
	keys []K
	vals map[K]*tally
}

func newOrderedTally[K comparable]() *orderedTally[K] {
	return &orderedTally[K]{vals: map[K]*tally{}}
}

func (o *orderedTally[K]) add(k K, fp int, dur float64) {
	t, ok := o.vals[k]
	if !ok {
		t = &tally{}
		o.vals[k] = t
		o.keys = append(o.keys, k)
	}
	t.fp += fp
	t.duration += dur
}

// set overwrites the tally for k, keeping its original position.
func (o *orderedTally[K]) set(k K, fp int, dur float64) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = &tally{fp: fp, duration: dur}
}

type condKey struct{ cond, qtype string }
type itemKey struct{ item, cond string }
type turnInfo struct{ cond, qtype string }

// FillerRates counts FPs inside each response and reports fillers per
// minute of speech per condition x question type, per item x condition and
// per turn, all from a single scan.
func FillerRates(set *textgrid.TierSet, in Input) (FPRates, error) {
	v, err := newView(set, in)
	if err != nil {
		return FPRates{}, err
	}
	fps, err := trimmedTier(set, textgrid.TierFPs)
	if err != nil {
		return FPRates{}, err
	}

	byCond := newOrderedTally[condKey]()
	byItem := newOrderedTally[itemKey]()
	byTurn := newOrderedTally[string]()
	info := map[string]turnInfo{}

	for _, r := range v.responses() {
		cond, err := v.condition(r.Start, r.Label[1:])
		if err != nil {
			return FPRates{}, err
		}
		qtype := questionType(r.Label)
		count := len(fps.Contained(r))
		dur := round3(r.Duration())
		turnID := r.Label[1:]

		byCond.add(condKey{cond, qtype}, count, dur)
		byItem.add(itemKey{code(r.Label, 1, 3), cond}, count, dur)
		byTurn.set(turnID, count, dur)
		info[turnID] = turnInfo{cond, qtype}
	}

	var out FPRates
	for _, k := range byCond.keys {
		t := byCond.vals[k]
		mins := round3(t.duration / 60)
		out.ByCondition = append(out.ByCondition, FPRateCondition{
			ParticipantID:  in.ParticipantID,
			ListNum:        in.ListNum,
			ResponseCond:   k.cond,
			QuestionType:   k.qtype,
			SumDurationMin: mins,
			Freq:           t.fp,
			FR:             rate(float64(t.fp), mins),
		})
	}
	for _, k := range byItem.keys {
		t := byItem.vals[k]
		mins := round3(t.duration / 60)
		out.ByItem = append(out.ByItem, FPRateItem{
			ParticipantID:  in.ParticipantID,
			ListNum:        in.ListNum,
			ItemID:         k.item,
			ResponseCond:   k.cond,
			SumDurationMin: mins,
			Freq:           t.fp,
			FR:             rate(float64(t.fp), mins),
		})
	}
	for _, k := range byTurn.keys {
		t := byTurn.vals[k]
		mins := round3(t.duration / 60)
		out.ByTurn = append(out.ByTurn, FPRateTurn{
			ParticipantID: in.ParticipantID,
			ListNum:       in.ListNum,
			QuestionNum:   k,
			ResponseCond:  info[k].cond,
			QuestionType:  info[k].qtype,
			DurationMin:   mins,
			Freq:          t.fp,
			FR:            rate(float64(t.fp), mins),
		})
	}
	return out, nil
}

// FillerForms lists every FP inside a response with its label and whether
// it opens the turn. INI needs the FP start to equal the turn start
// exactly; Tolerance does not apply here.
func FillerForms(set *textgrid.TierSet, in Input) ([]FPFormPosition, error) {
	v, err := newView(set, in)
	if err != nil {
		return nil, err
	}
	fps, err := trimmedTier(set, textgrid.TierFPs)
	if err != nil {
		return nil, err
	}
	var out []FPFormPosition
	for _, r := range v.responses() {
		cond, err := v.condition(r.Start, r.Label[1:])
		if err != nil {
			return nil, err
		}
		for _, fp := range fps.Contained(r) {
			pos := PositionInternal
			if fp.Start == r.Start {
				pos = PositionInitial
			}
			out = append(out, FPFormPosition{
				ParticipantID: in.ParticipantID,
				ListNum:       in.ListNum,
				QuestionNum:   r.Label[1:],
				ResponseCond:  cond,
				Form:          fp.Label,
				Position:      pos,
			})
		}
	}
	return out, nil
}

// ExtractAll runs the four extractors on one recording.
func ExtractAll(set *textgrid.TierSet, in Input) (*Results, error) {
	rl, err := ResponseLatency(set, in)
	if err != nil {
		return nil, err
	}
	sr, err := SpeakingRates(set, in)
	if err != nil {
		return nil, err
	}
	fr, err := FillerRates(set, in)
	if err != nil {
		return nil, err
	}
	forms, err := FillerForms(set, in)
	if err != nil {
		return nil, err
	}
	return &Results{
		Latency:         rl,
		SpeakingRate:    sr,
		FPRateCondition: fr.ByCondition,
		FPRateItem:      fr.ByItem,
		FPRateTurn:      fr.ByTurn,
		FPFormPosition:  forms,
	}, nil
}

func questionType(label string) string {
	if strings.HasSuffix(label, "0") {
		return QuestionMain
	}
	return QuestionFollowUp
}

// code slices label[i:j] clamped to its length.
func code(label string, i, j int) string {
	i, j = min(i, len(label)), min(j, len(label))
	return label[i:j]
}

func rate(n, per float64) float64 {
	if per <= 0 {
		return 0
	}
	return round3(n / per)
}

// round3 rounds the exact decimal value of v to three places, ties to
// even, so 1.0005 (stored just below the tie) becomes 1.0.
func round3(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 3, 64), 64)
	return r
}
