// Package condition maps participants to stimulus lists and attaches the
// experimental condition of every response turn as its own tier.
package condition

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/maastricht-university/turn-features/textgrid"
)

// ParticipantRow is the grid row holding the participant ID of each list.
const ParticipantRow = 1

type ParticipantNotFoundError struct {
	ParticipantID string
}

func (e *ParticipantNotFoundError) Error() string {
	return fmt.Sprintf("no list number found for participant ID: %s", e.ParticipantID)
}

// CellError is returned when a response label has no usable table cell.
type CellError struct {
	List   string
	Row    int
	Label  string
	Reason string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("condition for %s (list %s, row %d): %s", e.Label, e.List, e.Row, e.Reason)
}

// ResolveList returns the first column whose participant cell equals id
// after both sides are zero-padded to two digits.
func ResolveList(id string, t *Table) (List, error) {
	want := padID(id)
	for c := range t.Columns {
		v, ok := t.Cell(c, ParticipantRow)
		if ok && padID(v) == want {
			return t.List(c), nil
		}
	}
	return List{}, &ParticipantNotFoundError{ParticipantID: id}
}

// padID normalises spreadsheet renderings such as "7.0" to "7" and pads
// to width two.
func padID(s string) string {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !strings.ContainsAny(s, "eE") {
		s = strconv.FormatFloat(f, 'f', 0, 64)
	}
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}

// RowFor maps a response label such as R051 to its table row (item + 1).
func RowFor(label string) (int, error) {
	if len(label) < 3 {
		return 0, fmt.Errorf("label %q too short", label)
	}
	item, err := strconv.Atoi(label[1:3])
	if err != nil {
		return 0, fmt.Errorf("label %q: %w", label, err)
	}
	return item + 1, nil
}

// Materialize builds the condition tier: one interval per R turn with the
// turn's bounds and the condition code of its item in list. Turn labels are
// trimmed first.
func Materialize(turns *textgrid.Tier, list List, t *Table) (*textgrid.Tier, error) {
	var entries []textgrid.Interval
	for _, turn := range turns.Trimmed().Entries {
		if !strings.HasPrefix(turn.Label, "R") {
			continue
		}
		row, err := RowFor(turn.Label)
		if err != nil {
			return nil, &CellError{List: list.Name, Label: turn.Label, Reason: err.Error()}
		}
		code, ok := t.Cell(list.Index, row)
		if !ok {
			return nil, &CellError{List: list.Name, Row: row, Label: turn.Label, Reason: "cell out of range"}
		}
		if code == "" {
			return nil, &CellError{List: list.Name, Row: row, Label: turn.Label, Reason: "empty cell"}
		}
		entries = append(entries, textgrid.Interval{Start: turn.Start, End: turn.End, Label: code})
	}
	return textgrid.NewTier(textgrid.TierCondition, entries)
}

// Attach returns a copy of set with the condition tier installed,
// replacing any previous one.
func Attach(set *textgrid.TierSet, list List, t *Table) (*textgrid.TierSet, error) {
	turns, err := set.Tier(textgrid.TierTurns)
	if err != nil {
		return nil, err
	}
	cond, err := Materialize(turns, list, t)
	if err != nil {
		return nil, err
	}
	out := set.Clone()
	out.Put(cond)
	return out, nil
}
