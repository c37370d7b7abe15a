package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/maastricht-university/turn-features/features"
)

// CSV writes the six result tables into Dir, overwriting existing files.
type CSV struct {
	Dir string
}

func NewCSV(dir string) *CSV { return &CSV{Dir: dir} }

func (c *CSV) Close() error { return nil }

func (c *CSV) Write(ctx context.Context, r *features.Results) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}
	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{FileLatency, []string{"ParticipantID", "ListNum", "QuestionNum", "ResponseCond", "RLMilSec"}, latencyRows(r.Latency)},
		{FileSpeakingRate, []string{"ParticipantID", "ListNum", "QuestionNum", "ResponseCond", "DurationSec", "SyllNum", "SR"}, speakingRows(r.SpeakingRate)},
		{FileFPRateCondition, []string{"ParticipantID", "ListNum", "ResponseCond", "QuestionType", "SumDurationMin", "Freq", "FR"}, condRows(r.FPRateCondition)},
		{FileFPRateItem, []string{"ParticipantID", "ListNum", "ItemID", "ResponseCond", "SumDurationMin", "Freq", "FR"}, itemRows(r.FPRateItem)},
		{FileFPRateTurn, []string{"ParticipantID", "ListNum", "QuestionNum", "ResponseCond", "QuestionType", "DurationMin", "Freq", "FR"}, turnRows(r.FPRateTurn)},
		{FileFPFormPosition, []string{"ParticipantID", "ListNum", "QuestionNum", "ResponseCond", "Form", "Position"}, formRows(r.FPFormPosition)},
	}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeTable(filepath.Join(c.Dir, t.name), t.header, t.rows); err != nil {
			return fmt.Errorf("write %s: %w", t.name, err)
		}
	}
	return nil
}

func writeTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ff renders floats the way pandas does: integral values keep a ".0".
func ff(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func latencyRows(in []features.Latency) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{r.ParticipantID, r.ListNum, r.QuestionNum, r.ResponseCond, ff(r.RLMilSec)})
	}
	return out
}

func speakingRows(in []features.SpeakingRate) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{r.ParticipantID, r.ListNum, r.QuestionNum, r.ResponseCond, ff(r.DurationSec), strconv.Itoa(r.SyllNum), ff(r.SR)})
	}
	return out
}

func condRows(in []features.FPRateCondition) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{r.ParticipantID, r.ListNum, r.ResponseCond, r.QuestionType, ff(r.SumDurationMin), strconv.Itoa(r.Freq), ff(r.FR)})
	}
	return out
}

func itemRows(in []features.FPRateItem) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{r.ParticipantID, r.ListNum, r.ItemID, r.ResponseCond, ff(r.SumDurationMin), strconv.Itoa(r.Freq), ff(r.FR)})
	}
	return out
}

func turnRows(in []features.FPRateTurn) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{r.ParticipantID, r.ListNum, r.QuestionNum, r.ResponseCond, r.QuestionType, ff(r.DurationMin), strconv.Itoa(r.Freq), ff(r.FR)})
	}
	return out
}

func formRows(in []features.FPFormPosition) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{r.ParticipantID, r.ListNum, r.QuestionNum, r.ResponseCond, r.Form, r.Position})
	}
	return out
}
