package textgrid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Save writes set to path in Praat's short text format.
func Save(set *TierSet, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, set); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Write emits the short format. Gaps in sparse tiers are filled with blank
// intervals since Praat requires interval tiers to cover [xmin, xmax].
// Timestamps use the shortest representation that parses back exactly.
func Write(w io.Writer, set *TierSet) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, `File type = "ooTextFile"`)
	fmt.Fprintln(bw, `Object class = "TextGrid"`)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, num(set.MinTimestamp))
	fmt.Fprintln(bw, num(set.MaxTimestamp))

	tiers := set.Tiers()
	if len(tiers) == 0 {
		fmt.Fprintln(bw, "<absent>")
		return bw.Flush()
	}
	fmt.Fprintln(bw, "<exists>")
	fmt.Fprintln(bw, len(tiers))
	for _, t := range tiers {
		entries := withBlanks(t.Entries, set.MinTimestamp, set.MaxTimestamp)
		fmt.Fprintln(bw, quote("IntervalTier"))
		fmt.Fprintln(bw, quote(t.Name))
		fmt.Fprintln(bw, num(set.MinTimestamp))
		fmt.Fprintln(bw, num(set.MaxTimestamp))
		fmt.Fprintln(bw, len(entries))
		for _, iv := range entries {
			fmt.Fprintln(bw, num(iv.Start))
			fmt.Fprintln(bw, num(iv.End))
			fmt.Fprintln(bw, quote(iv.Label))
		}
	}
	return bw.Flush()
}

func withBlanks(entries []Interval, minT, maxT float64) []Interval {
	out := make([]Interval, 0, len(entries)*2+1)
	cursor := minT
	for _, iv := range entries {
		if iv.Start-cursor > Tolerance {
			out = append(out, Interval{Start: cursor, End: iv.Start})
		}
		out = append(out, iv)
		cursor = iv.End
	}
	if maxT-cursor > Tolerance || len(out) == 0 {
		out = append(out, Interval{Start: cursor, End: maxT})
	}
	return out
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func quote(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
