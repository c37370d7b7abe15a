// Package prep turns raw ASR exports into an aligner corpus: transcripts
// are written one word per line and each recording is staged into its own
// p<id>/ folder, then moved back after alignment.
package prep

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WordColumn is the ASR export column holding orthographic words.
const WordColumn = "ORT"

// Pairs returns the IDs that have both <id>.csv and <id>.wav in dir.
func Pairs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := map[string]bool{}
	for _, e := range entries {
		if !e.IsDir() {
			files[e.Name()] = true
		}
	}
	var ids []string
	for name := range files {
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		id := strings.SplitN(name, ".", 2)[0]
		if files[id+".wav"] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Transcript converts a ';'-separated ASR export into a transcript with one
// trimmed word per line and returns the number of words written.
func Transcript(csvPath, txtPath string) (int, error) {
	in, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	words, err := readWords(in)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", csvPath, err)
	}

	out, err := os.Create(txtPath)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(out)
	for _, word := range words {
		fmt.Fprintln(w, word)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return 0, err
	}
	return len(words), out.Close()
}

func readWords(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == WordColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no %q column", WordColumn)
	}

	var words []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if col >= len(rec) {
			continue
		}
		if w := strings.TrimSpace(rec[col]); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

// StageDir is the per-recording folder the aligner expects.
func StageDir(base, id string) string { return filepath.Join(base, "p"+id) }

var stagedExts = []string{"wav", "txt"}

// Stage moves <id>.wav and <id>.txt from base into base/p<id>/.
func Stage(base, id string) error {
	dir := StageDir(base, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return moveAll(base, dir, id)
}

// Unstage moves the staged files back into base.
func Unstage(base, id string) error {
	return moveAll(StageDir(base, id), base, id)
}

func moveAll(from, to, id string) error {
	for _, ext := range stagedExts {
		name := id + "." + ext
		if err := os.Rename(filepath.Join(from, name), filepath.Join(to, name)); err != nil {
			return fmt.Errorf("move %s: %w", name, err)
		}
	}
	return nil
}
