package orchestrator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maastricht-university/turn-features/segment"
	"github.com/maastricht-university/turn-features/textgrid"
)

const (
	extractedSuffix    = "_extracted"
	preprocessedSuffix = "_preprocessed"
	textGridExt        = ".TextGrid"
)

// participantID is the file name up to the first underscore, so that
// 07_preprocessed.TextGrid and 07.TextGrid both map to "07".
func participantID(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.SplitN(name, "_", 2)[0]
}

func extractedPath(dir, pid string) string {
	return filepath.Join(dir, pid+extractedSuffix+textGridExt)
}

func preprocessedPath(base, id string) string {
	return filepath.Join(base, id+preprocessedSuffix+textGridExt)
}

// textGrids lists the *.TextGrid files in dir, sorted, skipping outputs
// of an earlier extract run.
func textGrids(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+textGridExt))
	if err != nil {
		return nil, err
	}
	out := paths[:0]
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), textGridExt)
		if strings.HasSuffix(name, extractedSuffix) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// duplicateIDs maps the index of every path whose participant ID was
// already taken by an earlier path to the error recorded for it. Both would
// write the same <pid>_extracted.TextGrid.
func duplicateIDs(paths []string) map[int]error {
	first := map[string]string{}
	dups := map[int]error{}
	for i, path := range paths {
		pid := participantID(path)
		if prev, ok := first[pid]; ok {
			dups[i] = fmt.Errorf("participant %s already read from %s", pid, filepath.Base(prev))
			continue
		}
		first[pid] = path
	}
	return dups
}

func (p *Pipeline) readOpts(includeEmpty bool) textgrid.ReadOptions {
	return textgrid.ReadOptions{IncludeEmpty: includeEmpty, NormalizeNFC: p.cfg.TextGrid.NormalizeNFC}
}

func (p *Pipeline) segOpts() segment.Options {
	return segment.Options{
		PauseThreshold:  p.cfg.Segment.PauseThreshold,
		GateOnThreshold: p.cfg.Segment.GateOnThreshold,
	}
}
