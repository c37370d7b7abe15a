package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/turn-features/textgrid"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	conf := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("pipeline:\n  log_level: error\nworkers: 3\n"), 0o644))

	a := &app{}
	defer a.close()
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", conf}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func saveTurns(t *testing.T, path string, turns []textgrid.Interval) {
	t.Helper()
	set := textgrid.NewTierSet(0, 5)
	set.Put(&textgrid.Tier{Name: textgrid.TierTurns, Entries: turns})
	set.Put(&textgrid.Tier{Name: textgrid.TierUtterances, Entries: []textgrid.Interval{{Start: 1.5, End: 2, Label: "네"}}})
	set.Put(textgrid.EmptyTier(textgrid.TierFPs))
	require.NoError(t, textgrid.Save(set, path))
}

func TestConfigCmd(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "workers: 3")
	assert.Contains(t, out, "log_level: error")
}

func TestSegmentCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "02.TextGrid")
	set := textgrid.NewTierSet(0, 2)
	set.Put(&textgrid.Tier{Name: textgrid.TierWords, Entries: []textgrid.Interval{
		{Start: 0, End: 1, Label: "안녕"}, {Start: 1, End: 1.1}, {Start: 1.1, End: 2, Label: "네"},
	}})
	require.NoError(t, textgrid.Save(set, in))

	out := filepath.Join(dir, "02_preprocessed.TextGrid")
	_, err := run(t, "segment", "--gate", in, out)
	require.NoError(t, err)

	got, err := textgrid.Open(out, textgrid.ReadOptions{})
	require.NoError(t, err)
	utts, err := got.Tier(textgrid.TierUtterances)
	require.NoError(t, err)
	assert.Equal(t, []textgrid.Interval{{Start: 0, End: 2, Label: "안녕네"}}, utts.Entries)
}

func TestCheckCmdReportsWithoutFailing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "02.TextGrid")
	saveTurns(t, path, []textgrid.Interval{{Start: 0, End: 1, Label: "Q010"}, {Start: 1.5, End: 2, Label: "R011"}})

	_, err := run(t, "check", path)
	assert.NoError(t, err)

	_, err = run(t, "check", filepath.Join(t.TempDir(), "missing.TextGrid"))
	assert.Error(t, err)
}

func TestExtractCmdFailsOnFailedRecording(t *testing.T) {
	dir := t.TempDir()
	tgDir := filepath.Join(dir, "tg")
	turns := []textgrid.Interval{{Start: 0, End: 1, Label: "Q010"}, {Start: 1.5, End: 2, Label: "R010"}}
	saveTurns(t, filepath.Join(tgDir, "02_preprocessed.TextGrid"), turns)
	saveTurns(t, filepath.Join(tgDir, "31_preprocessed.TextGrid"), turns)

	table := filepath.Join(dir, "conditions.csv")
	require.NoError(t, os.WriteFile(table, []byte("List1\n02\nD\n"), 0o644))

	outDir := filepath.Join(dir, "out")
	out, err := run(t, "extract", tgDir, table, outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 recordings failed")
	assert.Contains(t, out, "1 of 2 recordings extracted")
	assert.FileExists(t, filepath.Join(outDir, "SpeakingRate.csv"))
	assert.FileExists(t, filepath.Join(outDir, "manifest.json"))
}

func TestExtractCmdArgs(t *testing.T) {
	_, err := run(t, "extract", "only-one")
	assert.Error(t, err)
}

func TestSegmentCmdThreshold(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "02.TextGrid")
	set := textgrid.NewTierSet(0, 2)
	set.Put(&textgrid.Tier{Name: textgrid.TierWords, Entries: []textgrid.Interval{
		{Start: 0, End: 1, Label: "안녕"}, {Start: 1, End: 1.1}, {Start: 1.1, End: 2, Label: "네"},
	}})
	require.NoError(t, textgrid.Save(set, in))

	out := filepath.Join(dir, "02_preprocessed.TextGrid")
	_, err := run(t, "segment", "--gate", "--threshold", "0", in, out)
	require.NoError(t, err)

	got, err := textgrid.Open(out, textgrid.ReadOptions{})
	require.NoError(t, err)
	utts, err := got.Tier(textgrid.TierUtterances)
	require.NoError(t, err)
	assert.Len(t, utts.Entries, 2, "a zero threshold bridges nothing")

	_, err = run(t, "segment", "--threshold", "-0.1", in, out)
	assert.ErrorContains(t, err, "must not be negative")
}
