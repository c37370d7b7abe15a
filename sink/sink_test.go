package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/turn-features/features"
)

func sample() *features.Results {
	return &features.Results{
		Latency:         []features.Latency{{ParticipantID: "02", ListNum: "List1", QuestionNum: "010", ResponseCond: "T", RLMilSec: 250}},
		SpeakingRate:    []features.SpeakingRate{{ParticipantID: "02", ListNum: "List1", QuestionNum: "010", ResponseCond: "T", DurationSec: 2, SyllNum: 5, SR: 2.5}},
		FPRateCondition: []features.FPRateCondition{{ParticipantID: "02", ListNum: "List1", ResponseCond: "T", QuestionType: "Main", SumDurationMin: 0.5, Freq: 3, FR: 6}},
		FPRateTurn:      []features.FPRateTurn{{ParticipantID: "02", ListNum: "List1", QuestionNum: "010", Freq: 3, FR: 6}},
		FPFormPosition:  []features.FPFormPosition{{ParticipantID: "02", ListNum: "List1", QuestionNum: "010", ResponseCond: "T", Form: "음, 어", Position: "INI"}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWritesSixTables(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, NewCSV(dir).Write(context.Background(), sample()))

	for _, name := range []string{FileLatency, FileSpeakingRate, FileFPRateCondition, FileFPRateItem, FileFPRateTurn, FileFPFormPosition} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	rows := readCSV(t, filepath.Join(dir, FileLatency))
	assert.Equal(t, [][]string{
		{"ParticipantID", "ListNum", "QuestionNum", "ResponseCond", "RLMilSec"},
		{"02", "List1", "010", "T", "250.0"},
	}, rows)

	rows = readCSV(t, filepath.Join(dir, FileSpeakingRate))
	assert.Equal(t, []string{"02", "List1", "010", "T", "2.0", "5", "2.5"}, rows[1])

	rows = readCSV(t, filepath.Join(dir, FileFPFormPosition))
	assert.Equal(t, "음, 어", rows[1][4])

	rows = readCSV(t, filepath.Join(dir, FileFPRateItem))
	assert.Len(t, rows, 1, "header only")
}

func TestSQLiteAppendsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	db, err := OpenSQLite(path, "run-1")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.Write(ctx, sample()))
	require.NoError(t, db.Write(ctx, sample()))

	var n int64
	require.NoError(t, db.db.Model(&latencyRow{}).Where("run_id = ?", "run-1").Count(&n).Error)
	assert.EqualValues(t, 2, n)

	var got speakingRow
	require.NoError(t, db.db.First(&got).Error)
	assert.Equal(t, 2.5, got.SR)
	assert.Equal(t, 5, got.SyllNum)
	require.NoError(t, db.Close())
}

func TestMultiJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := Multi(NewCSV(filepath.Join(dir, "ok")), NewCSV(filepath.Join(blocker, "sub")))
	err := s.Write(context.Background(), sample())
	assert.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, "ok", FileLatency))
	assert.NoError(t, s.Close())
}
