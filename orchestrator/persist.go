package orchestrator

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// ManifestFile is written next to the CSV tables.
const ManifestFile = "manifest.json"

type ManifestEntry struct {
	File          string         `json:"file"`
	ParticipantID string         `json:"participant_id"`
	ListNum       string         `json:"list_num,omitempty"`
	Output        string         `json:"output,omitempty"`
	Status        string         `json:"status"`
	Error         string         `json:"error,omitempty"`
	Rows          map[string]int `json:"rows,omitempty"`
}

type Manifest struct {
	RunID          string          `json:"run_id"`
	GeneratedAt    time.Time       `json:"generated_at"`
	ElapsedSec     float64         `json:"elapsed_sec"`
	TextGridDir    string          `json:"textgrid_dir"`
	ConditionTable string          `json:"condition_table"`
	Recordings     []ManifestEntry `json:"recordings"`
	Totals         map[string]int  `json:"totals"`
	Failed         int             `json:"failed"`
}

func newRunID() string { return uuid.NewString() }

func manifestOf(run *Run) Manifest {
	m := Manifest{
		RunID:          run.ID,
		GeneratedAt:    run.Finished,
		ElapsedSec:     run.Finished.Sub(run.Started).Seconds(),
		TextGridDir:    run.TextGrids,
		ConditionTable: run.Conditions,
		Recordings:     make([]ManifestEntry, 0, len(run.Recordings)),
		Totals:         run.Results.Counts(),
	}
	for _, rec := range run.Recordings {
		e := ManifestEntry{
			File:          filepath.Base(rec.Path),
			ParticipantID: rec.ParticipantID,
			ListNum:       rec.ListNum,
			Status:        "ok",
		}
		if rec.Output != "" {
			e.Output = filepath.Base(rec.Output)
		}
		if rec.Err != nil {
			e.Status = "failed"
			e.Error = rec.Err.Error()
			m.Failed++
		}
		if rec.Results != nil {
			e.Rows = rec.Results.Counts()
		}
		m.Recordings = append(m.Recordings, e)
	}
	return m
}

func writeJSON(path string, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
