package orchestrator

import (
	"time"

	"github.com/maastricht-university/turn-features/features"
	"github.com/maastricht-university/turn-features/validate"
)

// Recording is the outcome of extracting one annotated TextGrid.
type Recording struct {
	Path          string
	ParticipantID string
	ListNum       string
	Output        string // <pid>_extracted.TextGrid, empty if not written
	Results       *features.Results
	Err           error
}

func (r Recording) OK() bool { return r.Err == nil }

// Run is one extract batch. Results holds the rows of every successful
// recording, in file order.
type Run struct {
	ID         string
	Started    time.Time
	Finished   time.Time
	TextGrids  string
	Conditions string
	OutputDir  string
	Recordings []Recording
	Results    features.Results
}

func (r *Run) Failed() []Recording {
	var out []Recording
	for _, rec := range r.Recordings {
		if !rec.OK() {
			out = append(out, rec)
		}
	}
	return out
}

// Prepared is the outcome of preprocessing one recording.
type Prepared struct {
	ID     string
	Words  int
	Output string // <id>_preprocessed.TextGrid
	Err    error
}

// Checked is the validation outcome of one file.
type Checked struct {
	Path   string
	Report validate.Report
	Err    error
}
