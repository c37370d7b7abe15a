package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/turn-features/clients"
	cfg "github.com/maastricht-university/turn-features/config"
	"github.com/maastricht-university/turn-features/condition"
	"github.com/maastricht-university/turn-features/features"
	"github.com/maastricht-university/turn-features/prep"
	"github.com/maastricht-university/turn-features/segment"
	"github.com/maastricht-university/turn-features/sink"
	"github.com/maastricht-university/turn-features/textgrid"
	"github.com/maastricht-university/turn-features/validate"
)

type Pipeline struct {
	cfg  *cfg.Root
	log  logrus.FieldLogger
	exec *clients.Exec
	now  func() time.Time
}

func NewPipeline(c *cfg.Root, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{cfg: c, log: log, exec: clients.NewExec(c.Aligner.Timeout), now: time.Now}
}

// SegmentFile rebuilds the turn tiers of a dense aligner TextGrid and saves
// the result to out.
func (p *Pipeline) SegmentFile(in, out string) error {
	set, err := textgrid.Open(in, p.readOpts(true))
	if err != nil {
		return err
	}
	seg, err := segment.Rebuild(set, p.segOpts())
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	return textgrid.Save(seg, out)
}

// Preprocess turns every <id>.csv/<id>.wav pair in base into
// <id>_preprocessed.TextGrid. Per-recording failures are recorded on the
// returned items; an aligner failure aborts the run.
func (p *Pipeline) Preprocess(ctx context.Context, base string) ([]Prepared, error) {
	ids, err := prep.Pairs(base)
	if err != nil {
		return nil, err
	}
	p.log.Infof("Found %d valid file pairs.", len(ids))
	if len(ids) == 0 {
		return nil, nil
	}

	items := make([]Prepared, len(ids))
	var staged []int
	for i, id := range ids {
		items[i].ID = id
		log := p.log.WithField("id", id)

		n, err := prep.Transcript(filepath.Join(base, id+".csv"), filepath.Join(base, id+".txt"))
		if err != nil {
			items[i].Err = fmt.Errorf("transcript: %w", err)
			log.WithError(err).Error("transcript conversion failed")
			continue
		}
		items[i].Words = n
		log.Debugf("wrote %d words", n)

		if err := prep.Stage(base, id); err != nil {
			items[i].Err = fmt.Errorf("stage: %w", err)
			log.WithError(err).Error("staging failed")
			continue
		}
		staged = append(staged, i)
	}
	defer p.unstage(base, items, staged)

	alignDir := filepath.Join(base, p.cfg.Aligner.OutputSubdir)
	p.log.Info("Running MFA alignment...")
	err = p.exec.Align(ctx, clients.AlignReq{
		Binary:        p.cfg.Aligner.Binary,
		CorpusDir:     base,
		Dictionary:    p.cfg.Aligner.Dictionary,
		AcousticModel: p.cfg.Aligner.AcousticModel,
		OutputDir:     alignDir,
		Clean:         p.cfg.Aligner.Clean,
		SingleSpeaker: p.cfg.Aligner.SingleSpeaker,
	})
	if err != nil {
		p.log.WithError(err).Error("MFA alignment failed")
		return items, err
	}

	err = ForEach(ctx, len(staged), p.cfg.Workers, func(_ context.Context, k int) {
		it := &items[staged[k]]
		in := filepath.Join(prep.StageDir(alignDir, it.ID), it.ID+textGridExt)
		out := preprocessedPath(base, it.ID)
		if err := p.SegmentFile(in, out); err != nil {
			it.Err = fmt.Errorf("segment: %w", err)
			p.log.WithField("id", it.ID).WithError(err).Error("segmentation failed")
			return
		}
		it.Output = out
		p.log.WithField("id", it.ID).Infof("Saved: %s", out)
	})
	return items, err
}

func (p *Pipeline) unstage(base string, items []Prepared, staged []int) {
	for _, i := range staged {
		if err := prep.Unstage(base, items[i].ID); err != nil {
			items[i].Err = errors.Join(items[i].Err, fmt.Errorf("unstage: %w", err))
			p.log.WithField("id", items[i].ID).WithError(err).Error("moving files back failed")
		}
	}
}

// Check validates the turn labels of each file and logs the report.
func (p *Pipeline) Check(paths []string) []Checked {
	out := make([]Checked, len(paths))
	for i, path := range paths {
		out[i].Path = path
		log := p.log.WithField("file", filepath.Base(path))
		log.Infof("Processing file: %s", filepath.Base(path))

		set, err := textgrid.Open(path, p.readOpts(false))
		if err == nil {
			out[i].Report, err = validate.CheckSet(set)
		}
		if err != nil {
			out[i].Err = err
			log.WithError(err).Error("check failed")
			continue
		}
		out[i].Report.Log(log)
	}
	return out
}

type ExtractReq struct {
	TextGridDir    string
	ConditionTable string
	OutputDir      string
}

// Extract runs condition alignment and every feature extractor over the
// TextGrids in req.TextGridDir and writes the pooled tables to
// req.OutputDir. The returned error covers setup and output failures only;
// per-recording failures are on Run.Recordings.
func (p *Pipeline) Extract(ctx context.Context, req ExtractReq) (*Run, error) {
	run := &Run{
		ID:         newRunID(),
		Started:    p.now(),
		TextGrids:  req.TextGridDir,
		Conditions: req.ConditionTable,
		OutputDir:  req.OutputDir,
	}
	log := p.log.WithField("run_id", run.ID)

	table, err := condition.LoadTable(req.ConditionTable)
	if err != nil {
		return nil, fmt.Errorf("load condition table: %w", err)
	}
	paths, err := textGrids(req.TextGridDir)
	if err != nil {
		return nil, err
	}
	log.Infof("Found %d TextGrid files.", len(paths))

	dups := duplicateIDs(paths)
	run.Recordings = make([]Recording, len(paths))
	err = ForEach(ctx, len(paths), p.cfg.Workers, func(_ context.Context, i int) {
		if derr, ok := dups[i]; ok {
			run.Recordings[i] = Recording{Path: paths[i], ParticipantID: participantID(paths[i]), Err: derr}
			log.WithField("file", filepath.Base(paths[i])).WithError(derr).Error("skipped")
			return
		}
		run.Recordings[i] = p.extractOne(log, paths[i], table)
	})
	if err != nil {
		return run, err
	}
	for _, rec := range run.Recordings {
		if rec.OK() {
			run.Results.Append(rec.Results)
		}
	}
	run.Finished = p.now()

	if err := p.persist(ctx, run); err != nil {
		return run, err
	}
	log.WithField("failed", len(run.Failed())).Infof("Processed %d recordings.", len(run.Recordings))
	return run, nil
}

func (p *Pipeline) extractOne(log logrus.FieldLogger, path string, table *condition.Table) Recording {
	rec := Recording{Path: path, ParticipantID: participantID(path)}
	log = log.WithFields(logrus.Fields{"participant": rec.ParticipantID, "file": filepath.Base(path)})

	fail := func(stage string, err error) Recording {
		rec.Err = fmt.Errorf("%s: %w", stage, err)
		log.WithError(err).Errorf("%s failed", stage)
		return rec
	}

	list, err := condition.ResolveList(rec.ParticipantID, table)
	if err != nil {
		return fail("resolve list", err)
	}
	rec.ListNum = list.Name
	log.Infof("Processing: %s, %s", filepath.Base(path), list.Name)

	set, err := textgrid.Open(path, p.readOpts(false))
	if err != nil {
		return fail("load", err)
	}
	aligned, err := condition.Attach(set, list, table)
	if err != nil {
		return fail("condition", err)
	}
	out := extractedPath(filepath.Dir(path), rec.ParticipantID)
	if err := textgrid.Save(aligned, out); err != nil {
		return fail("save", err)
	}
	rec.Output = out

	res, err := features.ExtractAll(aligned, features.Input{ParticipantID: rec.ParticipantID, ListNum: list.Name})
	if err != nil {
		return fail("extract", err)
	}
	rec.Results = res
	return rec
}

func (p *Pipeline) sinks(run *Run) (sink.Sink, error) {
	var out []sink.Sink
	if p.cfg.Output.CSV {
		out = append(out, sink.NewCSV(run.OutputDir))
	}
	if path := p.cfg.Output.SQLitePath; path != "" {
		db, err := sink.OpenSQLite(path, run.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, db)
	}
	return sink.Multi(out...), nil
}

func (p *Pipeline) persist(ctx context.Context, run *Run) error {
	s, err := p.sinks(run)
	if err != nil {
		return err
	}
	err = s.Write(ctx, &run.Results)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if p.cfg.Output.Manifest {
		if err := writeJSON(filepath.Join(run.OutputDir, ManifestFile), manifestOf(run)); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}
	return nil
}
