package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
)

// --- Montreal Forced Aligner (mfa align) ---
type AlignReq struct {
	Binary        string
	CorpusDir     string // one p<id>/ subfolder per recording
	Dictionary    string
	AcousticModel string
	OutputDir     string
	Clean         bool
	SingleSpeaker bool
}

func (r AlignReq) args() []string {
	args := []string{"align"}
	if r.Clean {
		args = append(args, "--clean")
	}
	if r.SingleSpeaker {
		args = append(args, "--single_speaker")
	}
	return append(args, r.CorpusDir, r.Dictionary, r.AcousticModel, r.OutputDir)
}

// AlignError carries the exit status and the tail of stderr.
type AlignError struct {
	Err    error
	Stderr string
}

func (e *AlignError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("mfa align: %v", e.Err)
	}
	return fmt.Sprintf("mfa align: %v: %s", e.Err, e.Stderr)
}

func (e *AlignError) Unwrap() error { return e.Err }

// Align runs the aligner over the whole corpus and blocks until it exits,
// the timeout elapses or ctx is cancelled.
func (x *Exec) Align(ctx context.Context, req AlignReq) error {
	if x.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}
	bin := req.Binary
	if bin == "" {
		bin = "mfa"
	}

	cmd := x.cmd(ctx, bin, req.args()...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			err = ctxErr
		}
		return &AlignError{Err: err, Stderr: tail(stderr.String(), 2048)}
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
