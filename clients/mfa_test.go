package clients

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignArgs(t *testing.T) {
	var got []string
	x := NewExec(0)
	x.cmd = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		got = append([]string{name}, args...)
		return exec.CommandContext(ctx, "true")
	}

	err := x.Align(context.Background(), AlignReq{
		CorpusDir: "/data", Dictionary: "korean_mfa", AcousticModel: "korean_mfa",
		OutputDir: "/data/aligned", Clean: true, SingleSpeaker: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mfa", "align", "--clean", "--single_speaker", "/data", "korean_mfa", "korean_mfa", "/data/aligned"}, got)
}

func TestAlignNonZeroExit(t *testing.T) {
	x := NewExec(0)
	x.cmd = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'dictionary not found' >&2; exit 3")
	}

	err := x.Align(context.Background(), AlignReq{})
	var ae *AlignError
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Stderr, "dictionary not found")
	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestAlignTimeout(t *testing.T) {
	x := NewExec(50 * time.Millisecond)
	x.cmd = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sleep", "5")
	}

	err := x.Align(context.Background(), AlignReq{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
