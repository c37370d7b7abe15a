// Package logging builds the process logger and the optional Sentry hook.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	cfg "github.com/maastricht-university/turn-features/config"
)

// New returns a logger configured from c, writing to w. Unknown levels
// fall back to info.
func New(c cfg.Pipeline, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	lvl, err := logrus.ParseLevel(c.LogLvl)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// SentryHook forwards error-level entries to Sentry.
type SentryHook struct {
	hub *sentry.Hub
}

// InstallSentry initialises Sentry and attaches a hook to l. It returns a
// flush func to defer; with an empty DSN it is a no-op.
func InstallSentry(l *logrus.Logger, c cfg.Sentry, release string) (func(), error) {
	if c.DSN == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	l.AddHook(&SentryHook{hub: sentry.CurrentHub()})
	return func() { sentry.Flush(2 * time.Second) }, nil
}

func (h *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *SentryHook) Fire(e *logrus.Entry) error {
	h.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range e.Data {
			if k == logrus.ErrorKey {
				continue
			}
			scope.SetTag(k, fmt.Sprint(v))
		}
		if err, ok := e.Data[logrus.ErrorKey].(error); ok {
			scope.SetTag("message", e.Message)
			h.hub.CaptureException(err)
			return
		}
		h.hub.CaptureMessage(e.Message)
	})
	return nil
}
