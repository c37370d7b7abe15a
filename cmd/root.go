// Package cmd is the turnfeat command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/turn-features/config"
	"github.com/maastricht-university/turn-features/logging"
	"github.com/maastricht-university/turn-features/orchestrator"
)

type app struct {
	cfgPath string
	conf    *cfg.Root
	log     *logrus.Logger
	flush   func()
}

func (a *app) pipeline() *orchestrator.Pipeline {
	return orchestrator.NewPipeline(a.conf, a.log)
}

func (a *app) close() {
	if a.flush != nil {
		a.flush()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "turnfeat",
		Short:         "Turn segmentation, label checks and feature extraction for Praat TextGrids",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := cfg.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.conf = c
			a.log = logging.New(c.Pipeline, cmd.ErrOrStderr())
			a.flush, err = logging.InstallSentry(a.log, c.Sentry, c.Pipeline.Version)
			if err != nil {
				a.log.WithError(err).Warn("sentry disabled")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default config/$CONFIG_ENV/config.yaml)")

	root.AddCommand(
		newPreprocessCmd(a),
		newSegmentCmd(a),
		newCheckCmd(a),
		newExtractCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	defer a.close()
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		if a.log != nil {
			a.log.WithError(err).Error("turnfeat failed")
		} else {
			os.Stderr.WriteString("turnfeat: " + err.Error() + "\n")
		}
		return 1
	}
	return 0
}
