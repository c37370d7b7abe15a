package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/turn-features/config"
	"github.com/maastricht-university/turn-features/orchestrator"
	"github.com/maastricht-university/turn-features/segment"
)

func newPreprocessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preprocess <base_dir>",
		Short: "Transcribe ASR exports, force-align with MFA and segment into utterances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.pipeline().Preprocess(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			failed := 0
			for _, it := range items {
				if it.Err != nil {
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "preprocessed %d of %d recordings\n", len(items)-failed, len(items))
			if failed > 0 {
				return fmt.Errorf("%d recordings failed", failed)
			}
			return nil
		},
	}
}

func newSegmentCmd(a *app) *cobra.Command {
	var (
		threshold float64
		gate      bool
	)
	c := &cobra.Command{
		Use:   "segment <in.TextGrid> <out.TextGrid>",
		Short: "Rebuild the annotation tiers of one aligner TextGrid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("threshold") {
				if threshold < 0 {
					return fmt.Errorf("--threshold must not be negative, got %v", threshold)
				}
				a.conf.Segment.PauseThreshold = threshold
			}
			if cmd.Flags().Changed("gate") {
				a.conf.Segment.GateOnThreshold = gate
			}
			return a.pipeline().SegmentFile(args[0], args[1])
		},
	}
	c.Flags().Float64Var(&threshold, "threshold", segment.DefaultPauseThreshold, "pause threshold in seconds")
	c.Flags().BoolVar(&gate, "gate", false, "bridge blanks shorter than the threshold")
	return c
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.TextGrid>...",
		Short: "Report duplicate, mispaired and missing turn labels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unreadable := 0
			for _, c := range a.pipeline().Check(args) {
				if c.Err != nil {
					unreadable++
				}
			}
			if unreadable > 0 {
				return fmt.Errorf("%d files could not be checked", unreadable)
			}
			return nil
		},
	}
}

func newExtractCmd(a *app) *cobra.Command {
	var (
		workers int
		sqlite  string
	)
	c := &cobra.Command{
		Use:   "extract <textgrid_dir> <condition_table> <out_dir>",
		Short: "Attach conditions and write latency, speaking-rate and filler tables",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") && workers > 0 {
				a.conf.Workers = workers
			}
			if cmd.Flags().Changed("sqlite") {
				a.conf.Output.SQLitePath = sqlite
			}
			run, err := a.pipeline().Extract(cmd.Context(), orchestrator.ExtractReq{
				TextGridDir:    args[0],
				ConditionTable: args[1],
				OutputDir:      args[2],
			})
			if err != nil {
				return err
			}
			failed := run.Failed()
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d of %d recordings extracted into %s\n",
				run.ID, len(run.Recordings)-len(failed), len(run.Recordings), args[2])
			if len(failed) > 0 {
				return fmt.Errorf("%d recordings failed, see %s", len(failed), orchestrator.ManifestFile)
			}
			return nil
		},
	}
	c.Flags().IntVarP(&workers, "workers", "w", 0, "recordings processed in parallel")
	c.Flags().StringVar(&sqlite, "sqlite", "", "also append rows to this SQLite file")
	return c
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.Dump(cmd.OutOrStdout(), a.conf)
		},
	}
}
