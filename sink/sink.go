// Package sink persists extractor results: one CSV table per output
// category, and optionally an SQLite database for pooled analysis.
package sink

import (
	"context"
	"errors"

	"github.com/maastricht-university/turn-features/features"
)

// Output file names, one per category.
const (
	FileLatency         = "ResponseLatency.csv"
	FileSpeakingRate    = "SpeakingRate.csv"
	FileFPRateCondition = "FP_Rate_Condition.csv"
	FileFPRateItem      = "FP_Rate_Item.csv"
	FileFPRateTurn      = "FP_Rate_Turn.csv"
	FileFPFormPosition  = "FP_Form_Position.csv"
)

type Sink interface {
	Write(ctx context.Context, r *features.Results) error
	Close() error
}

type multi []Sink

// Multi fans results out to every sink and joins their errors.
func Multi(sinks ...Sink) Sink { return multi(sinks) }

func (m multi) Write(ctx context.Context, r *features.Results) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
