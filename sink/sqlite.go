package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/maastricht-university/turn-features/features"
)

type latencyRow struct {
	ID    uint   `gorm:"primaryKey"`
	RunID string `gorm:"index"`
	features.Latency
}

func (latencyRow) TableName() string { return "response_latency" }

type speakingRow struct {
	ID    uint   `gorm:"primaryKey"`
	RunID string `gorm:"index"`
	features.SpeakingRate
}

func (speakingRow) TableName() string { return "speaking_rate" }

type condRow struct {
	ID    uint   `gorm:"primaryKey"`
	RunID string `gorm:"index"`
	features.FPRateCondition
}

func (condRow) TableName() string { return "fp_rate_condition" }

type itemRow struct {
	ID    uint   `gorm:"primaryKey"`
	RunID string `gorm:"index"`
	features.FPRateItem
}

func (itemRow) TableName() string { return "fp_rate_item" }

type turnRow struct {
	ID    uint   `gorm:"primaryKey"`
	RunID string `gorm:"index"`
	features.FPRateTurn
}

func (turnRow) TableName() string { return "fp_rate_turn" }

type formRow struct {
	ID    uint   `gorm:"primaryKey"`
	RunID string `gorm:"index"`
	features.FPFormPosition
}

func (formRow) TableName() string { return "fp_form_position" }

// SQLite appends result rows, tagged with the run ID, to a database file.
type SQLite struct {
	db    *gorm.DB
	runID string
}

func OpenSQLite(path, runID string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open results database: %w", err)
	}
	if err := db.AutoMigrate(&latencyRow{}, &speakingRow{}, &condRow{}, &itemRow{}, &turnRow{}, &formRow{}); err != nil {
		return nil, fmt.Errorf("migrate results database: %w", err)
	}
	return &SQLite{db: db, runID: runID}, nil
}

func (s *SQLite) Write(ctx context.Context, r *features.Results) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lat := make([]latencyRow, len(r.Latency))
		for i, v := range r.Latency {
			lat[i] = latencyRow{RunID: s.runID, Latency: v}
		}
		sr := make([]speakingRow, len(r.SpeakingRate))
		for i, v := range r.SpeakingRate {
			sr[i] = speakingRow{RunID: s.runID, SpeakingRate: v}
		}
		cond := make([]condRow, len(r.FPRateCondition))
		for i, v := range r.FPRateCondition {
			cond[i] = condRow{RunID: s.runID, FPRateCondition: v}
		}
		item := make([]itemRow, len(r.FPRateItem))
		for i, v := range r.FPRateItem {
			item[i] = itemRow{RunID: s.runID, FPRateItem: v}
		}
		turn := make([]turnRow, len(r.FPRateTurn))
		for i, v := range r.FPRateTurn {
			turn[i] = turnRow{RunID: s.runID, FPRateTurn: v}
		}
		form := make([]formRow, len(r.FPFormPosition))
		for i, v := range r.FPFormPosition {
			form[i] = formRow{RunID: s.runID, FPFormPosition: v}
		}

		if err := insert(tx, lat); err != nil {
			return err
		}
		if err := insert(tx, sr); err != nil {
			return err
		}
		if err := insert(tx, cond); err != nil {
			return err
		}
		if err := insert(tx, item); err != nil {
			return err
		}
		if err := insert(tx, turn); err != nil {
			return err
		}
		return insert(tx, form)
	})
}

func insert[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 500).Error
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
