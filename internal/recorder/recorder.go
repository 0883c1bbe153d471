package recorder

import (
	"errors"

	"TradeSentinel/internal/model"
)

// Recorder persists order receipts for later analysis.
type Recorder interface {
	RecordReceipt(r *model.Receipt) error
	Close() error
}

// Multi fans every receipt out to several recorders, e.g. the per-session
// JSON logbook plus the long-lived SQLite store.
type Multi []Recorder

func (m Multi) RecordReceipt(r *model.Receipt) error {
	var errs []error
	for _, rec := range m {
		if err := rec.RecordReceipt(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, rec := range m {
		if err := rec.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
