package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"TradeSentinel/internal/model"
)

// Logbook accumulates the session's receipts in memory and writes them as
// a JSON array when closed: one file per session, written once at the end.
type Logbook struct {
	mu       sync.Mutex
	path     string
	receipts []model.Receipt
}

// NewLogbook creates a logbook that will write to the given path.
func NewLogbook(path string) *Logbook {
	return &Logbook{path: path, receipts: []model.Receipt{}}
}

func (l *Logbook) RecordReceipt(r *model.Receipt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receipts = append(l.receipts, *r)
	return nil
}

// Close writes the accumulated receipts to disk. An empty session still
// produces a file with an empty array.
func (l *Logbook) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.MarshalIndent(l.receipts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal receipts: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write logbook: %w", err)
	}
	return nil
}
