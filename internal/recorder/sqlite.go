package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"TradeSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists order receipts to a SQLite database across
// sessions.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analysis tools can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS receipts (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at  INTEGER NOT NULL,
			order_id     TEXT,
			symbol       TEXT,
			qty          INTEGER,
			side         TEXT,
			kind         TEXT,
			status       TEXT,
			submitted_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_ts ON receipts(recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_symbol ON receipts(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordReceipt(rcpt *model.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO receipts
		(recorded_at, order_id, symbol, qty, side, kind, status, submitted_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rcpt.ID, rcpt.Symbol, rcpt.Qty,
		rcpt.Side, rcpt.Kind, rcpt.Status, rcpt.SubmittedAt.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
