package model

import "time"

// Receipt records a successfully submitted order. Receipts are appended to
// the session run log and persisted when the session ends.
type Receipt struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Qty         int       `json:"qty"`
	Side        string    `json:"side"`
	Kind        string    `json:"type"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}
