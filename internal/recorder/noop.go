package recorder

import "TradeSentinel/internal/model"

// NoopRecorder is a no-op implementation used when persistence is not
// configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReceipt(_ *model.Receipt) error { return nil }
func (n *NoopRecorder) Close() error                         { return nil }
