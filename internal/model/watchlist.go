package model

// Entry is the per-symbol mutable state tracked for one trading session.
// Entries are created at session start by merging the configured symbol
// universe with the broker's current positions and removed as symbols
// resolve (bought, guarded out, or locked out for the day).
type Entry struct {
	Symbol       string
	QtyHeld      int
	UnrealizedPL float64 // fractional: 0.12 means +12%
	PLKnown      bool    // false for symbols without a broker position
}
