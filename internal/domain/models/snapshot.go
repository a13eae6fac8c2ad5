package models

import "time"

// Snapshot is the latest known market state for one symbol. Exactly one
// Snapshot is current per symbol at any time; acceptance is last-write-wins
// by call order, never by the embedded timestamp.
type Snapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent,omitempty"`
	DayHigh       float64   `json:"day_high,omitempty"`
	DayLow        float64   `json:"day_low,omitempty"`
	Volume        float64   `json:"volume,omitempty"`
	Source        string    `json:"source,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
