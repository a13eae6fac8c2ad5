package models

import (
	"fmt"
	"time"
)

// Directive is a trading instruction carried by a Signal.
type Directive string

const (
	DirectiveBuy        Directive = "BUY"
	DirectiveSell       Directive = "SELL"
	DirectiveHold       Directive = "HOLD"
	DirectiveStrongBuy  Directive = "STRONG_BUY"
	DirectiveStrongSell Directive = "STRONG_SELL"
)

// Valid reports whether d is a recognized directive.
func (d Directive) Valid() bool {
	switch d {
	case DirectiveBuy, DirectiveSell, DirectiveHold, DirectiveStrongBuy, DirectiveStrongSell:
		return true
	}
	return false
}

// Signal is a producer-emitted trading directive. Immutable once created.
type Signal struct {
	Symbol     string    `json:"symbol"`
	Directive  Directive `json:"signal"`
	Rationale  string    `json:"reason,omitempty"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Validate checks the signal before it enters the queue.
func (s *Signal) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("signal: symbol is required")
	}
	if !s.Directive.Valid() {
		return fmt.Errorf("signal: unknown directive %q", s.Directive)
	}
	if s.Confidence < 0 || s.Confidence > 100 {
		return fmt.Errorf("signal: confidence %.2f out of range [0,100]", s.Confidence)
	}
	return nil
}
