package models

// HTTP request models for the hub API. Bound, defaulted and validated via
// pkg/http.ReadAndValidateRequest.

type LatestRequest struct {
	Symbol string `query:"symbol" validate:"required"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=10000"`
}

type LatestSignalRequest struct {
	Symbol string `query:"symbol" validate:"required"`
}

type PublishSnapshotRequest struct {
	Symbol        string  `json:"symbol" validate:"required"`
	Price         float64 `json:"price" validate:"required"`
	ChangePercent float64 `json:"change_percent"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
	Volume        float64 `json:"volume" validate:"gte=0"`
	Source        string  `json:"source" default:"api"`
	Timestamp     int64   `json:"timestamp"` // unix seconds, server time when zero
}

type PublishSignalRequest struct {
	Symbol     string  `json:"symbol" validate:"required"`
	Directive  string  `json:"signal" validate:"required,oneof=BUY SELL HOLD STRONG_BUY STRONG_SELL"`
	Rationale  string  `json:"reason"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=100"`
	Source     string  `json:"source" default:"api"`
	Timestamp  int64   `json:"timestamp"` // unix seconds, server time when zero
}

type DrainSignalsRequest struct {
	Max int `json:"max" default:"10" validate:"gte=1,lte=1000"`
}

type ReadSignalsRequest struct {
	Consumer string `json:"consumer" validate:"required"`
	Max      int    `json:"max" default:"10" validate:"gte=1,lte=1000"`
}
