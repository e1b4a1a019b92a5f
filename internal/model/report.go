package model

import (
	"encoding/json"
	"time"
)

type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusInProgress ReportStatus = "in_progress"
	ReportStatusCollected  ReportStatus = "collected"
	ReportStatusVerified   ReportStatus = "verified"
)

type Report struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	Location        string           `json:"location"`
	WasteType       string           `json:"waste_type"`
	Amount          string           `json:"amount"`
	ImageURL        *string          `json:"image_url,omitempty"`
	InferenceResult *InferenceResult `json:"inference_result,omitempty"`
	Status          ReportStatus     `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	CollectorID     *int64           `json:"collector_id,omitempty"`
	SubmissionKey   string           `json:"-"`
}

// InferenceResult is the schema-tagged payload returned by the image
// classification service. Raw preserves the provider response verbatim so a
// newer payload shape survives a round trip through an older server.
type InferenceResult struct {
	Version    int             `json:"version"`
	WasteType  string          `json:"waste_type"`
	Quantity   string          `json:"quantity,omitempty"`
	Confidence float64         `json:"confidence"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

type CollectedWaste struct {
	ID             int64     `json:"id"`
	ReportID       int64     `json:"report_id"`
	CollectorID    int64     `json:"collector_id"`
	CollectionDate time.Time `json:"collection_date"`
	Status         string    `json:"status"`
}
