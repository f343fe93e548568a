package model

import "time"

// LogEntry is the validated structure for an ingested log.
type LogEntry struct {
	Timestamp string            `json:"timestamp"` // ISO8601 or Unix ms
	Service   string            `json:"service"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// RecentLog is one element of GET /logs/recent.
type RecentLog struct {
	Entry      LogEntry  `json:"entry"`
	ReceivedAt time.Time `json:"received_at"`
}

// IngestPayload is the body posted to /ingest/<path>.
// Rules mirror the backend's ingest validation: service and message are required.
type IngestPayload struct {
	Service string            `json:"service" validate:"required"`
	Message string            `json:"message" validate:"required"`
	Level   string            `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Tags    map[string]string `json:"tags,omitempty"`
}
