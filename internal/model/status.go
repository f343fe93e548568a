package model

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// UploadStatus is the batcher snapshot served by GET /logs/status.
// It is replaced wholesale on every poll.
type UploadStatus struct {
	BatcherEnabled  bool       `json:"batcher_enabled"`
	LastUploadAt    *time.Time `json:"last_upload_at,omitempty"`
	LastUploadKey   string     `json:"last_upload_key,omitempty"`
	LastUploadCount int        `json:"last_upload_count"`
	PendingCount    int        `json:"pending_count"`
}

// UnmarshalJSON treats the zero time the backend emits before its first flush
// (and an empty string) as "never uploaded".
func (s *UploadStatus) UnmarshalJSON(b []byte) error {
	type plain UploadStatus
	var raw struct {
		plain
		LastUploadAt jsoniter.RawMessage `json:"last_upload_at"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = UploadStatus(raw.plain)
	s.LastUploadAt = nil
	if len(raw.LastUploadAt) == 0 || string(raw.LastUploadAt) == "null" || string(raw.LastUploadAt) == `""` {
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(raw.LastUploadAt, &t); err != nil {
		return err
	}
	if !t.IsZero() {
		s.LastUploadAt = &t
	}
	return nil
}
