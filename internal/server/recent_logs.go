package server

import (
	"sync"
	"time"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

const maxRecentLogs = 200

// RecentLogsStore keeps the last N ingested log entries for the dashboard.
type RecentLogsStore struct {
	mu      sync.RWMutex
	entries []model.RecentLog
	max     int
	now     func() time.Time
}

func newRecentLogsStore(max int) *RecentLogsStore {
	if max <= 0 {
		max = maxRecentLogs
	}
	return &RecentLogsStore{entries: make([]model.RecentLog, 0, max), max: max, now: time.Now}
}

// AddEntry appends a validated log entry (e.g. from the batcher OnLog callback).
func (s *RecentLogsStore) AddEntry(e *model.LogEntry) {
	if e == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, model.RecentLog{Entry: *e, ReceivedAt: s.now().UTC()})
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
}

// GetRecent returns a copy of recent entries (newest last).
func (s *RecentLogsStore) GetRecent() []model.RecentLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RecentLog, len(s.entries))
	copy(out, s.entries)
	return out
}

// UploadStatusStore holds last flush info for the dashboard.
type UploadStatusStore struct {
	mu     sync.RWMutex
	status model.UploadStatus
	now    func() time.Time
}

func newUploadStatusStore(batcherOn bool) *UploadStatusStore {
	return &UploadStatusStore{status: model.UploadStatus{BatcherEnabled: batcherOn}, now: time.Now}
}

func (u *UploadStatusStore) SetLastFlush(count int, key string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	at := u.now().UTC()
	u.status.LastUploadAt = &at
	u.status.LastUploadKey = key
	u.status.LastUploadCount = count
}

func (u *UploadStatusStore) SetPending(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status.PendingCount = n
}

func (u *UploadStatusStore) Get() model.UploadStatus {
	u.mu.RLock()
	defer u.mu.RUnlock()
	st := u.status
	if st.LastUploadAt != nil {
		at := *st.LastUploadAt
		st.LastUploadAt = &at
	}
	return st
}
