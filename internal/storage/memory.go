package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

// ObjectStore is the subset of an S3-style bucket the stub batcher writes to.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// ObjectInfo describes a stored object (for list response).
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ErrNotFound is returned by GetObject for an unknown key.
var ErrNotFound = fmt.Errorf("object not found")

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore keeps uploaded batches in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]object), now: time.Now}
}

// PutObject stores a copy of data under key, replacing any previous object.
func (s *MemoryStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("empty object key")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.objects[key] = object{data: cp, contentType: contentType, modified: s.now().UTC()}
	s.mu.Unlock()
	return nil
}

// ListObjects lists objects under prefix, sorted by key.
func (s *MemoryStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	result := make([]ObjectInfo, 0, len(s.objects))
	for k, o := range s.objects {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		result = append(result, ObjectInfo{Key: k, Size: int64(len(o.data)), LastModified: o.modified})
	}
	s.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// GetObject returns the bytes stored under key.
func (s *MemoryStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	o, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	cp := make([]byte, len(o.data))
	copy(cp, o.data)
	return cp, nil
}

// KeyForBatch returns an object key for a log batch (e.g. logs/default/2024/02/17/abc123.json.gz).
func KeyForBatch(projectID, batchID, ext string, at time.Time) string {
	if projectID == "" {
		projectID = "default"
	}
	return path.Join("logs", projectID, at.UTC().Format("2006/01/02"), batchID+ext)
}

// EncodeBatch serializes entries as gzipped JSON.
func EncodeBatch(entries []model.LogEntry) ([]byte, error) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// GetObjectLogs downloads a gzipped JSON batch by key and returns the log entries.
func GetObjectLogs(ctx context.Context, store ObjectStore, key string) ([]model.LogEntry, error) {
	raw, err := store.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()
	decoded, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var entries []model.LogEntry
	if err := json.Unmarshal(decoded, &entries); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return entries, nil
}
