package batcher

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/storage"
)

// BatcherConfig configures batch size and flush interval.
type BatcherConfig struct {
	MaxBatchSize  int           // flush when batch has this many entries
	FlushInterval time.Duration // flush at least this often
}

// DefaultBatcherConfig returns defaults: 1000 entries or 30s.
func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{
		MaxBatchSize:  1000,
		FlushInterval: 30 * time.Second,
	}
}

// BatcherOpts optional callbacks for the recent-logs and upload-status stores.
type BatcherOpts struct {
	OnLog     func(entry *model.LogEntry) // called for each validated log
	OnPending func(n int)                 // called when the unflushed count changes
	OnFlush   func(count int, key string) // called after successful upload
}

// Batcher implements inputs.InputBuffer. It validates log payloads, batches
// them, and on flush compresses and uploads them to the object store.
type Batcher struct {
	mu      sync.Mutex
	logs    []model.LogEntry
	config  BatcherConfig
	store   storage.ObjectStore
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	project string
	opts    *BatcherOpts
	now     func() time.Time
}

// NewBatcher creates a batcher and starts its flush loop. opts may be nil.
func NewBatcher(cfg BatcherConfig, store storage.ObjectStore, projectID string, opts *BatcherOpts) *Batcher {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultBatcherConfig().MaxBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultBatcherConfig().FlushInterval
	}
	if opts == nil {
		opts = &BatcherOpts{}
	}
	b := &Batcher{
		logs:    make([]model.LogEntry, 0, cfg.MaxBatchSize),
		config:  cfg,
		store:   store,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		project: projectID,
		opts:    opts,
		now:     time.Now,
	}
	go b.flushLoop()
	return b
}

// Insert implements inputs.InputBuffer. Parses and validates JSON; on success
// appends to the batch and may flush.
func (b *Batcher) Insert(raw []byte) error {
	entry, err := ValidateLog(raw, b.now())
	if err != nil {
		log.Printf("[batcher] invalid log: %v", err)
		return err
	}
	b.mu.Lock()
	b.logs = append(b.logs, *entry)
	pending := len(b.logs)
	shouldFlush := pending >= b.config.MaxBatchSize
	b.mu.Unlock()

	if b.opts.OnLog != nil {
		b.opts.OnLog(entry)
	}
	if b.opts.OnPending != nil {
		b.opts.OnPending(pending)
	}
	if shouldFlush {
		b.Flush(context.Background())
	}
	return nil
}

func (b *Batcher) flushLoop() {
	ticker := time.NewTicker(b.config.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			close(b.done)
			return
		case <-ticker.C:
			b.Flush(context.Background())
		}
	}
}

// Flush serializes the current batch, gzips it, uploads it, and clears the batch.
// A failed upload drops the batch.
func (b *Batcher) Flush(ctx context.Context) {
	b.mu.Lock()
	if len(b.logs) == 0 {
		b.mu.Unlock()
		return
	}
	snapshot := make([]model.LogEntry, len(b.logs))
	copy(snapshot, b.logs)
	b.logs = b.logs[:0]
	b.mu.Unlock()

	if b.opts.OnPending != nil {
		b.opts.OnPending(0)
	}

	compressed, err := storage.EncodeBatch(snapshot)
	if err != nil {
		log.Printf("[batcher] %v", err)
		return
	}
	key := storage.KeyForBatch(b.project, uuid.New().String(), ".json.gz", b.now())
	if err := b.store.PutObject(ctx, key, compressed, "application/gzip"); err != nil {
		log.Printf("[batcher] upload: %v", err)
		return
	}
	log.Printf("[batcher] uploaded %d logs to %s", len(snapshot), key)
	if b.opts.OnFlush != nil {
		b.opts.OnFlush(len(snapshot), key)
	}
}

// Stop stops the flush loop and flushes any remaining logs. Safe to call twice.
func (b *Batcher) Stop() {
	b.once.Do(func() {
		close(b.stop)
		<-b.done
		b.Flush(context.Background())
	})
}
