// Package server is a self-contained akavelog backend for local runs and
// integration tests of the dashboard. It keeps inputs, recent logs and
// uploaded batches in memory.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/akave-ai/akavelog-dash/internal/batcher"
	"github.com/akave-ai/akavelog-dash/internal/config"
	"github.com/akave-ai/akavelog-dash/internal/handler"
	"github.com/akave-ai/akavelog-dash/internal/infrastructure/inputs"
	_ "github.com/akave-ai/akavelog-dash/internal/infrastructure/inputs/httpinput"
	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/repository"
	"github.com/akave-ai/akavelog-dash/internal/response"
	"github.com/akave-ai/akavelog-dash/internal/storage"
)

// recordingBuffer implements inputs.InputBuffer when the batcher is off:
// valid entries go straight to the recent-logs store.
type recordingBuffer struct {
	recent *RecentLogsStore
}

func (b *recordingBuffer) Insert(p []byte) error {
	entry, err := batcher.ValidateLog(p, time.Now())
	if err != nil {
		log.Printf("[server] invalid log: %v", err)
		return err
	}
	b.recent.AddEntry(entry)
	return nil
}

// Server holds the Echo app and dependencies.
type Server struct {
	Echo         *echo.Echo
	Config       *config.Config
	batcher      *batcher.Batcher     // optional; stopped on Shutdown
	store        *storage.MemoryStore // set when the batcher is on
	inputs       *handler.InputHandler
	ingest       *IngestDispatcher
	recentLogs   *RecentLogsStore
	uploadStatus *UploadStatusStore
}

// New builds the Echo server and registers routes.
func New(cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Logger())

	recentLogs := newRecentLogsStore(cfg.Poll.MaxRecent)
	uploadStatus := newUploadStatusStore(cfg.Stub.BatcherEnabled)

	var buf inputs.InputBuffer = &recordingBuffer{recent: recentLogs}
	var b *batcher.Batcher
	var store *storage.MemoryStore
	if cfg.Stub.BatcherEnabled {
		store = storage.NewMemoryStore()
		bc := batcher.DefaultBatcherConfig()
		if cfg.Stub.MaxBatchSize > 0 {
			bc.MaxBatchSize = cfg.Stub.MaxBatchSize
		}
		if cfg.Stub.FlushInterval > 0 {
			bc.FlushInterval = cfg.Stub.FlushInterval
		}
		b = batcher.NewBatcher(bc, store, "default", &batcher.BatcherOpts{
			OnLog:     recentLogs.AddEntry,
			OnPending: uploadStatus.SetPending,
			OnFlush:   uploadStatus.SetLastFlush,
		})
		buf = b
		log.Printf("[server] batcher enabled: flush to memory store (batch=%d, interval=%v)", bc.MaxBatchSize, bc.FlushInterval)
	}

	ingestD := NewIngestDispatcher()

	inputHandler := &handler.InputHandler{
		Registry:      inputs.GlobalRegistry,
		Buffer:        buf,
		InputRepo:     repository.NewInputRepository(),
		MountIngest:   ingestD.Mount,
		UnmountIngest: ingestD.Unmount,
	}
	s := &Server{
		Echo:         e,
		Config:       cfg,
		batcher:      b,
		store:        store,
		inputs:       inputHandler,
		ingest:       ingestD,
		recentLogs:   recentLogs,
		uploadStatus: uploadStatus,
	}

	// Management API
	e.GET("/inputs/types", inputHandler.ListTypes)
	e.GET("/inputs/types/:type", inputHandler.GetTypeInfo)
	e.GET("/inputs/info", inputHandler.GetAllTypesInfo)
	e.GET("/inputs", inputHandler.ListInputs)
	e.POST("/inputs", inputHandler.CreateInput)

	// Ingest: GET returns recent logs (same response shape); POST/PUT dispatch to the mounted input
	e.Any("/ingest/*", func(c echo.Context) error {
		if c.Request().Method == http.MethodGet {
			return response.OK(c, map[string]any{"logs": recentLogs.GetRecent()}, "")
		}
		return echo.WrapHandler(ingestD)(c)
	})

	// Dashboard: recent logs and upload status
	e.GET("/logs/recent", func(c echo.Context) error {
		return response.OK(c, map[string]any{"logs": recentLogs.GetRecent()}, "")
	})
	e.GET("/logs/status", func(c echo.Context) error {
		return response.OK(c, s.Status(), "")
	})

	// Uploaded batches (only when the batcher is on)
	e.GET("/uploads", func(c echo.Context) error {
		if store == nil {
			return response.OK(c, map[string]any{"objects": []storage.ObjectInfo{}}, "batcher not enabled")
		}
		prefix := c.QueryParam("prefix")
		if prefix == "" {
			prefix = "logs/"
		}
		list, err := store.ListObjects(c.Request().Context(), prefix)
		if err != nil {
			return response.InternalError(c, "list uploads failed", err.Error())
		}
		return response.OK(c, map[string]any{"objects": list}, "")
	})
	e.POST("/uploads/flush", func(c echo.Context) error {
		if store == nil {
			return response.BadRequest(c, "batcher not enabled", "batcher not enabled")
		}
		s.Flush(c.Request().Context())
		return response.OK(c, s.Status(), "flushed")
	})
	e.GET("/uploads/content", func(c echo.Context) error {
		if store == nil {
			return response.BadRequest(c, "batcher not enabled", "batcher not enabled")
		}
		key := c.QueryParam("key")
		if key == "" {
			return response.BadRequest(c, "missing key", "query param key is required")
		}
		logs, err := storage.GetObjectLogs(c.Request().Context(), store, key)
		if errors.Is(err, storage.ErrNotFound) {
			return response.NotFound(c, "upload not found", err.Error())
		}
		if err != nil {
			return response.InternalError(c, "get upload content failed", err.Error())
		}
		return response.OK(c, map[string]any{"logs": logs, "key": key}, "")
	})

	log.Printf("[server] registered input types: %v", inputs.GlobalRegistry.ListRegistered())

	return s
}

// Status returns the current upload status snapshot.
func (s *Server) Status() model.UploadStatus { return s.uploadStatus.Get() }

// Flush uploads the pending batch now. No-op when the batcher is off.
func (s *Server) Flush(ctx context.Context) {
	if s.batcher != nil {
		s.batcher.Flush(ctx)
	}
}

// Start starts the HTTP server. Blocks until the context is cancelled or the server fails.
// On context cancel, Shutdown is called so the batcher flushes remaining logs.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	addr := ":" + s.Config.Stub.Port
	log.Printf("[server] listening on %s", addr)
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server, the running inputs and the batcher (flush remaining logs).
func (s *Server) Shutdown(ctx context.Context) error {
	s.inputs.StopAll()
	if s.batcher != nil {
		s.batcher.Stop()
	}
	return s.Echo.Shutdown(ctx)
}
