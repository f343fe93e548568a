package handler

import (
	"log"
	"maps"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/akave-ai/akavelog-dash/internal/infrastructure/inputs"
	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/repository"
	"github.com/akave-ai/akavelog-dash/internal/response"
)

// InputHandler handles /inputs and /inputs/types. It uses infrastructure inputs
// and the input repository; it does not depend on Echo beyond echo.Context.
type InputHandler struct {
	Registry    *inputs.Registry
	Buffer      inputs.InputBuffer
	InputRepo   *repository.InputRepository
	MountIngest   func(path string, h http.Handler)
	UnmountIngest func(path string)

	instancesMu sync.Mutex
	instances   map[uuid.UUID]InstanceRecord
}

// InstanceRecord holds a stored input, its running MessageInput and the
// /ingest path it is mounted at ("" when not mounted).
type InstanceRecord struct {
	Input     model.Input
	Run       inputs.MessageInput
	MountPath string
}

type inputInstanceResponse struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Configuration map[string]any `json:"configuration"`
	CreatedAt     string         `json:"created_at"`
	State         string         `json:"state"`
}

type createInputRequest struct {
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Listen      string         `json:"listen"`
	Config      map[string]any `json:"config"`
}

func toResponse(in model.Input, state model.InputState) inputInstanceResponse {
	return inputInstanceResponse{
		ID:            in.ID.String(),
		Type:          in.Type,
		Title:         in.Title,
		Configuration: in.Configuration,
		CreatedAt:     in.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		State:         string(state),
	}
}

// ListTypes returns registered input type names (GET /inputs/types).
func (h *InputHandler) ListTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"types": h.Registry.ListRegistered()})
}

// GetAllTypesInfo returns config spec for every registered input type (GET /inputs/info).
func (h *InputHandler) GetAllTypesInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"types": h.Registry.AllTypesInfo()})
}

// GetTypeInfo returns config spec for one input type (GET /inputs/types/:type).
func (h *InputHandler) GetTypeInfo(c echo.Context) error {
	typeName := c.Param("type")
	if typeName == "" {
		return response.Fail(c, http.StatusBadRequest, "missing type in path")
	}
	info, ok := h.Registry.GetTypeInfo(typeName)
	if !ok {
		return response.Fail(c, http.StatusNotFound, "unknown input type: " + typeName)
	}
	return c.JSON(http.StatusOK, info)
}

// ListInputs returns all stored inputs, newest first (GET /inputs).
func (h *InputHandler) ListInputs(c echo.Context) error {
	list, err := h.InputRepo.List(c.Request().Context())
	if err != nil {
		return response.Fail(c, http.StatusInternalServerError, "list inputs: " + err.Error())
	}
	out := make([]inputInstanceResponse, 0, len(list))
	h.instancesMu.Lock()
	for _, in := range list {
		state := in.DesiredState
		if rec, running := h.instances[in.ID]; running && rec.Run != nil {
			state = model.InputStateRunning
		} else if state == model.InputStateRunning {
			state = model.InputStateStopped
		}
		out = append(out, toResponse(in, state))
	}
	h.instancesMu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{"inputs": out})
}

// CreateInput validates, stores and starts an input (POST /inputs).
func (h *InputHandler) CreateInput(c echo.Context) error {
	var req createInputRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid JSON body")
	}
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" {
		return response.Fail(c, http.StatusBadRequest, "missing 'type'")
	}
	if _, ok := h.Registry.GetTypeInfo(req.Type); !ok {
		return response.Fail(c, http.StatusBadRequest, "unknown input type: " + req.Type)
	}
	if req.Title == "" {
		req.Title = "input-" + uuid.New().String()[:8]
	}

	cfg := inputs.Config(maps.Clone(req.Config))
	if cfg == nil {
		cfg = make(inputs.Config)
	}
	if req.Description != "" {
		cfg["description"] = req.Description
	}
	if cfg.String("description") == "" && req.Type == "http" {
		cfg["description"] = "raw"
	}
	if cfg.String("base_path") == "" {
		cfg["base_path"] = "/ingest"
	}
	if req.Listen != "" {
		cfg["listen"] = req.Listen
	}
	if err := h.Registry.ValidateConfig(req.Type, cfg); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}

	run, err := h.Registry.Create(req.Type, cfg, h.Buffer)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "create input runtime: " + err.Error())
	}
	if err := run.Start(); err != nil {
		return response.Fail(c, http.StatusInternalServerError, "start input: " + err.Error())
	}

	in := model.Input{
		Type:          req.Type,
		Title:         req.Title,
		Configuration: cfg,
		DesiredState:  model.InputStateRunning,
	}
	if err := h.InputRepo.Create(c.Request().Context(), &in); err != nil {
		_ = run.Stop()
		return response.Fail(c, http.StatusInternalServerError, "create input: " + err.Error())
	}

	// base_path only applies to the input's own listener; on the main server
	// every input lives at /ingest/<description>.
	var mountPath string
	if ep, ok := run.(inputs.HTTPEndpointInput); ok && h.MountIngest != nil {
		mountPath = ingestMountPath(cfg)
		h.MountIngest(mountPath, ep.Handler())
		log.Printf("[inputs] %s %q mounted at /ingest%s", in.Type, in.Title, mountPath)
	}

	h.instancesMu.Lock()
	if h.instances == nil {
		h.instances = make(map[uuid.UUID]InstanceRecord)
	}
	h.instances[in.ID] = InstanceRecord{Input: in, Run: run, MountPath: mountPath}
	h.instancesMu.Unlock()

	return response.Created(c, toResponse(in, model.InputStateRunning), "input created")
}

// StopAll stops every running input and unmounts its ingest path.
func (h *InputHandler) StopAll() {
	h.instancesMu.Lock()
	defer h.instancesMu.Unlock()
	for id, rec := range h.instances {
		if rec.MountPath != "" && h.UnmountIngest != nil {
			h.UnmountIngest(rec.MountPath)
		}
		if err := rec.Run.Stop(); err != nil {
			log.Printf("[inputs] stop %s: %v", id, err)
		}
		delete(h.instances, id)
	}
}

// ingestMountPath is "/<description>", matching the path clients derive
// from an input's configuration.
func ingestMountPath(cfg inputs.Config) string {
	return "/" + strings.Trim(strings.TrimSpace(cfg.String("description")), "/")
}
