package model

import (
	"time"

	"github.com/google/uuid"
)

type InputState string

const (
	InputStateRunning InputState = "RUNNING"
	InputStateStopped InputState = "STOPPED"
	InputStatePaused  InputState = "PAUSED"
)

// InputItem is a provisioned ingestion endpoint as returned by GET /inputs.
// The client never mutates it; a newer registry snapshot replaces it.
type InputItem struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Configuration map[string]any `json:"configuration"`
	CreatedAt     time.Time      `json:"created_at"`
	State         string         `json:"state"`
}

// CreateInputRequest is the body of POST /inputs.
// An empty Title or Config is omitted so the backend applies its defaults.
type CreateInputRequest struct {
	Type   string         `json:"type" validate:"required"`
	Title  string         `json:"title,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}

// Input is the backend's stored definition of an input.
type Input struct {
	ID            uuid.UUID
	Type          string
	Title         string
	Configuration map[string]any
	CreatedAt     time.Time
	DesiredState  InputState
}
