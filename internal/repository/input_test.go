package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

func TestInputRepository_CreateListGet(t *testing.T) {
	ctx := context.Background()
	r := NewInputRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	r.now = func() time.Time { calls++; return base.Add(time.Duration(calls) * time.Second) }

	first := model.Input{Type: "http", Title: "a", Configuration: map[string]any{"description": "raw"}}
	second := model.Input{Type: "http", Title: "b"}
	require.NoError(t, r.Create(ctx, &first))
	require.NoError(t, r.Create(ctx, &second))
	assert.NotEqual(t, uuid.Nil, first.ID)

	first.Configuration["description"] = "mutated"

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Title, "newest first")
	assert.Equal(t, "raw", list[1].Configuration["description"])

	got, err := r.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Title)

	missing, err := r.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
