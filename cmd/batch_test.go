package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotscout/plotscout-cli/internal/model"
)

func TestReadQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	content := `plots near Kanakapura

# a comment
  2 bhk plots in Whitefield under 50 lakhs
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	queries, err := readQueries(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"plots near Kanakapura",
		"2 bhk plots in Whitefield under 50 lakhs",
	}, queries)
}

func TestReadQueriesMissingFile(t *testing.T) {
	_, err := readQueries(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestProcessBatch(t *testing.T) {
	queries := []string{"q1", "q2", "q3", "q4"}

	var mu sync.Mutex
	seen := map[string]bool{}

	err := processBatch(context.Background(), queries, 2, func(_ context.Context, q string) *model.ChatResponse {
		mu.Lock()
		seen[q] = true
		mu.Unlock()

		resp := &model.ChatResponse{Response: "ok"}
		if q == "q3" {
			resp.WorkflowTrace.Errors = []string{"acquire: source down"}
		}
		return resp
	})

	require.NoError(t, err)
	assert.Len(t, seen, 4)
	for _, q := range queries {
		assert.True(t, seen[q], q)
	}
}

func TestProcessBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := processBatch(ctx, []string{"q1", "q2"}, 1, func(context.Context, string) *model.ChatResponse {
		t.Error("should not run after cancellation")
		return &model.ChatResponse{}
	})
	require.Error(t, err)
}
