package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/repository"
)

func TestPageCache(t *testing.T) {
	ctx := context.Background()
	c := NewPageCache(time.Minute, time.Minute)

	_, found, err := c.Get(ctx, "https://en.wikipedia.org/wiki/Art")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "https://en.wikipedia.org/wiki/Art", "<html>art</html>", time.Minute))
	html, found, err := c.Get(ctx, "https://en.wikipedia.org/wiki/Art")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "<html>art</html>", html)
	assert.Equal(t, 1, c.Count())
}

func TestPageCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewPageCache(time.Minute, time.Minute)

	require.NoError(t, c.Set(ctx, "https://en.wikipedia.org/wiki/Art", "<html>art</html>", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, found, err := c.Get(ctx, "https://en.wikipedia.org/wiki/Art")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTraversalRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewTraversalRepo()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.FindByStart(ctx, "https://en.wikipedia.org/wiki/A")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	for i, name := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Save(ctx, &entity.TraversalResult{
			Start:      "https://en.wikipedia.org/wiki/" + name,
			Path:       []string{name},
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	replaced := &entity.TraversalResult{
		Start:      "https://en.wikipedia.org/wiki/A",
		Path:       []string{"A", "Philosophy"},
		FinishedAt: base.Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, replaced))

	got, err := repo.FindByStart(ctx, "https://en.wikipedia.org/wiki/A")
	require.NoError(t, err)
	assert.Same(t, replaced, got)

	latest, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, []string{"A", "Philosophy"}, latest[0].Path)
	assert.Equal(t, []string{"C"}, latest[1].Path)
}

func TestGraphEdgeRepoIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewGraphEdgeRepo()

	require.NoError(t, repo.AddEdges(ctx, []entity.GraphEdge{{From: "A", To: "B"}, {From: "B", To: "C"}}))
	require.NoError(t, repo.AddEdges(ctx, []entity.GraphEdge{{From: "A", To: "B"}}))

	edges, err := repo.ListEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.GraphEdge{{From: "A", To: "B"}, {From: "B", To: "C"}}, edges)
}
