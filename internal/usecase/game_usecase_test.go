package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/utils"
)

func philosophyChain() map[string]string {
	return map[string]string{
		"Pianist":          "Musician",
		"Musician":         "Performing_arts",
		"Performing_arts":  "Art",
		"Art":              "Philosophy",
		"Computer_Science": "Computation",
		"Computation":      "Calculation",
		"Calculation":      "Computation",
		"President":        "",
	}
}

type gameFixture struct {
	game      Game
	fetcher   *fakeFetcher
	results   *fakeTraversalRepo
	edges     *fakeEdgeRepo
	queue     *fakeQueue
	traverser *traversalUseCase
}

func newGameFixture(t *testing.T, withQueue bool) *gameFixture {
	t.Helper()
	f := &gameFixture{
		fetcher: newChainFetcher(philosophyChain()),
		results: newFakeTraversalRepo(),
		edges:   newFakeEdgeRepo(),
	}
	f.traverser = newTestTraverser(t, f.fetcher, nil)
	var queue repository.QueueRepository
	if withQueue {
		f.queue = &fakeQueue{}
		queue = f.queue
	}
	f.game = NewGame(f.traverser, f.results, f.edges, queue, nil, zap.NewNop())
	return f
}

func TestPlayRecordsResultAndEdges(t *testing.T) {
	f := newGameFixture(t, false)

	result, err := f.game.Play(context.Background(), wiki("Pianist"))
	require.NoError(t, err)
	assert.True(t, result.Reached)

	stored, err := f.game.Result(context.Background(), wiki("Pianist")+"#Career")
	require.NoError(t, err)
	assert.Same(t, result, stored)

	edges, err := f.edges.ListEdges(context.Background())
	require.NoError(t, err)
	assert.Len(t, edges, 4)
}

func TestPlayRejectsInvalidInputWithoutRecording(t *testing.T) {
	f := newGameFixture(t, false)

	result, err := f.game.Play(context.Background(), "https://example.com/wiki/Pianist")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.results.results)
}

func TestPlayKeepsResultWhenStorageFails(t *testing.T) {
	f := newGameFixture(t, false)
	f.results.saveErr = errors.New("disk full")

	result, err := f.game.Play(context.Background(), wiki("Pianist"))
	require.NoError(t, err)
	assert.True(t, result.Reached)
}

func TestPlayAllRunsIndependentTraversals(t *testing.T) {
	f := newGameFixture(t, false)
	starts := []string{wiki("Pianist"), wiki("Computer_Science"), wiki("President"), "not a url"}

	reports := f.game.PlayAll(context.Background(), starts, 2)
	require.Len(t, reports, 4)

	assert.Equal(t, entity.OutcomeReached, reports[0].Result.Outcome)
	assert.Equal(t, []string{"Computer_Science", "Computation", "Calculation"}, reports[1].Result.Path)
	assert.Equal(t, entity.OutcomeLooped, reports[1].Result.Outcome)
	assert.Equal(t, entity.OutcomeDeadEnd, reports[2].Result.Outcome)
	assert.ErrorIs(t, reports[3].Err, ErrInvalidInput)
	for i, start := range starts {
		assert.Equal(t, start, reports[i].Start)
	}

	g, err := f.game.Graph(context.Background())
	require.NoError(t, err)
	assert.True(t, g.HasNode("Philosophy"))
	assert.True(t, g.HasNode("President"), "single page paths still appear in the graph")
	assert.Len(t, g.Edges(), 6)
}

func TestSubmitAndProcessNext(t *testing.T) {
	f := newGameFixture(t, true)
	ctx := context.Background()

	id, err := f.game.Submit(ctx, wiki("Pianist"))
	require.NoError(t, err)
	assert.Equal(t, utils.HashURL(wiki("Pianist")), id)

	_, err = f.game.Submit(ctx, "ftp://en.wikipedia.org/wiki/Pianist")
	assert.ErrorIs(t, err, ErrInvalidInput)

	processed, err := f.game.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = f.game.ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, processed, "empty queue is not an error")

	result, err := f.game.Result(ctx, wiki("Pianist"))
	require.NoError(t, err)
	assert.True(t, result.Reached)
}

func TestProcessNextRequeuesInterruptedJob(t *testing.T) {
	testCases := []struct {
		name        string
		start       string
		interrupt   func(f *gameFixture) context.Context
		wantErr     error
		wantQueued  bool
		wantFetches int
	}{
		{
			name:  "cancelled mid traversal",
			start: wiki("Pianist"),
			interrupt: func(f *gameFixture) context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				f.fetcher.onCall = func(address string) {
					if address == wiki("Musician") {
						cancel()
					}
				}
				return ctx
			},
			wantErr:     context.Canceled,
			wantQueued:  true,
			wantFetches: 2,
		},
		{
			name:  "deadline passed",
			start: wiki("Pianist"),
			interrupt: func(f *gameFixture) context.Context {
				ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
				t.Cleanup(cancel)
				return ctx
			},
			wantErr:     context.DeadlineExceeded,
			wantQueued:  true,
			wantFetches: 0,
		},
		{
			name:  "invalid start is dropped",
			start: "https://example.com/wiki/Pianist",
			interrupt: func(f *gameFixture) context.Context {
				return context.Background()
			},
			wantErr:     ErrInvalidInput,
			wantQueued:  false,
			wantFetches: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newGameFixture(t, true)
			job := &entity.TraversalJob{ID: utils.HashURL(tc.start), Start: tc.start}
			require.NoError(t, f.queue.Push(context.Background(), job))

			processed, err := f.game.ProcessNext(tc.interrupt(f))
			assert.True(t, processed)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantFetches, f.fetcher.callCount())

			size, err := f.queue.Size(context.Background())
			require.NoError(t, err)
			if !tc.wantQueued {
				assert.Zero(t, size)
				return
			}
			require.EqualValues(t, 1, size)
			assert.Same(t, job, f.queue.jobs[0])
			assert.Empty(t, f.results.results, "interrupted traversals are not recorded")
		})
	}
}

func TestSubmitWithoutQueue(t *testing.T) {
	f := newGameFixture(t, false)

	_, err := f.game.Submit(context.Background(), wiki("Pianist"))
	assert.ErrorIs(t, err, ErrQueueDisabled)
}

func TestResultNotFound(t *testing.T) {
	f := newGameFixture(t, false)

	_, err := f.game.Result(context.Background(), wiki("Unknown"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecentListsNewestFirst(t *testing.T) {
	f := newGameFixture(t, false)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < MaxRecentLimit+5; i++ {
		start := wiki(fmt.Sprintf("Page_%d", i))
		f.results.results[start] = &entity.TraversalResult{
			Start:      start,
			Outcome:    entity.OutcomeDeadEnd,
			Path:       []string{utils.PageName(start)},
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	testCases := []struct {
		name      string
		limit     int
		wantLen   int
		wantFirst string
	}{
		{name: "explicit limit", limit: 3, wantLen: 3, wantFirst: "Page_104"},
		{name: "default limit", limit: 0, wantLen: DefaultRecentLimit, wantFirst: "Page_104"},
		{name: "negative limit", limit: -1, wantLen: DefaultRecentLimit, wantFirst: "Page_104"},
		{name: "capped limit", limit: 1000, wantLen: MaxRecentLimit, wantFirst: "Page_104"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := f.game.Recent(context.Background(), tc.limit)
			require.NoError(t, err)
			require.Len(t, results, tc.wantLen)
			assert.Equal(t, tc.wantFirst, results[0].Path[0])
			for i := 1; i < len(results); i++ {
				assert.False(t, results[i].FinishedAt.After(results[i-1].FinishedAt))
			}
		})
	}
}

func TestRecentWrapsStorageError(t *testing.T) {
	f := newGameFixture(t, false)
	f.results.listErr = errors.New("connection reset")

	_, err := f.game.Recent(context.Background(), 5)
	assert.ErrorContains(t, err, "connection reset")
}

func TestWorkerPoolDrainsQueue(t *testing.T) {
	f := newGameFixture(t, true)
	ctx := context.Background()
	for _, name := range []string{"Pianist", "President"} {
		_, err := f.game.Submit(ctx, wiki(name))
		require.NoError(t, err)
	}

	pool := NewWorkerPool(f.game, 2, 5*time.Millisecond, zap.NewNop())
	pool.Start(ctx)
	assert.Eventually(t, func() bool {
		_, errA := f.game.Result(ctx, wiki("Pianist"))
		_, errB := f.game.Result(ctx, wiki("President"))
		return errA == nil && errB == nil
	}, time.Second, 5*time.Millisecond)
	pool.Stop()

	size, err := f.queue.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestSummary(t *testing.T) {
	reached := &entity.TraversalResult{
		Outcome: entity.OutcomeReached,
		Path:    []string{"Pianist", "Musician", "Philosophy"},
	}
	assert.Equal(t,
		"You have to visit 3 pages and click 2 links to get to the Philosophy Wikipedia page from the Pianist Wikipedia page.",
		Summary(reached, "Philosophy"))

	looped := &entity.TraversalResult{Outcome: entity.OutcomeLooped, Path: []string{"A", "B"}}
	assert.Equal(t, "You found an exception! The wikipedia page of A does not go to Philosophy", Summary(looped, "Philosophy"))

	failed := &entity.TraversalResult{Outcome: entity.OutcomeFetchFailed, Path: []string{"A"}, FailureReason: "boom"}
	assert.Contains(t, Summary(failed, "Philosophy"), "boom")
}
