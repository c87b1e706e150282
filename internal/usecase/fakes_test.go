package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/repository"
)

const (
	testBase   = "https://en.wikipedia.org"
	testTarget = "/wiki/Philosophy"
)

func wiki(name string) string {
	return testBase + "/wiki/" + name
}

// articleHTML renders a minimal article whose first eligible link is next.
// An empty next produces a page without eligible links.
func articleHTML(next string) string {
	body := `<p>A page (<a href="/wiki/Help:Pronunciation">listen</a>) without links.</p>`
	if next != "" {
		body = fmt.Sprintf(`<p>A page (<a href="/wiki/Help:Pronunciation">listen</a>) that is a kind of `+
			`<a href="/wiki/%s">%s</a>.<sup class="reference"><a href="#cite_note-1">[1]</a></sup></p>`, next, next)
	}
	return `<html><body><div id="mw-content-text">` +
		`<table class="infobox"><tbody><tr><td><p><a href="/wiki/Infobox_link">Infobox</a></p></td></tr></tbody></table>` +
		body + `</div></body></html>`
}

// fakeFetcher serves pages from a map keyed by full address.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	calls  []string
	onCall func(address string)
}

func newChainFetcher(links map[string]string) *fakeFetcher {
	f := &fakeFetcher{pages: make(map[string]string), errs: make(map[string]error)}
	for from, to := range links {
		f.pages[wiki(from)] = articleHTML(to)
	}
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, address string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	onCall := f.onCall
	page, ok := f.pages[address]
	err := f.errs[address]
	f.mu.Unlock()

	if onCall != nil {
		onCall(address)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", repository.ErrPageNotFound
	}
	return page, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTraversalRepo struct {
	mu      sync.Mutex
	results map[string]*entity.TraversalResult
	saveErr error
	listErr error
}

func newFakeTraversalRepo() *fakeTraversalRepo {
	return &fakeTraversalRepo{results: make(map[string]*entity.TraversalResult)}
}

func (r *fakeTraversalRepo) Save(ctx context.Context, result *entity.TraversalResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.results[result.Start] = result
	return nil
}

func (r *fakeTraversalRepo) FindByStart(ctx context.Context, start string) (*entity.TraversalResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result, ok := r.results[start]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return result, nil
}

func (r *fakeTraversalRepo) List(ctx context.Context, limit int) ([]*entity.TraversalResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entity.TraversalResult, 0, len(r.results))
	for _, result := range r.results {
		out = append(out, result)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.After(out[j].FinishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeEdgeRepo struct {
	mu    sync.Mutex
	edges map[entity.GraphEdge]struct{}
}

func newFakeEdgeRepo() *fakeEdgeRepo {
	return &fakeEdgeRepo{edges: make(map[entity.GraphEdge]struct{})}
}

func (r *fakeEdgeRepo) AddEdges(ctx context.Context, edges []entity.GraphEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range edges {
		r.edges[e] = struct{}{}
	}
	return nil
}

func (r *fakeEdgeRepo) ListEdges(ctx context.Context) ([]entity.GraphEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.GraphEdge
	for e := range r.edges {
		out = append(out, e)
	}
	return out, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []*entity.TraversalJob
}

func (q *fakeQueue) Push(ctx context.Context, job *entity.TraversalJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Pop(ctx context.Context) (*entity.TraversalJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, repository.ErrQueueEmpty
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *fakeQueue) Size(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}
