package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/extractor"
	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/metrics"
	"github.com/user/philosophy-walker/pkg/utils"
)

// Traverser walks from a start page by always following the first eligible link.
type Traverser interface {
	// Traverse walks from start until it reaches the target page, revisits a
	// page or finds no link to follow. Loops, dead ends and fetch failures are
	// reported through the result; only an invalid start address or a
	// cancelled context return an error.
	Traverse(ctx context.Context, start string) (*entity.TraversalResult, error)
	// Validate returns the canonical form of start, or an *InvalidInputError.
	Validate(start string) (string, error)
	// Target is the address that ends a successful traversal.
	Target() string
}

type traversalUseCase struct {
	fetcher repository.PageFetcher
	base    *url.URL
	target  string
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewTraverser creates a new traversal use case. baseURL is the scheme and
// host every visited page must live on; targetPath is the target page path.
func NewTraverser(
	fetcher repository.PageFetcher,
	baseURL string,
	targetPath string,
	m *metrics.Metrics,
	logger *zap.Logger,
) (Traverser, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	target, err := utils.CanonicalURL(base.String() + targetPath)
	if err != nil {
		return nil, fmt.Errorf("invalid target path %q: %w", targetPath, err)
	}
	return &traversalUseCase{
		fetcher: fetcher,
		base:    base,
		target:  target,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (uc *traversalUseCase) Traverse(ctx context.Context, start string) (*entity.TraversalResult, error) {
	current, err := uc.Validate(start)
	if err != nil {
		return nil, err
	}

	log := uc.logger.With(zap.String("start", current))
	result := &entity.TraversalResult{
		Start:     current,
		Path:      []string{utils.PageName(current)},
		Addresses: []string{current},
		StartedAt: uc.now(),
	}
	visited := make(map[string]struct{})
	var fetchErr error

walk:
	for {
		if current == uc.target {
			result.Outcome = entity.OutcomeReached
			break
		}
		visited[current] = struct{}{}

		// Aborting between steps leaves nothing behind but the local state.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("traversal from %s aborted: %w", start, err)
		}

		next, found, err := uc.nextAddress(ctx, current)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("traversal from %s aborted: %w", start, ctxErr)
			}
			fetchErr = &FetchError{Address: current, Err: err}
			result.Outcome = entity.OutcomeFetchFailed
			result.FailureReason = fetchErr.Error()
			log.Warn("page fetch failed, ending traversal", zap.String("page", current), zap.Error(err))
			break walk
		case !found:
			result.Outcome = entity.OutcomeDeadEnd
			result.FailureReason = fmt.Sprintf("no eligible link on %s", current)
			break walk
		case !uc.onBase(next):
			result.Outcome = entity.OutcomeDeadEnd
			result.FailureReason = fmt.Sprintf("first link of %s leaves %s: %s", current, uc.base.Host, next)
			break walk
		}

		if _, seen := visited[next]; seen {
			result.Outcome = entity.OutcomeLooped
			result.FailureReason = fmt.Sprintf("%s links back to %s", utils.PageName(current), utils.PageName(next))
			break
		}

		log.Debug("following first link", zap.String("from", current), zap.String("to", next))
		result.Path = append(result.Path, utils.PageName(next))
		result.Addresses = append(result.Addresses, next)
		current = next
	}

	result.Reached = result.Outcome == entity.OutcomeReached
	result.FinishedAt = uc.now()
	uc.metrics.ObserveTraversal(string(result.Outcome), errorType(fetchErr), result.Hops())

	log.Info("traversal finished",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("hops", result.Hops()),
		zap.Strings("path", result.Path),
	)
	return result, nil
}

// nextAddress fetches and parses page and returns the absolute address of its
// first eligible link. found is false for a dead end.
func (uc *traversalUseCase) nextAddress(ctx context.Context, page string) (next string, found bool, err error) {
	html, err := uc.fetcher.Fetch(ctx, page)
	if err != nil {
		return "", false, err
	}

	doc, err := extractor.ParseDocumentString(html)
	if err != nil {
		return "", false, errors.Join(errParse, err)
	}

	link, ok := extractor.ResolveFirst(doc)
	if !ok {
		return "", false, nil
	}

	abs, err := utils.ToAbsoluteURL(uc.base, link.Href)
	if err == nil {
		abs, err = utils.CanonicalURL(abs)
	}
	if err != nil {
		uc.logger.Warn("first link has an unusable href", zap.String("page", page), zap.String("href", link.Href), zap.Error(err))
		return "", false, nil
	}
	return abs, true, nil
}

func (uc *traversalUseCase) Target() string {
	return uc.target
}

// Validate checks that start is a page address on the base host and returns
// its canonical form, the key used for visited pages and the target check.
func (uc *traversalUseCase) Validate(start string) (string, error) {
	start = strings.TrimSpace(start)
	u, err := url.Parse(start)
	if err != nil {
		return "", &InvalidInputError{Address: start, Reason: err.Error()}
	}
	if !u.IsAbs() || u.Host == "" {
		return "", &InvalidInputError{Address: start, Reason: "not an absolute URL"}
	}
	if !uc.onBase(start) {
		return "", &InvalidInputError{Address: start, Reason: "not a page on " + uc.base.Scheme + "://" + uc.base.Host}
	}
	if strings.Trim(u.Path, "/") == "" {
		return "", &InvalidInputError{Address: start, Reason: "no page path"}
	}
	canonical, err := utils.CanonicalURL(start)
	if err != nil {
		return "", &InvalidInputError{Address: start, Reason: err.Error()}
	}
	return canonical, nil
}

func (uc *traversalUseCase) onBase(address string) bool {
	u, err := url.Parse(address)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, uc.base.Scheme) && strings.EqualFold(u.Host, uc.base.Host)
}
