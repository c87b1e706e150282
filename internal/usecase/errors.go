package usecase

import (
	"errors"
	"fmt"

	"github.com/user/philosophy-walker/internal/repository"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrQueueDisabled = errors.New("traversal queue is not configured")
)

// InvalidInputError reports a start address that is not a page on the
// expected host. The traversal never starts.
type InvalidInputError struct {
	Address string
	Reason  string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid start address %q: %s", e.Address, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// FetchError reports a page that could not be retrieved or parsed mid-traversal.
type FetchError struct {
	Address string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Address, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// errParse marks a page whose HTML could not be turned into a document.
var errParse = errors.New("page could not be parsed")

// errorType maps a fetch failure to a metric label.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, repository.ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, repository.ErrNavigationFailed):
		return "navigation"
	case errors.Is(err, repository.ErrPageNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrContentRestricted):
		return "restricted"
	case errors.Is(err, errParse):
		return "parse"
	default:
		return "unknown"
	}
}
