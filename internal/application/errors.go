package application

import (
	"errors"
	"fmt"

	"github.com/oksasatya/salon-connect/internal/domain/repository"
)

// Error kinds returned by every service. Wrap with fmt.Errorf("%w: ...") and
// test with errors.Is.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInconsistent reports a mutation that was only partially applied.
	ErrInconsistent = errors.New("inconsistent")
	ErrStore        = errors.New("store error")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrSalonNotFound      = fmt.Errorf("%w: salon not found", ErrNotFound)
	ErrSelfFollow         = fmt.Errorf("%w: cannot follow yourself", ErrBadRequest)
)

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}

// storeErr classifies a repository error. notFound is returned for
// repository.ErrNotFound; unclassified errors become ErrStore.
func storeErr(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repository.ErrPartialWrite):
		return fmt.Errorf("%w: %v", ErrInconsistent, err)
	default:
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
}
