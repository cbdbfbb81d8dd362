package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidConfig   = fmt.Errorf("inbox: invalid config")
	ErrNotFound        = fmt.Errorf("inbox: not found")
	ErrForbidden       = fmt.Errorf("inbox: forbidden")
	ErrUnauthenticated = fmt.Errorf("inbox: unauthenticated")
	ErrInvalidParams   = fmt.Errorf("inbox: invalid params")
)

// Stack-carrying helpers from pkg/errors.
var (
	Wrapf     = errors.Wrapf
	Errorf    = errors.Errorf
	New       = errors.New
	WithStack = errors.WithStack
	Is        = errors.Is
	As        = errors.As
)
