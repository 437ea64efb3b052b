package calculation

import (
	"fmt"

	"boqtracker/internal/domain"
)

// ImportError carries a decoder failure for one file unchanged.
type ImportError struct {
	File string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.File, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Is makes every ImportError match domain.ErrDecode.
func (e *ImportError) Is(target error) bool { return target == domain.ErrDecode }
