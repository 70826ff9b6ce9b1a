package ignore

import (
	"errors"
	"fmt"
)

// ErrInvalidPattern is matched by every *PatternError.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternError reports a glob that could not be compiled.
type PatternError struct {
	Glob   string // the offending line, as written
	Source string // ignore file path, empty for overrides
	Line   int    // 1-indexed line number, 0 when not from a file
	Reason string
}

func (e *PatternError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("ignore: %s:%d: invalid pattern %q: %s", e.Source, e.Line, e.Glob, e.Reason)
	}
	return fmt.Sprintf("ignore: invalid pattern %q: %s", e.Glob, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidPattern) report true.
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}
