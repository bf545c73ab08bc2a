package colorregion

import "fmt"

// ExtractionError reports that no pixel buffer could be obtained for an
// image. It is returned as-is; retrying with the same input fails again.
type ExtractionError struct {
	Op  string // step that failed, e.g. "clone" or "buffer"
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("pixel extraction failed (%s): %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
