package runner

import "fmt"

// InvariantError reports a run whose result count differs from its input
// count. It always indicates a dropped or duplicated unit of work.
type InvariantError struct {
	Strategy string
	Want     int
	Got      int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: completeness invariant violated: %d results for %d samples", e.Strategy, e.Got, e.Want)
}

// UnitError reports a unit of work that did not complete normally.
type UnitError struct {
	Strategy string
	Index    int
	Err      error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s: unit %d failed: %v", e.Strategy, e.Index, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

func checkComplete(strategy string, want, got int) error {
	if want != got {
		return &InvariantError{Strategy: strategy, Want: want, Got: got}
	}
	return nil
}
