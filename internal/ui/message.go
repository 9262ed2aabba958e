package ui

import (
	"github.com/desertthunder/tunebar/internal/dispatch"
)

// resultsMsg carries one dispatch's output back to the model. seq orders
// overlapping dispatches; a nil result slice is the dispatcher's
// superseded sentinel and leaves the current list untouched.
type resultsMsg struct {
	seq     uint64
	results []dispatch.Result
}

// selectionMsg reports the outcome of running a result's action.
type selectionMsg struct {
	title string
	ok    bool
}
