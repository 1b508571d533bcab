package app

import "sync/atomic"

// Stage is where the user is in the checkout flow.
type Stage int32

// Checkout flow stages.
const (
	StageBrowsing Stage = iota
	StagePreviewOpen
	StageBasketOpen
	StageOrderFormOpen
	StageContactsFormOpen
	StageSubmitting
	StageSuccessShown
)

var stageNames = [...]string{
	StageBrowsing:         "browsing",
	StagePreviewOpen:      "preview",
	StageBasketOpen:       "basket",
	StageOrderFormOpen:    "order",
	StageContactsFormOpen: "contacts",
	StageSubmitting:       "submitting",
	StageSuccessShown:     "success",
}

// String returns the stage name.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// transitions lists the allowed moves. Closing the modal (back to
// browsing) is allowed from every stage and is not listed.
var transitions = map[Stage][]Stage{
	StageBrowsing:         {StagePreviewOpen, StageBasketOpen},
	StagePreviewOpen:      {StagePreviewOpen, StageBasketOpen},
	StageBasketOpen:       {StageBasketOpen, StageOrderFormOpen},
	StageOrderFormOpen:    {StageContactsFormOpen},
	StageContactsFormOpen: {StageContactsFormOpen, StageSubmitting},
	StageSubmitting:       {StageSuccessShown, StageContactsFormOpen},
	StageSuccessShown:     {},
}

// Flow tracks the checkout stage. Moves happen on the event loop; Stage may
// be read from any goroutine.
type Flow struct {
	stage atomic.Int32
}

// Stage returns the current stage.
func (f *Flow) Stage() Stage {
	return Stage(f.stage.Load())
}

// CanMove reports whether the flow allows moving to next.
func (f *Flow) CanMove(next Stage) bool {
	if next == StageBrowsing {
		return true
	}
	for _, s := range transitions[f.Stage()] {
		if s == next {
			return true
		}
	}
	return false
}

// Move switches to next, or returns a *TransitionError.
func (f *Flow) Move(next Stage) error {
	if !f.CanMove(next) {
		return &TransitionError{From: f.Stage(), To: next}
	}
	f.stage.Store(int32(next))
	return nil
}
