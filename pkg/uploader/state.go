package uploader

import (
	"math"
)

// Phase enumerates the upload lifecycle. There are no terminal phases; the
// controller always returns to Idle via Reset.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseProcessing
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseProcessing:
		return "processing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the read-only result of a finished upload. Superseded wholesale
// when the next upload starts.
type Outcome struct {
	CompressedSize int64
	OriginalSize   int64
	Handle         *Handle
}

// SavedRatio reports floor(original/compressed). This is a ratio, not a
// percentage saved; values below 1 are valid for compressed > original and
// are never clamped.
func (o Outcome) SavedRatio() int64 {
	if o.CompressedSize <= 0 {
		return 0
	}
	return o.OriginalSize / o.CompressedSize
}

// State is one snapshot of the upload lifecycle, replaced wholesale on every
// transition. Generation ties it to the upload that produced it so a late
// response for an abandoned upload cannot overwrite newer state.
type State struct {
	Phase      Phase
	Percent    int
	Outcome    *Outcome
	Message    string
	Generation uint64
}

// Event is one input to the state machine.
type Event interface {
	generation() uint64
}

// FileSelected starts a new upload, superseding whatever came before.
type FileSelected struct {
	Generation uint64
}

// Progress reports bytes sent so far for the in-flight upload.
type Progress struct {
	Generation uint64
	Sent       int64
	Total      int64
}

// BodySent marks the request body as fully transmitted; the server response
// has not arrived yet.
type BodySent struct {
	Generation uint64
}

// Succeeded carries the decoded result of a successful upload.
type Succeeded struct {
	Generation uint64
	Outcome    Outcome
}

// Failed carries the human-readable failure message.
type Failed struct {
	Generation uint64
	Message    string
}

// Reset returns the machine to Idle.
type Reset struct {
	Generation uint64
}

func (e FileSelected) generation() uint64 { return e.Generation }
func (e Progress) generation() uint64     { return e.Generation }
func (e BodySent) generation() uint64     { return e.Generation }
func (e Succeeded) generation() uint64    { return e.Generation }
func (e Failed) generation() uint64       { return e.Generation }
func (e Reset) generation() uint64        { return e.Generation }

// Transition is the pure state machine step. Events from a generation other
// than the current one are ignored, except FileSelected and Reset from a
// newer generation, which supersede the in-flight upload.
func Transition(s State, ev Event) State {
	switch ev := ev.(type) {
	case FileSelected:
		if ev.Generation <= s.Generation {
			return s
		}
		return State{Phase: PhaseUploading, Percent: 0, Generation: ev.Generation}
	case Reset:
		if ev.Generation < s.Generation {
			return s
		}
		return State{Phase: PhaseIdle, Generation: ev.Generation}
	}

	if ev.generation() != s.Generation {
		return s
	}

	switch ev := ev.(type) {
	case Progress:
		if s.Phase != PhaseUploading {
			return s
		}
		pct := percentOf(ev.Sent, ev.Total)
		if pct < s.Percent {
			pct = s.Percent
		}
		s.Percent = pct
		return s
	case BodySent:
		if s.Phase != PhaseUploading {
			return s
		}
		s.Phase = PhaseProcessing
		s.Percent = 100
		return s
	case Succeeded:
		if s.Phase != PhaseProcessing {
			return s
		}
		outcome := ev.Outcome
		return State{Phase: PhaseDone, Percent: 100, Outcome: &outcome, Generation: s.Generation}
	case Failed:
		if s.Phase != PhaseUploading && s.Phase != PhaseProcessing {
			return s
		}
		// Progress always drops back to zero so no stuck indicator is left.
		return State{Phase: PhaseFailed, Percent: 0, Message: ev.Message, Generation: s.Generation}
	}

	return s
}

// percentOf clamps to [0,100] even when the transport reports values outside
// that range.
func percentOf(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(sent) / float64(total) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
