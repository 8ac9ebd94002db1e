package crystal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a reconstruction failure.
type ErrorKind int

const (
	// ParallelPlanes: the traced plane and the current edge plane are
	// parallel, so no edge direction exists. Recoverable per face.
	ParallelPlanes ErrorKind = iota
	// NoIntersection: a nearest-plane query found no candidate; the planes
	// do not close the face along that edge. Recoverable per face.
	NoIntersection
	// InsufficientBoundaryPoints: a face closed with fewer than three
	// distinct points. Fatal for the whole reconstruction.
	InsufficientBoundaryPoints
	// EnvelopeBreach: face adjacency is inconsistent, typically because too
	// many faces meet at one vertex. Reported, never corrected.
	EnvelopeBreach
)

func (k ErrorKind) String() string {
	switch k {
	case ParallelPlanes:
		return "parallel planes"
	case NoIntersection:
		return "no intersection found"
	case InsufficientBoundaryPoints:
		return "insufficient boundary points"
	case EnvelopeBreach:
		return "envelope breach"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels for errors.Is matching against a *FaceError.
var (
	ErrParallelPlanes             = errors.New("crystal: parallel planes")
	ErrNoIntersection             = errors.New("crystal: no intersection found")
	ErrInsufficientBoundaryPoints = errors.New("crystal: insufficient boundary points")
	ErrEnvelopeBreach             = errors.New("crystal: envelope breach")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case ParallelPlanes:
		return ErrParallelPlanes
	case NoIntersection:
		return ErrNoIntersection
	case InsufficientBoundaryPoints:
		return ErrInsufficientBoundaryPoints
	case EnvelopeBreach:
		return ErrEnvelopeBreach
	}
	return nil
}

// FaceError describes a failure while tracing one face.
type FaceError struct {
	Kind      ErrorKind
	Plane     int   // plane being traced
	Adjacent  int   // edge plane at the point of failure, -1 if none
	Contacted []int // planes contacted before the failure
}

func (e *FaceError) Error() string {
	msg := fmt.Sprintf("crystal: %s tracing plane %d", e.Kind, e.Plane)
	if e.Adjacent >= 0 {
		msg += fmt.Sprintf(" from plane %d", e.Adjacent)
	}
	if len(e.Contacted) > 0 {
		msg += fmt.Sprintf(" (contacted %v)", e.Contacted)
	}
	return msg
}

// Unwrap exposes the sentinel for e.Kind.
func (e *FaceError) Unwrap() error {
	return e.Kind.sentinel()
}
