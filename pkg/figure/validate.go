package figure

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Severity indicates whether a validation finding blocks reconstruction
// or is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks reconstruction
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single finding about a plane set.
type ValidationError struct {
	Plane    int // offending plane, -1 for the whole set
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if e.Plane < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] plane %d: %s", e.Severity, e.Plane, e.Message)
}

// Validate checks a plane set before reconstruction. It never mutates
// planes.
//
// Errors: zero or non-finite vectors, exact duplicates.
// Warnings: fewer than four planes (cannot bound a solid), and planes made
// redundant by a closer parallel plane.
func Validate(planes []r3.Vec) []ValidationError {
	var errs []ValidationError

	if len(planes) < 4 {
		errs = append(errs, ValidationError{
			Plane:    -1,
			Message:  fmt.Sprintf("%d planes cannot bound a solid, need at least 4", len(planes)),
			Severity: SeverityWarning,
		})
	}

	first := make(map[r3.Vec]int)
	for i, p := range planes {
		if !finite(p) {
			errs = append(errs, ValidationError{Plane: i, Message: fmt.Sprintf("not finite: %v", p), Severity: SeverityError})
			continue
		}
		if p == (r3.Vec{}) {
			errs = append(errs, ValidationError{Plane: i, Message: "zero vector has no normal", Severity: SeverityError})
			continue
		}
		if j, ok := first[p]; ok {
			errs = append(errs, ValidationError{Plane: i, Message: fmt.Sprintf("duplicate of plane %d", j), Severity: SeverityError})
			continue
		}
		first[p] = i
	}

	for i, p := range planes {
		if !finite(p) || p == (r3.Vec{}) {
			continue
		}
		for j, q := range planes {
			if i == j || !finite(q) || q == (r3.Vec{}) || p == q {
				continue
			}
			if r3.Norm(r3.Cross(p, q)) == 0 && r3.Dot(p, q) > 0 && r3.Norm(q) < r3.Norm(p) {
				errs = append(errs, ValidationError{
					Plane:    i,
					Message:  fmt.Sprintf("shadowed by closer parallel plane %d", j),
					Severity: SeverityWarning,
				})
				break
			}
		}
	}
	return errs
}

// HasErrors reports whether any finding blocks reconstruction.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

func finite(p r3.Vec) bool {
	for _, c := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
