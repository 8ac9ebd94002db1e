package crystal

import "gonum.org/v1/gonum/spatial/r3"

// Face is one polygon of the mesh: a counter-clockwise loop of point
// indices lying on a single plane.
type Face struct {
	Plane int   `json:"plane"`
	Loop  []int `json:"loop"`
}

// Mesh is the unwelded output of Assemble. Every face owns its own points;
// coincident corners of neighbouring faces are separate entries.
type Mesh struct {
	Label  string   `json:"label"`
	Points []r3.Vec `json:"points"`
	Faces  []Face   `json:"faces"`
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// Loops returns the faces as plain index loops.
func (m *Mesh) Loops() [][]int {
	loops := make([][]int, len(m.Faces))
	for i, f := range m.Faces {
		loops[i] = f.Loop
	}
	return loops
}
