package physics

import (
	"fmt"
	"strings"
)

const (
	BackendChipmunk = "chipmunk"
	BackendGrid     = "grid"
)

// New builds the named backend for a level of the given size. cell only
// matters to the grid backend.
func New(name string, width, height, cell int, gravity Vector) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendChipmunk:
		return NewChipmunkAdapter(gravity), nil
	case BackendGrid:
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("physics: grid backend needs a positive size, got %dx%d", width, height)
		}
		return NewGridAdapter(width, height, cell, gravity), nil
	default:
		return nil, fmt.Errorf("physics: unknown backend %q", name)
	}
}
