package control

import (
	"fmt"
	"strings"
)

// AnimationType selects the procedural idle animation applied to the loaded asset.
type AnimationType int

const (
	// AnimationNone leaves the asset transform untouched.
	AnimationNone AnimationType = iota
	// AnimationFloat bobs the asset vertically.
	AnimationFloat
	// AnimationRotate spins the asset about the vertical axis.
	AnimationRotate
)

// String returns the lower-case identifier used in configuration files and logs.
func (t AnimationType) String() string {
	switch t {
	case AnimationFloat:
		return "float"
	case AnimationRotate:
		return "rotate"
	default:
		return "none"
	}
}

// Label returns the capitalized name shown to the user.
func (t AnimationType) Label() string {
	switch t {
	case AnimationFloat:
		return "Float"
	case AnimationRotate:
		return "Rotate"
	default:
		return "None"
	}
}

// ParseAnimationType parses the identifiers produced by String, ignoring case and surrounding space.
//
// Parameters:
//   - s: the identifier to parse
//
// Returns:
//   - AnimationType: the parsed type
//   - error: error if s names no animation type
func ParseAnimationType(s string) (AnimationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return AnimationNone, nil
	case "float":
		return AnimationFloat, nil
	case "rotate":
		return AnimationRotate, nil
	}
	return AnimationNone, fmt.Errorf("control: unknown animation type %q", s)
}
