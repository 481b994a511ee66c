package stages

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default virtual stage dimensions. All content is authored against this
// fixed canvas regardless of the window size.
const (
	StageWidth  = 2048
	StageHeight = 2048
)

// Vec2 is a 2D vector used for positions and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// StageCoordinates is a point in stage space: origin top-left, (0,0)-(W,H).
type StageCoordinates struct {
	X, Y float64
}

// WorldCoordinates is a point in world space: origin at the stage center,
// Y growing upward.
type WorldCoordinates struct {
	X, Y float64
}

// Tier is a coarse device-capability classification.
type Tier uint8

const (
	TierAuto Tier = iota // detect from the platform (config only)
	TierLow              // software or weak GPUs
	TierMid              // integrated and mobile GPUs
	TierHigh             // discrete desktop GPUs
)

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	default:
		return "auto"
	}
}

// ParseTier converts a tier name to a Tier. The empty string and "auto" map
// to TierAuto.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TierAuto, nil
	case "low":
		return TierLow, nil
	case "mid", "medium":
		return TierMid, nil
	case "high":
		return TierHigh, nil
	}
	return TierAuto, fmt.Errorf("unknown tier %q", s)
}

// UnmarshalYAML decodes a tier from its name.
func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML encodes a tier as its name.
func (t Tier) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// Grade is a coarse rating of recent frame rate.
type Grade uint8

const (
	GradeExcellent Grade = iota // >= 55 fps
	GradeGood                   // >= 45 fps
	GradeFair                   // >= 30 fps
	GradePoor                   // below 30 fps
)

// String returns the lowercase grade name.
func (g Grade) String() string {
	switch g {
	case GradeExcellent:
		return "excellent"
	case GradeGood:
		return "good"
	case GradeFair:
		return "fair"
	default:
		return "poor"
	}
}
