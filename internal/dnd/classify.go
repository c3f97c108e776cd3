package dnd

import "fmt"

// VerticalPosition is the pointer's band within the target height.
type VerticalPosition uint8

// Vertical bands.
const (
	Top VerticalPosition = iota
	Middle
	Bottom
)

// String returns the band name.
func (v VerticalPosition) String() string {
	switch v {
	case Top:
		return "top"
	case Middle:
		return "middle"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("vertical(%d)", v)
	}
}

// HorizontalPosition is the pointer's band within the target width.
type HorizontalPosition uint8

// Horizontal bands.
const (
	Left HorizontalPosition = iota
	Center
	Right
)

// String returns the band name.
func (h HorizontalPosition) String() string {
	switch h {
	case Left:
		return "left"
	case Center:
		return "center"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("horizontal(%d)", h)
	}
}

// Intent is the resolved drop semantics.
type Intent uint8

// Drop intents.
const (
	IntentNone Intent = iota
	IntentBefore
	IntentAfter
	IntentInside
	IntentLeading
	IntentTrailing
)

var intentNames = [...]string{"none", "before", "after", "inside", "leading", "trailing"}

// String returns the intent name.
func (i Intent) String() string {
	if int(i) < len(intentNames) {
		return intentNames[i]
	}
	return fmt.Sprintf("intent(%d)", i)
}

// Classification is the pointer position relative to a target rectangle.
type Classification struct {
	Vertical   VerticalPosition
	Horizontal HorizontalPosition
	// FX and FY are the clamped fractional offsets within the rectangle.
	FX, FY float64
}

// Classify places pt within rect using the thresholds in cfg.
func Classify(rect Rect, pt Point, cfg Config) (Classification, error) {
	if rect.IsEmpty() {
		return Classification{}, ErrUnresolvedGeometry
	}
	fx, fy := rect.Fraction(pt)
	c := Classification{FX: fx, FY: fy, Vertical: Middle, Horizontal: Center}

	switch {
	case fy < cfg.VerticalTop:
		c.Vertical = Top
	case fy > cfg.VerticalBottom:
		c.Vertical = Bottom
	}
	switch {
	case fx < cfg.HorizontalLeft:
		c.Horizontal = Left
	case fx > cfg.HorizontalRight:
		c.Horizontal = Right
	}
	return c, nil
}

// Intent maps a classification to drop semantics. Non-nestable targets
// short-circuit to before/after, splitting the middle band at the center
// line.
func (c Classification) Intent(nestable bool) Intent {
	if !nestable {
		switch c.Vertical {
		case Top:
			return IntentBefore
		case Bottom:
			return IntentAfter
		}
		if c.FY < 0.5 {
			return IntentBefore
		}
		return IntentAfter
	}

	switch {
	case c.Vertical == Middle && c.Horizontal == Left:
		return IntentLeading
	case c.Horizontal == Right:
		return IntentTrailing
	case c.Horizontal == Center:
		return IntentInside
	case c.Vertical == Top:
		return IntentBefore
	default:
		return IntentAfter
	}
}
