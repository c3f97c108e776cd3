package dnd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/blockstorm/internal/engine/node"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid drag config")

// Config holds the classification thresholds and indicator metrics.
// Threshold fields are fractions of the target rectangle.
type Config struct {
	// VerticalTop is the y fraction below which the pointer is at the top.
	VerticalTop float64
	// VerticalBottom is the y fraction above which the pointer is at the bottom.
	VerticalBottom float64
	// HorizontalLeft is the x fraction below which the pointer is on the left.
	HorizontalLeft float64
	// HorizontalRight is the x fraction above which the pointer is on the right.
	HorizontalRight float64

	IndicatorWidth     float64
	IndicatorThickness float64
	NestIndent         float64
	NestGap            float64

	// NonNestable lists node types that never take dropped children.
	NonNestable []string
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		VerticalTop:        1.0 / 3,
		VerticalBottom:     2.0 / 3,
		HorizontalLeft:     0.25,
		HorizontalRight:    0.75,
		IndicatorWidth:     24,
		IndicatorThickness: 2,
		NestIndent:         16,
		NestGap:            6,
		NonNestable:        []string{node.TypeDivider, node.TypeImage, node.TypeCode},
	}
}

// Validate checks threshold ordering and metric signs.
func (c Config) Validate() error {
	if c.VerticalTop < 0 || c.VerticalTop > c.VerticalBottom || c.VerticalBottom > 1 {
		return fmt.Errorf("%w: vertical thresholds %g/%g", ErrInvalidConfig, c.VerticalTop, c.VerticalBottom)
	}
	if c.HorizontalLeft < 0 || c.HorizontalLeft > c.HorizontalRight || c.HorizontalRight > 1 {
		return fmt.Errorf("%w: horizontal thresholds %g/%g", ErrInvalidConfig, c.HorizontalLeft, c.HorizontalRight)
	}
	if c.IndicatorWidth < 0 || c.IndicatorThickness < 0 || c.NestIndent < 0 || c.NestGap < 0 {
		return fmt.Errorf("%w: negative indicator metric", ErrInvalidConfig)
	}
	return nil
}

// IsNestable reports whether nodes of typ may receive dropped children.
func (c Config) IsNestable(typ string) bool {
	return !slices.Contains(c.NonNestable, typ)
}
