// Package palette provides the fixed color palette that !ProcColor draws
// from. Drawing is deterministic: an amount of N always yields the first N
// palette entries in order, independent of the random seed.
package palette

import (
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// Color is one RGB triple.
type Color struct {
	R int
	G int
	B int
}

// Palette is an ordered list of colors.
type Palette []Color

// Default returns the built-in ten-color palette: primaries and secondaries
// first, then grays and the dark variants.
func Default() Palette {
	return Palette{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{255, 255, 0},
		{255, 0, 255},
		{0, 255, 255},
		{192, 192, 192},
		{128, 128, 128},
		{128, 0, 0},
		{0, 128, 0},
	}
}

// Len returns the number of colors.
func (p Palette) Len() int { return len(p) }

// Node returns the i-th color as an "!RGB" mapping node. The caller must
// keep i within range.
func (p Palette) Node(i int) ir.Node {
	c := p[i]
	return &ir.Mapping{Tag: "!RGB", Entries: []ir.Entry{
		{Key: "r", Value: &ir.Scalar{Value: int64(c.R)}},
		{Key: "g", Value: &ir.Scalar{Value: int64(c.G)}},
		{Key: "b", Value: &ir.Scalar{Value: int64(c.B)}},
	}}
}
