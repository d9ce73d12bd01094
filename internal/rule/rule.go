// Package rule defines the local transition rule plug-in interface consumed
// by the quadtree engine, together with the bounded-grid suffix grammar
// shared by every rule family. Concrete families live in the subpackages
// generations, jvn, table, tree and loader.
package rule

// MaxRuleSize caps the length of any rule string handed to SetRule.
const MaxRuleSize = 2000

// Rule is the plug-in interface every rule family implements. A Rule turns a
// 3x3 neighborhood of cell states into the next state of the center cell and
// owns the textual rule syntax of its family.
type Rule interface {
	// NumCellStates returns the alphabet size, in [2, 256].
	NumCellStates() int

	// DefaultRule returns the canonical default rule string of the family.
	DefaultRule() string

	// SetRule parses, canonicalizes and installs the rule. On failure the
	// previously installed rule remains active.
	SetRule(s string) error

	// GetRule returns the canonical string of the last successful SetRule.
	GetRule() string

	// NextState computes the next state of the center cell c from its Moore
	// neighborhood. Families with smaller neighborhoods ignore the extra
	// arguments.
	NextState(nw, n, ne, w, c, e, sw, s, se byte) byte

	// Palette returns the default render colors for this family.
	Palette() *Palette

	// Grid returns the bounded-grid spec of the current rule (zero value
	// when the universe is unbounded).
	Grid() GridSpec
}

// Palette carries the per-state default colors a renderer uses when the
// pattern file supplies none.
type Palette struct {
	// Gradient, when true, asks the renderer to interpolate live states
	// between From and To instead of using the explicit table.
	Gradient bool
	From     [3]uint8
	To       [3]uint8

	// R, G, B are explicit per-state colors (index 0 is the dead state).
	R [256]uint8
	G [256]uint8
	B [256]uint8
}

// gradientPalette is the red-to-yellow default shared by most families.
func gradientPalette() *Palette {
	p := &Palette{
		Gradient: true,
		From:     [3]uint8{255, 0, 0},
		To:       [3]uint8{255, 255, 0},
	}
	for i := 0; i < 256; i++ {
		p.R[i] = 255
		p.G[i] = 255
		p.B[i] = 255
	}
	return p
}

// GradientPalette returns a fresh copy of the default red-to-yellow palette.
func GradientPalette() *Palette {
	return gradientPalette()
}
