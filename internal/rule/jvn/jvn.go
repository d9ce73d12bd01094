// Package jvn implements the von Neumann 29-state automaton and its two
// 32-state extensions (Nobili32 and Hutton32). The transition is a pure
// function of the center cell and its four orthogonal neighbors; the
// diagonal neighbors are ignored.
package jvn

import (
	"fmt"
	"strings"

	"github.com/hashlife/internal/rule"
)

// Variant selects one of the three supported rules.
type Variant int

const (
	// JvN29 is von Neumann's original 29-state automaton.
	JvN29 Variant = iota
	// Nobili32 adds confluent crossing states.
	Nobili32
	// Hutton32 makes construction rotationally invariant and adds a
	// single-wire write-and-retract protocol.
	Hutton32
)

var ruleStrings = [...]string{"JvN29", "Nobili32", "Hutton32"}
var numStates = [...]int{29, 32, 32}

// Internal state encoding: direction in the low two bits, then flags for
// confluent, ordinary/special transmission and excitation.
const (
	dirEast  = 0
	dirNorth = 1
	dirWest  = 2
	dirSouth = 3
	flipDir  = 2
	dirMask  = 3
	conf     = 0x10
	otrans   = 0x20
	strans   = 0x40
	texc     = 0x80
	cdexc    = 0x80
	crossexc = 6
	cexc     = 1
)

// Neighbor-excitation summary bits produced by inputBits.
const (
	bitONexc    = 1
	bitOexcEW   = 2
	bitOexcNS   = 4
	bitOexc     = bitOexcNS | bitOexcEW
	bitSexc     = 8
	bitCexc     = 16
	bitNSIn     = 32
	bitEWIn     = 64
	bitNSOut    = 128
	bitEWOut    = 256
	bitCross    = bitNSIn | bitEWIn | bitNSOut | bitEWOut
	bitAnyOut   = bitNSOut | bitEWOut
	bitOexcOth  = 512
	bitSexcOth  = 1024
)

// uncompress maps the dense external states 0..31 to the sparse internal
// bit layout.
var uncompress = [...]byte{
	0,                      // dead
	1, 2, 3, 4, 5, 6, 7, 8, // sensitized construction states
	32, 33, 34, 35, // ordinary transmission
	160, 161, 162, 163, // ordinary active
	64, 65, 66, 67, // special transmission
	192, 193, 194, 195, // special active
	16, 144, // confluent
	17, 145, // excited confluent
	146, 148, 150, // crossing confluent
}

// compress is the inverse of uncompress (255 for unused codes).
var compress [256]byte

func init() {
	for i := range compress {
		compress[i] = 255
	}
	for i, v := range uncompress {
		compress[v] = byte(i)
	}
}

// cres resolves a completed sensitized chain to its final internal state.
var cres = [...]byte{0x22, 0x23, 0x40, 0x41, 0x42, 0x43, 0x10, 0x20, 0x21}

// inputBits summarizes what the neighbor in direction dir contributes to
// the center cell mcode. The confluent-state cases reproduce the behavior
// of the original simulator, which the paper leaves ambiguous.
func inputBits(mcode, code byte, dir byte) int {
	if code&(texc|otrans|strans|conf|cexc) == 0 {
		return 0
	}
	if code&conf != 0 {
		if mcode&(otrans|strans) != 0 && (mcode&dirMask)^flipDir == dir {
			return 0
		}
		if code&2 != 0 && dir&1 == 0 {
			return bitCexc
		}
		if code&4 != 0 && dir&1 != 0 {
			return bitCexc
		}
		if code&1 != 0 {
			return bitCexc
		}
		return 0
	}
	if code&(otrans|strans) == 0 {
		return 0
	}
	r := 0
	if code&dirMask == dir {
		if code&otrans != 0 {
			if dir&1 != 0 {
				r |= bitNSIn
				if code&texc != 0 {
					r |= bitOexcNS
				} else {
					r |= bitONexc
				}
			} else {
				r |= bitEWIn
				if code&texc != 0 {
					r |= bitOexcEW
				} else {
					r |= bitONexc
				}
			}
		} else if code&(strans|texc) == strans|texc {
			r |= bitSexc
		}
		if mcode&(otrans|strans) != 0 && (dir^(mcode&dirMask)) == 2 {
			// head-to-head; the excitation does not propagate
		} else {
			if r&bitOexc != 0 {
				r |= bitOexcOth
			}
			if r&bitSexc != 0 {
				r |= bitSexcOth
			}
		}
	} else {
		if dir&1 != 0 {
			r |= bitNSOut
		} else {
			r |= bitEWOut
		}
	}
	return r
}

// JvN is the rule.Rule implementation for the von Neumann family.
type JvN struct {
	variant Variant
	grid    rule.GridSpec
}

// New creates a JvN rule with the default JvN29 variant installed.
func New() *JvN {
	return &JvN{variant: JvN29}
}

// DefaultRule returns the canonical default rule name.
func (j *JvN) DefaultRule() string { return ruleStrings[JvN29] }

// NumCellStates returns 29 or 32 depending on the variant.
func (j *JvN) NumCellStates() int { return numStates[j.variant] }

// GetRule returns the canonical rule name plus any bounded-grid suffix.
func (j *JvN) GetRule() string {
	return ruleStrings[j.variant] + j.grid.CanonicalSuffix()
}

// Grid returns the bounded-grid spec of the installed rule.
func (j *JvN) Grid() rule.GridSpec { return j.grid }

// SetRule selects a variant by name. The legacy aliases JvN-29, JvN-32 and
// modJvN-32 are accepted.
func (j *JvN) SetRule(s string) error {
	name, suffix := rule.SplitRuleAndSuffix(s)
	var variant Variant
	switch {
	case strings.EqualFold(name, ruleStrings[JvN29]) || strings.EqualFold(name, "JvN-29"):
		variant = JvN29
	case strings.EqualFold(name, ruleStrings[Nobili32]) || strings.EqualFold(name, "JvN-32"):
		variant = Nobili32
	case strings.EqualFold(name, ruleStrings[Hutton32]) || strings.EqualFold(name, "modJvN-32"):
		variant = Hutton32
	default:
		return fmt.Errorf("this algorithm only supports these rules: JvN29, Nobili32, Hutton32")
	}
	var grid rule.GridSpec
	if suffix != "" {
		var err error
		grid, err = rule.ParseGridSuffix(suffix)
		if err != nil {
			return err
		}
	}
	j.variant = variant
	j.grid = grid
	return nil
}

// NextState computes the next center state from (c, n, s, e, w); the
// diagonal neighbors are ignored in this family.
func (j *JvN) NextState(_, n, _, w, c, e, _, s, _ byte) byte {
	if j.variant == Hutton32 {
		return nextHutton32(c, n, s, e, w)
	}
	ic := uncompress[c]
	mbits := inputBits(ic, uncompress[n], dirSouth) |
		inputBits(ic, uncompress[w], dirEast) |
		inputBits(ic, uncompress[e], dirWest) |
		inputBits(ic, uncompress[s], dirNorth)
	v := int(ic)
	switch {
	case v < conf:
		// sensitized chain: shift in one excitation bit per step
		if mbits&(bitOexc|bitSexc) != 0 {
			v = 2*v + 1
		} else {
			v = 2 * v
		}
		if v > 8 {
			v = int(cres[v-9])
		}
	case v&conf != 0:
		if mbits&bitSexc != 0 {
			v = 0
		} else if j.variant == Nobili32 && mbits&bitCross == bitCross {
			if mbits&bitOexc != 0 {
				v = (mbits & bitOexc) + conf + 0x80
			} else {
				v = conf
			}
		} else {
			if v&crossexc != 0 {
				// was a crossing, is no more
				v &^= crossexc | cdexc
			}
			if mbits&bitOexc != 0 && mbits&bitONexc == 0 {
				v = (v&cdexc)>>7 + (cdexc | conf)
			} else if mbits&bitAnyOut != 0 || j.variant == JvN29 {
				v = (v&cdexc)>>7 + conf
			}
		}
	default:
		if (v&otrans != 0 && mbits&bitSexc != 0) ||
			(v&strans != 0 && mbits&bitOexc != 0) {
			v = 0
		} else if mbits&(bitSexcOth|bitOexcOth|bitCexc) != 0 {
			v |= 128
		} else {
			v &= 127
		}
	}
	return compress[byte(v)]
}

// Palette returns the fixed 32-entry JvN color table.
func (j *JvN) Palette() *rule.Palette {
	p := &rule.Palette{
		Gradient: false,
		From:     [3]uint8{255, 255, 255},
		To:       [3]uint8{128, 128, 128},
	}
	for i, c := range jvnColors {
		p.R[i] = c[0]
		p.G[i] = c[1]
		p.B[i] = c[2]
	}
	return p
}

// jvnColors is the per-state default color table.
var jvnColors = [32][3]uint8{
	{48, 48, 48},    // 0  dark gray
	{255, 0, 0},     // 1  red
	{255, 125, 0},   // 2  orange
	{255, 150, 25},  // 3
	{255, 175, 50},  // 4
	{255, 200, 75},  // 5
	{255, 225, 100}, // 6
	{255, 250, 125}, // 7
	{251, 255, 0},   // 8  yellow
	{89, 89, 255},   // 9  blue
	{106, 106, 255}, // 10
	{122, 122, 255}, // 11
	{139, 139, 255}, // 12
	{27, 176, 27},   // 13 green
	{36, 200, 36},   // 14
	{73, 255, 73},   // 15
	{106, 255, 106}, // 16
	{235, 36, 36},   // 17 red
	{255, 56, 56},   // 18
	{255, 73, 73},   // 19
	{255, 89, 89},   // 20
	{185, 56, 255},  // 21 purple
	{191, 73, 255},  // 22
	{197, 89, 255},  // 23
	{203, 106, 255}, // 24
	{0, 255, 128},   // 25 light green
	{255, 128, 64},  // 26 light orange
	{255, 255, 128}, // 27 light yellow
	{33, 215, 215},  // 28 cyan
	{27, 176, 176},  // 29
	{24, 156, 156},  // 30
	{21, 137, 137},  // 31
}
