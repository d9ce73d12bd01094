package rule

import (
	"fmt"
	"strconv"
	"strings"
)

// GridTopology identifies the wraparound behavior of a bounded grid.
type GridTopology byte

const (
	// GridUnbounded is the default infinite plane.
	GridUnbounded GridTopology = 0
	// GridTorus wraps both edges (":T").
	GridTorus GridTopology = 'T'
	// GridPlane has fixed dead edges (":P").
	GridPlane GridTopology = 'P'
	// GridKlein wraps with a twist on one axis (":K").
	GridKlein GridTopology = 'K'
	// GridCross wraps with twists on both axes (":C").
	GridCross GridTopology = 'C'
	// GridSphere joins adjacent edges (":S").
	GridSphere GridTopology = 'S'
)

// GridSpec describes a bounded-grid suffix. Width or Height of zero means
// unbounded in that dimension; the zero value means no suffix at all.
type GridSpec struct {
	Topology GridTopology
	Width    int
	Height   int
	// HShift and VShift are the torus/Klein edge shifts.
	HShift int
	VShift int
	// HTwist and VTwist record which Klein axis is twisted.
	HTwist bool
	VTwist bool
}

// Bounded reports whether the spec limits the universe in any dimension.
func (g GridSpec) Bounded() bool {
	return g.Topology != GridUnbounded && (g.Width > 0 || g.Height > 0)
}

// CanonicalSuffix renders the spec back into its canonical ":..." form, or
// the empty string for an unbounded grid.
func (g GridSpec) CanonicalSuffix() string {
	if !g.Bounded() {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte(':')
	sb.WriteByte(byte(g.Topology))
	if g.Topology == GridSphere {
		// spheres are square; a single dimension suffices
		fmt.Fprintf(&sb, "%d", g.Width)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%d", g.Width)
	if g.HShift > 0 {
		fmt.Fprintf(&sb, "+%d", g.HShift)
	} else if g.HShift < 0 {
		fmt.Fprintf(&sb, "%d", g.HShift)
	} else if g.Topology == GridKlein && g.HTwist {
		sb.WriteByte('*')
	}
	fmt.Fprintf(&sb, ",%d", g.Height)
	if g.VShift > 0 {
		fmt.Fprintf(&sb, "+%d", g.VShift)
	} else if g.VShift < 0 {
		fmt.Fprintf(&sb, "%d", g.VShift)
	} else if g.Topology == GridKlein && g.VTwist {
		sb.WriteByte('*')
	}
	return sb.String()
}

// ParseGridSuffix parses a bounded-grid suffix starting at the colon, e.g.
// ":T200,100", ":P30,20", ":K10*,5", ":S30". It returns the parsed spec, or
// an error describing the problem. An empty suffix is invalid.
func ParseGridSuffix(suffix string) (GridSpec, error) {
	var g GridSpec
	if len(suffix) == 0 || suffix[0] != ':' {
		return g, fmt.Errorf("grid suffix must start with ':'")
	}
	s := strings.ToUpper(suffix[1:])
	if len(s) == 0 {
		return g, fmt.Errorf("empty bounded grid suffix")
	}
	switch s[0] {
	case 'T', 'P', 'K', 'C', 'S':
		g.Topology = GridTopology(s[0])
	default:
		return g, fmt.Errorf("unknown grid topology %q", s[0])
	}
	s = s[1:]

	if g.Topology == GridSphere {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return g, fmt.Errorf("bad sphere size in grid suffix")
		}
		g.Width, g.Height = n, n
		return g, nil
	}

	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return g, fmt.Errorf("grid suffix needs width,height")
	}
	var err error
	g.Width, g.HShift, g.HTwist, err = parseGridDim(parts[0])
	if err != nil {
		return g, err
	}
	g.Height, g.VShift, g.VTwist, err = parseGridDim(parts[1])
	if err != nil {
		return g, err
	}
	if g.HShift != 0 && g.VShift != 0 {
		return g, fmt.Errorf("grid suffix can shift only one edge")
	}
	if (g.HShift != 0 || g.VShift != 0) && g.Topology != GridTorus && g.Topology != GridKlein {
		return g, fmt.Errorf("grid shift requires torus or Klein topology")
	}
	if g.HTwist || g.VTwist {
		if g.Topology != GridKlein {
			return g, fmt.Errorf("grid twist requires Klein topology")
		}
	} else if g.Topology == GridKlein {
		// Klein bottles default to a vertical twist
		g.VTwist = true
	}
	return g, nil
}

// parseGridDim parses one dimension of the form "200", "200+3", "200-3" or
// "200*" (Klein twist marker).
func parseGridDim(s string) (size, shift int, twist bool, err error) {
	if strings.HasSuffix(s, "*") {
		twist = true
		s = s[:len(s)-1]
	}
	if i := strings.IndexAny(s, "+-"); i >= 0 {
		shift, err = strconv.Atoi(s[i:])
		if err != nil {
			return 0, 0, false, fmt.Errorf("bad shift in grid suffix")
		}
		s = s[:i]
	}
	size, err = strconv.Atoi(s)
	if err != nil || size < 0 {
		return 0, 0, false, fmt.Errorf("bad size in grid suffix")
	}
	if size == 0 && shift != 0 {
		return 0, 0, false, fmt.Errorf("grid shift requires a bounded dimension")
	}
	return size, shift, twist, nil
}

// SplitRuleAndSuffix splits a rule string at the first colon, returning the
// bare rule name and the suffix (including the colon) or "".
func SplitRuleAndSuffix(s string) (name, suffix string) {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}
