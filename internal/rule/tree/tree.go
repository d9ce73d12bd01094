// Package tree implements RuleTree: decision-diagram rules loaded from
// .tree files (or the @TREE section of a .rule file). Evaluation walks the
// diagram by successive indexing, one level per neighbor.
package tree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashlife/internal/rule"
	"github.com/hashlife/pkg/host"
)

// defaultRuleData is the built-in B3/S23 tree so the default rule needs no
// file.
var defaultRuleData = []string{
	"num_states=2", "num_neighbors=8", "num_nodes=32",
	"1 0 0", "2 0 0", "1 0 1", "2 0 2", "3 1 3", "1 1 1", "2 2 5", "3 3 6",
	"4 4 7", "2 5 0", "3 6 9", "4 7 10", "5 8 11", "3 9 1", "4 10 13",
	"5 11 14", "6 12 15", "3 1 1", "4 13 17", "5 14 18", "6 15 19",
	"7 16 20", "4 17 17", "5 18 22", "6 19 23", "7 20 24", "8 21 25",
	"5 22 22", "6 23 27", "7 24 28", "8 25 29", "9 26 30",
}

// Tree is the rule.Rule implementation for decision-diagram rules.
type Tree struct {
	hostcb host.Callbacks

	a            []int  // interior nodes, flattened
	b            []byte // level-1 nodes resolve to cell states
	base         int
	numNeighbors int
	numStates    int
	numNodes     int

	ruleName string
	grid     rule.GridSpec
}

// New creates a Tree rule; the default rule is not installed until SetRule
// is called.
func New(cb host.Callbacks) *Tree {
	if cb == nil {
		cb = host.NewDefault()
	}
	return &Tree{hostcb: cb}
}

// DefaultRule returns the canonical default rule.
func (t *Tree) DefaultRule() string { return "B3/S23" }

// IsDefaultRule recognizes the spellings of the default rule.
func IsDefaultRule(name string) bool {
	return strings.EqualFold(name, "B3/S23") ||
		strings.EqualFold(name, "B3S23") ||
		name == "23/3"
}

// NumCellStates returns the state count of the installed rule.
func (t *Tree) NumCellStates() int { return t.numStates }

// GetRule returns the installed rule name plus any bounded-grid suffix.
func (t *Tree) GetRule() string { return t.ruleName + t.grid.CanonicalSuffix() }

// Grid returns the bounded-grid spec of the installed rule.
func (t *Tree) Grid() rule.GridSpec { return t.grid }

// Palette returns the red-to-yellow gradient default.
func (t *Tree) Palette() *rule.Palette { return rule.GradientPalette() }

// SetRule loads rule s, reading <name>.tree from the user rules directory
// and then the system rules directory unless s is the built-in default.
func (t *Tree) SetRule(s string) error {
	name, suffix := rule.SplitRuleAndSuffix(s)

	var lines lineSource
	if IsDefaultRule(name) {
		lines = sliceLines(defaultRuleData)
	} else {
		if len(name) >= rule.MaxRuleSize {
			return fmt.Errorf("rule length too long")
		}
		f, err := openTreeFile(name, t.hostcb.UserRulesDir())
		if err != nil {
			f, err = openTreeFile(name, t.hostcb.SystemRulesDir())
		}
		if err != nil {
			return fmt.Errorf("file not found")
		}
		defer f.Close()
		lines = readerLines(f, 0)
	}
	return t.load(lines, name, suffix)
}

// LoadTree reads tree data from an already positioned .rule file section
// terminated by endPrefix (normally "@").
func (t *Tree) LoadTree(r io.Reader, endPrefix byte, s string) error {
	name, suffix := rule.SplitRuleAndSuffix(s)
	return t.load(readerLines(r, endPrefix), name, suffix)
}

// load parses tree data into local structures and commits them on success.
func (t *Tree) load(lines lineSource, name, suffix string) error {
	var grid rule.GridSpec
	if suffix != "" {
		var err error
		grid, err = rule.ParseGridSuffix(suffix)
		if err != nil {
			return err
		}
	}

	numStates, numNeighbors, numNodes := -1, -1, -1
	var dat []int
	var datb []byte
	var noff []int
	var nodelev []int
	lev := 1000

	for {
		line, ok := lines()
		if !ok {
			break
		}
		if line == "" || line[0] == '#' {
			continue
		}
		packed := strings.ReplaceAll(line, " ", "")
		if n, err := fmt.Sscanf(packed, "num_states=%d", &numStates); n == 1 && err == nil {
			continue
		}
		if n, err := fmt.Sscanf(packed, "num_neighbors=%d", &numNeighbors); n == 1 && err == nil {
			continue
		}
		if n, err := fmt.Sscanf(packed, "num_nodes=%d", &numNodes); n == 1 && err == nil {
			continue
		}
		if numStates < 2 || numStates > 256 ||
			(numNeighbors != 4 && numNeighbors != 8) ||
			numNodes < numNeighbors || numNodes > 100000000 {
			return fmt.Errorf("bad basic values")
		}
		if line[0] < '1' || line[0] > byte('0'+1+numNeighbors) {
			return fmt.Errorf("bad line in tree data")
		}
		lev = int(line[0] - '0')
		if lev == 1 {
			noff = append(noff, len(datb))
		} else {
			noff = append(noff, len(dat))
		}
		nodelev = append(nodelev, lev)
		vcnt := 0
		for _, field := range strings.Fields(line[1:]) {
			v := 0
			for i := 0; i < len(field); i++ {
				if field[i] < '0' || field[i] > '9' {
					return fmt.Errorf("bad value in tree data")
				}
				v = v*10 + int(field[i]-'0')
			}
			if lev == 1 {
				if v >= numStates {
					return fmt.Errorf("bad state value in tree data")
				}
				datb = append(datb, byte(v))
			} else {
				if v >= len(noff) {
					return fmt.Errorf("bad node value in tree data")
				}
				if nodelev[v] != lev-1 {
					return fmt.Errorf("bad node pointer does not point to one level down")
				}
				dat = append(dat, noff[v])
			}
			vcnt++
		}
		if vcnt != numStates {
			return fmt.Errorf("bad number of values on tree data line")
		}
	}

	if numStates < 0 || numNeighbors < 0 || numNodes < 0 {
		return fmt.Errorf("bad basic values")
	}
	if len(dat)+len(datb) != numNodes*numStates {
		return fmt.Errorf("bad count of values in tree data")
	}
	if lev != numNeighbors+1 {
		return fmt.Errorf("bad last node (wrong level)")
	}

	t.a = dat
	t.b = datb
	t.base = noff[len(noff)-1]
	t.numStates = numStates
	t.numNeighbors = numNeighbors
	t.numNodes = numNodes
	t.ruleName = name
	t.grid = grid
	return nil
}

// NextState evaluates the decision diagram for the neighborhood.
func (t *Tree) NextState(nw, n, ne, w, c, e, sw, s, se byte) byte {
	a, b := t.a, t.b
	if t.numNeighbors == 4 {
		return b[a[a[a[a[t.base+int(n)]+int(w)]+int(e)]+int(s)]+int(c)]
	}
	return b[a[a[a[a[a[a[a[a[t.base+int(nw)]+int(ne)]+int(sw)]+int(se)]+int(n)]+int(w)]+int(e)]+int(s)]+int(c)]
}

// lineSource yields successive trimmed lines; ok is false at end of input.
type lineSource func() (line string, ok bool)

func sliceLines(data []string) lineSource {
	i := 0
	return func() (string, bool) {
		if i >= len(data) {
			return "", false
		}
		line := data[i]
		i++
		return line, true
	}
}

// readerLines reads lines from r, stopping before a line that starts with
// endPrefix (when nonzero).
func readerLines(r io.Reader, endPrefix byte) lineSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	done := false
	return func() (string, bool) {
		if done || !scanner.Scan() {
			return "", false
		}
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if endPrefix != 0 && len(line) > 0 && line[0] == endPrefix {
			done = true
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

// openTreeFile opens <dir>/<name>.tree with path-hostile characters in the
// rule name replaced by underscores.
func openTreeFile(name, dir string) (*os.File, error) {
	if dir == "" {
		return nil, os.ErrNotExist
	}
	fname := strings.NewReplacer("/", "_", "\\", "_").Replace(name) + ".tree"
	return os.Open(filepath.Join(dir, fname))
}
