// Package table implements RuleTable: symmetry-expanded transition tables
// loaded from .table files (or the @TABLE section of a .rule file). The
// expanded transitions are packed into per-position bitmaps so that one AND
// across the neighborhood finds the first matching rule.
package table

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashlife/internal/rule"
	"github.com/hashlife/pkg/collections"
	"github.com/hashlife/pkg/host"
)

// Neighborhood identifies the cell arrangement of a table rule.
type Neighborhood int

const (
	// VonNeumann is the 4-neighbor orthogonal arrangement.
	VonNeumann Neighborhood = iota
	// Moore is the full 8-neighbor arrangement.
	Moore
	// Hexagonal ignores the NE and SW neighbors.
	Hexagonal
	// OneDimensional uses only the W and E neighbors.
	OneDimensional
)

// neighborhoodKeywords maps Neighborhood values to their file keywords.
var neighborhoodKeywords = [...]string{"vonNeumann", "Moore", "hexagonal", "oneDimensional"}

// availableSymmetries lists the symmetry keywords valid per neighborhood.
var availableSymmetries = map[string][]string{
	"vonNeumann":     {"none", "rotate4", "rotate4reflect", "reflect_horizontal", "permute"},
	"Moore":          {"none", "rotate4", "rotate8", "rotate4reflect", "rotate8reflect", "reflect_horizontal", "permute"},
	"hexagonal":      {"none", "rotate2", "rotate3", "rotate6", "rotate6reflect", "permute"},
	"oneDimensional": {"none", "reflect", "permute"},
}

// wordBits is the compressed-rule window width.
const wordBits = 64

// Table is the rule.Rule implementation for transition tables.
type Table struct {
	hostcb host.Callbacks

	nStates      int
	neighborhood Neighborhood
	nInputs      int
	// lut[position][state] holds one bit per rule, packed wordBits to a row
	// via collections.Bitset.
	lut         [][]*collections.Bitset
	outputs     []byte
	nCompressed int

	ruleName string
	grid     rule.GridSpec
}

// New creates a Table rule; no rule is installed until SetRule succeeds.
func New(cb host.Callbacks) *Table {
	if cb == nil {
		cb = host.NewDefault()
	}
	return &Table{hostcb: cb, nStates: 8, neighborhood: VonNeumann}
}

// DefaultRule returns the built-in default table rule.
func (t *Table) DefaultRule() string { return "Langtons-Loops" }

// IsDefaultRule reports whether name is the built-in default rule.
func IsDefaultRule(name string) bool { return name == "Langtons-Loops" }

// NumCellStates returns the state count of the installed rule.
func (t *Table) NumCellStates() int { return t.nStates }

// GetRule returns the installed rule name plus any bounded-grid suffix.
func (t *Table) GetRule() string { return t.ruleName + t.grid.CanonicalSuffix() }

// Grid returns the bounded-grid spec of the installed rule.
func (t *Table) Grid() rule.GridSpec { return t.grid }

// Palette returns the red-to-yellow gradient default.
func (t *Table) Palette() *rule.Palette { return rule.GradientPalette() }

// Neighborhood returns the neighborhood of the installed rule.
func (t *Table) Neighborhood() Neighborhood { return t.neighborhood }

// SetRule loads rule s, reading <name>.table from the user rules directory
// and then the system rules directory unless s is the built-in default.
func (t *Table) SetRule(s string) error {
	name, suffix := rule.SplitRuleAndSuffix(s)

	var lines lineSource
	var filename string
	if IsDefaultRule(name) {
		lines = sliceLines(defaultRuleData)
		filename = name
	} else {
		f, path, err := openTableFile(name, t.hostcb.UserRulesDir())
		if err != nil {
			f, path, err = openTableFile(name, t.hostcb.SystemRulesDir())
		}
		if err != nil {
			return fmt.Errorf("failed to open file: %s", path)
		}
		defer f.Close()
		lines = readerLines(f, 0)
		filename = path
	}
	if err := t.load(lines, filename, name, suffix); err != nil {
		if !strings.HasPrefix(err.Error(), "failed to open file: ") {
			t.hostcb.Warning(err.Error())
		}
		return err
	}
	return nil
}

// LoadTable reads table data from an already positioned .rule file section
// terminated by endPrefix (normally "@").
func (t *Table) LoadTable(r io.Reader, endPrefix byte, s string) error {
	name, suffix := rule.SplitRuleAndSuffix(s)
	return t.load(readerLines(r, endPrefix), name+".rule", name, suffix)
}

// transition is one raw table line: a set of possible states per input
// position plus the output state.
type transition struct {
	inputs [][]byte
	output byte
}

// load parses table data into local structures and commits on success.
func (t *Table) load(lines lineSource, filename, name, suffix string) error {
	var grid rule.GridSpec
	if suffix != "" {
		var err error
		grid, err = rule.ParseGridSuffix(suffix)
		if err != nil {
			return err
		}
	}

	symmetries := "rotate4"
	neighborhood := VonNeumann
	nStates := 8
	nInputs := 0
	variables := map[string][]byte{}
	var transitions []transition
	statesParsed, neighborhoodParsed, symmetriesParsed := false, false, false
	lineno := 0

	for {
		line, ok := lines()
		if !ok {
			break
		}
		lineno++
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue

		case startsWithFold(line, "n_states:"):
			v, err := strconv.Atoi(strings.TrimSpace(line[len("n_states:"):]))
			if err != nil {
				return fmt.Errorf("error reading %s on line %d: %s", filename, lineno, line)
			}
			if v < 2 || v > 256 {
				return fmt.Errorf("error reading %s on line %d: n_states out of range (min 2, max 256)", filename, lineno)
			}
			nStates = v
			statesParsed = true

		case startsWithFold(line, "neighborhood:"):
			remaining := strings.TrimSpace(line[len("neighborhood:"):])
			found := -1
			for i, kw := range neighborhoodKeywords {
				if kw == remaining {
					found = i
					break
				}
			}
			if found < 0 {
				return fmt.Errorf("error reading %s on line %d: unsupported neighborhood", filename, lineno)
			}
			neighborhood = Neighborhood(found)
			switch neighborhood {
			case Moore:
				nInputs = 9
			case Hexagonal:
				nInputs = 7
			case OneDimensional:
				nInputs = 3
			default:
				nInputs = 5
			}
			neighborhoodParsed = true

		case startsWithFold(line, "symmetries:"):
			if !neighborhoodParsed {
				return fmt.Errorf("error reading %s: neighborhood must be declared before symmetries", filename)
			}
			remaining := strings.TrimSpace(line[len("symmetries:"):])
			valid := false
			for _, sym := range availableSymmetries[neighborhoodKeywords[neighborhood]] {
				if sym == remaining {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("error reading %s on line %d: unsupported symmetries", filename, lineno)
			}
			symmetries = remaining
			symmetriesParsed = true

		case startsWithFold(line, "var "):
			if !statesParsed || !neighborhoodParsed || !symmetriesParsed {
				return fmt.Errorf("error reading %s: one or more of n_states, neighborhood or symmetries missing before first variable", filename)
			}
			tokens := tokenize(line, "= {,}")
			if len(tokens) < 3 {
				return fmt.Errorf("error reading %s on line %d: %s", filename, lineno, line)
			}
			varName := tokens[1]
			var states []byte
			for _, tok := range tokens[2:] {
				if prev, ok := variables[tok]; ok {
					states = append(states, prev...)
					continue
				}
				v, err := strconv.Atoi(tok)
				if err != nil {
					return fmt.Errorf("error reading %s on line %d: %s", filename, lineno, line)
				}
				if v < 0 || v >= nStates {
					return fmt.Errorf("error reading %s on line %d: %s - state value out of range", filename, lineno, line)
				}
				states = append(states, byte(v))
			}
			variables[varName] = states

		default:
			if !statesParsed || !neighborhoodParsed || !symmetriesParsed {
				return fmt.Errorf("error reading %s: one or more of n_states, neighborhood or symmetries missing before first transition", filename)
			}
			trs, err := parseTransitionLine(line, nStates, nInputs, variables)
			if err != nil {
				return fmt.Errorf("error reading %s on line %d: %w", filename, lineno, err)
			}
			transitions = append(transitions, trs...)
		}
	}

	if !statesParsed || !neighborhoodParsed || !symmetriesParsed {
		return fmt.Errorf("error reading %s: one or more of n_states, neighborhood or symmetries missing", filename)
	}

	t.neighborhood = neighborhood
	t.nStates = nStates
	t.nInputs = nInputs
	t.packTransitions(symmetries, nInputs, transitions)
	t.ruleName = name
	t.grid = grid
	return nil
}

// parseTransitionLine expands one transition line, including every
// combination of its bound variables.
func parseTransitionLine(line string, nStates, nInputs int, variables map[string][]byte) ([]transition, error) {
	if nStates <= 10 && len(variables) == 0 && !strings.ContainsRune(line, ',') {
		// comma-free short form: single-digit states, e.g. 012345
		if len(line) < nInputs+1 {
			return nil, fmt.Errorf("%s - too few entries", line)
		}
		tr := transition{inputs: make([][]byte, nInputs)}
		for i := 0; i < nInputs; i++ {
			c := line[i]
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("%s", line)
			}
			tr.inputs[i] = []byte{c - '0'}
		}
		c := line[nInputs]
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%s", line)
		}
		tr.output = c - '0'
		if int(tr.output) >= nStates {
			return nil, fmt.Errorf("%s - state out of range", line)
		}
		return []transition{tr}, nil
	}

	tokens := tokenize(line, ", \t")
	if len(tokens) < nInputs+1 {
		return nil, fmt.Errorf("%s - too few entries", line)
	}

	// variables used more than once are bound: all their occurrences take
	// the same value within one expanded transition
	var boundNames []string
	for name := range variables {
		count := 0
		for _, tok := range tokens[:nInputs+1] {
			if tok == name {
				count++
			}
		}
		if count > 1 {
			boundNames = append(boundNames, name)
		}
	}
	sort.Strings(boundNames)
	indices := make(map[string]int, len(boundNames))
	for _, name := range boundNames {
		indices[name] = 0
	}
	isBound := func(tok string) bool {
		_, ok := indices[tok]
		return ok
	}

	var result []transition
	for {
		tr := transition{inputs: make([][]byte, nInputs)}
		for i := 0; i < nInputs; i++ {
			tok := tokens[i]
			switch {
			case isBound(tok):
				tr.inputs[i] = []byte{variables[tok][indices[tok]]}
			case variables[tok] != nil:
				tr.inputs[i] = variables[tok]
			default:
				v, err := strconv.Atoi(tok)
				if err != nil {
					return nil, fmt.Errorf("%s", line)
				}
				if v < 0 || v >= nStates {
					return nil, fmt.Errorf("%s - state out of range", line)
				}
				tr.inputs[i] = []byte{byte(v)}
			}
		}
		outTok := tokens[nInputs]
		switch {
		case isBound(outTok):
			tr.output = variables[outTok][indices[outTok]]
		case len(variables[outTok]) == 1:
			// single-state variables are permitted as the output
			tr.output = variables[outTok][0]
		default:
			v, err := strconv.Atoi(outTok)
			if err != nil {
				return nil, fmt.Errorf("%s - output must be state, single-state variable or bound variable", line)
			}
			if v < 0 || v >= nStates {
				return nil, fmt.Errorf("%s - state out of range", line)
			}
			tr.output = byte(v)
		}
		result = append(result, tr)

		// advance to the next combination of bound-variable values
		changing := 0
		for ; changing < len(boundNames); changing++ {
			name := boundNames[changing]
			if indices[name] < len(variables[name])-1 {
				indices[name]++
				break
			}
			indices[name] = 0
		}
		if changing >= len(boundNames) {
			break
		}
	}
	return result, nil
}

// packTransitions expands symmetries and packs the result into the bitmap
// lookup tables.
func (t *Table) packTransitions(symmetries string, nInputs int, transitions []transition) {
	t.lut = make([][]*collections.Bitset, nInputs)
	for i := range t.lut {
		t.lut[i] = make([]*collections.Bitset, t.nStates)
		for j := range t.lut[i] {
			t.lut[i][j] = collections.NewBitset(wordBits)
		}
	}
	t.outputs = nil
	t.nCompressed = 0

	for _, tr := range transitions {
		switch symmetries {
		case "none":
			t.packTransition(tr.inputs, tr.output)
		case "permute":
			permuted := make([][]byte, len(tr.inputs))
			copy(permuted, tr.inputs)
			sortInputs(permuted[1:])
			for {
				t.packTransition(permuted, tr.output)
				if !nextPermutation(permuted[1:]) {
					break
				}
			}
		default:
			remap := symmetryRemap[t.neighborhood][symmetries]
			permuted := make([][]byte, nInputs)
			for _, m := range remap {
				for i := 0; i < nInputs; i++ {
					permuted[i] = tr.inputs[m[i]]
				}
				t.packTransition(permuted, tr.output)
			}
		}
	}
}

// packTransition sets one rule bit across the per-position bitmaps.
func (t *Table) packTransition(inputs [][]byte, output byte) {
	t.outputs = append(t.outputs, output)
	iRule := len(t.outputs) - 1
	iBit := iRule % wordBits
	iRuleC := (iRule - iBit) / wordBits

	if iRuleC >= t.nCompressed {
		t.nCompressed++
	}
	for iNbor, possibles := range inputs {
		for _, s := range possibles {
			t.lut[iNbor][s].Set(iRuleC*wordBits + iBit)
		}
	}
}

// NextState finds the first rule matched by the neighborhood, or leaves the
// center unchanged.
func (t *Table) NextState(nw, n, ne, w, c, e, sw, s, se byte) byte {
	for iRuleC := 0; iRuleC < t.nCompressed; iRuleC++ {
		var isMatch uint64
		switch t.neighborhood {
		case VonNeumann: // c,n,e,s,w
			isMatch = t.lut[0][c].Word(iRuleC) & t.lut[1][n].Word(iRuleC) &
				t.lut[2][e].Word(iRuleC) & t.lut[3][s].Word(iRuleC) &
				t.lut[4][w].Word(iRuleC)
		case Moore: // c,n,ne,e,se,s,sw,w,nw
			isMatch = t.lut[0][c].Word(iRuleC) & t.lut[1][n].Word(iRuleC) &
				t.lut[2][ne].Word(iRuleC) & t.lut[3][e].Word(iRuleC) &
				t.lut[4][se].Word(iRuleC) & t.lut[5][s].Word(iRuleC) &
				t.lut[6][sw].Word(iRuleC) & t.lut[7][w].Word(iRuleC) &
				t.lut[8][nw].Word(iRuleC)
		case Hexagonal: // c,n,e,se,s,w,nw
			isMatch = t.lut[0][c].Word(iRuleC) & t.lut[1][n].Word(iRuleC) &
				t.lut[2][e].Word(iRuleC) & t.lut[3][se].Word(iRuleC) &
				t.lut[4][s].Word(iRuleC) & t.lut[5][w].Word(iRuleC) &
				t.lut[6][nw].Word(iRuleC)
		case OneDimensional: // c,w,e
			isMatch = t.lut[0][c].Word(iRuleC) & t.lut[1][w].Word(iRuleC) &
				t.lut[2][e].Word(iRuleC)
		}
		if isMatch != 0 {
			iBit := bits.TrailingZeros64(isMatch)
			return t.outputs[iRuleC*wordBits+iBit]
		}
	}
	return c
}

// sortInputs orders input sets for the permute expansion.
func sortInputs(inputs [][]byte) {
	sort.Slice(inputs, func(i, j int) bool {
		return lessBytes(inputs[i], inputs[j])
	})
}

func lessBytes(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// nextPermutation advances inputs to the next lexicographic permutation,
// skipping duplicates; it returns false after the last one.
func nextPermutation(inputs [][]byte) bool {
	i := len(inputs) - 2
	for i >= 0 && !lessBytes(inputs[i], inputs[i+1]) {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(inputs) - 1
	for !lessBytes(inputs[i], inputs[j]) {
		j--
	}
	inputs[i], inputs[j] = inputs[j], inputs[i]
	for l, r := i+1, len(inputs)-1; l < r; l, r = l+1, r-1 {
		inputs[l], inputs[r] = inputs[r], inputs[l]
	}
	return true
}

// tokenize splits s at any of the delimiter characters, dropping empties.
func tokenize(s, delims string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(delims, r)
	})
}

// startsWithFold is a case-insensitive prefix test.
func startsWithFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// lineSource yields successive lines; ok is false at end of input.
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
		line := scanner.Text()
		if endPrefix != 0 && len(line) > 0 && line[0] == endPrefix {
			done = true
			return "", false
		}
		return line, true
	}
}

// openTableFile opens <dir>/<name>.table with path-hostile characters in
// the rule name replaced by underscores.
func openTableFile(name, dir string) (*os.File, string, error) {
	fname := strings.NewReplacer("/", "_", "\\", "_").Replace(name) + ".table"
	path := filepath.Join(dir, fname)
	if dir == "" {
		return nil, path, os.ErrNotExist
	}
	f, err := os.Open(path)
	return f, path, err
}
