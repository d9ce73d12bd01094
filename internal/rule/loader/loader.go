// Package loader implements RuleLoader: it resolves a rule name to either a
// RuleTable or a RuleTree, reading .rule files (with @TABLE or @TREE
// sections) from the user and system rules directories, then falling back
// to bare .table and .tree files.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashlife/internal/rule"
	"github.com/hashlife/internal/rule/table"
	"github.com/hashlife/internal/rule/tree"
	"github.com/hashlife/pkg/host"
)

var errNoTableOrTree = fmt.Errorf("no @TABLE or @TREE section found in .rule file")

// ruleType records which sub-engine is active.
type ruleType int

const (
	typeTable ruleType = iota
	typeTree
)

// Loader is the rule.Rule implementation that dispatches between RuleTable
// and RuleTree at load time.
type Loader struct {
	hostcb host.Callbacks

	localTable *table.Table
	localTree  *tree.Tree
	ruleType   ruleType
}

// New creates a Loader with the RuleTree default rule installed.
func New(cb host.Callbacks) *Loader {
	if cb == nil {
		cb = host.NewDefault()
	}
	l := &Loader{
		hostcb:     cb,
		localTable: table.New(cb),
		localTree:  tree.New(cb),
		ruleType:   typeTree,
	}
	if err := l.localTree.SetRule(l.localTree.DefaultRule()); err != nil {
		// the built-in default tree always parses
		panic(err)
	}
	return l
}

// DefaultRule returns RuleTree's default rule.
func (l *Loader) DefaultRule() string { return l.localTree.DefaultRule() }

// NumCellStates returns the state count of the active sub-engine.
func (l *Loader) NumCellStates() int {
	if l.ruleType == typeTable {
		return l.localTable.NumCellStates()
	}
	return l.localTree.NumCellStates()
}

// GetRule returns the canonical rule of the active sub-engine.
func (l *Loader) GetRule() string {
	if l.ruleType == typeTable {
		return l.localTable.GetRule()
	}
	return l.localTree.GetRule()
}

// Grid returns the bounded-grid spec of the active sub-engine.
func (l *Loader) Grid() rule.GridSpec {
	if l.ruleType == typeTable {
		return l.localTable.Grid()
	}
	return l.localTree.Grid()
}

// Palette returns the palette of the active sub-engine.
func (l *Loader) Palette() *rule.Palette {
	if l.ruleType == typeTable {
		return l.localTable.Palette()
	}
	return l.localTree.Palette()
}

// NextState delegates to the active sub-engine.
func (l *Loader) NextState(nw, n, ne, w, c, e, sw, s, se byte) byte {
	if l.ruleType == typeTable {
		return l.localTable.NextState(nw, n, ne, w, c, e, sw, s, se)
	}
	return l.localTree.NextState(nw, n, ne, w, c, e, sw, s, se)
}

// SetRule resolves and installs rule s: built-in defaults first, then
// <name>.rule in the user and system rules directories, then bare .table
// and .tree files.
func (l *Loader) SetRule(s string) error {
	name, _ := rule.SplitRuleAndSuffix(s)

	// the defaults need no file lookup
	if table.IsDefaultRule(name) {
		if err := l.localTable.SetRule(s); err != nil {
			return err
		}
		l.ruleType = typeTable
		return nil
	}
	if tree.IsDefaultRule(name) {
		if err := l.localTree.SetRule(s); err != nil {
			return err
		}
		l.ruleType = typeTree
		return nil
	}

	inUser := true
	f, err := openRuleFile(name, l.hostcb.UserRulesDir())
	if err != nil {
		inUser = false
		f, err = openRuleFile(name, l.hostcb.SystemRulesDir())
	}
	if err == nil {
		loadErr := l.loadTableOrTree(f, s)
		f.Close()
		if inUser && loadErr == errNoTableOrTree {
			// a user .rule file without @TABLE/@TREE overrides only colors
			// and icons, so retry with the system copy
			if f, err = openRuleFile(name, l.hostcb.SystemRulesDir()); err == nil {
				loadErr = l.loadTableOrTree(f, s)
				f.Close()
			}
		}
		return loadErr
	}

	// no .rule file; try .table then .tree
	if err := l.localTable.SetRule(s); err == nil {
		l.ruleType = typeTable
		return nil
	}
	if err := l.localTree.SetRule(s); err == nil {
		l.ruleType = typeTree
		return nil
	}
	return fmt.Errorf("file not found\ngiven rule: %s", s)
}

// loadTableOrTree scans a .rule file for its @TABLE or @TREE section and
// forwards the remaining lines to the matching sub-engine.
func (l *Loader) loadTableOrTree(f *os.File, s string) error {
	br := bufio.NewReader(f)
	for {
		raw, err := br.ReadString('\n')
		line := strings.TrimRight(raw, " \t\r\n")
		if line == "@TABLE" {
			if err := l.localTable.LoadTable(br, '@', s); err != nil {
				return err
			}
			l.ruleType = typeTable
			return nil
		}
		if line == "@TREE" {
			if err := l.localTree.LoadTree(br, '@', s); err != nil {
				return err
			}
			l.ruleType = typeTree
			return nil
		}
		if err != nil {
			return errNoTableOrTree
		}
	}
}

// openRuleFile opens <dir>/<name>.rule with path-hostile characters in the
// rule name replaced by underscores.
func openRuleFile(name, dir string) (*os.File, error) {
	if dir == "" {
		return nil, os.ErrNotExist
	}
	fname := strings.NewReplacer("/", "_", "\\", "_").Replace(name) + ".rule"
	return os.Open(filepath.Join(dir, fname))
}
