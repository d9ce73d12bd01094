// Package factory selects the rule family that accepts a given rule
// string: the von Neumann family by name, Generations by its slash syntax,
// and RuleLoader (table/tree files) for everything else.
package factory

import (
	"fmt"

	"github.com/hashlife/internal/rule"
	"github.com/hashlife/internal/rule/generations"
	"github.com/hashlife/internal/rule/jvn"
	"github.com/hashlife/internal/rule/loader"
	"github.com/hashlife/pkg/host"
)

// Default returns the default rule plug-in (RuleLoader with B3/S23).
func Default(cb host.Callbacks) rule.Rule {
	return loader.New(cb)
}

// ForRuleString returns a rule plug-in with s installed, trying the
// families in order: JvN, Generations, RuleLoader.
func ForRuleString(s string, cb host.Callbacks) (rule.Rule, error) {
	jr := jvn.New()
	if err := jr.SetRule(s); err == nil {
		return jr, nil
	}
	gr := generations.New()
	if err := gr.SetRule(s); err == nil {
		return gr, nil
	}
	ld := loader.New(cb)
	if err := ld.SetRule(s); err == nil {
		return ld, nil
	}
	return nil, fmt.Errorf("no rule family accepts %q", s)
}
