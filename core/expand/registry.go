package expand

import (
	"fmt"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// entry is one discovered construct: its position key, its path in the tree,
// the identifier of the nearest enclosing identified mapping, and the
// construct itself.
type entry struct {
	Key       string
	Path      ir.Path
	Owner     string
	Construct ir.Construct
}

// registry holds every construct of one tree in document order. Independent
// constructs each contribute a cross-product factor; conditionals do not.
type registry struct {
	independents []entry
	conditionals []entry
}

// buildRegistry walks the tree once, depth-first in document order, collects
// every construct and validates its shape. Identifiers must be unique within
// the tree.
func buildRegistry(root ir.Node) (*registry, error) {
	reg := &registry{}
	ids := make(map[string]string)
	if err := reg.collect(root, ir.Path{}, "", ids); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registry) collect(n ir.Node, p ir.Path, owner string, ids map[string]string) error {
	switch t := n.(type) {
	case *ir.Sequence:
		for i, item := range t.Items {
			if err := r.collect(item, p.Index(i), owner, ids); err != nil {
				return err
			}
		}
	case *ir.Mapping:
		if t.ID != "" {
			if prev, dup := ids[t.ID]; dup {
				return errors.NewMalformedConstruct(p.String(), "id",
					fmt.Sprintf("duplicate identifier %q (already declared at %q)", t.ID, prev))
			}
			ids[t.ID] = p.String()
			owner = t.ID
		}
		for _, e := range t.Entries {
			if err := r.collect(e.Value, p.Field(e.Key), owner, ids); err != nil {
				return err
			}
		}
	case *ir.Choice:
		key := p.String()
		if err := validateConstruct(key, t.Construct); err != nil {
			return err
		}
		e := entry{
			Key:       key,
			Path:      append(ir.Path(nil), p...),
			Owner:     owner,
			Construct: t.Construct,
		}
		if _, cond := t.Construct.(*ir.If); cond {
			r.conditionals = append(r.conditionals, e)
		} else {
			r.independents = append(r.independents, e)
		}
	}
	return nil
}

// validateConstruct checks one construct's declared shape. Compound inners
// (Repeat, Restrict) are validated recursively so a malformed nested
// construct fails before any domain is built.
func validateConstruct(key string, c ir.Construct) error {
	switch t := c.(type) {
	case *ir.Enum:
		if len(t.Options) == 0 {
			return errors.NewMalformedConstruct(key, t.Name(), "empty option list")
		}
		if t.Labels != nil && len(t.Labels) != len(t.Options) {
			return errors.NewMalformedConstruct(key, t.Name(),
				fmt.Sprintf("%d labels for %d options", len(t.Labels), len(t.Options)))
		}
		for i, opt := range t.Options {
			if containsChoice(opt) {
				return errors.NewMalformedConstruct(key, t.Name(),
					fmt.Sprintf("option %d contains a nested construct", i))
			}
		}
	case *ir.PalettePick:
		if t.Amount < 1 {
			return errors.NewMalformedConstruct(key, t.Name(), "amount must be at least 1")
		}
	case *ir.Scaled:
		if len(t.Scales) == 0 {
			return errors.NewMalformedConstruct(key, t.Name(), "empty scale list")
		}
		if t.Labels != nil && len(t.Labels) != len(t.Scales) {
			return errors.NewMalformedConstruct(key, t.Name(),
				fmt.Sprintf("%d labels for %d scales", len(t.Labels), len(t.Scales)))
		}
		if containsChoice(t.Base) {
			return errors.NewMalformedConstruct(key, t.Name(), "base contains a nested construct")
		}
	case *ir.Repeat:
		if t.Amount < 1 {
			return errors.NewMalformedConstruct(key, t.Name(), "amount must be at least 1")
		}
		if err := validateTree(key, t.Value); err != nil {
			return err
		}
	case *ir.Restrict:
		if t.Amount < 1 {
			return errors.NewMalformedConstruct(key, t.Name(), "amount must be at least 1")
		}
		if err := validateTree(key, t.Value); err != nil {
			return err
		}
	case *ir.If:
		if len(t.Refs) == 0 {
			return errors.NewMalformedConstruct(key, t.Name(), "no references")
		}
		if len(t.Cases) == 0 {
			return errors.NewMalformedConstruct(key, t.Name(), "no cases")
		}
		if len(t.Then) != len(t.Cases) {
			return errors.NewMalformedConstruct(key, t.Name(),
				fmt.Sprintf("%d then values for %d cases", len(t.Then), len(t.Cases)))
		}
		if t.Labels != nil && len(t.Labels) != len(t.Cases) {
			return errors.NewMalformedConstruct(key, t.Name(),
				fmt.Sprintf("%d labels for %d cases", len(t.Labels), len(t.Cases)))
		}
		for i, cs := range t.Cases {
			if len(cs.Terms) != len(t.Refs) {
				return errors.NewMalformedConstruct(key, t.Name(),
					fmt.Sprintf("case %d has %d terms for %d references", i, len(cs.Terms), len(t.Refs)))
			}
		}
		for i, v := range t.Then {
			if containsChoice(v) {
				return errors.NewMalformedConstruct(key, t.Name(),
					fmt.Sprintf("then value %d contains a nested construct", i))
			}
		}
		if containsChoice(t.Default) {
			return errors.NewMalformedConstruct(key, t.Name(), "default contains a nested construct")
		}
	default:
		return errors.NewMalformedConstruct(key, "construct", "unknown construct kind")
	}
	return nil
}

// validateTree validates every construct inside a compound's inner content.
// Position keys of nested constructs are reported relative to the compound.
func validateTree(key string, n ir.Node) error {
	var failure error
	ir.Walk(n, func(p ir.Path, node ir.Node) bool {
		if failure != nil {
			return false
		}
		if ch, ok := node.(*ir.Choice); ok {
			inner := p.String()
			if inner == "" {
				inner = key
			} else {
				inner = key + "." + inner
			}
			failure = validateConstruct(inner, ch.Construct)
			return false
		}
		return true
	})
	return failure
}

// containsChoice reports whether any node of the tree is a construct.
// containsChoice(nil) is false.
func containsChoice(n ir.Node) bool {
	switch t := n.(type) {
	case *ir.Choice:
		return true
	case *ir.Sequence:
		for _, item := range t.Items {
			if containsChoice(item) {
				return true
			}
		}
	case *ir.Mapping:
		for _, e := range t.Entries {
			if containsChoice(e.Value) {
				return true
			}
		}
	}
	return false
}
