package expand

import (
	"fmt"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// resolveConditionals walks a variant tree in document order and substitutes
// every conditional with the value its first matching case selects. Every
// independent construct must already be substituted, so a conditional's
// references read concrete literals. A conditional may read the output of an
// earlier conditional; reading a later one is a forward reference.
func resolveConditionals(root ir.Node, labels *ir.LabelSet) (ir.Node, error) {
	r := &condResolver{labels: labels}
	r.root = root
	r.scope = ir.BuildScope(root)
	return r.walk(root, ir.Path{}, "")
}

type condResolver struct {
	root   ir.Node
	scope  ir.Scope
	labels *ir.LabelSet
}

func (r *condResolver) walk(n ir.Node, p ir.Path, owner string) (ir.Node, error) {
	switch t := n.(type) {
	case *ir.Sequence:
		for i, item := range t.Items {
			resolved, err := r.walk(item, p.Index(i), owner)
			if err != nil {
				return nil, err
			}
			t.Items[i] = resolved
		}
	case *ir.Mapping:
		if t.ID != "" {
			owner = t.ID
		}
		for i := range t.Entries {
			resolved, err := r.walk(t.Entries[i].Value, p.Field(t.Entries[i].Key), owner)
			if err != nil {
				return nil, err
			}
			t.Entries[i].Value = resolved
		}
	case *ir.Choice:
		cond, ok := t.Construct.(*ir.If)
		if !ok {
			return nil, errors.NewMalformedConstruct(p.String(), t.Construct.Name(),
				"construct survived substitution")
		}
		return r.resolve(cond, p.String(), owner)
	}
	return n, nil
}

// resolve evaluates one conditional. Then entries and defaults are
// construct-free, so the selected value needs no further resolution.
func (r *condResolver) resolve(cond *ir.If, key, owner string) (ir.Node, error) {
	values := make([]interface{}, len(cond.Refs))
	for i, ref := range cond.Refs {
		v, err := r.lookup(ref, key)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	for i, cs := range cond.Cases {
		if !matchCase(cs, values) {
			continue
		}
		if cond.Labels != nil {
			r.labels.Add(ir.Label{Owner: owner, Text: cond.Labels[i]})
		}
		return ir.Copy(cond.Then[i]), nil
	}

	if cond.Default == nil {
		return nil, errors.NewUnmatchedCase(key, values)
	}
	if cond.Labels != nil {
		// A labelled conditional must label every outcome.
		if cond.DefaultLabel == "" {
			return nil, errors.NewUnmatchedCase(key, values)
		}
		r.labels.Add(ir.Label{Owner: owner, Text: cond.DefaultLabel})
	}
	return ir.Copy(cond.Default), nil
}

// lookup resolves one reference path to a concrete literal value.
func (r *condResolver) lookup(ref ir.RefPath, key string) (interface{}, error) {
	fail := func(reason string) error {
		return errors.NewForwardReference(key, ref.String(), reason)
	}

	base, ok := r.scope[ref.ID]
	if !ok {
		return nil, fail(fmt.Sprintf("unknown identifier %q", ref.ID))
	}
	cur, ok := base.Resolve(r.root)
	if !ok {
		return nil, fail(fmt.Sprintf("identifier %q vanished from the tree", ref.ID))
	}

	for _, seg := range ref.Segs {
		switch t := cur.(type) {
		case *ir.Mapping:
			if seg.IsIndex {
				return nil, fail(fmt.Sprintf("index %d into a mapping", seg.Index))
			}
			v, found := t.Get(seg.Key)
			if !found {
				return nil, fail(fmt.Sprintf("no field %q", seg.Key))
			}
			cur = v
		case *ir.Sequence:
			if !seg.IsIndex {
				return nil, fail(fmt.Sprintf("field %q into a sequence", seg.Key))
			}
			if seg.Index < 0 || seg.Index >= len(t.Items) {
				return nil, fail(fmt.Sprintf("index %d out of range (%d items)", seg.Index, len(t.Items)))
			}
			cur = t.Items[seg.Index]
		case *ir.Choice:
			return nil, fail("path crosses an unresolved construct")
		default:
			return nil, fail("path descends below a literal")
		}
	}

	switch t := cur.(type) {
	case *ir.Scalar:
		return t.Value, nil
	case *ir.Choice:
		return nil, fail("reference targets an unresolved construct")
	default:
		return nil, fail("reference does not end at a literal")
	}
}

// matchCase reports whether every term of the case matches the referenced
// value at its position. Ranges are inclusive on both bounds and never match
// a non-numeric value.
func matchCase(cs ir.Case, values []interface{}) bool {
	for i, term := range cs.Terms {
		switch {
		case term.Range != nil:
			f, ok := ir.AsFloat(values[i])
			if !ok || !term.Range.Contains(f) {
				return false
			}
		case term.Value != nil:
			if !ir.ScalarEqual(term.Value.Value, values[i]) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// applyLabelRules evaluates the document-level label rules against a fully
// resolved tree. Each rule emits exactly one document-level label: the first
// matching case's, or the rule's default.
func applyLabelRules(root ir.Node, rules []ir.LabelRule, labels *ir.LabelSet) error {
	if len(rules) == 0 {
		return nil
	}
	r := &condResolver{root: root, scope: ir.BuildScope(root), labels: labels}
	for n, rule := range rules {
		key := fmt.Sprintf("proc_meta.proc_labels.%d", n)
		values := make([]interface{}, len(rule.Refs))
		for i, ref := range rule.Refs {
			v, err := r.lookup(ref, key)
			if err != nil {
				return err
			}
			values[i] = v
		}
		matched := false
		for i, cs := range rule.Cases {
			if matchCase(cs, values) {
				labels.Add(ir.Label{Text: rule.Labels[i]})
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if !rule.HasDefault {
			return errors.NewUnmatchedCase(key, values)
		}
		labels.Add(ir.Label{Text: rule.Default})
	}
	return nil
}
