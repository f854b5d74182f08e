package expand

import (
	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// Variant is one fully resolved document. The tree contains no constructs
// and is owned by the caller; the shared template is never mutated.
type Variant struct {
	// Index is the variant's position in enumeration order.
	Index int

	// Root is the resolved tree.
	Root ir.Node

	// Labels are the labels emitted while resolving, in emission order.
	Labels ir.LabelSet
}

// materializeVariant produces variant number index from one assignment:
// substitute every independent construct, then resolve conditionals in
// document order, then evaluate the document-level label rules.
func materializeVariant(index int, root ir.Node, reg *registry, domains []domain, idxs []int, rules []ir.LabelRule) (*Variant, error) {
	tree, memberLabels, err := substituteIndependents(root, reg, domains, idxs)
	if err != nil {
		return nil, err
	}

	labels := &ir.LabelSet{}
	labels.AddAll(memberLabels)

	tree, err = resolveConditionals(tree, labels)
	if err != nil {
		return nil, err
	}
	if err := applyLabelRules(tree, rules, labels); err != nil {
		return nil, err
	}

	return &Variant{Index: index, Root: tree, Labels: *labels}, nil
}

// substituteIndependents deep-copies root and replaces each independent
// construct with its chosen domain member. Conditionals stay in place.
func substituteIndependents(root ir.Node, reg *registry, domains []domain, idxs []int) (ir.Node, []ir.Label, error) {
	tree := ir.Copy(root)
	var labels []ir.Label
	for i, e := range reg.independents {
		m := domains[i].members[idxs[i]]
		var err error
		tree, err = replaceAt(tree, e.Path, ir.Copy(m.value))
		if err != nil {
			return nil, nil, err
		}
		labels = append(labels, m.labels...)
	}
	return tree, labels, nil
}

// replaceAt substitutes the node at path, returning the (possibly new) root.
func replaceAt(root ir.Node, path ir.Path, value ir.Node) (ir.Node, error) {
	if len(path) == 0 {
		return value, nil
	}
	parent, ok := path[:len(path)-1].Resolve(root)
	if !ok {
		return nil, errors.NewNotFound("node", path.String())
	}
	last := path[len(path)-1]
	switch t := parent.(type) {
	case *ir.Mapping:
		if last.IsIndex {
			return nil, errors.NewNotFound("node", path.String())
		}
		t.Set(last.Key, value)
	case *ir.Sequence:
		if !last.IsIndex || last.Index < 0 || last.Index >= len(t.Items) {
			return nil, errors.NewNotFound("node", path.String())
		}
		t.Items[last.Index] = value
	default:
		return nil, errors.NewNotFound("node", path.String())
	}
	return root, nil
}
