package ir

// Walk traverses the tree depth-first in document order, calling fn with
// each node and its path. Mapping entries visit in declaration order and
// sequence items in index order. When fn returns false the node's children
// are skipped. Construct payloads (option lists, inner values, case arms)
// are not traversed.
func Walk(root Node, fn func(Path, Node) bool) {
	walk(root, Path{}, fn)
}

func walk(n Node, p Path, fn func(Path, Node) bool) {
	if n == nil {
		return
	}
	if !fn(p, n) {
		return
	}
	switch t := n.(type) {
	case *Sequence:
		for i, item := range t.Items {
			walk(item, p.Index(i), fn)
		}
	case *Mapping:
		for _, e := range t.Entries {
			walk(e.Value, p.Field(e.Key), fn)
		}
	}
}

// Scope maps identifiers to the paths of the mappings declaring them.
type Scope map[string]Path

// BuildScope indexes every identified mapping in the tree. When the same
// identifier occurs more than once (copies introduced by substitution), the
// first occurrence in document order wins.
func BuildScope(root Node) Scope {
	scope := make(Scope)
	Walk(root, func(p Path, n Node) bool {
		if m, ok := n.(*Mapping); ok && m.ID != "" {
			if _, seen := scope[m.ID]; !seen {
				scope[m.ID] = p
			}
		}
		return true
	})
	return scope
}
