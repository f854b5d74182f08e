package ir

import (
	"strconv"
	"strings"
)

// Path addresses a node position within a tree, from the root down.
// Its string form is the node's position key.
type Path []Step

// Step is one path component: a mapping key, or a sequence index when
// IsIndex is set.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Field returns a new Path extended by a mapping key. The receiver is not
// modified, so paths handed to callbacks may be retained.
func (p Path) Field(key string) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = Step{Key: key}
	return next
}

// Index returns a new Path extended by a sequence index.
func (p Path) Index(i int) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = Step{Index: i, IsIndex: true}
	return next
}

// String returns the dotted position key, e.g. "arenas.0.items.1.sizes".
// The root path is the empty string.
func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p {
		if i > 0 {
			sb.WriteString(".")
		}
		if s.IsIndex {
			sb.WriteString(strconv.Itoa(s.Index))
		} else {
			sb.WriteString(s.Key)
		}
	}
	return sb.String()
}

// Resolve walks root along the path. It returns false when the path does
// not exist in the tree, including when a step lands on a scalar or an
// unexpanded choice.
func (p Path) Resolve(root Node) (Node, bool) {
	cur := root
	for _, s := range p {
		switch t := cur.(type) {
		case *Mapping:
			if s.IsIndex {
				return nil, false
			}
			v, ok := t.Get(s.Key)
			if !ok {
				return nil, false
			}
			cur = v
		case *Sequence:
			if !s.IsIndex || s.Index < 0 || s.Index >= len(t.Items) {
				return nil, false
			}
			cur = t.Items[s.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}
