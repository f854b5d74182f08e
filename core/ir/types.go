package ir

// types.go - Consolidated node and construct type definitions
// This file contains all core tree types used throughout ArenaForge.
// The codec and the expansion engine share these types rather than defining
// their own.

// Kind identifies the concrete type behind a Node.
type Kind int

// Node kinds.
const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
	KindChoice
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Node is one node of a template or variant tree.
// It is implemented by *Scalar, *Sequence, *Mapping and *Choice only.
type Node interface {
	Kind() Kind
}

// Scalar is a literal leaf. Value is nil, bool, int64, float64 or string.
type Scalar struct {
	// Value is the typed literal value.
	Value interface{}

	// Tag preserves a custom scalar tag; empty for plain scalars.
	Tag string
}

// Kind returns KindScalar.
func (*Scalar) Kind() Kind { return KindScalar }

// Sequence is an ordered list of nodes.
type Sequence struct {
	// Tag preserves a custom tag such as "!R"; empty for plain sequences.
	Tag string

	// Items are the elements in document order.
	Items []Node
}

// Kind returns KindSequence.
func (*Sequence) Kind() Kind { return KindSequence }

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Node
}

// Mapping is an ordered set of entries. Keys are unique within a mapping and
// declaration order is preserved.
type Mapping struct {
	// Tag preserves a custom tag such as "!Arena" or "!Item".
	Tag string

	// ID is the identifier extracted from the "id" entry at parse time.
	// It is never serialized back into output documents.
	ID string

	// Entries are the key/value pairs in declaration order.
	Entries []Entry
}

// Kind returns KindMapping.
func (*Mapping) Kind() Kind { return KindMapping }

// Get returns the value for key, or nil and false when absent.
func (m *Mapping) Get(key string) (Node, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for key, appending a new entry when absent.
func (m *Mapping) Set(key string, v Node) {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries[i].Value = v
			return
		}
	}
	m.Entries = append(m.Entries, Entry{Key: key, Value: v})
}

// Delete removes the entry for key, preserving the order of the rest.
func (m *Mapping) Delete(key string) {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return
		}
	}
}

// Choice is a placeholder node owning a choice construct.
type Choice struct {
	Construct Construct
}

// Kind returns KindChoice.
func (*Choice) Kind() Kind { return KindChoice }

// Construct is a choice construct carried by a Choice node.
// It is implemented by *Enum, *PalettePick, *Scaled, *Repeat, *Restrict
// and *If only.
type Construct interface {
	// Name returns the construct's template tag, e.g. "!ProcList".
	Name() string

	construct()
}

// Enum picks one value from an explicit option list.
// Options must not contain further constructs.
type Enum struct {
	// Options are the candidate values in declaration order.
	Options []Node

	// Labels, when non-nil, align with Options and are emitted with the
	// chosen value.
	Labels []string
}

func (*Enum) construct() {}

// Name returns the template tag for the construct.
func (e *Enum) Name() string {
	if e.Labels != nil {
		return "!ProcListLabelled"
	}
	return "!ProcList"
}

// PalettePick draws Amount colors from the palette, in palette order.
type PalettePick struct {
	Amount int
}

func (*PalettePick) construct() {}

// Name returns the template tag for the construct.
func (*PalettePick) Name() string { return "!ProcColor" }

// Scaled produces Base multiplied component-wise by each scale.
// A nil Base means the unit vector {x: 1, y: 1, z: 1}.
type Scaled struct {
	Base   Node
	Scales []float64

	// Labels, when non-nil, align with Scales.
	Labels []string
}

func (*Scaled) construct() {}

// Name returns the template tag for the construct.
func (*Scaled) Name() string { return "!ProcVector3Scaled" }

// Repeat produces a sequence of Amount copies of one combination of its
// inner content. All copies within a variant are identical.
type Repeat struct {
	Amount int
	Value  Node
}

func (*Repeat) construct() {}

// Name returns the template tag for the construct.
func (*Repeat) Name() string { return "!ProcRepeatChoice" }

// Restrict produces a sequence of Amount distinct combinations of its inner
// content, sampled without replacement when fewer than all are requested.
type Restrict struct {
	Amount int
	Value  Node
}

func (*Restrict) construct() {}

// Name returns the template tag for the construct.
func (*Restrict) Name() string { return "!ProcRestrictCombinations" }

// Range is an inclusive numeric interval used in case terms.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// CaseTerm matches one referenced value: either an exact literal or an
// inclusive numeric range. Exactly one of Value and Range is set.
type CaseTerm struct {
	Value *Scalar
	Range *Range
}

// Case is one tuple of terms, matched positionally against the referenced
// values of a conditional.
type Case struct {
	Terms []CaseTerm
}

// If selects a value by comparing referenced literals against cases in
// order, first match winning. Default is taken when no case matches; a nil
// Default makes an unmatched conditional an error. Then entries, Default
// and case terms must not contain constructs.
type If struct {
	Refs  []RefPath
	Cases []Case
	Then  []Node

	// Default is the fallback value; nil when the conditional has none.
	Default Node

	// Labels, when non-nil, align with Cases. A labelled conditional that
	// falls back to Default emits DefaultLabel, which must then be set.
	Labels       []string
	DefaultLabel string
}

func (*If) construct() {}

// Name returns the template tag for the construct.
func (*If) Name() string { return "!ProcIf" }

// LabelRule is a document-level conditional label assignment, declared under
// the template's proc_meta.proc_labels key. It matches like an If but emits
// a label instead of substituting a value.
type LabelRule struct {
	Refs  []RefPath
	Cases []Case

	// Labels align with Cases.
	Labels []string

	// Default is the label emitted when no case matches. HasDefault
	// distinguishes an absent default from an empty label.
	Default    string
	HasDefault bool
}

// Label is one human-readable marker emitted by a labelled construct.
type Label struct {
	// Owner is the identifier of the nearest enclosing identified mapping,
	// empty for document-level labels.
	Owner string

	// Text is the label text.
	Text string
}

// LabelSet collects labels in emission order. The same text may occur more
// than once.
type LabelSet struct {
	labels []Label
}

// Add appends one label.
func (s *LabelSet) Add(l Label) {
	s.labels = append(s.labels, l)
}

// AddAll appends labels preserving their order.
func (s *LabelSet) AddAll(ls []Label) {
	s.labels = append(s.labels, ls...)
}

// Len returns the number of labels.
func (s *LabelSet) Len() int { return len(s.labels) }

// Labels returns a copy of the labels in emission order.
func (s *LabelSet) Labels() []Label {
	return append([]Label(nil), s.labels...)
}

// Texts returns the label texts in emission order.
func (s *LabelSet) Texts() []string {
	out := make([]string, len(s.labels))
	for i, l := range s.labels {
		out[i] = l.Text
	}
	return out
}

// ByOwner groups label texts by owner, preserving emission order within each
// owner.
func (s *LabelSet) ByOwner() map[string][]string {
	out := make(map[string][]string)
	for _, l := range s.labels {
		out[l.Owner] = append(out[l.Owner], l.Text)
	}
	return out
}
