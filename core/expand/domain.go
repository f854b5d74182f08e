package expand

import (
	"math"
	"math/rand"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// member is one resolved value a construct may take, with the labels the
// choice of that value emits.
type member struct {
	value  ir.Node
	labels []ir.Label
}

// domain is the ordered value list of one independent construct.
type domain struct {
	key     string
	name    string
	members []member
}

func (d domain) size() int { return len(d.members) }

// builder computes domains. The random source is shared across the whole
// expansion and consumed in document order, so restricted draws are
// reproducible for a given seed.
type builder struct {
	pal     PaletteSource
	rng     *rand.Rand
	ceiling int64
}

// buildAll computes one domain per independent entry, in registry order.
func (b *builder) buildAll(reg *registry) ([]domain, error) {
	domains := make([]domain, len(reg.independents))
	for i, e := range reg.independents {
		d, err := b.build(e)
		if err != nil {
			return nil, err
		}
		domains[i] = d
	}
	return domains, nil
}

func (b *builder) build(e entry) (domain, error) {
	d := domain{key: e.Key, name: e.Construct.Name()}
	switch t := e.Construct.(type) {
	case *ir.Enum:
		for i, opt := range t.Options {
			m := member{value: opt}
			if t.Labels != nil {
				m.labels = []ir.Label{{Owner: e.Owner, Text: t.Labels[i]}}
			}
			d.members = append(d.members, m)
		}

	case *ir.PalettePick:
		if t.Amount > b.pal.Len() {
			return d, errors.NewPaletteExhaustion(e.Key, t.Amount, b.pal.Len())
		}
		for i := 0; i < t.Amount; i++ {
			d.members = append(d.members, member{value: b.pal.Node(i)})
		}

	case *ir.Scaled:
		base := t.Base
		if base == nil {
			base = unitVector()
		}
		for i, s := range t.Scales {
			m := member{value: scaleTree(ir.Copy(base), s)}
			if t.Labels != nil {
				m.labels = []ir.Label{{Owner: e.Owner, Text: t.Labels[i]}}
			}
			d.members = append(d.members, m)
		}

	case *ir.Repeat:
		sub, err := b.newSubspace(e.Key, t.Value)
		if err != nil {
			return d, err
		}
		if sub.total > b.ceiling {
			return d, errors.NewCardinalityOverflow(e.Key, sub.total, b.ceiling)
		}
		for i := int64(0); i < sub.total; i++ {
			value, labels, err := sub.materialize(i)
			if err != nil {
				return d, err
			}
			items := make([]ir.Node, t.Amount)
			for j := range items {
				items[j] = value
			}
			d.members = append(d.members, member{
				value:  &ir.Sequence{Items: items},
				labels: adoptLabels(labels, e.Owner),
			})
		}

	case *ir.Restrict:
		// The domain holds exactly Amount members, so the ceiling is
		// decidable before any inner tree is materialized.
		if int64(t.Amount) > b.ceiling {
			return d, errors.NewCardinalityOverflow(e.Key, int64(t.Amount), b.ceiling)
		}
		sub, err := b.newSubspace(e.Key, t.Value)
		if err != nil {
			return d, err
		}
		if int64(t.Amount) > sub.total {
			return d, errors.NewOverRestricted(e.Key, t.Amount, sub.total)
		}
		var picks []int64
		if int64(t.Amount) == sub.total {
			picks = make([]int64, sub.total)
			for i := range picks {
				picks[i] = int64(i)
			}
		} else {
			picks = sampleWithoutReplacement(b.rng, sub.total, t.Amount)
		}
		for _, idx := range picks {
			value, labels, err := sub.materialize(idx)
			if err != nil {
				return d, err
			}
			d.members = append(d.members, member{
				value:  value,
				labels: adoptLabels(labels, e.Owner),
			})
		}

	default:
		return d, errors.NewMalformedConstruct(e.Key, e.Construct.Name(), "construct has no domain")
	}
	return d, nil
}

// subspace is the expansion space of a compound construct's inner content:
// its own registry and domains, enumerated exhaustively in document order.
type subspace struct {
	root    ir.Node
	reg     *registry
	domains []domain
	total   int64
}

func (b *builder) newSubspace(key string, inner ir.Node) (*subspace, error) {
	reg, err := buildRegistry(inner)
	if err != nil {
		return nil, err
	}
	domains, err := b.buildAll(reg)
	if err != nil {
		return nil, err
	}
	total := int64(1)
	for _, d := range domains {
		next, ok := mulInt64(total, int64(d.size()))
		if !ok {
			return nil, errors.NewCardinalityOverflow(key, math.MaxInt64, b.ceiling)
		}
		total = next
	}
	return &subspace{root: inner, reg: reg, domains: domains, total: total}, nil
}

// materialize resolves the i-th inner combination. Conditionals inside the
// inner content stay in place; they are resolved per outer variant.
func (s *subspace) materialize(i int64) (ir.Node, []ir.Label, error) {
	idxs := decodeIndex(i, s.domains)
	return substituteIndependents(s.root, s.reg, s.domains, idxs)
}

// adoptLabels attaches owner to every label emitted outside any identified
// mapping of a compound's inner content.
func adoptLabels(labels []ir.Label, owner string) []ir.Label {
	for i := range labels {
		if labels[i].Owner == "" {
			labels[i].Owner = owner
		}
	}
	return labels
}

// unitVector is the default base for a Scaled construct without one.
func unitVector() ir.Node {
	return &ir.Mapping{Tag: "!Vector3", Entries: []ir.Entry{
		{Key: "x", Value: &ir.Scalar{Value: int64(1)}},
		{Key: "y", Value: &ir.Scalar{Value: int64(1)}},
		{Key: "z", Value: &ir.Scalar{Value: int64(1)}},
	}}
}

// scaleTree multiplies every numeric scalar leaf of the tree by s, in place.
// Non-numeric leaves pass through unchanged.
func scaleTree(n ir.Node, s float64) ir.Node {
	switch t := n.(type) {
	case *ir.Scalar:
		if f, ok := ir.AsFloat(t.Value); ok {
			t.Value = f * s
		}
	case *ir.Sequence:
		for _, item := range t.Items {
			scaleTree(item, s)
		}
	case *ir.Mapping:
		for _, e := range t.Entries {
			scaleTree(e.Value, s)
		}
	}
	return n
}

// mulInt64 multiplies two non-negative counts, reporting overflow.
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}
