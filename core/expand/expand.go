package expand

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
	"github.com/FocuswithJustin/ArenaForge/core/palette"
)

// Defaults for Options fields left at their zero value.
const (
	DefaultSeed    = 1234
	DefaultCeiling = 10000
)

// PaletteSource is the ordered color list PalettePick draws from.
type PaletteSource interface {
	// Len returns the number of available values.
	Len() int

	// Node returns the i-th value as a tree node.
	Node(i int) ir.Node
}

// Options configures an expansion.
type Options struct {
	// Seed initializes the random source driving restricted draws and
	// global sampling. Zero means DefaultSeed.
	Seed int64

	// CardinalityCeiling aborts exhaustive enumeration when the total
	// variant count exceeds it. Zero means DefaultCeiling; a negative
	// value lifts the limit.
	CardinalityCeiling int64

	// SampleCount, when positive and below the total, replaces exhaustive
	// enumeration with that many distinct variants drawn uniformly without
	// replacement. Sampling is exempt from the ceiling.
	SampleCount int

	// Palette overrides the color source. Nil means the built-in palette.
	Palette PaletteSource
}

func (o Options) seed() int64 {
	if o.Seed == 0 {
		return DefaultSeed
	}
	return o.Seed
}

func (o Options) ceiling() int64 {
	switch {
	case o.CardinalityCeiling == 0:
		return DefaultCeiling
	case o.CardinalityCeiling < 0:
		return math.MaxInt64
	default:
		return o.CardinalityCeiling
	}
}

func (o Options) palette() PaletteSource {
	if o.Palette == nil {
		return palette.Default()
	}
	return o.Palette
}

// Expansion is one template prepared for variant production: constructs
// registered, domains built, enumeration order fixed. All structural errors
// surface from New; Variant only fails on per-variant resolution errors,
// which indicate a template-wide defect and abort the run.
type Expansion struct {
	root    ir.Node
	rules   []ir.LabelRule
	reg     *registry
	domains []domain
	enum    *enumerator
}

// New prepares root for expansion. The tree is shared, never mutated; label
// rules are evaluated per variant after conditional resolution.
func New(root ir.Node, rules []ir.LabelRule, opts Options) (*Expansion, error) {
	reg, err := buildRegistry(root)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.seed()))
	b := &builder{pal: opts.palette(), rng: rng, ceiling: opts.ceiling()}
	domains, err := b.buildAll(reg)
	if err != nil {
		return nil, err
	}

	enum, err := newEnumerator(domains, opts, rng)
	if err != nil {
		return nil, err
	}

	return &Expansion{root: root, rules: rules, reg: reg, domains: domains, enum: enum}, nil
}

// Total returns the full cross-product cardinality, ignoring sampling.
func (x *Expansion) Total() int64 { return x.enum.Total() }

// Len returns the number of variants this expansion yields.
func (x *Expansion) Len() int { return x.enum.Len() }

// Variant materializes variant i. Variants are independent: any i in
// [0, Len()) may be requested, in any order, any number of times, with
// identical results.
func (x *Expansion) Variant(i int) (*Variant, error) {
	if i < 0 || i >= x.enum.Len() {
		return nil, errors.NewNotFound("variant", strconv.Itoa(i))
	}
	return materializeVariant(i, x.root, x.reg, x.domains, x.enum.assignment(i), x.rules)
}
