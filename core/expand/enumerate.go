package expand

import (
	"math"
	"math/rand"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
)

// enumerator fixes the variant order over the cross-product of all domains.
// Variant i maps to one domain index per construct by treating i as a
// mixed-radix number, first-registered construct most significant, so the
// last-registered construct varies fastest, like the innermost loop of a
// nest. With a sample count below the total, the order is instead the draw
// order of a seeded uniform sample of the index space.
type enumerator struct {
	domains []domain
	total   int64
	picks   []int64
}

func newEnumerator(domains []domain, opts Options, rng *rand.Rand) (*enumerator, error) {
	ceiling := opts.ceiling()
	total := int64(1)
	for _, d := range domains {
		next, ok := mulInt64(total, int64(d.size()))
		if !ok {
			return nil, errors.NewCardinalityOverflow("", math.MaxInt64, ceiling)
		}
		total = next
	}

	e := &enumerator{domains: domains, total: total}
	if opts.SampleCount > 0 && int64(opts.SampleCount) < total {
		// Sampling is the cardinality control; the ceiling does not apply.
		e.picks = sampleWithoutReplacement(rng, total, opts.SampleCount)
		return e, nil
	}
	if total > ceiling {
		return nil, errors.NewCardinalityOverflow("", total, ceiling)
	}
	return e, nil
}

// Total returns the full cross-product cardinality, ignoring sampling.
func (e *enumerator) Total() int64 { return e.total }

// Len returns the number of variants the enumerator yields.
func (e *enumerator) Len() int {
	if e.picks != nil {
		return len(e.picks)
	}
	return int(e.total)
}

// assignment returns the domain indices of the i-th variant. The caller must
// keep i within [0, Len()).
func (e *enumerator) assignment(i int) []int {
	v := int64(i)
	if e.picks != nil {
		v = e.picks[i]
	}
	return decodeIndex(v, e.domains)
}

// decodeIndex converts one cross-product index into per-domain indices, last
// domain varying fastest.
func decodeIndex(v int64, domains []domain) []int {
	idxs := make([]int, len(domains))
	for j := len(domains) - 1; j >= 0; j-- {
		size := int64(domains[j].size())
		idxs[j] = int(v % size)
		v /= size
	}
	return idxs
}
