package expand

import "math/rand"

// denseSampleLimit bounds the index space size for which sampling allocates
// one slot per index. Larger spaces fall back to rejection sampling.
const denseSampleLimit = 1 << 20

// sampleWithoutReplacement draws k distinct indices from [0, n) uniformly at
// random, returned in draw order. The caller must guarantee 0 < k < n.
// The result is fully determined by the random source's state.
func sampleWithoutReplacement(rng *rand.Rand, n int64, k int) []int64 {
	if n <= denseSampleLimit {
		return sampleDense(rng, n, k)
	}
	return sampleSparse(rng, n, k)
}

// sampleDense runs a partial Fisher-Yates shuffle over the full index slice
// and keeps the first k positions.
func sampleDense(rng *rand.Rand, n int64, k int) []int64 {
	idx := make([]int64, n)
	for i := range idx {
		idx[i] = int64(i)
	}
	for i := 0; i < k; i++ {
		j := int64(i) + rng.Int63n(n-int64(i))
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k:k]
}

// sampleSparse draws with rejection, tracking seen indices. Suitable when n
// is far larger than k, which holds for any space past denseSampleLimit with
// a practical sample count.
func sampleSparse(rng *rand.Rand, n int64, k int) []int64 {
	seen := make(map[int64]struct{}, k)
	out := make([]int64, 0, k)
	for len(out) < k {
		v := rng.Int63n(n)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
