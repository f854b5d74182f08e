// Package expand turns one arena template into its set of concrete
// variants.
//
// Expansion runs in fixed stages. A registry walk collects every choice
// construct in document order and validates its shape. The domain builder
// computes each construct's ordered value list, recursing into compound
// constructs (Repeat, Restrict) by expanding their inner content as a
// nested space. The enumerator fixes the variant order over the
// cross-product of all domains, last-registered construct varying fastest,
// optionally replaced by a seeded uniform sample of the index space.
// Materialization substitutes one combination into a deep copy of the
// template, then resolves conditionals in document order and evaluates the
// document-level label rules.
//
// All structural errors (malformed constructs, over-restriction, palette
// exhaustion, cardinality overflow) surface from New, before any variant
// exists. Per-variant errors (forward references, unmatched cases) surface
// from Variant and abort the run: callers must treat partially produced
// output as invalid.
//
// A single seeded random source drives all sampling. It is consumed in a
// fixed order: restricted draws during domain building in document order,
// then the global sample draw list. The same seed, template and options
// therefore reproduce identical variants in identical order.
package expand
