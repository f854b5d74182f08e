// Package ir provides the document tree for arena task templates and their
// expanded variants.
//
// # Node Model
//
// A template is a tree of four node kinds:
//
//   - Scalar: a literal leaf (null, bool, integer, float, or string)
//   - Sequence: an ordered list of nodes
//   - Mapping: an ordered set of key/value entries, optionally identified
//     by the value of its "id" entry
//   - Choice: a placeholder owning a choice construct to be expanded
//
// # Choice Constructs
//
// Six constructs drive expansion:
//
//   - Enum: pick one of an explicit option list (!ProcList, !ProcListLabelled)
//   - PalettePick: draw N colors from the palette (!ProcColor)
//   - Scaled: a base value multiplied by each scale (!ProcVector3Scaled)
//   - Repeat: N copies of one resolved inner combination (!ProcRepeatChoice)
//   - Restrict: N distinct inner combinations (!ProcRestrictCombinations)
//   - If: value selected by matching referenced literals (!ProcIf)
//
// Enum, PalettePick, Scaled, Repeat and Restrict each contribute one factor
// to the variant cross-product. If never multiplies: it is resolved per
// variant after every factor has been substituted.
//
// # Position Keys and References
//
// Every node has a stable position key: the dotted path from the root, with
// mapping keys and sequence indices as components (for example
// "arenas.0.items.1.sizes"). Conditionals address other nodes through an
// identifier declared by a mapping plus a dotted path below it,
// e.g. "wall.sizes.0.x", parsed by ParseRef.
//
// # Labels
//
// Labelled constructs emit short human-readable markers describing the
// chosen value. Each label attaches to the nearest enclosing identified
// mapping, so variants can report per-object label sets.
//
// # Example
//
//	sizes := &ir.Choice{Construct: &ir.Scaled{
//	    Scales: []float64{1, 2, 3},
//	    Labels: []string{"small", "medium", "large"},
//	}}
//
//	item := &ir.Mapping{Tag: "!Item", ID: "wall", Entries: []ir.Entry{
//	    {Key: "name", Value: &ir.Scalar{Value: "Wall"}},
//	    {Key: "sizes", Value: &ir.Sequence{Items: []ir.Node{sizes}}},
//	}}
package ir
