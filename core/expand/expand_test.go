package expand

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// Tree-building shorthands shared by the package tests.

func lit(v interface{}) *ir.Scalar { return &ir.Scalar{Value: v} }

func seq(items ...ir.Node) *ir.Sequence { return &ir.Sequence{Items: items} }

func mapping(entries ...ir.Entry) *ir.Mapping { return &ir.Mapping{Entries: entries} }

func ent(key string, v ir.Node) ir.Entry { return ir.Entry{Key: key, Value: v} }

func enumOf(values ...interface{}) *ir.Choice {
	opts := make([]ir.Node, len(values))
	for i, v := range values {
		opts[i] = lit(v)
	}
	return &ir.Choice{Construct: &ir.Enum{Options: opts}}
}

// scalarAt resolves a dotted position key to a scalar value, failing the
// test when the path does not land on a literal.
func scalarAt(t *testing.T, root ir.Node, key string) interface{} {
	t.Helper()
	cur := root
	for _, seg := range splitKey(key) {
		switch n := cur.(type) {
		case *ir.Mapping:
			v, ok := n.Get(seg.Key)
			if !ok {
				t.Fatalf("no field %q in %q", seg.Key, key)
			}
			cur = v
		case *ir.Sequence:
			if !seg.IsIndex || seg.Index >= len(n.Items) {
				t.Fatalf("bad index in %q", key)
			}
			cur = n.Items[seg.Index]
		default:
			t.Fatalf("path %q descends below a literal", key)
		}
	}
	s, ok := cur.(*ir.Scalar)
	if !ok {
		t.Fatalf("path %q does not end at a scalar", key)
	}
	return s.Value
}

func splitKey(key string) []ir.Step {
	ref := ir.MustParseRef(key)
	steps := []ir.Step{{Key: ref.ID}}
	for _, s := range ref.Segs {
		steps = append(steps, ir.Step{Key: s.Key, Index: s.Index, IsIndex: s.IsIndex})
	}
	return steps
}

func TestTwoEnumsEnumerateLastFastest(t *testing.T) {
	root := mapping(
		ent("a", enumOf(int64(0), int64(120))),
		ent("b", enumOf(int64(90), int64(180))),
	)

	x, err := New(root, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if x.Total() != 4 || x.Len() != 4 {
		t.Fatalf("Total = %d, Len = %d, want 4", x.Total(), x.Len())
	}

	var got [][2]int64
	for i := 0; i < x.Len(); i++ {
		v, err := x.Variant(i)
		if err != nil {
			t.Fatalf("Variant(%d): %v", i, err)
		}
		got = append(got, [2]int64{
			scalarAt(t, v.Root, "a").(int64),
			scalarAt(t, v.Root, "b").(int64),
		})
	}

	want := [][2]int64{{0, 90}, {0, 180}, {120, 90}, {120, 180}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("variants = %v, want %v", got, want)
	}
}

func TestVariantCountIsDomainProduct(t *testing.T) {
	root := mapping(
		ent("a", enumOf(int64(1), int64(2), int64(3))),
		ent("b", &ir.Choice{Construct: &ir.PalettePick{Amount: 5}}),
		ent("c", &ir.Choice{Construct: &ir.Scaled{Scales: []float64{1, 2}}}),
	)

	x, err := New(root, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if x.Total() != 3*5*2 {
		t.Errorf("Total = %d, want 30", x.Total())
	}

	n, err := Count(root)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != x.Total() {
		t.Errorf("Count = %d, Total = %d", n, x.Total())
	}
}

func TestTemplateWithoutConstructsYieldsItself(t *testing.T) {
	root := mapping(ent("n", lit(int64(7))))

	x, err := New(root, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if x.Len() != 1 {
		t.Fatalf("Len = %d, want 1", x.Len())
	}
	v, err := x.Variant(0)
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	if got := scalarAt(t, v.Root, "n"); got != int64(7) {
		t.Errorf("n = %v, want 7", got)
	}
	if root.Entries[0].Value == v.Root.(*ir.Mapping).Entries[0].Value {
		t.Error("variant shares nodes with the template")
	}
}

func TestVariantNeverMutatesTemplate(t *testing.T) {
	root := mapping(
		ent("x", mapping(ent("v", enumOf(int64(1), int64(2))))),
	)
	root.Entries[0].Value.(*ir.Mapping).ID = "x"

	x, err := New(root, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < x.Len(); i++ {
		if _, err := x.Variant(i); err != nil {
			t.Fatalf("Variant(%d): %v", i, err)
		}
	}

	inner, _ := root.Entries[0].Value.(*ir.Mapping).Get("v")
	if _, ok := inner.(*ir.Choice); !ok {
		t.Error("template construct was substituted in place")
	}
}

func TestRepeatMaterializesEqualCopies(t *testing.T) {
	root := mapping(
		ent("walls", &ir.Choice{Construct: &ir.Repeat{
			Amount: 3,
			Value:  enumOf("long", "short"),
		}}),
	)

	x, err := New(root, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if x.Total() != 2 {
		t.Fatalf("Total = %d, want 2 (one shared draw, not 3 independent ones)", x.Total())
	}

	for i := 0; i < x.Len(); i++ {
		v, err := x.Variant(i)
		if err != nil {
			t.Fatalf("Variant(%d): %v", i, err)
		}
		walls, _ := v.Root.(*ir.Mapping).Get("walls")
		items := walls.(*ir.Sequence).Items
		if len(items) != 3 {
			t.Fatalf("variant %d has %d walls, want 3", i, len(items))
		}
		first := items[0].(*ir.Scalar).Value
		for j, item := range items {
			if item.(*ir.Scalar).Value != first {
				t.Errorf("variant %d wall %d = %v, want %v", i, j, item.(*ir.Scalar).Value, first)
			}
		}
	}
}

func TestSameSeedReproducesVariants(t *testing.T) {
	build := func() ir.Node {
		return mapping(
			ent("colors", &ir.Choice{Construct: &ir.Restrict{
				Amount: 4,
				Value:  seq(&ir.Choice{Construct: &ir.PalettePick{Amount: 6}}, enumOf(int64(1), int64(2), int64(3))),
			}}),
			ent("size", enumOf(int64(10), int64(20))),
		)
	}
	opts := Options{Seed: 99}

	run := func() []string {
		x, err := New(build(), nil, opts)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		var out []string
		for i := 0; i < x.Len(); i++ {
			v, err := x.Variant(i)
			if err != nil {
				t.Fatalf("Variant(%d): %v", i, err)
			}
			out = append(out, dumpTree(v.Root))
		}
		return out
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different variants")
	}
}

func TestConditionalDoesNotChangeCount(t *testing.T) {
	withCond := mapping(
		ent("x", &ir.Mapping{ID: "x", Entries: []ir.Entry{
			{Key: "v", Value: enumOf(int64(5), int64(50))},
		}}),
		ent("y", &ir.Choice{Construct: &ir.If{
			Refs:    []ir.RefPath{ir.MustParseRef("x.v")},
			Cases:   []ir.Case{{Terms: []ir.CaseTerm{{Range: &ir.Range{Min: 1, Max: 10}}}}},
			Then:    []ir.Node{lit(int64(0))},
			Default: lit(int64(180)),
		}}),
	)
	withoutCond := mapping(
		ent("x", &ir.Mapping{ID: "x", Entries: []ir.Entry{
			{Key: "v", Value: enumOf(int64(5), int64(50))},
		}}),
		ent("y", lit(int64(180))),
	)

	a, err := New(withCond, nil, Options{})
	if err != nil {
		t.Fatalf("New with conditional: %v", err)
	}
	b, err := New(withoutCond, nil, Options{})
	if err != nil {
		t.Fatalf("New without conditional: %v", err)
	}
	if a.Total() != b.Total() {
		t.Errorf("conditional changed count: %d vs %d", a.Total(), b.Total())
	}

	// The conditional resolves per variant: 5 is in [1,10], 50 is not.
	want := map[int64]int64{5: 0, 50: 180}
	for i := 0; i < a.Len(); i++ {
		v, err := a.Variant(i)
		if err != nil {
			t.Fatalf("Variant(%d): %v", i, err)
		}
		xv := scalarAt(t, v.Root, "x.v").(int64)
		yv := scalarAt(t, v.Root, "y").(int64)
		if yv != want[xv] {
			t.Errorf("variant %d: x.v = %d resolved y = %d, want %d", i, xv, yv, want[xv])
		}
	}
}

func TestExplainBreakdown(t *testing.T) {
	root := mapping(
		ent("a", enumOf(int64(1), int64(2), int64(3), int64(4), int64(5), int64(6))),
		ent("b", &ir.Choice{Construct: &ir.PalettePick{Amount: 5}}),
		ent("c", &ir.Choice{Construct: &ir.Scaled{Scales: []float64{1, 2, 3, 4}}}),
	)

	got, err := Explain(root)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	want := "6#ProcList x 5#ProcColor x 4#ProcVector3Scaled"
	if got != want {
		t.Errorf("Explain = %q, want %q", got, want)
	}

	flat, err := Explain(mapping(ent("n", lit(int64(1)))))
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if flat != "No variations" {
		t.Errorf("Explain = %q, want No variations", flat)
	}
}

func TestCountSurvivesPaletteExhaustion(t *testing.T) {
	// Count is pure arithmetic: it reports 20 even though expansion fails.
	root := mapping(ent("colors", &ir.Choice{Construct: &ir.PalettePick{Amount: 20}}))

	n, err := Count(root)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 20 {
		t.Errorf("Count = %d, want 20", n)
	}

	if _, err := New(root, nil, Options{}); err == nil {
		t.Error("New succeeded past palette exhaustion")
	}
}

// dumpTree renders a tree into a comparable string form.
func dumpTree(n ir.Node) string {
	switch t := n.(type) {
	case *ir.Scalar:
		return fmt.Sprintf("%v(%T)", t.Value, t.Value)
	case *ir.Sequence:
		out := "["
		for _, item := range t.Items {
			out += dumpTree(item) + ","
		}
		return out + "]"
	case *ir.Mapping:
		out := "{"
		for _, e := range t.Entries {
			out += e.Key + "=" + dumpTree(e.Value) + ","
		}
		return out + "}"
	default:
		return "?"
	}
}
