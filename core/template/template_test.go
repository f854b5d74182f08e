package template

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/ArenaForge/core/expand"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

const arenaTemplate = `!ArenaConfig
arenas:
  0: !Arena
    pass_mark: 0
    t: 250
    items:
      - !Item
        name: Wall
        id: wall
        positions:
          - !Vector3 {x: 10, y: 0, z: 10}
        rotations: !ProcList [0, 90, 180]
        sizes:
          - !ProcVector3Scaled
            base: !Vector3 {x: 1, y: 2, z: 1}
            scales: [1, 2.5]
            labels: [small, large]
        colors:
          - !ProcColor 3
      - !Item
        name: GoodGoal
        id: goal
        sizes: !ProcListLabelled
          - label: tiny
            value: !Vector3 {x: 0.5, y: 0.5, z: 0.5}
          - label: big
            value: !Vector3 {x: 3, y: 3, z: 3}
        rotations:
          - !ProcIf
            variable: wall.rotations
            cases: [!R [0, 90], 180]
            then: [0, 45]
            default: 90
            labels: [low, high]
            default_label: fallback
proc_meta:
  proc_labels:
    - !ProcIfLabels
      value: wall.rotations
      cases: [0, !R [90, 180]]
      labels: [straight, turned]
      default: odd
`

func TestParseArenaTemplate(t *testing.T) {
	tpl, err := Parse([]byte(arenaTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	root, ok := tpl.Root.(*ir.Mapping)
	if !ok || root.Tag != "!ArenaConfig" {
		t.Fatalf("root = %T %v, want !ArenaConfig mapping", tpl.Root, tpl.Root)
	}
	if _, found := root.Get("proc_meta"); found {
		t.Error("proc_meta survived into the tree")
	}

	// The arena key decodes as a string key with integer spelling.
	arenas, _ := root.Get("arenas")
	arena, found := arenas.(*ir.Mapping).Get("0")
	if !found {
		t.Fatal("no arena 0")
	}
	items, _ := arena.(*ir.Mapping).Get("items")
	wall := items.(*ir.Sequence).Items[0].(*ir.Mapping)
	goal := items.(*ir.Sequence).Items[1].(*ir.Mapping)

	if wall.Tag != "!Item" || wall.ID != "wall" {
		t.Errorf("wall = tag %q id %q, want !Item wall", wall.Tag, wall.ID)
	}
	if _, found := wall.Get("id"); found {
		t.Error("id stayed in the mapping entries")
	}

	rot, _ := wall.Get("rotations")
	enum := rot.(*ir.Choice).Construct.(*ir.Enum)
	if len(enum.Options) != 3 || enum.Labels != nil {
		t.Errorf("rotations = %d options, labels %v", len(enum.Options), enum.Labels)
	}
	if v := enum.Options[1].(*ir.Scalar).Value; v != int64(90) {
		t.Errorf("option 1 = %v (%T), want int64 90", v, v)
	}

	sizes, _ := wall.Get("sizes")
	scaled := sizes.(*ir.Sequence).Items[0].(*ir.Choice).Construct.(*ir.Scaled)
	if len(scaled.Scales) != 2 || scaled.Scales[1] != 2.5 {
		t.Errorf("scales = %v, want [1 2.5]", scaled.Scales)
	}
	if scaled.Base.(*ir.Mapping).Tag != "!Vector3" {
		t.Error("scaled base lost its tag")
	}

	colors, _ := wall.Get("colors")
	pick := colors.(*ir.Sequence).Items[0].(*ir.Choice).Construct.(*ir.PalettePick)
	if pick.Amount != 3 {
		t.Errorf("color amount = %d, want 3", pick.Amount)
	}

	gsizes, _ := goal.Get("sizes")
	labelled := gsizes.(*ir.Choice).Construct.(*ir.Enum)
	if len(labelled.Options) != 2 || labelled.Labels[0] != "tiny" || labelled.Labels[1] != "big" {
		t.Errorf("labelled options = %d, labels %v", len(labelled.Options), labelled.Labels)
	}

	grot, _ := goal.Get("rotations")
	cond := grot.(*ir.Sequence).Items[0].(*ir.Choice).Construct.(*ir.If)
	if len(cond.Refs) != 1 || cond.Refs[0].String() != "wall.rotations" {
		t.Errorf("refs = %v", cond.Refs)
	}
	if cond.Cases[0].Terms[0].Range == nil || cond.Cases[0].Terms[0].Range.Max != 90 {
		t.Error("case 0 did not decode as a range")
	}
	if cond.Cases[1].Terms[0].Value == nil || cond.Cases[1].Terms[0].Value.Value != int64(180) {
		t.Error("case 1 did not decode as a literal")
	}
	if cond.Default == nil || cond.DefaultLabel != "fallback" {
		t.Error("default or default_label lost")
	}

	if len(tpl.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(tpl.Rules))
	}
	rule := tpl.Rules[0]
	if rule.Labels[1] != "turned" || !rule.HasDefault || rule.Default != "odd" {
		t.Errorf("rule = %+v", rule)
	}
}

func TestParseCompoundConstructs(t *testing.T) {
	src := `
walls: !ProcRepeatChoice
  amount: 3
  value: !ProcList [long, short]
spawns: !ProcRestrictCombinations
  amount: 2
  item:
    - !ProcColor 4
`
	tpl, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := tpl.Root.(*ir.Mapping)

	walls, _ := root.Get("walls")
	rep := walls.(*ir.Choice).Construct.(*ir.Repeat)
	if rep.Amount != 3 {
		t.Errorf("repeat amount = %d, want 3", rep.Amount)
	}
	if _, ok := rep.Value.(*ir.Choice); !ok {
		t.Error("repeat value is not a construct")
	}

	spawns, _ := root.Get("spawns")
	res := spawns.(*ir.Choice).Construct.(*ir.Restrict)
	if res.Amount != 2 {
		t.Errorf("restrict amount = %d, want 2", res.Amount)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"duplicate identifier", "a:\n  id: x\n  v: 1\nb:\n  id: x\n  v: 2\n"},
		{"duplicate key", "a: 1\na: 2\n"},
		{"unknown construct field", "a: !ProcRepeatChoice\n  amount: 2\n  value: 1\n  extra: true\n"},
		{"missing construct field", "a: !ProcRepeatChoice\n  amount: 2\n"},
		{"non-integer amount", "a: !ProcColor banana\n"},
		{"range with three bounds", "a: !ProcIf\n  variable: x.v\n  cases: [!R [1, 2, 3]]\n  then: [1]\n"},
		{"inverted range", "a: !ProcIf\n  variable: x.v\n  cases: [!R [9, 2]]\n  then: [1]\n"},
		{"case arity mismatch", "a: !ProcIf\n  variable: [x.v, y.v]\n  cases: [[1]]\n  then: [1]\n"},
		{"bad reference", "a: !ProcIf\n  variable: 'not a ref!'\n  cases: [1]\n  then: [1]\n"},
		{"labels outside proc_meta", "a: !ProcIfLabels\n  value: x.v\n  cases: [1]\n  labels: [one]\n"},
		{"misaligned rule labels", "proc_meta:\n  proc_labels:\n    - !ProcIfLabels\n      value: x.v\n      cases: [1, 2]\n      labels: [one]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.src)); err == nil {
				t.Error("Parse succeeded, want error")
			}
		})
	}
}

func TestParseTypedScalars(t *testing.T) {
	tpl, err := Parse([]byte("i: 3\nf: 3.5\nb: true\nn: null\ns: hello\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := tpl.Root.(*ir.Mapping)
	checks := map[string]interface{}{
		"i": int64(3),
		"f": 3.5,
		"b": true,
		"n": nil,
		"s": "hello",
	}
	for key, want := range checks {
		v, _ := root.Get(key)
		if got := v.(*ir.Scalar).Value; got != want {
			t.Errorf("%s = %v (%T), want %v (%T)", key, got, got, want, want)
		}
	}
}

func TestMarshalOmitsIdentifiers(t *testing.T) {
	root := &ir.Mapping{Tag: "!Item", ID: "wall", Entries: []ir.Entry{
		{Key: "name", Value: &ir.Scalar{Value: "Wall"}},
	}}

	out, err := Marshal(root)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(out), "id:") || strings.Contains(string(out), "wall") {
		t.Errorf("identifier leaked into output:\n%s", out)
	}
	if !strings.Contains(string(out), "!Item") {
		t.Errorf("tag lost:\n%s", out)
	}
}

func TestMarshalFlowStyles(t *testing.T) {
	root := &ir.Mapping{Entries: []ir.Entry{
		{Key: "position", Value: &ir.Mapping{Tag: "!Vector3", Entries: []ir.Entry{
			{Key: "x", Value: &ir.Scalar{Value: int64(1)}},
			{Key: "y", Value: &ir.Scalar{Value: int64(0)}},
			{Key: "z", Value: &ir.Scalar{Value: int64(2)}},
		}}},
		{Key: "rotations", Value: &ir.Sequence{Items: []ir.Node{
			&ir.Scalar{Value: int64(0)},
			&ir.Scalar{Value: int64(90)},
		}}},
		{Key: "items", Value: &ir.Sequence{Items: []ir.Node{
			&ir.Mapping{Entries: []ir.Entry{{Key: "a", Value: &ir.Scalar{Value: int64(1)}}}},
		}}},
	}}

	out, err := Marshal(root)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "!Vector3 {") {
		t.Errorf("vector not in flow style:\n%s", s)
	}
	if !strings.Contains(s, "[0, 90]") {
		t.Errorf("scalar list not in flow style:\n%s", s)
	}
	if strings.Contains(s, "items: [") {
		t.Errorf("mapping list wrongly in flow style:\n%s", s)
	}
}

func TestMarshalRoundTripsConstructs(t *testing.T) {
	src := `arena:
  rotations: !ProcList [0, 90]
  colors: !ProcColor 2
  walls: !ProcRepeatChoice
    amount: 2
    value: !ProcList [a, b]
`
	tpl, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Marshal(tpl.Root)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, out)
	}

	arena, _ := back.Root.(*ir.Mapping).Get("arena")
	rot, _ := arena.(*ir.Mapping).Get("rotations")
	if e := rot.(*ir.Choice).Construct.(*ir.Enum); len(e.Options) != 2 {
		t.Errorf("re-parsed enum has %d options, want 2", len(e.Options))
	}
	colors, _ := arena.(*ir.Mapping).Get("colors")
	if p := colors.(*ir.Choice).Construct.(*ir.PalettePick); p.Amount != 2 {
		t.Errorf("re-parsed color amount = %d, want 2", p.Amount)
	}
	walls, _ := arena.(*ir.Mapping).Get("walls")
	if r := walls.(*ir.Choice).Construct.(*ir.Repeat); r.Amount != 2 {
		t.Errorf("re-parsed repeat amount = %d, want 2", r.Amount)
	}
}

func TestParseExpandEndToEnd(t *testing.T) {
	tpl, err := Parse([]byte(arenaTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	n, err := expand.Count(tpl.Root)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	// 3 rotations x 2 scales x 3 colors x 2 labelled sizes.
	if n != 36 {
		t.Errorf("count = %d, want 36", n)
	}
}
