package palette

import (
	"testing"

	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

func TestDefaultPalette(t *testing.T) {
	p := Default()

	if p.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", p.Len())
	}
	if p[0] != (Color{255, 0, 0}) {
		t.Errorf("first color = %+v, want red", p[0])
	}
	if p[9] != (Color{0, 128, 0}) {
		t.Errorf("last color = %+v, want dark green", p[9])
	}

	// Draw order is stable across calls.
	q := Default()
	for i := range p {
		if p[i] != q[i] {
			t.Fatalf("palette order differs at %d: %+v vs %+v", i, p[i], q[i])
		}
	}
}

func TestPaletteNode(t *testing.T) {
	n := Default().Node(3)

	m, ok := n.(*ir.Mapping)
	if !ok {
		t.Fatalf("Node() = %T, want *ir.Mapping", n)
	}
	if m.Tag != "!RGB" {
		t.Errorf("Tag = %q, want !RGB", m.Tag)
	}

	want := map[string]int64{"r": 255, "g": 255, "b": 0}
	for key, wantVal := range want {
		v, ok := m.Get(key)
		if !ok {
			t.Fatalf("missing %s entry", key)
		}
		if got := v.(*ir.Scalar).Value; got != wantVal {
			t.Errorf("%s = %v, want %d", key, got, wantVal)
		}
	}
	if len(m.Entries) != 3 {
		t.Errorf("entry count = %d, want 3", len(m.Entries))
	}
	if m.Entries[0].Key != "r" || m.Entries[1].Key != "g" || m.Entries[2].Key != "b" {
		t.Errorf("entry order = %v, want r,g,b", []string{m.Entries[0].Key, m.Entries[1].Key, m.Entries[2].Key})
	}
}
