package expand

import (
	"fmt"
	"math"
	"strings"

	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// Count returns the variant count of the template by pure arithmetic,
// without building any domain. It succeeds even for templates whose
// expansion would fail on palette exhaustion or over-restriction, so fleets
// of templates can be counted cheaply before generation. The count saturates
// at MaxInt64.
func Count(root ir.Node) (int64, error) {
	reg, err := buildRegistry(root)
	if err != nil {
		return 0, err
	}
	total := int64(1)
	for _, e := range reg.independents {
		f, err := countFactor(e)
		if err != nil {
			return 0, err
		}
		next, ok := mulInt64(total, f)
		if !ok {
			return math.MaxInt64, nil
		}
		total = next
	}
	return total, nil
}

// Explain returns the factor breakdown of the template's variant count in
// document order, e.g. "6#ProcList x 5#ProcColor x 4#ProcVector3Scaled".
// A template without factors explains as "No variations".
func Explain(root ir.Node) (string, error) {
	reg, err := buildRegistry(root)
	if err != nil {
		return "", err
	}
	if len(reg.independents) == 0 {
		return "No variations", nil
	}
	parts := make([]string, len(reg.independents))
	for i, e := range reg.independents {
		f, err := countFactor(e)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("%d#%s", f, strings.TrimPrefix(e.Construct.Name(), "!"))
	}
	return strings.Join(parts, " x "), nil
}

// countFactor returns the domain size one independent construct contributes.
// Compounds contribute their own size: a Repeat inherits its inner count, a
// Restrict contributes exactly its amount.
func countFactor(e entry) (int64, error) {
	switch t := e.Construct.(type) {
	case *ir.Enum:
		return int64(len(t.Options)), nil
	case *ir.PalettePick:
		return int64(t.Amount), nil
	case *ir.Scaled:
		return int64(len(t.Scales)), nil
	case *ir.Repeat:
		return Count(t.Value)
	case *ir.Restrict:
		return int64(t.Amount), nil
	default:
		return 1, nil
	}
}
