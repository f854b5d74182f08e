package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// RefPath is a parsed reference path: an identifier followed by mapping keys
// and sequence indices, e.g. "wall.sizes.0.x". Conditionals use it to
// address literals elsewhere in the document.
type RefPath struct {
	// ID is the identifier of the mapping the path starts from.
	ID string

	// Segs are the steps below the identified mapping, outermost first.
	Segs []RefSeg

	raw string
}

// RefSeg is one step of a reference path: a mapping key, or a sequence
// index when IsIndex is set.
type RefSeg struct {
	Key     string
	Index   int
	IsIndex bool
}

// refGrammar is the participle grammar for reference paths.
// Examples: "wall", "wall.sizes", "wall.sizes.0.x", "goal_1.positions.2"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Head string       `parser:"@Ident"`
	Tail []refSegment `parser:"( \".\" @@ )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type refSegment struct {
	Index *int    `parser:"  @Int"`
	Field *string `parser:"| @Ident"`
}

// refLexer defines the lexer for reference paths.
// Note: identifiers must not start with a digit, so bare integers always
// lex as sequence indices.
var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	{Name: "Punct", Pattern: `[.]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// refParser is the participle parser for reference paths.
var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// ParseRef parses a dotted reference path string.
// Supported forms:
//   - "wall" (the identified mapping itself)
//   - "wall.sizes" (a field below it)
//   - "wall.sizes.0" (sequence element)
//   - "wall.sizes.0.x" (field of a sequence element)
func ParseRef(s string) (RefPath, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return RefPath{}, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", trimmed)
	if err != nil {
		return RefPath{}, fmt.Errorf("invalid reference format: %q: %w", trimmed, err)
	}

	ref := RefPath{ID: parsed.Head, raw: trimmed}
	for _, seg := range parsed.Tail {
		switch {
		case seg.Index != nil:
			ref.Segs = append(ref.Segs, RefSeg{Index: *seg.Index, IsIndex: true})
		case seg.Field != nil:
			ref.Segs = append(ref.Segs, RefSeg{Key: *seg.Field})
		}
	}

	return ref, nil
}

// MustParseRef parses a reference path and panics on error.
// Intended for tests and compiled-in defaults.
func MustParseRef(s string) RefPath {
	ref, err := ParseRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// String returns the reference as written.
func (r RefPath) String() string {
	if r.raw != "" {
		return r.raw
	}

	var sb strings.Builder
	sb.WriteString(r.ID)
	for _, seg := range r.Segs {
		sb.WriteString(".")
		if seg.IsIndex {
			sb.WriteString(strconv.Itoa(seg.Index))
		} else {
			sb.WriteString(seg.Key)
		}
	}
	return sb.String()
}
