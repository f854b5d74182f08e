// Package template reads and writes the arena template dialect: YAML with
// AnimalAI tags (!ArenaConfig, !Arena, !Item, !Vector3, !RGB), generation
// tags (!ProcList, !ProcListLabelled, !ProcColor, !ProcVector3Scaled,
// !ProcRepeatChoice, !ProcRestrictCombinations, !ProcIf, !R) and an optional
// proc_meta block with document-level label rules (!ProcIfLabels).
//
// Parse decodes a document into the tree the expansion engine consumes.
// Marshal writes a resolved variant back out; identifiers and the proc_meta
// block never appear in output documents.
package template

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// Template is one parsed template document.
type Template struct {
	// Root is the document tree, proc_meta removed.
	Root ir.Node

	// Rules are the document-level label rules from proc_meta.proc_labels,
	// in declaration order.
	Rules []ir.LabelRule

	// Source is the raw document as read, for verbatim template copies.
	Source []byte
}

// Parse decodes a template document.
func Parse(data []byte) (*Template, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &errors.ParseError{Format: "YAML", Message: err.Error(), Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.NewParse("YAML", "", "empty document")
	}

	d := &decoder{ids: make(map[string]bool)}
	root, rules, err := d.document(doc.Content[0])
	if err != nil {
		return nil, err
	}
	return &Template{Root: root, Rules: rules, Source: data}, nil
}

// ParseFile reads and decodes a template file.
func ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return t, nil
}
