package template

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

type decoder struct {
	// ids tracks identifiers for document-wide uniqueness.
	ids map[string]bool
}

// document decodes the document root, splitting off the proc_meta block.
func (d *decoder) document(n *yaml.Node) (ir.Node, []ir.LabelRule, error) {
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		root, err := d.node(n)
		return root, nil, err
	}

	var rules []ir.LabelRule
	trimmed := *n
	trimmed.Content = nil
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "proc_meta" {
			var err error
			rules, err = d.procMeta(n.Content[i+1])
			if err != nil {
				return nil, nil, err
			}
			continue
		}
		trimmed.Content = append(trimmed.Content, n.Content[i], n.Content[i+1])
	}

	root, err := d.node(&trimmed)
	return root, rules, err
}

func (d *decoder) procMeta(n *yaml.Node) ([]ir.LabelRule, error) {
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		return nil, parseErr(n, "proc_meta must be a mapping")
	}
	var rules []ir.LabelRule
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, list := n.Content[i].Value, deref(n.Content[i+1])
		if key != "proc_labels" {
			return nil, parseErr(n.Content[i], fmt.Sprintf("unexpected proc_meta key %q", key))
		}
		if list.Kind != yaml.SequenceNode {
			return nil, parseErr(list, "proc_labels must be a list")
		}
		for _, item := range list.Content {
			rule, err := d.labelRule(deref(item))
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// node decodes one YAML node into a tree node, dispatching on its tag.
func (d *decoder) node(n *yaml.Node) (ir.Node, error) {
	n = deref(n)
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!ProcColor" {
			return d.procColor(n)
		}
		return d.scalar(n)
	case yaml.SequenceNode:
		switch n.Tag {
		case "!ProcList":
			return d.procList(n)
		case "!ProcListLabelled":
			return d.procListLabelled(n)
		default:
			return d.sequence(n)
		}
	case yaml.MappingNode:
		switch n.Tag {
		case "!ProcVector3Scaled":
			return d.procVector3Scaled(n)
		case "!ProcRepeatChoice":
			return d.procRepeatChoice(n)
		case "!ProcRestrictCombinations":
			return d.procRestrictCombinations(n)
		case "!ProcIf":
			return d.procIf(n)
		case "!ProcIfLabels":
			return nil, parseErr(n, "!ProcIfLabels is only valid under proc_meta.proc_labels")
		default:
			return d.mapping(n)
		}
	default:
		return nil, parseErr(n, "unsupported YAML node")
	}
}

func (d *decoder) scalar(n *yaml.Node) (*ir.Scalar, error) {
	switch n.Tag {
	case "!!null":
		return &ir.Scalar{}, nil
	case "!!bool":
		return &ir.Scalar{Value: strings.EqualFold(n.Value, "true")}, nil
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, parseErr(n, fmt.Sprintf("bad integer %q", n.Value))
		}
		return &ir.Scalar{Value: v}, nil
	case "!!float":
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, parseErr(n, fmt.Sprintf("bad float %q", n.Value))
		}
		return &ir.Scalar{Value: v}, nil
	case "!!str", "":
		return &ir.Scalar{Value: n.Value}, nil
	default:
		// Custom scalar tag, kept verbatim.
		return &ir.Scalar{Value: n.Value, Tag: n.Tag}, nil
	}
}

func (d *decoder) sequence(n *yaml.Node) (*ir.Sequence, error) {
	seq := &ir.Sequence{Tag: customTag(n)}
	if seq.Tag == "!R" {
		if err := checkRange(n); err != nil {
			return nil, err
		}
	}
	for _, item := range n.Content {
		v, err := d.node(item)
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, v)
	}
	return seq, nil
}

func (d *decoder) mapping(n *yaml.Node) (*ir.Mapping, error) {
	m := &ir.Mapping{Tag: customTag(n)}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode := n.Content[i]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, parseErr(keyNode, "mapping keys must be scalars")
		}
		key := keyNode.Value
		if seen[key] {
			return nil, parseErr(keyNode, fmt.Sprintf("duplicate key %q", key))
		}
		seen[key] = true

		if key == "id" {
			id := deref(n.Content[i+1])
			if id.Kind != yaml.ScalarNode || id.Tag != "!!str" {
				return nil, parseErr(id, "id must be a string")
			}
			if d.ids[id.Value] {
				return nil, parseErr(id, fmt.Sprintf("duplicate identifier %q", id.Value))
			}
			d.ids[id.Value] = true
			m.ID = id.Value
			continue
		}

		v, err := d.node(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, ir.Entry{Key: key, Value: v})
	}
	return m, nil
}

// fields indexes a construct mapping's fields, rejecting anything outside
// the allowed set and requiring the required one.
func fields(n *yaml.Node, tag string, required []string, optional []string) (map[string]*yaml.Node, error) {
	allowed := make(map[string]bool)
	for _, k := range required {
		allowed[k] = true
	}
	for _, k := range optional {
		allowed[k] = true
	}

	out := make(map[string]*yaml.Node)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if !allowed[key] {
			return nil, malformed(n, tag, fmt.Sprintf("unexpected field %q", key))
		}
		if _, dup := out[key]; dup {
			return nil, malformed(n, tag, fmt.Sprintf("duplicate field %q", key))
		}
		out[key] = deref(n.Content[i+1])
	}
	for _, k := range required {
		if _, ok := out[k]; !ok {
			return nil, malformed(n, tag, fmt.Sprintf("missing field %q", k))
		}
	}
	return out, nil
}

func (d *decoder) procList(n *yaml.Node) (ir.Node, error) {
	e := &ir.Enum{}
	for _, item := range n.Content {
		v, err := d.node(item)
		if err != nil {
			return nil, err
		}
		e.Options = append(e.Options, v)
	}
	return &ir.Choice{Construct: e}, nil
}

func (d *decoder) procListLabelled(n *yaml.Node) (ir.Node, error) {
	e := &ir.Enum{Labels: []string{}}
	for _, item := range n.Content {
		item = deref(item)
		if item.Kind != yaml.MappingNode {
			return nil, malformed(n, "!ProcListLabelled", "options must be {label, value} mappings")
		}
		f, err := fields(item, "!ProcListLabelled", []string{"label", "value"}, nil)
		if err != nil {
			return nil, err
		}
		label, err := stringField(f["label"], "!ProcListLabelled", "label")
		if err != nil {
			return nil, err
		}
		v, err := d.node(f["value"])
		if err != nil {
			return nil, err
		}
		e.Options = append(e.Options, v)
		e.Labels = append(e.Labels, label)
	}
	return &ir.Choice{Construct: e}, nil
}

func (d *decoder) procColor(n *yaml.Node) (ir.Node, error) {
	amount, err := strconv.Atoi(strings.TrimSpace(n.Value))
	if err != nil {
		return nil, malformed(n, "!ProcColor", fmt.Sprintf("amount %q is not an integer", n.Value))
	}
	return &ir.Choice{Construct: &ir.PalettePick{Amount: amount}}, nil
}

func (d *decoder) procVector3Scaled(n *yaml.Node) (ir.Node, error) {
	f, err := fields(n, "!ProcVector3Scaled", []string{"scales"}, []string{"base", "labels"})
	if err != nil {
		return nil, err
	}

	s := &ir.Scaled{}
	s.Scales, err = floatList(f["scales"], "!ProcVector3Scaled", "scales")
	if err != nil {
		return nil, err
	}
	if base, ok := f["base"]; ok {
		s.Base, err = d.node(base)
		if err != nil {
			return nil, err
		}
	}
	if labels, ok := f["labels"]; ok {
		s.Labels, err = stringList(labels, "!ProcVector3Scaled", "labels")
		if err != nil {
			return nil, err
		}
	}
	return &ir.Choice{Construct: s}, nil
}

func (d *decoder) procRepeatChoice(n *yaml.Node) (ir.Node, error) {
	f, err := fields(n, "!ProcRepeatChoice", []string{"amount", "value"}, nil)
	if err != nil {
		return nil, err
	}
	amount, err := intField(f["amount"], "!ProcRepeatChoice", "amount")
	if err != nil {
		return nil, err
	}
	value, err := d.node(f["value"])
	if err != nil {
		return nil, err
	}
	return &ir.Choice{Construct: &ir.Repeat{Amount: amount, Value: value}}, nil
}

func (d *decoder) procRestrictCombinations(n *yaml.Node) (ir.Node, error) {
	f, err := fields(n, "!ProcRestrictCombinations", []string{"amount"}, []string{"item", "value"})
	if err != nil {
		return nil, err
	}
	amount, err := intField(f["amount"], "!ProcRestrictCombinations", "amount")
	if err != nil {
		return nil, err
	}
	inner, ok := f["item"]
	if !ok {
		// "value" is accepted as an alias for "item".
		if inner, ok = f["value"]; !ok {
			return nil, malformed(n, "!ProcRestrictCombinations", `missing field "item"`)
		}
	}
	value, err := d.node(inner)
	if err != nil {
		return nil, err
	}
	return &ir.Choice{Construct: &ir.Restrict{Amount: amount, Value: value}}, nil
}

func (d *decoder) procIf(n *yaml.Node) (ir.Node, error) {
	f, err := fields(n, "!ProcIf",
		[]string{"variable", "cases", "then"},
		[]string{"default", "labels", "default_label"})
	if err != nil {
		return nil, err
	}

	cond := &ir.If{}
	cond.Refs, err = refList(f["variable"], "!ProcIf")
	if err != nil {
		return nil, err
	}
	cond.Cases, err = d.caseList(f["cases"], "!ProcIf", len(cond.Refs))
	if err != nil {
		return nil, err
	}

	then := deref(f["then"])
	if then.Kind != yaml.SequenceNode {
		return nil, malformed(n, "!ProcIf", `"then" must be a list`)
	}
	for _, item := range then.Content {
		v, err := d.node(item)
		if err != nil {
			return nil, err
		}
		cond.Then = append(cond.Then, v)
	}

	if def, ok := f["default"]; ok {
		cond.Default, err = d.node(def)
		if err != nil {
			return nil, err
		}
	}
	if labels, ok := f["labels"]; ok {
		cond.Labels, err = stringList(labels, "!ProcIf", "labels")
		if err != nil {
			return nil, err
		}
	}
	if dl, ok := f["default_label"]; ok {
		cond.DefaultLabel, err = stringField(dl, "!ProcIf", "default_label")
		if err != nil {
			return nil, err
		}
	}
	return &ir.Choice{Construct: cond}, nil
}

func (d *decoder) labelRule(n *yaml.Node) (ir.LabelRule, error) {
	var rule ir.LabelRule
	if n.Kind != yaml.MappingNode || n.Tag != "!ProcIfLabels" {
		return rule, parseErr(n, "proc_labels entries must be !ProcIfLabels mappings")
	}
	f, err := fields(n, "!ProcIfLabels", []string{"value", "cases", "labels"}, []string{"default"})
	if err != nil {
		return rule, err
	}

	rule.Refs, err = refList(f["value"], "!ProcIfLabels")
	if err != nil {
		return rule, err
	}
	rule.Cases, err = d.caseList(f["cases"], "!ProcIfLabels", len(rule.Refs))
	if err != nil {
		return rule, err
	}
	rule.Labels, err = stringList(f["labels"], "!ProcIfLabels", "labels")
	if err != nil {
		return rule, err
	}
	if len(rule.Labels) != len(rule.Cases) {
		return rule, malformed(n, "!ProcIfLabels",
			fmt.Sprintf("%d labels for %d cases", len(rule.Labels), len(rule.Cases)))
	}
	if def, ok := f["default"]; ok {
		rule.Default, err = stringField(def, "!ProcIfLabels", "default")
		if err != nil {
			return rule, err
		}
		rule.HasDefault = true
	}
	return rule, nil
}

// caseList decodes a conditional's case list. A case is a tuple of terms,
// one per reference; a single-reference case may omit the wrapping list.
func (d *decoder) caseList(n *yaml.Node, tag string, arity int) ([]ir.Case, error) {
	n = deref(n)
	if n.Kind != yaml.SequenceNode {
		return nil, malformed(n, tag, `"cases" must be a list`)
	}
	var cases []ir.Case
	for _, item := range n.Content {
		item = deref(item)
		var termNodes []*yaml.Node
		if item.Kind == yaml.SequenceNode && item.Tag != "!R" {
			termNodes = item.Content
		} else {
			termNodes = []*yaml.Node{item}
		}
		if len(termNodes) != arity {
			return nil, malformed(item, tag,
				fmt.Sprintf("case has %d terms for %d variables", len(termNodes), arity))
		}
		var cs ir.Case
		for _, tn := range termNodes {
			term, err := d.caseTerm(tn, tag)
			if err != nil {
				return nil, err
			}
			cs.Terms = append(cs.Terms, term)
		}
		cases = append(cases, cs)
	}
	return cases, nil
}

func (d *decoder) caseTerm(n *yaml.Node, tag string) (ir.CaseTerm, error) {
	n = deref(n)
	if n.Kind == yaml.SequenceNode && n.Tag == "!R" {
		if err := checkRange(n); err != nil {
			return ir.CaseTerm{}, err
		}
		min, err := floatScalar(n.Content[0], tag, "range bound")
		if err != nil {
			return ir.CaseTerm{}, err
		}
		max, err := floatScalar(n.Content[1], tag, "range bound")
		if err != nil {
			return ir.CaseTerm{}, err
		}
		return ir.CaseTerm{Range: &ir.Range{Min: min, Max: max}}, nil
	}
	if n.Kind != yaml.ScalarNode {
		return ir.CaseTerm{}, malformed(n, tag, "case terms must be literals or !R ranges")
	}
	s, err := d.scalar(n)
	if err != nil {
		return ir.CaseTerm{}, err
	}
	return ir.CaseTerm{Value: s}, nil
}

// checkRange validates the shape of a !R node: two bounds, min below max.
func checkRange(n *yaml.Node) error {
	if len(n.Content) != 2 {
		return malformed(n, "!R", fmt.Sprintf("must have exactly 2 elements, got %d", len(n.Content)))
	}
	min, err1 := strconv.ParseFloat(n.Content[0].Value, 64)
	max, err2 := strconv.ParseFloat(n.Content[1].Value, 64)
	if err1 != nil || err2 != nil {
		return malformed(n, "!R", "bounds must be numbers")
	}
	if min > max {
		return malformed(n, "!R", fmt.Sprintf("minimum %v is greater than maximum %v", min, max))
	}
	return nil
}

// Field decoding helpers.

func refList(n *yaml.Node, tag string) ([]ir.RefPath, error) {
	n = deref(n)
	var raw []string
	switch n.Kind {
	case yaml.ScalarNode:
		raw = []string{n.Value}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			item = deref(item)
			if item.Kind != yaml.ScalarNode {
				return nil, malformed(n, tag, "variables must be reference strings")
			}
			raw = append(raw, item.Value)
		}
	default:
		return nil, malformed(n, tag, "variable must be a reference string or a list of them")
	}

	refs := make([]ir.RefPath, len(raw))
	for i, s := range raw {
		ref, err := ir.ParseRef(s)
		if err != nil {
			return nil, malformed(n, tag, err.Error())
		}
		refs[i] = ref
	}
	return refs, nil
}

func intField(n *yaml.Node, tag, name string) (int, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, malformed(n, tag, fmt.Sprintf("%q must be an integer", name))
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Value))
	if err != nil {
		return 0, malformed(n, tag, fmt.Sprintf("%q must be an integer, got %q", name, n.Value))
	}
	return v, nil
}

func stringField(n *yaml.Node, tag, name string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", malformed(n, tag, fmt.Sprintf("%q must be a string", name))
	}
	return n.Value, nil
}

func floatScalar(n *yaml.Node, tag, name string) (float64, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, malformed(n, tag, fmt.Sprintf("%s must be a number", name))
	}
	v, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, malformed(n, tag, fmt.Sprintf("%s must be a number, got %q", name, n.Value))
	}
	return v, nil
}

func floatList(n *yaml.Node, tag, name string) ([]float64, error) {
	n = deref(n)
	if n.Kind != yaml.SequenceNode {
		return nil, malformed(n, tag, fmt.Sprintf("%q must be a list of numbers", name))
	}
	out := make([]float64, len(n.Content))
	for i, item := range n.Content {
		v, err := floatScalar(deref(item), tag, name+" entry")
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func stringList(n *yaml.Node, tag, name string) ([]string, error) {
	n = deref(n)
	if n.Kind != yaml.SequenceNode {
		return nil, malformed(n, tag, fmt.Sprintf("%q must be a list of strings", name))
	}
	out := make([]string, len(n.Content))
	for i, item := range n.Content {
		s, err := stringField(deref(item), tag, name+" entry")
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// deref follows alias nodes.
func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// customTag returns the node's tag when it is an application tag, empty for
// the standard YAML tags.
func customTag(n *yaml.Node) string {
	if strings.HasPrefix(n.Tag, "!!") || n.Tag == "" {
		return ""
	}
	return n.Tag
}

func parseErr(n *yaml.Node, msg string) error {
	return errors.NewParse("YAML", "", fmt.Sprintf("line %d: %s", n.Line, msg))
}

func malformed(n *yaml.Node, tag, msg string) error {
	return errors.NewMalformedConstruct(fmt.Sprintf("line %d", n.Line), tag, msg)
}
